package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath        string
	OutputFile    string
	Format        ImageFormat
	Width         int
	Height        int
	PointRadius   int
	FontPath      string
	TimeZone      *time.Location
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:   ImagePNG,
		TimeZone: time.Local,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, timeZone string
	flag.StringVar(&c.DBPath, "db", "", "Path to the recorded track database")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file (extension added)")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.IntVar(&c.Width, "width", 1024, "Output image width in pixels")
	flag.IntVar(&c.Height, "height", 768, "Output image height in pixels")
	flag.IntVar(&c.PointRadius, "radius", 6, "Sample point radius in pixels")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TTF font used for annotations")
	flag.StringVar(&timeZone, "tz", "", "Time zone for annotation timestamps (IANA name)")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable the track summary annotation")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.Width <= 0 || c.Height <= 0 {
		err = errors.New("width and height must be positive")
	}

	if err == nil && timeZone != "" {
		if c.TimeZone, err = time.LoadLocation(timeZone); err != nil {
			err = fmt.Errorf("invalid time zone '%s': %w", timeZone, err)
		}
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
