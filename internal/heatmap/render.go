// Package heatmap renders a recorded track as a time-gradient heat overlay:
// every sample becomes a translucent disc colored by recency, oldest cool,
// newest hot.
package heatmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/mkrutov/heattrack/internal/track"
)

const (
	defaultWidth       = 1024
	defaultHeight      = 768
	defaultPointRadius = 6
	defaultPadding     = 32

	strokeWidth = 2
)

// ErrNoSamples is returned when rendering an empty track.
var ErrNoSamples = errors.New("heatmap: no samples to render")

// Dark slate background; the translucent gradient colors need a dark base to
// read as a heat overlay.
var defaultBackground = color.NRGBA{R: 24, G: 26, B: 30, A: 255}

// Config holds rendering options.
type Config struct {
	Width       int
	Height      int
	PointRadius int
	Padding     int
	Background  color.Color

	// FontPath locates a TTF for annotations. Annotations are skipped when
	// empty or when NoAnnotations is set.
	FontPath      string
	NoAnnotations bool

	// Location and TimeFormat control annotation timestamps.
	Location   *time.Location
	TimeFormat string
}

// Renderer draws tracks into RGBA images.
type Renderer struct {
	config Config
}

// NewRenderer creates a renderer, filling zero config values with defaults.
func NewRenderer(config Config) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.PointRadius == 0 {
		config.PointRadius = defaultPointRadius
	}
	if config.Padding == 0 {
		config.Padding = defaultPadding
	}
	if config.Background == nil {
		config.Background = defaultBackground
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.TimeFormat == "" {
		config.TimeFormat = time.DateTime
	}

	if config.Width < 2*config.Padding || config.Height < 2*config.Padding {
		return nil, fmt.Errorf("image %dx%d too small for %dpx padding",
			config.Width, config.Height, config.Padding)
	}

	return &Renderer{config: config}, nil
}

// Render draws the samples oldest first so recent heat overlays older heat.
func (r *Renderer) Render(samples []track.Sample) (*image.RGBA, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.config.Background), image.Point{}, draw.Src)

	ordered := make([]track.Sample, len(samples))
	copy(ordered, samples)
	sortByTimestamp(ordered)

	view := fitViewport(ordered, img.Bounds(), r.config.Padding)
	mapper := track.NewGradientMapper(ordered)

	for _, s := range ordered {
		center := view.pixel(s)
		stroke, fill := mapper.ColorFor(s)

		drawDisc(img, center, r.config.PointRadius, fill)
		drawRing(img, center, r.config.PointRadius, strokeWidth, stroke)
	}

	if !r.config.NoAnnotations && r.config.FontPath != "" {
		ann, err := newAnnotator(r.config.FontPath, r.config.Location, r.config.TimeFormat)
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		if err = ann.annotate(img, ordered); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	return img, nil
}

func sortByTimestamp(samples []track.Sample) {
	// Insertion sort: tracks arrive nearly ordered, appended as recorded.
	for i := 1; i < len(samples); i++ {
		for j := i; j > 0 && samples[j].Timestamp.Before(samples[j-1].Timestamp); j-- {
			samples[j], samples[j-1] = samples[j-1], samples[j]
		}
	}
}

// discMask is an alpha mask for a filled circle.
type discMask struct {
	center image.Point
	radius int
}

func (m *discMask) ColorModel() color.Model { return color.AlphaModel }

func (m *discMask) Bounds() image.Rectangle {
	return image.Rect(m.center.X-m.radius, m.center.Y-m.radius, m.center.X+m.radius+1, m.center.Y+m.radius+1)
}

func (m *discMask) At(x, y int) color.Color {
	dx, dy := x-m.center.X, y-m.center.Y
	if dx*dx+dy*dy <= m.radius*m.radius {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// ringMask is an alpha mask for a circle outline of the given width.
type ringMask struct {
	center image.Point
	outer  int
	inner  int
}

func (m *ringMask) ColorModel() color.Model { return color.AlphaModel }

func (m *ringMask) Bounds() image.Rectangle {
	return image.Rect(m.center.X-m.outer, m.center.Y-m.outer, m.center.X+m.outer+1, m.center.Y+m.outer+1)
}

func (m *ringMask) At(x, y int) color.Color {
	dx, dy := x-m.center.X, y-m.center.Y
	d := dx*dx + dy*dy
	if d <= m.outer*m.outer && d >= m.inner*m.inner {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, c color.NRGBA) {
	mask := &discMask{center: center, radius: radius}
	draw.DrawMask(img, mask.Bounds(), image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

func drawRing(img *image.RGBA, center image.Point, radius, width int, c color.NRGBA) {
	mask := &ringMask{center: center, outer: radius, inner: radius - width}
	draw.DrawMask(img, mask.Bounds(), image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}
