package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mkrutov/heattrack/internal/heatmap"
	"github.com/mkrutov/heattrack/internal/storage"
	"github.com/mkrutov/heattrack/internal/track"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	samples, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("loading track: %w", err)
	}

	sum := track.Summarize(samples)
	logger.Info("track loaded",
		slog.String("samples", humanize.Comma(int64(sum.Count))),
		slog.String("oldest", sum.Oldest.In(config.TimeZone).Format(time.DateTime)),
		slog.String("newest", sum.Newest.In(config.TimeZone).Format(time.DateTime)))

	renderer, err := heatmap.NewRenderer(heatmap.Config{
		Width:         config.Width,
		Height:        config.Height,
		PointRadius:   config.PointRadius,
		FontPath:      config.FontPath,
		NoAnnotations: config.NoAnnotations,
		Location:      config.TimeZone,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	logger.Info("rendering heat overlay",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		))

	img, err := renderer.Render(samples)
	if err != nil {
		return fmt.Errorf("rendering heat overlay: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
