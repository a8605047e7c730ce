package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mkrutov/heattrack/internal/location"
	"github.com/mkrutov/heattrack/internal/track"
	"github.com/mkrutov/heattrack/internal/tracker"
)

// seedTrack inserts synthetic samples along a simulated walk, back-dated at
// the tracking interval so the recency gradient has a visible span.
func seedTrack(ctx context.Context, store tracker.Store, config *Config, logger *slog.Logger) error {
	provider := location.NewSimulatedProvider(
		config.Location.Simulated.Latitude,
		config.Location.Simulated.Longitude,
		config.Location.Simulated.RandSeed,
	)

	interval := time.Duration(config.Tracking.Interval)
	start := time.Now().UTC().Add(-time.Duration(config.Seed) * interval)

	for i := 0; i < config.Seed; i++ {
		fix, err := provider.Current(ctx)
		if err != nil {
			return fmt.Errorf("generating sample %d: %w", i, err)
		}

		sample := track.Sample{
			Latitude:  fix.Latitude,
			Longitude: fix.Longitude,
			Timestamp: start.Add(time.Duration(i) * interval),
			Accuracy:  fix.Accuracy,
		}
		if _, err = store.Append(ctx, sample); err != nil {
			return fmt.Errorf("appending sample %d: %w", i, err)
		}
	}

	logger.Info("seeded synthetic track",
		slog.String("samples", humanize.Comma(int64(config.Seed))),
		slog.Float64("lat", config.Location.Simulated.Latitude),
		slog.Float64("lon", config.Location.Simulated.Longitude))
	return nil
}
