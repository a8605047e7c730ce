package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mkrutov/heattrack/internal/location"
	"github.com/mkrutov/heattrack/internal/notify"
	"github.com/mkrutov/heattrack/internal/permission"
	"github.com/mkrutov/heattrack/internal/storage"
	"github.com/mkrutov/heattrack/internal/tracker"
)

const (
	storageDir  = "data"
	storageFile = "track.sqlite"

	shutdownTimeout = 5 * time.Second
)

// Run wires the store, providers and tracker together and runs until the
// context is canceled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer store.Close()

	if config.Seed > 0 {
		return seedTrack(ctx, store, config, logger)
	}

	provider, err := createProvider(&config.Location)
	if err != nil {
		return fmt.Errorf("creating location provider: %w", err)
	}

	options := []func(*tracker.Tracker){
		tracker.WithLogger(logger),
		tracker.WithInterval(time.Duration(config.Tracking.Interval)),
		tracker.WithTimeout(time.Duration(config.Tracking.Timeout)),
	}

	var sinks []notify.Sink
	if config.Notify.MQTT.Enabled {
		sink, err := notify.NewMQTTSink(config.Notify.MQTT.MQTTConfig)
		if err != nil {
			return fmt.Errorf("creating MQTT sink: %w", err)
		}
		sinks = append(sinks, sink)
		options = append(options, tracker.WithSinks(sink))
	}
	defer func() {
		for _, sink := range sinks {
			_ = sink.Close()
		}
	}()

	tr := tracker.New(store, provider, createPermission(&config.Permission), options...)

	if err = tr.Reload(ctx); err != nil {
		return fmt.Errorf("loading recorded track: %w", err)
	}
	logger.Info("track loaded", slog.Int("samples", len(tr.Samples())))

	// Drain the coalescing updated signal; a real rendering layer would
	// re-query Samples here and redraw.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-tr.Updates():
				logger.Debug("track updated", slog.Int("samples", len(tr.Samples())))
			}
		}
	}()

	if config.Tracking.Autostart {
		if err = tr.Start(); err != nil {
			if !config.Server.Enabled {
				return fmt.Errorf("starting tracking: %w", err)
			}
			// The control surface can still start a session later.
			logger.Warn("autostart failed", slog.String("error", err.Error()))
		}
	}

	var srvErr chan error
	var srv *http.Server
	if config.Server.Enabled {
		srv = newServer(config.Server.Addr, tr, logger)
		srvErr = make(chan error, 1)

		go func() {
			logger.Info("control server listening", slog.String("addr", config.Server.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srvErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		return fmt.Errorf("control server: %w", err)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	if stopErr := tr.Stop(); stopErr != nil && !errors.Is(stopErr, tracker.ErrNotTracking) {
		logger.Warn("stopping tracker", slog.String("error", stopErr.Error()))
	}
	tr.Wait()

	return nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	if config.Path != "" {
		return storage.NewSqliteStore(config.Path), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	dir := config.DataDirectory
	if dir == "" {
		dir = storageDir
	}
	dbDir := filepath.Join(wd, dir)

	if err = os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory '%s': %w", dbDir, err)
	}

	return storage.NewSqliteStore(filepath.Join(dbDir, storageFile)), nil
}

func createProvider(config *LocationConfig) (location.Provider, error) {
	switch config.Provider {
	case ProviderNMEA:
		return location.NewNMEAProvider(config.NMEA.Port, config.NMEA.BaudRate), nil

	case ProviderGoogle:
		return location.NewGoogleProvider(config.Google.APIKey)

	case ProviderSimulated:
		return location.NewSimulatedProvider(
			config.Simulated.Latitude,
			config.Simulated.Longitude,
			config.Simulated.RandSeed,
		), nil

	default:
		return nil, fmt.Errorf("unknown location provider '%s'", config.Provider)
	}
}

func createPermission(config *PermissionConfig) permission.Provider {
	switch config.Mode {
	case PermissionGrant:
		return permission.NewStatic(permission.Granted)
	case PermissionDeny:
		return permission.NewStatic(permission.Denied)
	default:
		return permission.NewPrompt(os.Stdin, os.Stderr)
	}
}
