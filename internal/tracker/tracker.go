// Package tracker implements the recording session: a two-state controller
// around a fixed-interval polling loop that samples a location provider and
// appends each fix to the store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mkrutov/heattrack/internal/location"
	"github.com/mkrutov/heattrack/internal/notify"
	"github.com/mkrutov/heattrack/internal/permission"
	"github.com/mkrutov/heattrack/internal/track"
)

const (
	defaultInterval = 5 * time.Second
	defaultTimeout  = 10 * time.Second
)

var (
	// ErrPermissionDenied is returned by Start when location access is refused.
	ErrPermissionDenied = errors.New("tracker: location permission denied")

	// ErrAlreadyTracking is returned by Start while a session is active.
	ErrAlreadyTracking = errors.New("tracker: already tracking")

	// ErrNotTracking is returned by Stop when no session is active.
	ErrNotTracking = errors.New("tracker: not tracking")
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Store is the persistence contract the tracker requires: append-only plus
// bulk clear. There is no update-in-place and no per-id delete.
type Store interface {
	Append(ctx context.Context, s track.Sample) (int64, error)
	All(ctx context.Context) ([]track.Sample, error)
	Clear(ctx context.Context) (int64, error)
}

// WithLogger sets the logger for the tracker.
func WithLogger(logger *slog.Logger) func(*Tracker) {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithInterval sets the delay between poll ticks.
func WithInterval(interval time.Duration) func(*Tracker) {
	return func(t *Tracker) {
		t.interval = interval
	}
}

// WithTimeout bounds each location request.
func WithTimeout(timeout time.Duration) func(*Tracker) {
	return func(t *Tracker) {
		t.timeout = timeout
	}
}

// WithSinks adds per-sample notification sinks.
func WithSinks(sinks ...notify.Sink) func(*Tracker) {
	return func(t *Tracker) {
		t.sinks = append(t.sinks, sinks...)
	}
}

// Tracker polls a location provider while in the Tracking state and persists
// each successful fix. Provider and store failures are surfaced as transient
// status text and never end the loop; only cancellation does.
type Tracker struct {
	store      Store
	provider   location.Provider
	permission permission.Provider
	sinks      []notify.Sink

	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	status  string
	samples []track.Sample
	cancel  context.CancelFunc

	wg      sync.WaitGroup
	updates chan struct{}
}

// New creates an idle tracker. The store, provider and permission
// collaborators are injected here; there is no ambient global state.
func New(store Store, provider location.Provider, perm permission.Provider, options ...func(*Tracker)) *Tracker {
	t := Tracker{
		store:      store,
		provider:   provider,
		permission: perm,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		interval:   defaultInterval,
		timeout:    defaultTimeout,
		updates:    make(chan struct{}, 1),
	}

	for _, option := range options {
		option(&t)
	}

	return &t
}

// Start begins a tracking session. It checks location permission first,
// requesting it if not already granted; on refusal the tracker stays Idle
// and no loop is started. On success the poll loop runs concurrently until
// Stop is called.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Tracking {
		return ErrAlreadyTracking
	}

	decision := t.permission.Check()
	if decision != permission.Granted {
		decision = t.permission.Request()
	}
	if decision != permission.Granted {
		t.status = "location permission denied"
		t.logger.Warn("tracking not started", slog.String("reason", t.status))
		return ErrPermissionDenied
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.state = Tracking
	t.status = "tracking"

	t.wg.Add(1)
	go t.run(ctx)

	t.logger.Info("tracking started",
		slog.Duration("interval", t.interval),
		slog.Duration("timeout", t.timeout))
	return nil
}

// Stop ends the session. It signals cancellation and returns immediately;
// an in-flight tick may still complete. Use Wait to join the loop.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Tracking {
		return ErrNotTracking
	}

	t.cancel()
	t.cancel = nil
	t.state = Idle
	t.status = "stopped"

	t.logger.Info("tracking stopped")
	return nil
}

// Wait blocks until the poll loop has exited.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Clear removes every stored sample. Valid in either state; an active
// session keeps recording into the emptied store.
func (t *Tracker) Clear(ctx context.Context) (int64, error) {
	removed, err := t.store.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing store: %w", err)
	}

	t.mu.Lock()
	t.samples = nil
	t.mu.Unlock()

	t.logger.Info("track cleared", slog.Int64("removed", removed))
	t.emitUpdated()
	return removed, nil
}

// Reload replaces the cached view with the store contents. Valid in either
// state.
func (t *Tracker) Reload(ctx context.Context) error {
	samples, err := t.store.All(ctx)
	if err != nil {
		return fmt.Errorf("loading samples: %w", err)
	}

	t.mu.Lock()
	t.samples = samples
	t.mu.Unlock()

	t.emitUpdated()
	return nil
}

// Samples returns a copy of the cached sample view.
func (t *Tracker) Samples() []track.Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]track.Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// State reports the controller state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Status reports the most recent status text, including transient provider
// errors from the poll loop.
func (t *Tracker) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Updates returns the coalescing updated signal. One value is readable after
// any mutation (append, clear, reload); consumers re-query Samples.
func (t *Tracker) Updates() <-chan struct{} {
	return t.updates
}

func (t *Tracker) run(ctx context.Context) {
	defer t.wg.Done()

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		t.tick(ctx)

		timer.Reset(t.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// tick performs one poll iteration. Every failure is transient: the tick is
// skipped, the status text records the cause and the loop carries on.
func (t *Tracker) tick(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	fix, err := t.provider.Current(reqCtx)
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return // session stopped mid-request
		}
		t.setStatus(transientStatus(err))
		t.logger.Warn("skipping tick", slog.String("error", err.Error()))
		return
	}

	sample := track.New(fix.Latitude, fix.Longitude, fix.Accuracy)
	if err = sample.Validate(); err != nil {
		t.setStatus("provider returned invalid fix")
		t.logger.Warn("skipping tick", slog.String("error", err.Error()))
		return
	}

	id, err := t.store.Append(ctx, sample)
	if err != nil {
		// Store failures are skippable, same as provider failures.
		t.setStatus("store error: " + err.Error())
		t.logger.Warn("skipping tick", slog.String("error", err.Error()))
		return
	}
	sample.ID = id

	t.mu.Lock()
	t.samples = append(t.samples, sample)
	t.status = "tracking"
	t.mu.Unlock()

	t.logger.Debug("sample recorded",
		slog.Int64("id", id),
		slog.Float64("lat", sample.Latitude),
		slog.Float64("lon", sample.Longitude))

	t.publish(ctx, sample)
	t.emitUpdated()
}

func (t *Tracker) publish(ctx context.Context, sample track.Sample) {
	for _, sink := range t.sinks {
		if err := sink.Publish(ctx, sample); err != nil {
			t.logger.Warn("sink publish failed", slog.String("error", err.Error()))
		}
	}
}

func (t *Tracker) setStatus(status string) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

func (t *Tracker) emitUpdated() {
	select {
	case t.updates <- struct{}{}:
	default: // a signal is already pending
	}
}

func transientStatus(err error) string {
	switch {
	case errors.Is(err, location.ErrUnsupported):
		return "location not supported on this host"
	case errors.Is(err, location.ErrDisabled):
		return "location source disabled or no fix"
	case errors.Is(err, location.ErrPermissionDenied):
		return "location permission revoked"
	case errors.Is(err, location.ErrTimeout):
		return "location request timed out"
	default:
		return "location error: " + err.Error()
	}
}
