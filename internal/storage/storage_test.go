package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrutov/heattrack/internal/track"
)

// sampleStore is the contract shared by both implementations.
type sampleStore interface {
	Append(ctx context.Context, s track.Sample) (int64, error)
	All(ctx context.Context) ([]track.Sample, error)
	Clear(ctx context.Context) (int64, error)
	Close() error
}

func runStoreTests(t *testing.T, newStore func(t *testing.T) sampleStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("append then all", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		acc := 8.0
		id, err := store.Append(ctx, track.Sample{Latitude: -33.86, Longitude: 151.21, Timestamp: base, Accuracy: &acc})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if id <= 0 {
			t.Fatalf("Append returned id %d, want positive", id)
		}

		samples, err := store.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(samples) != 1 {
			t.Fatalf("All returned %d samples, want 1", len(samples))
		}

		got := samples[0]
		if got.ID != id {
			t.Errorf("ID = %d, want %d", got.ID, id)
		}
		if got.Latitude != -33.86 || got.Longitude != 151.21 {
			t.Errorf("coordinates = (%f, %f)", got.Latitude, got.Longitude)
		}
		if !got.Timestamp.Equal(base) {
			t.Errorf("timestamp = %v, want %v", got.Timestamp, base)
		}
		if got.Accuracy == nil || *got.Accuracy != 8.0 {
			t.Errorf("accuracy = %v, want 8.0", got.Accuracy)
		}
	})

	t.Run("nil accuracy survives round trip", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		if _, err := store.Append(ctx, track.Sample{Latitude: 1, Longitude: 2, Timestamp: base}); err != nil {
			t.Fatalf("Append: %v", err)
		}

		samples, err := store.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if samples[0].Accuracy != nil {
			t.Errorf("accuracy = %v, want nil (unknown, not zero)", *samples[0].Accuracy)
		}
	})

	t.Run("insertion order and fresh ids", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		seen := map[int64]bool{}
		for i := 0; i < 5; i++ {
			id, err := store.Append(ctx, track.Sample{
				Latitude:  float64(i),
				Longitude: float64(-i),
				Timestamp: base.Add(time.Duration(i) * time.Second),
			})
			if err != nil {
				t.Fatalf("Append %d: %v", i, err)
			}
			if seen[id] {
				t.Fatalf("id %d returned twice", id)
			}
			seen[id] = true
		}

		samples, err := store.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(samples) != 5 {
			t.Fatalf("All returned %d samples, want 5", len(samples))
		}
		for i, s := range samples {
			if s.Latitude != float64(i) {
				t.Errorf("sample %d out of insertion order: latitude %f", i, s.Latitude)
			}
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		for i := 0; i < 3; i++ {
			if _, err := store.Append(ctx, track.Sample{Timestamp: base}); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}

		removed, err := store.Clear(ctx)
		if err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if removed != 3 {
			t.Errorf("Clear removed %d, want 3", removed)
		}

		samples, err := store.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(samples) != 0 {
			t.Errorf("All after Clear returned %d samples, want 0", len(samples))
		}
	})

	t.Run("ids not reused after clear", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		first, err := store.Append(ctx, track.Sample{Timestamp: base})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if _, err = store.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}

		second, err := store.Append(ctx, track.Sample{Timestamp: base})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if second <= first {
			t.Errorf("id %d reused after clear (previous %d)", second, first)
		}
	})
}

func TestSqliteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) sampleStore {
		return NewSqliteStore(filepath.Join(t.TempDir(), "track.sqlite"))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) sampleStore {
		return NewMemoryStore()
	})
}
