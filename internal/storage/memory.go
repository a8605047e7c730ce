package storage

import (
	"context"
	"sync"

	"github.com/mkrutov/heattrack/internal/track"
)

// MemoryStore keeps samples in memory behind a mutex. It implements the same
// append/all/clear contract as SqliteStore and exists for demo mode and for
// tests that must not touch disk.
type MemoryStore struct {
	mu      sync.Mutex
	samples []track.Sample
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Append stores one sample and returns its assigned id.
func (m *MemoryStore) Append(ctx context.Context, sample track.Sample) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sample.ID = m.nextID
	m.nextID++
	m.samples = append(m.samples, sample)
	return sample.ID, nil
}

// All returns a copy of every stored sample in insertion order.
func (m *MemoryStore) All(ctx context.Context) ([]track.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]track.Sample, len(m.samples))
	copy(out, m.samples)
	return out, nil
}

// Clear removes every sample. Ids are not reused afterwards.
func (m *MemoryStore) Clear(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := int64(len(m.samples))
	m.samples = nil
	return removed, nil
}

// Close is a no-op; it exists to satisfy callers that manage store lifetime.
func (m *MemoryStore) Close() error { return nil }
