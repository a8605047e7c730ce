package location

import (
	"context"
	"math/rand"
	"sync"
)

const (
	// Step size of the simulated walk, roughly 10m of latitude per tick.
	walkStepDegrees = 0.0001

	simulatedAccuracy = 5.0 // meters
)

// SimulatedProvider produces a deterministic random walk around a starting
// coordinate. It exists for demo seeding and for exercising the tracking
// loop without GPS hardware or network access.
type SimulatedProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
	lat float64
	lon float64
}

// NewSimulatedProvider starts a walk at the given coordinate. The same seed
// always produces the same walk.
func NewSimulatedProvider(lat, lon float64, seed int64) *SimulatedProvider {
	return &SimulatedProvider{
		rng: rand.New(rand.NewSource(seed)),
		lat: lat,
		lon: lon,
	}
}

// Current advances the walk one step and returns the new position.
func (p *SimulatedProvider) Current(ctx context.Context) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lat += (p.rng.Float64() - 0.5) * 2 * walkStepDegrees
	p.lon += (p.rng.Float64() - 0.5) * 2 * walkStepDegrees

	p.lat = min(max(p.lat, -90), 90)
	p.lon = min(max(p.lon, -180), 180)

	accuracy := simulatedAccuracy
	return Fix{Latitude: p.lat, Longitude: p.lon, Accuracy: &accuracy}, nil
}
