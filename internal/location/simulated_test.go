package location

import (
	"context"
	"testing"
)

func TestSimulatedProvider_Deterministic(t *testing.T) {
	ctx := context.Background()

	a := NewSimulatedProvider(-33.8688, 151.2093, 42)
	b := NewSimulatedProvider(-33.8688, 151.2093, 42)

	for i := 0; i < 10; i++ {
		fa, errA := a.Current(ctx)
		fb, errB := b.Current(ctx)
		if errA != nil || errB != nil {
			t.Fatalf("step %d: errors %v, %v", i, errA, errB)
		}
		if fa.Latitude != fb.Latitude || fa.Longitude != fb.Longitude {
			t.Fatalf("step %d: walks diverged: (%f,%f) vs (%f,%f)",
				i, fa.Latitude, fa.Longitude, fb.Latitude, fb.Longitude)
		}
		if fa.Accuracy == nil || *fa.Accuracy <= 0 {
			t.Fatalf("step %d: expected positive accuracy", i)
		}
	}
}

func TestSimulatedProvider_StaysInBounds(t *testing.T) {
	ctx := context.Background()

	// Start at the pole so the clamp is actually exercised.
	p := NewSimulatedProvider(90, 180, 1)

	for i := 0; i < 100; i++ {
		fix, err := p.Current(ctx)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if fix.Latitude < -90 || fix.Latitude > 90 {
			t.Fatalf("step %d: latitude %f out of range", i, fix.Latitude)
		}
		if fix.Longitude < -180 || fix.Longitude > 180 {
			t.Fatalf("step %d: longitude %f out of range", i, fix.Longitude)
		}
	}
}

func TestSimulatedProvider_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewSimulatedProvider(0, 0, 1)
	if _, err := p.Current(ctx); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
