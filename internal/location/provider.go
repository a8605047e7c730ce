// Package location defines the location provider contract and its
// implementations: a serial NMEA GPS receiver, the Google Geolocation API
// and a simulated walk for demos and tests.
package location

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported is returned when the host has no usable location source.
	ErrUnsupported = errors.New("location: not supported on this host")

	// ErrDisabled is returned when the location source exists but currently
	// provides no fix (receiver has no satellite lock, service switched off).
	ErrDisabled = errors.New("location: source disabled or no fix")

	// ErrPermissionDenied is returned when the source refuses access.
	ErrPermissionDenied = errors.New("location: permission denied")

	// ErrTimeout is returned when no fix arrived within the caller's deadline.
	ErrTimeout = errors.New("location: timed out waiting for fix")
)

// Fix is a single position report from a provider.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64 // meters; nil when the source does not report it
}

// Provider produces the current device position. Implementations must honor
// context cancellation and deadlines; a request that outlives its deadline
// returns ErrTimeout (possibly wrapped).
type Provider interface {
	Current(ctx context.Context) (Fix, error)
}
