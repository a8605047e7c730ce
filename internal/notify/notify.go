// Package notify fans recorded samples out to external consumers.
package notify

import (
	"context"

	"github.com/mkrutov/heattrack/internal/track"
)

// Sink receives each sample the tracker appends. Sink failures are reported
// to the tracker's logger and never interrupt recording.
type Sink interface {
	Publish(ctx context.Context, s track.Sample) error
	Close() error
}
