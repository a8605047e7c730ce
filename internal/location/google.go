package location

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleProvider resolves the device position through the Google Maps
// Geolocation API using the caller's public IP. It is the fallback for hosts
// without a GPS receiver.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider backed by the Geolocation API.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &GoogleProvider{client: c}, nil
}

// Current requests a geolocation estimate. The API reports its own accuracy
// radius, which is carried through on the fix.
func (p *GoogleProvider) Current(ctx context.Context) (Fix, error) {
	resp, err := p.client.Geolocate(ctx, &maps.GeolocationRequest{ConsiderIP: true})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Fix{}, ErrTimeout
		}
		return Fix{}, fmt.Errorf("geolocation request: %w", err)
	}

	accuracy := resp.Accuracy
	return Fix{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  &accuracy,
	}, nil
}
