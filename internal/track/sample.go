package track

import (
	"fmt"
	"time"
)

// Sample is a single recorded GPS fix. Samples are immutable once created:
// the only mutating operations on a track are appending one sample and
// removing all of them.
type Sample struct {
	ID        int64     `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`          // UTC, assigned at creation time
	Accuracy  *float64  `json:"accuracy,omitempty"` // meters; nil means unknown
}

// New creates a sample stamped with the current UTC time.
func New(lat, lon float64, accuracy *float64) Sample {
	return Sample{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: time.Now().UTC(),
		Accuracy:  accuracy,
	}
}

// Validate checks coordinate and accuracy ranges. The store does not enforce
// these, callers validate before appending.
func (s Sample) Validate() error {
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", s.Longitude)
	}
	if s.Accuracy != nil && *s.Accuracy < 0 {
		return fmt.Errorf("accuracy %f must be non-negative", *s.Accuracy)
	}
	return nil
}

// TimeBounds returns the oldest and newest timestamps in the set.
// Zero times are returned for an empty set.
func TimeBounds(samples []Sample) (oldest, newest time.Time) {
	for _, s := range samples {
		if oldest.IsZero() || s.Timestamp.Before(oldest) {
			oldest = s.Timestamp
		}
		if newest.IsZero() || s.Timestamp.After(newest) {
			newest = s.Timestamp
		}
	}
	return oldest, newest
}

// Summary is a reduction over a track: count, bounding box and centroid.
type Summary struct {
	Count                int
	MinLat, MaxLat       float64
	MinLon, MaxLon       float64
	CenterLat, CenterLon float64
	Oldest, Newest       time.Time
}

// Summarize computes track summary statistics in a single pass.
func Summarize(samples []Sample) Summary {
	var sum Summary
	if len(samples) == 0 {
		return sum
	}

	sum.Count = len(samples)
	sum.MinLat, sum.MaxLat = samples[0].Latitude, samples[0].Latitude
	sum.MinLon, sum.MaxLon = samples[0].Longitude, samples[0].Longitude

	var latSum, lonSum float64
	for _, s := range samples {
		latSum += s.Latitude
		lonSum += s.Longitude

		sum.MinLat = min(sum.MinLat, s.Latitude)
		sum.MaxLat = max(sum.MaxLat, s.Latitude)
		sum.MinLon = min(sum.MinLon, s.Longitude)
		sum.MaxLon = max(sum.MaxLon, s.Longitude)
	}

	sum.CenterLat = latSum / float64(len(samples))
	sum.CenterLon = lonSum / float64(len(samples))
	sum.Oldest, sum.Newest = TimeBounds(samples)
	return sum
}
