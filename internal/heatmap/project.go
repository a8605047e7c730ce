package heatmap

import (
	"image"
	"math"

	"github.com/mkrutov/heattrack/internal/track"
)

// mercator projects a coordinate onto the Web Mercator plane, normalized to
// [0,1] on both axes. Latitude is clamped to the projection's usable range.
func mercator(lat, lon float64) (x, y float64) {
	lat = min(max(lat, -85.05112878), 85.05112878)

	x = (lon + 180) / 360
	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return x, y
}

// viewport maps projected coordinates into a pixel area, preserving aspect
// ratio and centering the track.
type viewport struct {
	minX, minY float64
	scale      float64
	offset     image.Point
}

// fitViewport computes a viewport that fits every sample inside the area,
// leaving padding pixels on each side.
func fitViewport(samples []track.Sample, area image.Rectangle, padding int) viewport {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64

	for _, s := range samples {
		x, y := mercator(s.Latitude, s.Longitude)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}

	usableW := float64(area.Dx() - 2*padding)
	usableH := float64(area.Dy() - 2*padding)

	spanX := maxX - minX
	spanY := maxY - minY

	// A single point (or a degenerate track) has no span; any positive scale
	// centers it.
	scale := 1.0
	if spanX > 0 || spanY > 0 {
		scale = math.MaxFloat64
		if spanX > 0 {
			scale = usableW / spanX
		}
		if spanY > 0 {
			scale = min(scale, usableH/spanY)
		}
	}

	// Center the track within the usable area.
	offsetX := area.Min.X + padding + int((usableW-spanX*scale)/2)
	offsetY := area.Min.Y + padding + int((usableH-spanY*scale)/2)

	return viewport{
		minX:   minX,
		minY:   minY,
		scale:  scale,
		offset: image.Pt(offsetX, offsetY),
	}
}

// pixel converts a sample position to image coordinates.
func (v viewport) pixel(s track.Sample) image.Point {
	x, y := mercator(s.Latitude, s.Longitude)
	return image.Pt(
		v.offset.X+int((x-v.minX)*v.scale),
		v.offset.Y+int((y-v.minY)*v.scale),
	)
}
