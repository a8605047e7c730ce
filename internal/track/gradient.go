package track

import (
	"image/color"
	"time"
)

// Gradient anchors for the recency color ramp. Oldest samples render cool,
// the newest renders hot, with yellow at the midpoint.
var (
	coolAnchor = [3]float64{0, 100, 255}
	midAnchor  = [3]float64{255, 255, 0}
	hotAnchor  = [3]float64{255, 0, 0}
)

// Alpha channels, integer-truncated: 0.6*255 and 0.3*255.
const (
	strokeAlpha uint8 = 153
	fillAlpha   uint8 = 76
)

// ColorFor maps a sample timestamp to a stroke/fill color pair on the
// cool-to-hot recency gradient spanned by [oldest, newest]. When the span is
// empty (a single sample, or all timestamps identical) the sample is treated
// as the hottest. Channel values are integer-truncated, never rounded, so
// identical inputs always produce identical colors.
func ColorFor(ts, oldest, newest time.Time) (stroke, fill color.NRGBA) {
	span := newest.Sub(oldest).Seconds()

	t := 1.0
	if span > 0 {
		t = ts.Sub(oldest).Seconds() / span
	}

	var rgb [3]float64
	if t < 0.5 {
		rgb = lerpRGB(coolAnchor, midAnchor, t*2)
	} else {
		rgb = lerpRGB(midAnchor, hotAnchor, (t-0.5)*2)
	}

	r, g, b := uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2])
	stroke = color.NRGBA{R: r, G: g, B: b, A: strokeAlpha}
	fill = color.NRGBA{R: r, G: g, B: b, A: fillAlpha}
	return stroke, fill
}

func lerpRGB(from, to [3]float64, ratio float64) [3]float64 {
	var out [3]float64
	for i := range out {
		out[i] = float64(int(from[i] + (to[i]-from[i])*ratio))
	}
	return out
}

// GradientMapper caches the time bounds of a sample set so a renderer can
// color each sample without re-scanning the set.
type GradientMapper struct {
	oldest time.Time
	newest time.Time
}

// NewGradientMapper computes the time bounds of the given samples.
func NewGradientMapper(samples []Sample) *GradientMapper {
	oldest, newest := TimeBounds(samples)
	return &GradientMapper{oldest: oldest, newest: newest}
}

// ColorFor returns the stroke and fill colors for one sample of the set.
func (m *GradientMapper) ColorFor(s Sample) (stroke, fill color.NRGBA) {
	return ColorFor(s.Timestamp, m.oldest, m.newest)
}
