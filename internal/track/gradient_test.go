package track

import (
	"image/color"
	"testing"
	"time"
)

func TestColorFor_Anchors(t *testing.T) {
	oldest := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newest := oldest.Add(40 * time.Second)

	tests := []struct {
		name    string
		ts      time.Time
		wantRGB [3]uint8
	}{
		{"oldest maps to cool anchor", oldest, [3]uint8{0, 100, 255}},
		{"midpoint maps to mid anchor", oldest.Add(20 * time.Second), [3]uint8{255, 255, 0}},
		{"newest maps to hot anchor", newest, [3]uint8{255, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stroke, fill := ColorFor(tc.ts, oldest, newest)

			wantStroke := color.NRGBA{R: tc.wantRGB[0], G: tc.wantRGB[1], B: tc.wantRGB[2], A: 153}
			wantFill := color.NRGBA{R: tc.wantRGB[0], G: tc.wantRGB[1], B: tc.wantRGB[2], A: 76}

			if stroke != wantStroke {
				t.Errorf("stroke = %+v, want %+v", stroke, wantStroke)
			}
			if fill != wantFill {
				t.Errorf("fill = %+v, want %+v", fill, wantFill)
			}
		})
	}
}

func TestColorFor_EmptyRangeIsHottest(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Single sample and all-identical timestamps both collapse the range.
	stroke, fill := ColorFor(ts, ts, ts)

	want := color.NRGBA{R: 255, G: 0, B: 0, A: 153}
	if stroke != want {
		t.Errorf("stroke = %+v, want hot anchor %+v", stroke, want)
	}
	if fill.A != 76 {
		t.Errorf("fill alpha = %d, want 76", fill.A)
	}
	if fill.R != 255 || fill.G != 0 || fill.B != 0 {
		t.Errorf("fill RGB = (%d,%d,%d), want hot anchor (255,0,0)", fill.R, fill.G, fill.B)
	}
}

func TestColorFor_TruncatesChannels(t *testing.T) {
	oldest := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newest := oldest.Add(40 * time.Second)

	// t = 0.25, ratio = 0.5: halfway between cool and mid anchors.
	// R = 0 + 255*0.5 = 127.5, truncated to 127 (not rounded to 128).
	stroke, _ := ColorFor(oldest.Add(10*time.Second), oldest, newest)

	if stroke.R != 127 {
		t.Errorf("R = %d, want truncated 127", stroke.R)
	}
	if stroke.G != 177 { // 100 + 155*0.5 = 177.5
		t.Errorf("G = %d, want truncated 177", stroke.G)
	}
	if stroke.B != 127 { // 255 - 255*0.5 = 127.5
		t.Errorf("B = %d, want truncated 127", stroke.B)
	}
}

func TestColorFor_Deterministic(t *testing.T) {
	oldest := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newest := oldest.Add(time.Hour)
	ts := oldest.Add(17 * time.Minute)

	s1, f1 := ColorFor(ts, oldest, newest)
	s2, f2 := ColorFor(ts, oldest, newest)

	if s1 != s2 || f1 != f2 {
		t.Errorf("identical inputs produced different colors: (%+v,%+v) vs (%+v,%+v)", s1, f1, s2, f2)
	}
}

func TestGradientMapper_ThreeSampleScenario(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		{ID: 1, Timestamp: base},
		{ID: 2, Timestamp: base.Add(20 * time.Second)},
		{ID: 3, Timestamp: base.Add(40 * time.Second)},
	}

	m := NewGradientMapper(samples)

	want := [][3]uint8{
		{0, 100, 255},
		{255, 255, 0},
		{255, 0, 0},
	}

	for i, s := range samples {
		stroke, fill := m.ColorFor(s)
		if stroke.R != want[i][0] || stroke.G != want[i][1] || stroke.B != want[i][2] {
			t.Errorf("sample %d: stroke RGB = (%d,%d,%d), want (%d,%d,%d)",
				i, stroke.R, stroke.G, stroke.B, want[i][0], want[i][1], want[i][2])
		}
		if stroke.A != 153 {
			t.Errorf("sample %d: stroke alpha = %d, want 153", i, stroke.A)
		}
		if fill.A != 76 {
			t.Errorf("sample %d: fill alpha = %d, want 76", i, fill.A)
		}
	}
}
