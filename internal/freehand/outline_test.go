package freehand

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

func line(x0, y0, x1, y1 float64, n int, pressure float64) []state.RawPoint {
	pts := make([]state.RawPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, state.RawPoint{
			X:           x0 + (x1-x0)*t,
			Y:           y0 + (y1-y0)*t,
			Pressure:    pressure,
			TimestampMs: int64(i * 8),
		})
	}
	return pts
}

func flatOptions(size float64) Options {
	return Options{
		Size:       size,
		Thinning:   0.5,
		Smoothing:  0.5,
		Streamline: 0.5,
		Easing:     Linear,
		CapStart:   true,
		CapEnd:     true,
		Last:       true,
	}
}

func TestOutlineHorizontalLine(t *testing.T) {
	out, err := Outline(line(0, 0, 100, 0, 100, 0.5), flatOptions(4))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 3)

	b := geom.Bounds(out)
	assert.InDelta(t, 4, b.Height(), 1)
	assert.InDelta(t, 100, b.Width(), 6)
}

func TestPresetLineIsAsThickAsItsWidth(t *testing.T) {
	for _, d := range []state.Device{state.DeviceMouse, state.DevicePen, state.DeviceTouch} {
		t.Run(d.String(), func(t *testing.T) {
			o := Preset(d, 4)
			o.Last = true
			out := SafeOutline(line(0, 0, 100, 0, 100, 0.5), o)
			require.GreaterOrEqual(t, len(out), 3)

			b := geom.Bounds(out)
			assert.InDelta(t, 4, b.Height(), 0.5)
			assert.InDelta(t, 100, b.Width(), 6)
		})
	}
}

func TestOutlineTaperedStaysWithinWidth(t *testing.T) {
	o := flatOptions(4)
	o.StartTaper, o.EndTaper = 0.2, 0.3
	out, err := Outline(line(0, 0, 100, 0, 100, 0.5), o)
	require.NoError(t, err)

	b := geom.Bounds(out)
	assert.LessOrEqual(t, b.Height(), 4.5)
	assert.InDelta(t, 100, b.Width(), 6)
}

func TestOutlineNeverEmpty(t *testing.T) {
	inputs := map[string][]state.RawPoint{
		"tap":        {{X: 10, Y: 10, Pressure: 0.5}},
		"duplicates": {{X: 10, Y: 10, Pressure: 0.5}, {X: 10, Y: 10, Pressure: 0.5}, {X: 10.01, Y: 10, Pressure: 0.5}},
		"two":        {{X: 0, Y: 0, Pressure: 0.5}, {X: 30, Y: 0, Pressure: 0.5}},
		"short":      line(0, 0, 1, 1, 5, 0.5),
		"zigzag":     {{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 1}, {X: 20, Y: 2}, {X: 0, Y: 3}},
		"long":       line(0, 0, 300, 200, 60, 0.3),
	}
	for _, d := range []state.Device{state.DeviceMouse, state.DevicePen, state.DeviceTouch} {
		for name, raw := range inputs {
			t.Run(d.String()+"/"+name, func(t *testing.T) {
				o := Preset(d, 5)
				o.Last = true
				out := SafeOutline(raw, o)
				require.GreaterOrEqual(t, len(out), 3)
				assert.True(t, geom.Finite(out))
				assert.Positive(t, geom.Bounds(out).Area())
			})
		}
	}
}

func TestTapIsRoundDot(t *testing.T) {
	p := state.RawPoint{X: 50, Y: 40, Pressure: 0.5}
	out, err := Outline([]state.RawPoint{p}, Preset(state.DeviceMouse, 6))
	require.NoError(t, err)
	require.Len(t, out, dotSegments)
	c := geom.Pt(50, 40)
	r := out[0].Dist(c)
	for _, v := range out {
		assert.InDelta(t, r, v.Dist(c), 1e-9)
	}
	assert.GreaterOrEqual(t, r, 0.5)
}

func TestOutlineEmptyInput(t *testing.T) {
	_, err := Outline(nil, Default(4))
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.Nil(t, SafeOutline(nil, Default(4)))
}

func TestSafeOutlineFallsBackOnBadOptions(t *testing.T) {
	raw := line(0, 0, 50, 0, 20, 0.5)
	o := Default(4)
	o.Easing = func(float64) float64 { return math.NaN() }
	out := SafeOutline(raw, o)
	require.GreaterOrEqual(t, len(out), 3)
	assert.True(t, geom.Finite(out))
	b := geom.Bounds(out)
	assert.InDelta(t, 54, b.Width(), 0.5)
}

func TestSafeOutlineRecoversPanics(t *testing.T) {
	o := Default(4)
	o.Easing = func(float64) float64 { panic("boom") }
	out := SafeOutline(line(0, 0, 40, 0, 10, 0.5), o)
	assert.GreaterOrEqual(t, len(out), 3)
}

func TestDedupe(t *testing.T) {
	raw := []state.RawPoint{
		{X: 0, Y: 0},
		{X: 0.05, Y: 0},
		{X: math.NaN(), Y: 1},
		{X: 1, Y: 0},
		{X: 1, Y: math.Inf(1)},
		{X: 1, Y: 0},
	}
	got := Dedupe(raw)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[1].X)
}

func TestBuilderMatchesBatch(t *testing.T) {
	raw := append(line(0, 0, 80, 40, 30, 0.4), line(80, 40, 10, 90, 30, 0.7)...)
	for _, last := range []bool{false, true} {
		o := Preset(state.DevicePen, 5)
		o.Last = last
		b := NewBuilder(o)
		for i, p := range raw {
			b.Add(p)
			if i < 2 {
				continue
			}
			want, err := Outline(raw[:i+1], o)
			require.NoError(t, err)
			assert.Equal(t, want, b.Outline(), "after %d samples", i+1)
		}
	}
}

func TestBuilderFinishUsesFinalSample(t *testing.T) {
	raw := line(0, 0, 60, 0, 30, 0.5)
	b := NewBuilder(flatOptions(4))
	for _, p := range raw {
		b.Add(p)
	}
	pts := b.Points()
	assert.Equal(t, geom.Pt(60, 0), pts[len(pts)-1].Point)
	assert.GreaterOrEqual(t, len(b.Finish()), 3)
	assert.False(t, b.Add(raw[len(raw)-1]))
}

func TestRadius(t *testing.T) {
	assert.InDelta(t, 2, Radius(4, 0.5, 0.5, Linear), 1e-12)
	assert.InDelta(t, 2, Radius(4, 0, 0.9, Linear), 1e-12)
	assert.Greater(t, Radius(4, 0.7, 0.9, Linear), Radius(4, 0.7, 0.1, Linear))

	for name, e := range map[string]Easing{"quad": EaseInQuad, "gentle": Gentle, "cubic": EaseOutCubic} {
		assert.InDelta(t, 2, Radius(4, 0.7, 0.5, e), 1e-12, name)
		assert.Greater(t, Radius(4, 0.7, 0.9, e), Radius(4, 0.7, 0.1, e), name)
	}
}
