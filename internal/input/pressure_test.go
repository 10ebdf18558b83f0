package input

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

func TestPenPressure(t *testing.T) {
	assert.Equal(t, DefaultPressure, PenPressure(0))
	assert.Equal(t, DefaultPressure, PenPressure(math.NaN()))
	assert.Equal(t, maxPenPressure, PenPressure(1))
	assert.Equal(t, minPenPressure, PenPressure(0.001))
	assert.InDelta(t, math.Pow(0.5, 0.6), PenPressure(0.5), 1e-12)
}

func TestSpeedPressureNeverIncreasesWithSpeed(t *testing.T) {
	prev := SpeedPressure(0)
	assert.Equal(t, speedCeiling, prev)
	for s := 0.0; s <= 3; s += 0.01 {
		p := SpeedPressure(s)
		assert.LessOrEqual(t, p, prev, "speed %v", s)
		assert.GreaterOrEqual(t, p, speedFloor)
		prev = p
	}
	assert.Equal(t, speedFloor, SpeedPressure(10))
}

func TestMousePressureBlendsWithPrevious(t *testing.T) {
	m := NewPressure(state.DeviceMouse)
	assert.Equal(t, DefaultPressure, m.Next(geom.Pt(0, 0), 0, 100))

	// 1 unit in 16ms is slow.
	got := m.Next(geom.Pt(1, 0), 0, 116)
	assert.InDelta(t, 0.4*DefaultPressure+0.6*speedCeiling, got, 1e-12)

	// 100 units in 10ms is fast.
	want := 0.4*got + 0.6*speedFloor
	assert.InDelta(t, want, m.Next(geom.Pt(101, 0), 0, 126), 1e-12)
}

func TestMousePressureWithoutElapsedTime(t *testing.T) {
	a := NewPressure(state.DeviceMouse)
	a.Next(geom.Pt(0, 0), 0, 0)
	b := NewPressure(state.DeviceMouse)
	b.Next(geom.Pt(0, 0), 0, 0)

	assert.Equal(t, a.Next(geom.Pt(10, 0), 0, 0), b.Next(geom.Pt(10, 0), 0, nominalFrame))
}

func TestTouchPressureIsConstant(t *testing.T) {
	m := NewPressure(state.DeviceTouch)
	for i := 0; i < 5; i++ {
		assert.Equal(t, TouchPressure, m.Next(geom.Pt(float64(i*40), 0), 0.1, int64(i)))
	}
}

func TestQuickClickIsHeavier(t *testing.T) {
	m := NewPressure(state.DeviceMouse)
	m.Next(geom.Pt(0, 0), 0, 1000)
	assert.Equal(t, TapPressure, m.Final(geom.Pt(0.5, 0), 0, 1020))

	slow := NewPressure(state.DeviceMouse)
	slow.Next(geom.Pt(0, 0), 0, 1000)
	assert.NotEqual(t, TapPressure, slow.Final(geom.Pt(0.5, 0), 0, 1200))

	pen := NewPressure(state.DevicePen)
	pen.Next(geom.Pt(0, 0), 0.3, 1000)
	assert.Equal(t, PenPressure(0.3), pen.Final(geom.Pt(0.5, 0), 0.3, 1010))
}

func TestTapWindow(t *testing.T) {
	m := NewPressure(state.DeviceMouse)
	assert.False(t, m.Tap(0), "no press yet")
	m.Next(geom.Pt(0, 0), 0, 1000)
	assert.True(t, m.Tap(1000))
	assert.True(t, m.Tap(1000+TapWindowMs-1))
	assert.False(t, m.Tap(1000+TapWindowMs))
	assert.False(t, m.Tap(990))

	touch := NewPressure(state.DeviceTouch)
	touch.Next(geom.Pt(0, 0), 0, 1000)
	assert.False(t, touch.Tap(1010))
}
