package input

import (
	"math"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

const (
	// DefaultPressure is used when nothing better is known.
	DefaultPressure = 0.5
	// TouchPressure is the constant pressure given to touch input.
	TouchPressure = 0.6
	// TapPressure is the pressure of a mouse release that follows the press
	// within TapWindowMs.
	TapPressure = 0.8
	TapWindowMs = 50

	minPenPressure = 0.1
	maxPenPressure = 0.98

	// Mouse speeds in canvas units per millisecond. At or below slowSpeed
	// the synthetic pressure is at its ceiling, at or above fastSpeed at its
	// floor.
	slowSpeed     = 0.12
	fastSpeed     = 1.9
	speedCeiling  = 0.9
	speedFloor    = 0.1
	nominalFrame  = 16
	previousBlend = 0.4
)

// PenPressure passes hardware pressure through a gentle response curve and
// keeps it away from both 0 and 1. Pens that report 0 get DefaultPressure.
func PenPressure(p float64) float64 {
	if p <= 0 || math.IsNaN(p) {
		return DefaultPressure
	}
	return math.Max(minPenPressure, math.Min(maxPenPressure, math.Pow(p, 0.6)))
}

// SpeedPressure maps a pointer speed to a synthetic pressure: slow motion
// gives heavy ink and fast motion light ink. It never increases with speed.
func SpeedPressure(speed float64) float64 {
	switch {
	case speed <= slowSpeed || math.IsNaN(speed):
		return speedCeiling
	case speed >= fastSpeed:
		return speedFloor
	}
	u := (speed - slowSpeed) / (fastSpeed - slowSpeed)
	return speedCeiling - u*u*(speedCeiling-speedFloor)
}

// Pressure assigns a pressure to each sample of one stroke.
type Pressure struct {
	device state.Device
	prev   float64
	last   geom.Point
	start  int64
	lastT  int64
	n      int
}

// NewPressure starts the pressure model for a stroke made with d.
func NewPressure(d state.Device) *Pressure {
	return &Pressure{device: d, prev: DefaultPressure}
}

// Next returns the pressure for a sample at pos and time t. reported is
// what the device itself claims.
func (m *Pressure) Next(pos geom.Point, reported float64, t int64) float64 {
	var p float64
	switch m.device {
	case state.DevicePen:
		p = PenPressure(reported)
	case state.DeviceTouch:
		p = TouchPressure
	default:
		p = m.mouse(pos, t)
	}
	if m.n == 0 {
		m.start = t
	}
	m.n++
	m.prev, m.last, m.lastT = p, pos, t
	return p
}

// Final returns the pressure of the release sample. A quick mouse click
// inks a heavier dot.
func (m *Pressure) Final(pos geom.Point, reported float64, t int64) float64 {
	if m.Tap(t) {
		m.prev, m.last, m.lastT = TapPressure, pos, t
		m.n++
		return TapPressure
	}
	return m.Next(pos, reported, t)
}

// Tap reports whether a mouse release at t is quick enough after the press
// to count as a tap.
func (m *Pressure) Tap(t int64) bool {
	return m.device == state.DeviceMouse && m.n > 0 && t >= m.start && t-m.start < TapWindowMs
}

func (m *Pressure) mouse(pos geom.Point, t int64) float64 {
	if m.n == 0 {
		return DefaultPressure
	}
	dt := float64(t - m.lastT)
	if dt <= 0 {
		dt = nominalFrame
	}
	target := SpeedPressure(pos.Dist(m.last) / dt)
	return previousBlend*m.prev + (1-previousBlend)*target
}
