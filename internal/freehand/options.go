// Package freehand turns pointer samples into the filled outline of a
// variable-width ink stroke.
//
// The model streamlines the input toward a running average, derives a
// radius per point from pressure and the thinning factor, tapers both ends
// and offsets the centerline to the left and right. The two offset curves
// are stitched together with caps into one closed polygon.
package freehand

import (
	"math"

	"InkBoard/internal/state"
)

// Easing maps [0,1] onto [0,1].
type Easing func(t float64) float64

func Linear(t float64) float64     { return t }
func EaseInQuad(t float64) float64 { return t * t }

// EaseOutQuad is the default start taper easing.
func EaseOutQuad(t float64) float64 { return t * (2 - t) }

// EaseOutCubic is the default end taper easing.
func EaseOutCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

// Gentle is the response curve used for hardware pressure.
func Gentle(t float64) float64 { return math.Pow(math.Max(t, 0), 0.6) }

// Options controls the shape of a stroke.
type Options struct {
	// Size is the base diameter of the stroke.
	Size float64
	// Thinning is how much pressure affects the width, in [-1, 1].
	// Zero gives a constant width.
	Thinning float64
	// Smoothing is the minimum spacing between outline vertices as a
	// fraction of Size.
	Smoothing float64
	// Streamline in [0, 1]; higher values follow the pointer more loosely.
	Streamline float64
	// Easing is the pressure response curve.
	Easing Easing
	// SimulatePressure derives pressure from point spacing and ignores the
	// pressure carried by the samples.
	SimulatePressure bool

	// StartTaper and EndTaper are the tapered fraction of the stroke
	// length at each end. Zero disables tapering at that end.
	StartTaper, EndTaper float64
	StartEasing          Easing
	EndEasing            Easing
	CapStart, CapEnd     bool

	// Last marks the input as complete, so the final sample is used as is
	// instead of being streamlined.
	Last bool
}

func (o Options) easing() Easing {
	if o.Easing == nil {
		return Linear
	}
	return o.Easing
}

func (o Options) startEasing() Easing {
	if o.StartEasing == nil {
		return EaseOutQuad
	}
	return o.StartEasing
}

func (o Options) endEasing() Easing {
	if o.EndEasing == nil {
		return EaseOutCubic
	}
	return o.EndEasing
}

// Default returns the baseline options for a stroke of the given width.
func Default(width float64) Options {
	return Options{
		Size:             width,
		Thinning:         0.5,
		Smoothing:        0.5,
		Streamline:       0.5,
		Easing:           EaseInQuad,
		SimulatePressure: true,
		StartTaper:       0.1,
		EndTaper:         0.25,
		CapStart:         true,
		CapEnd:           true,
	}
}

// Preset returns the options tuned for a pointer device. Pen input carries
// real pressure and gets a gentler curve. Mouse and touch pressure are
// synthesized before they reach the smoother, so they are used as is.
func Preset(d state.Device, width float64) Options {
	o := Default(width)
	switch d {
	case state.DevicePen:
		o.Thinning = 0.75
		o.Smoothing = 0.4
		o.Streamline = 0.35
		o.Easing = Gentle
		o.SimulatePressure = false
		o.StartTaper = 0.05
		o.EndTaper = 0.2
	case state.DeviceTouch:
		o.Thinning = 0.6
		o.Smoothing = 0.7
		o.Streamline = 0.6
		o.Easing = Linear
		o.SimulatePressure = false
	default:
		o.Thinning = 0.7
		o.SimulatePressure = false
	}
	return o
}

// Radius returns the half-width of the stroke at the given pressure. The
// response curve is scaled so that pressure 0.5 always gives Size/2,
// whatever the easing and thinning.
func Radius(size, thinning, pressure float64, easing Easing) float64 {
	if easing == nil {
		easing = Linear
	}
	r := size / 2 * easing(0.5-thinning*(0.5-pressure))
	if mid := easing(0.5); mid > 0 {
		return r / mid
	}
	return r
}
