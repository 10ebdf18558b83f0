package freehand

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Builder accumulates samples of a stroke in progress. Streamlining is done
// once per sample as it arrives, so rebuilding the outline after each new
// sample only costs the offset pass.
type Builder struct {
	opts Options
	raw  []state.RawPoint
	s    *streamliner
}

// NewBuilder starts an empty stroke.
func NewBuilder(o Options) *Builder {
	return &Builder{opts: o}
}

// Options returns the options the builder was created with.
func (b *Builder) Options() Options { return b.opts }

// Add appends a sample. It returns false when the sample was dropped for
// repeating the previous position or for non-finite coordinates.
func (b *Builder) Add(p state.RawPoint) bool {
	if !p.Pos().IsFinite() {
		return false
	}
	if n := len(b.raw); n > 0 && b.raw[n-1].Pos().Near(p.Pos(), SameEpsilon) {
		return false
	}
	b.raw = append(b.raw, p)
	switch n := len(b.raw); {
	case n == 1:
		b.s = newStreamliner(p, b.opts)
	case n >= 3:
		// The previous sample is no longer the last one.
		b.s.push(b.raw[n-2], false, false)
	}
	return true
}

// Len returns the number of samples kept.
func (b *Builder) Len() int { return len(b.raw) }

// Last returns the most recent sample.
func (b *Builder) Last() (state.RawPoint, bool) {
	if len(b.raw) == 0 {
		return state.RawPoint{}, false
	}
	return b.raw[len(b.raw)-1], true
}

// Samples returns a copy of the samples kept.
func (b *Builder) Samples() []state.RawPoint {
	return append([]state.RawPoint(nil), b.raw...)
}

// Points returns the streamlined centerline for the samples so far.
func (b *Builder) Points() []StrokePoint {
	if len(b.raw) < 3 {
		return StrokePoints(b.raw, b.opts)
	}
	tail, ok := b.s.next(b.raw[len(b.raw)-1], true, b.opts.Last)
	if !ok {
		return b.s.result()
	}
	return b.s.result(tail)
}

// Outline returns the outline of the samples so far, falling back to a
// simpler shape when the smoother cannot produce one.
func (b *Builder) Outline() []geom.Point {
	switch {
	case len(b.raw) == 0:
		return nil
	case len(b.raw) < 3 || length(b.raw) < b.opts.Size/2:
		return SafeOutline(b.raw, b.opts)
	}
	out, err := OutlineFromPoints(b.Points(), b.opts)
	if err != nil || len(out) < 3 || !geom.Finite(out) {
		return Fallback(b.raw, b.opts)
	}
	return out
}

// Finish marks the input complete and returns the final outline.
func (b *Builder) Finish() []geom.Point {
	b.opts.Last = true
	return b.Outline()
}
