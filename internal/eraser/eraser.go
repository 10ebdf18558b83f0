// Package eraser decides which committed strokes an eraser touches.
//
// Erasing is two-phase. While the eraser is dragged, touched strokes are
// collected in a Session as pending removals. When the drag ends the
// session is committed to the store as a single bulk removal, or dropped
// if the drag was cancelled.
package eraser

import (
	"math"

	"InkBoard/internal/freehand"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Source is the read side of a stroke store.
type Source interface {
	Strokes() []*state.Stroke
	Bounds(id state.ID) (geom.Rect, error)
}

// Engine holds the hit-testing parameters.
type Engine struct {
	// Samples is the number of points tested along each outline.
	Samples int
	// RingPoints are spread on a circle of RingFraction*radius around the
	// eraser center and tested with RingTolerance*radius.
	RingPoints    int
	RingFraction  float64
	RingTolerance float64
}

// DefaultEngine returns the engine used by the board.
func DefaultEngine() *Engine {
	return &Engine{
		Samples:       48,
		RingPoints:    4,
		RingFraction:  0.7,
		RingTolerance: 0.3,
	}
}

// Evaluate tests every stroke not yet pending in sess against an eraser of
// the given radius at center, marks the ones it touches and returns them.
func (e *Engine) Evaluate(src Source, sess *Session, center geom.Point, radius float64) []state.ID {
	if !center.IsFinite() || radius <= 0 {
		return nil
	}
	var hit []state.ID
	for _, s := range src.Strokes() {
		if sess.Has(s.ID) {
			continue
		}
		b, err := src.Bounds(s.ID)
		if err != nil {
			continue
		}
		if !b.Pad(radius).Contains(center) {
			continue
		}
		if e.Hits(s, b, center, radius) {
			sess.Mark(s.ID)
			hit = append(hit, s.ID)
		}
	}
	return hit
}

// Hits reports whether an eraser at center touches s, whose outline bounds
// are b. Sampled outline points are checked first. The exact distance to
// the outline is then checked whenever the center is within tolerance of
// the bounds, so ink the eraser covers between two samples is never
// missed.
func (e *Engine) Hits(s *state.Stroke, b geom.Rect, center geom.Point, radius float64) bool {
	outline := s.Outline
	tolerance := radius + s.Width/2
	samples := geom.SamplePolyline(outline, e.Samples, true)
	for _, p := range samples {
		if p.Dist(center) <= tolerance {
			return true
		}
	}
	for i := 0; i < e.RingPoints; i++ {
		a := 2 * math.Pi * float64(i) / float64(e.RingPoints)
		q := geom.Pt(center.X+math.Cos(a)*radius*e.RingFraction, center.Y+math.Sin(a)*radius*e.RingFraction)
		for _, p := range samples {
			if p.Dist(q) <= radius*e.RingTolerance {
				return true
			}
		}
	}
	if b.Pad(tolerance).Contains(center) && geom.PolylineDist(center, outline, true) <= tolerance {
		return true
	}
	if !b.Contains(center) {
		return false
	}
	return freehand.Contains(freehand.Path(outline), center) || geom.Winding(center, outline) != 0
}
