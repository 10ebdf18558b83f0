package freehand

import (
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// SameEpsilon is the distance under which two consecutive samples count
// as the same point.
const SameEpsilon = 0.1

// StrokePoint is a streamlined centerline point.
type StrokePoint struct {
	Point    geom.Point
	Pressure float64
	// Vector is the unit direction from this point back to the previous one.
	Vector        geom.Point
	Distance      float64
	RunningLength float64
}

// Dedupe drops samples that repeat the previous position within
// SameEpsilon, as well as samples with non-finite coordinates.
func Dedupe(raw []state.RawPoint) []state.RawPoint {
	out := make([]state.RawPoint, 0, len(raw))
	for _, p := range raw {
		if !p.Pos().IsFinite() {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Pos().Near(p.Pos(), SameEpsilon) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// streamliner folds samples into StrokePoints one at a time.
type streamliner struct {
	t       float64
	minLen  float64
	first   geom.Point
	pts     []StrokePoint
	reached bool
}

func newStreamliner(first state.RawPoint, o Options) *streamliner {
	return &streamliner{
		t:      0.15 + (1-o.Streamline)*0.85,
		minLen: o.Size,
		first:  first.Pos(),
		pts: []StrokePoint{{
			Point:    first.Pos(),
			Pressure: clampPressure(first.Pressure),
			Vector:   geom.Pt(1, 1),
		}},
	}
}

// next computes the point that sample p would add without changing s.
// Points closer than the stroke size to the start are held back until the
// stroke has moved far enough, except for the final sample.
func (s *streamliner) next(p state.RawPoint, last, exact bool) (StrokePoint, bool) {
	prev := s.pts[len(s.pts)-1]
	pt := prev.Point.Lerp(p.Pos(), s.t)
	if exact {
		pt = p.Pos()
	}
	if pt == prev.Point {
		return StrokePoint{}, false
	}
	if !last && !s.reached && pt.Dist(s.first) < s.minLen {
		return StrokePoint{}, false
	}
	d := pt.Dist(prev.Point)
	return StrokePoint{
		Point:         pt,
		Pressure:      clampPressure(p.Pressure),
		Vector:        prev.Point.Sub(pt).Unit(),
		Distance:      d,
		RunningLength: prev.RunningLength + d,
	}, true
}

func (s *streamliner) push(p state.RawPoint, last, exact bool) {
	sp, ok := s.next(p, last, exact)
	if !ok {
		return
	}
	if !last {
		s.reached = true
	}
	s.pts = append(s.pts, sp)
}

// result returns the folded points with the first vector fixed up.
func (s *streamliner) result(tail ...StrokePoint) []StrokePoint {
	out := make([]StrokePoint, 0, len(s.pts)+len(tail))
	out = append(out, s.pts...)
	out = append(out, tail...)
	if len(out) > 1 {
		out[0].Vector = out[1].Vector
	} else {
		out[0].Vector = geom.Point{}
	}
	return out
}

// StrokePoints streamlines raw samples into centerline points. The input
// should already be deduplicated.
func StrokePoints(raw []state.RawPoint, o Options) []StrokePoint {
	pts := expandShort(raw)
	if len(pts) == 0 {
		return nil
	}
	s := newStreamliner(pts[0], o)
	max := len(pts) - 1
	for i := 1; i <= max; i++ {
		last := i == max
		s.push(pts[i], last, last && o.Last)
	}
	return s.result()
}

// expandShort pads one and two sample inputs so the smoother has a
// direction to work with.
func expandShort(raw []state.RawPoint) []state.RawPoint {
	switch len(raw) {
	case 1:
		p := raw[0]
		q := p
		q.X++
		q.Y++
		return []state.RawPoint{p, q}
	case 2:
		a, b := raw[0], raw[1]
		out := []state.RawPoint{a}
		for i := 1; i <= 4; i++ {
			t := float64(i) / 4
			out = append(out, state.RawPoint{
				X:           a.X + (b.X-a.X)*t,
				Y:           a.Y + (b.Y-a.Y)*t,
				Pressure:    a.Pressure + (b.Pressure-a.Pressure)*t,
				TimestampMs: a.TimestampMs + int64(float64(b.TimestampMs-a.TimestampMs)*t),
			})
		}
		return out
	}
	return raw
}

func clampPressure(p float64) float64 {
	if p < 0 || p != p {
		return 0.5
	}
	if p > 1 {
		return 1
	}
	return p
}
