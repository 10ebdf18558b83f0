package freehand

import (
	"errors"
	"fmt"
	"math"

	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// ErrDegenerate is returned when an outline could not be built from the
// input.
var ErrDegenerate = errors.New("degenerate outline")

const (
	// pressureRate limits how quickly simulated pressure can change.
	pressureRate = 0.275
	// fixedPI is slightly more than pi so rotated cap points do not land
	// exactly on their start.
	fixedPI = math.Pi + 0.0001
	// endSkip is how close to the end a point has to be before it is
	// left out of the outline. The final point is always kept.
	endSkip = 3

	minRadius   = 0.01
	dotSegments = 16
)

// Outline streamlines raw and returns the closed outline polygon. A path
// with a single distinct point becomes a round dot.
func Outline(raw []state.RawPoint, o Options) ([]geom.Point, error) {
	raw = Dedupe(raw)
	switch len(raw) {
	case 0:
		return nil, fmt.Errorf("empty input: %w", ErrDegenerate)
	case 1:
		return Dot(raw[0], o), nil
	}
	if length(raw) < o.Size/2 {
		// Too short to taper: draw it as a dot stretched over its span.
		return geom.Capsule(raw[0].Pos(), raw[len(raw)-1].Pos(), dotRadius(raw[0], o), dotSegments/2), nil
	}
	return OutlineFromPoints(StrokePoints(raw, o), o)
}

// Dot returns a small round outline centered on p.
func Dot(p state.RawPoint, o Options) []geom.Point {
	return geom.Circle(p.Pos(), dotRadius(p, o), dotSegments)
}

func dotRadius(p state.RawPoint, o Options) float64 {
	r := Radius(o.Size, o.Thinning, clampPressure(p.Pressure), o.easing())
	return math.Max(r, math.Max(o.Size/4, 0.5))
}

func length(raw []state.RawPoint) float64 {
	var l float64
	for i := 1; i < len(raw); i++ {
		l += raw[i].Pos().Dist(raw[i-1].Pos())
	}
	return l
}

// OutlineFromPoints offsets streamlined points into a closed polygon.
func OutlineFromPoints(points []StrokePoint, o Options) ([]geom.Point, error) {
	if len(points) == 0 || o.Size <= 0 {
		return nil, ErrDegenerate
	}
	easing := o.easing()
	n := len(points)
	totalLength := points[n-1].RunningLength
	taperStart := o.StartTaper * totalLength
	taperEnd := o.EndTaper * totalLength
	minDistance := math.Pow(o.Size*o.Smoothing, 2)

	prevPressure := points[0].Pressure
	for _, p := range points[:min(10, n)] {
		pressure := p.Pressure
		if o.SimulatePressure {
			pressure = simulated(prevPressure, p.Distance, o.Size)
		}
		prevPressure = (prevPressure + pressure) / 2
	}

	radius := Radius(o.Size, o.Thinning, points[n-1].Pressure, easing)
	firstRadius := math.NaN()
	prevVector := points[0].Vector
	pl, pr := points[0].Point, points[0].Point
	tl, tr := pl, pr
	prevSharp := false

	var left, right []geom.Point
	for i, p := range points {
		pressure := p.Pressure
		if i < n-1 && totalLength-p.RunningLength < endSkip {
			continue
		}

		if o.Thinning != 0 {
			if o.SimulatePressure {
				pressure = simulated(prevPressure, p.Distance, o.Size)
			}
			radius = Radius(o.Size, o.Thinning, pressure, easing)
		} else {
			radius = o.Size / 2
		}
		if math.IsNaN(firstRadius) {
			firstRadius = radius
		}

		ts, te := 1.0, 1.0
		if p.RunningLength < taperStart {
			ts = o.startEasing()(p.RunningLength / taperStart)
		}
		if totalLength-p.RunningLength < taperEnd {
			te = o.endEasing()((totalLength - p.RunningLength) / taperEnd)
		}
		radius = math.Max(minRadius, radius*math.Min(ts, te))

		nextVector := p.Vector
		nextDpr := 1.0
		if i < n-1 {
			nextVector = points[i+1].Vector
			nextDpr = p.Vector.Dot(nextVector)
		}
		prevDpr := p.Vector.Dot(prevVector)
		sharp := prevDpr < 0 && !prevSharp
		nextSharp := nextDpr < 0

		if sharp || nextSharp {
			// Wrap a half circle around the corner.
			offset := prevVector.Perp().Mul(radius)
			for k := 0; k <= 13; k++ {
				t := float64(k) / 13
				tl = p.Point.Sub(offset).RotateAround(p.Point, fixedPI*t)
				tr = p.Point.Add(offset).RotateAround(p.Point, -fixedPI*t)
				left = append(left, tl)
				right = append(right, tr)
			}
			pl, pr = tl, tr
			if nextSharp {
				prevSharp = true
			}
			continue
		}
		prevSharp = false

		if i == n-1 {
			offset := p.Vector.Perp().Mul(radius)
			left = append(left, p.Point.Sub(offset))
			right = append(right, p.Point.Add(offset))
			continue
		}

		offset := nextVector.Lerp(p.Vector, nextDpr).Perp().Mul(radius)
		tl = p.Point.Sub(offset)
		if i <= 1 || pl.Dist2(tl) > minDistance {
			left = append(left, tl)
			pl = tl
		}
		tr = p.Point.Add(offset)
		if i <= 1 || pr.Dist2(tr) > minDistance {
			right = append(right, tr)
			pr = tr
		}
		prevPressure = pressure
		prevVector = p.Vector
	}

	firstPoint := points[0].Point
	lastPoint := firstPoint.Add(geom.Pt(1, 1))
	if n > 1 {
		lastPoint = points[n-1].Point
	}

	if n == 1 {
		if (taperStart == 0 && taperEnd == 0) || o.Last {
			r := firstRadius
			if math.IsNaN(r) {
				r = radius
			}
			start := firstPoint.Project(firstPoint.Sub(lastPoint).Perp().Unit(), -r)
			dot := make([]geom.Point, 0, 13)
			for k := 1; k <= 13; k++ {
				dot = append(dot, start.RotateAround(firstPoint, fixedPI*2*float64(k)/13))
			}
			return dot, nil
		}
		return nil, fmt.Errorf("single tapered point: %w", ErrDegenerate)
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, fmt.Errorf("no offset points: %w", ErrDegenerate)
	}

	var startCap, endCap []geom.Point
	switch {
	case taperStart > 0:
	case o.CapStart:
		for k := 1; k <= 13; k++ {
			startCap = append(startCap, right[0].RotateAround(firstPoint, fixedPI*float64(k)/13))
		}
	default:
		corners := left[0].Sub(right[0])
		a, b := corners.Mul(0.5), corners.Mul(0.51)
		startCap = append(startCap, firstPoint.Sub(a), firstPoint.Sub(b), firstPoint.Add(b), firstPoint.Add(a))
	}

	direction := points[n-1].Vector.Neg().Perp()
	switch {
	case taperEnd > 0:
		endCap = append(endCap, lastPoint)
	case o.CapEnd:
		start := lastPoint.Project(direction, radius)
		for k := 1; k < 29; k++ {
			endCap = append(endCap, start.RotateAround(lastPoint, fixedPI*3*float64(k)/29))
		}
	default:
		endCap = append(endCap,
			lastPoint.Add(direction.Mul(radius)),
			lastPoint.Add(direction.Mul(radius*0.99)),
			lastPoint.Sub(direction.Mul(radius*0.99)),
			lastPoint.Sub(direction.Mul(radius)),
		)
	}

	out := make([]geom.Point, 0, len(left)+len(endCap)+len(right)+len(startCap))
	out = append(out, left...)
	out = append(out, endCap...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	out = append(out, startCap...)
	return out, nil
}

func simulated(prev, distance, size float64) float64 {
	sp := math.Min(1, distance/size)
	rp := math.Min(1, 1-sp)
	return math.Min(1, prev+(rp-prev)*(sp*pressureRate))
}

// SafeOutline never fails: anything the smoother cannot shape, including
// a panic inside it, falls back to a capsule from the first to the last
// sample.
func SafeOutline(raw []state.RawPoint, o Options) (out []geom.Point) {
	clean := Dedupe(raw)
	if len(clean) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			out = Fallback(clean, o)
		}
	}()
	out, err := Outline(clean, o)
	if err != nil || len(out) < 3 || !geom.Finite(out) {
		return Fallback(clean, o)
	}
	return out
}

// Fallback returns a plain capsule spanning the samples.
func Fallback(raw []state.RawPoint, o Options) []geom.Point {
	a, b := raw[0], raw[len(raw)-1]
	r := math.Max(o.Size/2, 0.5)
	return geom.Capsule(a.Pos(), b.Pos(), r, 8)
}
