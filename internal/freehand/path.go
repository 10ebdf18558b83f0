package freehand

import (
	"math"

	"honnef.co/go/curve"

	"InkBoard/internal/geom"
)

// FlattenTolerance is the accuracy used when turning a smoothed path back
// into a polygon.
const FlattenTolerance = 0.1

// Path smooths an outline polygon into a closed Bézier path: a quadratic
// curve through each vertex ending at the midpoint to the next one.
func Path(outline []geom.Point) curve.BezPath {
	var p curve.BezPath
	switch n := len(outline); {
	case n == 0:
		return p
	case n < 3:
		p.MoveTo(pt(outline[0]))
		p.LineTo(pt(outline[n-1]))
	default:
		p.MoveTo(pt(outline[0]))
		for i := 1; i < n-1; i++ {
			mid := outline[i].Lerp(outline[i+1], 0.5)
			p.QuadTo(pt(outline[i]), pt(mid))
		}
		p.LineTo(pt(outline[n-1]))
	}
	p.ClosePath()
	return p
}

// Flatten converts the first subpath of p into a polygon. Quadratic
// segments are split into enough lines to stay within tolerance.
func Flatten(p curve.BezPath, tolerance float64) []geom.Point {
	var out []geom.Point
	var pen geom.Point
	for el := range p.PathElements(tolerance) {
		switch el.Kind {
		case curve.MoveToKind:
			if len(out) > 0 {
				return out
			}
			pen = gpt(el.P0)
			out = append(out, pen)
		case curve.LineToKind:
			pen = gpt(el.P0)
			out = append(out, pen)
		case curve.QuadToKind:
			ctrl, end := gpt(el.P0), gpt(el.P1)
			n := quadSegments(pen, ctrl, end, tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				out = append(out, pen.Lerp(ctrl, t).Lerp(ctrl.Lerp(end, t), t))
			}
			pen = end
		case curve.ClosePathKind:
			return out
		}
	}
	return out
}

// quadSegments is Wang's bound on the number of lines needed to draw the
// quadratic p0 p1 p2 within tolerance.
func quadSegments(p0, p1, p2 geom.Point, tolerance float64) int {
	if tolerance <= 0 {
		tolerance = FlattenTolerance
	}
	m := p0.Sub(p1.Mul(2)).Add(p2).Len()
	return max(1, int(math.Ceil(math.Sqrt(m/(4*tolerance)))))
}

// Contains reports whether q is inside the filled path, using the
// non-zero rule.
func Contains(p curve.BezPath, q geom.Point) bool {
	return len(p) > 0 && p.Winding(pt(q)) != 0
}

func pt(p geom.Point) curve.Point  { return curve.Point{X: p.X, Y: p.Y} }
func gpt(p curve.Point) geom.Point { return geom.Point{X: p.X, Y: p.Y} }
