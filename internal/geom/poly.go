package geom

import "math"

// SegmentDist returns the distance from p to the segment ab.
func SegmentDist(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Mul(t)))
}

// PolylineDist returns the distance from p to the nearest point of poly.
// When closed is set the last vertex connects back to the first.
func PolylineDist(p Point, poly []Point, closed bool) float64 {
	switch len(poly) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Dist(poly[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(poly); i++ {
		best = math.Min(best, SegmentDist(p, poly[i-1], poly[i]))
	}
	if closed {
		best = math.Min(best, SegmentDist(p, poly[len(poly)-1], poly[0]))
	}
	return best
}

// PolylineLength returns the total length of poly.
func PolylineLength(poly []Point, closed bool) float64 {
	var l float64
	for i := 1; i < len(poly); i++ {
		l += poly[i].Dist(poly[i-1])
	}
	if closed && len(poly) > 1 {
		l += poly[0].Dist(poly[len(poly)-1])
	}
	return l
}

// SamplePolyline returns n points spread evenly by arc length along poly,
// starting at its first vertex. The count does not depend on the number
// of vertices.
func SamplePolyline(poly []Point, n int, closed bool) []Point {
	if len(poly) == 0 || n <= 0 {
		return nil
	}
	total := PolylineLength(poly, closed)
	if len(poly) == 1 || total == 0 {
		return []Point{poly[0]}
	}
	segs := len(poly) - 1
	if closed {
		segs++
	}
	step := total / float64(n)
	if !closed && n > 1 {
		step = total / float64(n-1)
	}
	out := make([]Point, 0, n)
	seg, walked := 0, 0.0
	for i := 0; i < n; i++ {
		target := step * float64(i)
		for seg < segs {
			a, b := poly[seg], poly[(seg+1)%len(poly)]
			l := a.Dist(b)
			if walked+l >= target || seg == segs-1 {
				t := 0.0
				if l > 0 {
					t = math.Min(1, (target-walked)/l)
				}
				out = append(out, a.Lerp(b, t))
				break
			}
			walked += l
			seg++
		}
	}
	return out
}

// Winding returns the winding number of poly around p.
func Winding(p Point, poly []Point) int {
	w := 0
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		if a.Y <= p.Y {
			if b.Y > p.Y && cross(a, b, p) > 0 {
				w++
			}
		} else if b.Y <= p.Y && cross(a, b, p) < 0 {
			w--
		}
	}
	return w
}

func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}

// Finite reports whether every vertex of poly has real coordinates.
func Finite(poly []Point) bool {
	for _, p := range poly {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}
