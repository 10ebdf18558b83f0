// Package geom holds the small amount of 2D geometry shared by the stroke
// smoother, the eraser and the rasterizer.
package geom

import "math"

// Point is a position (or a vector) in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point    { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point    { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point  { return Point{p.X * s, p.Y * s} }
func (p Point) Neg() Point           { return Point{-p.X, -p.Y} }
func (p Point) Dot(q Point) float64  { return p.X*q.X + p.Y*q.Y }
func (p Point) Len() float64         { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Dist2 returns the squared distance between p and q.
func (p Point) Dist2(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Unit returns p scaled to length 1. The zero vector stays zero.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Perp returns p rotated by -90 degrees.
func (p Point) Perp() Point { return Point{p.Y, -p.X} }

// Project moves p along direction d by distance c.
func (p Point) Project(d Point, c float64) Point { return p.Add(d.Mul(c)) }

// RotateAround rotates p around c by r radians.
func (p Point) RotateAround(c Point, r float64) Point {
	s, co := math.Sincos(r)
	px, py := p.X-c.X, p.Y-c.Y
	return Point{px*co - py*s + c.X, px*s + py*co + c.Y}
}

// Near reports whether p and q are within eps of each other.
func (p Point) Near(q Point, eps float64) bool {
	return p.Dist2(q) <= eps*eps
}

// IsFinite reports whether both coordinates are real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Circle returns an n-gon approximating the circle of radius r around c.
func Circle(c Point, r float64, n int) []Point {
	if n < 3 {
		n = 3
	}
	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	return pts
}

// Capsule returns the outline of a segment from a to b thickened by r on
// both sides, with semicircular ends.
func Capsule(a, b Point, r float64, n int) []Point {
	if a.Near(b, 1e-9) {
		return Circle(a, r, 2*n)
	}
	if n < 2 {
		n = 2
	}
	dir := b.Sub(a).Unit()
	start := math.Atan2(dir.Y, dir.X) - math.Pi/2
	pts := make([]Point, 0, 2*(n+1))
	// half circle around b, then around a
	for i := 0; i <= n; i++ {
		t := start + math.Pi*float64(i)/float64(n)
		pts = append(pts, Point{b.X + r*math.Cos(t), b.Y + r*math.Sin(t)})
	}
	for i := 0; i <= n; i++ {
		t := start + math.Pi + math.Pi*float64(i)/float64(n)
		pts = append(pts, Point{a.X + r*math.Cos(t), a.Y + r*math.Sin(t)})
	}
	return pts
}
