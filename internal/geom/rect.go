package geom

import "math"

// Rect is an axis-aligned bounding box. The zero Rect is empty.
type Rect struct {
	Min, Max Point
	nonEmpty bool
}

// Bounds returns the bounding box of pts.
func Bounds(pts []Point) Rect {
	var r Rect
	for _, p := range pts {
		r = r.Extend(p)
	}
	return r
}

// Extend grows r to include p.
func (r Rect) Extend(p Point) Rect {
	if !p.IsFinite() {
		return r
	}
	if !r.nonEmpty {
		return Rect{Min: p, Max: p, nonEmpty: true}
	}
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
	return r
}

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if !o.nonEmpty {
		return r
	}
	if !r.nonEmpty {
		return o
	}
	return r.Extend(o.Min).Extend(o.Max)
}

// Pad grows r by d on every side.
func (r Rect) Pad(d float64) Rect {
	if !r.nonEmpty {
		return r
	}
	r.Min.X -= d
	r.Min.Y -= d
	r.Max.X += d
	r.Max.Y += d
	return r
}

func (r Rect) Empty() bool     { return !r.nonEmpty }
func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Area() float64   { return r.Width() * r.Height() }
func (r Rect) Center() Point   { return r.Min.Lerp(r.Max, 0.5) }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return r.nonEmpty &&
		p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Overlaps reports whether r and o share any point.
func (r Rect) Overlaps(o Rect) bool {
	if !r.nonEmpty || !o.nonEmpty {
		return false
	}
	return !(r.Max.X < o.Min.X || o.Max.X < r.Min.X ||
		r.Max.Y < o.Min.Y || o.Max.Y < r.Min.Y)
}

// R returns the rect spanning (x0, y0) to (x1, y1).
func R(x0, y0, x1, y1 float64) Rect {
	return Bounds([]Point{{x0, y0}, {x1, y1}})
}
