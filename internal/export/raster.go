// Package export renders committed strokes to images and documents and
// schedules those renders after edits.
package export

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
	"honnef.co/go/curve"

	"InkBoard/internal/freehand"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Size is the logical canvas size and the device pixel ratio it is
// rendered at.
type Size struct {
	Width, Height int
	PixelRatio    float64
}

func (s Size) ratio() float64 {
	if s.PixelRatio <= 0 || math.IsNaN(s.PixelRatio) {
		return 1
	}
	return s.PixelRatio
}

// Pixels returns the size of the rendered image.
func (s Size) Pixels() image.Point {
	r := s.ratio()
	return image.Pt(
		max(1, int(math.Round(float64(s.Width)*r))),
		max(1, int(math.Round(float64(s.Height)*r))),
	)
}

// Ring is a circle outline drawn over the strokes, such as the eraser
// cursor.
type Ring struct {
	Center geom.Point
	Radius float64
	Width  float64
	Color  color.NRGBA
}

// RenderOptions adds live overlays to a render. The zero value renders
// just the strokes.
type RenderOptions struct {
	// Faded reports strokes to draw at FadeAlpha opacity.
	Faded     func(state.ID) bool
	FadeAlpha float64
	// Extra strokes are drawn on top, such as a stroke in progress.
	Extra []state.Stroke
	Ring  *Ring
}

// DefaultFadeAlpha is the opacity of faded strokes.
const DefaultFadeAlpha = 0.3

// Rasterize draws bg scaled to the canvas, or white if bg is nil, and then
// fills every stroke outline with its color. The output depends only on
// its arguments.
func Rasterize(strokes []*state.Stroke, bg image.Image, size Size, o RenderOptions) *image.RGBA {
	px := size.Pixels()
	dst := image.NewRGBA(image.Rectangle{Max: px})
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if bg != nil && !bg.Bounds().Empty() {
		xdraw.BiLinear.Scale(dst, dst.Bounds(), bg, bg.Bounds(), xdraw.Over, nil)
	}

	scale := size.ratio()
	fade := o.FadeAlpha
	if fade <= 0 {
		fade = DefaultFadeAlpha
	}
	for _, s := range strokes {
		alpha := 1.0
		if o.Faded != nil && o.Faded(s.ID) {
			alpha = fade
		}
		fillPath(dst, freehand.Path(s.Outline), geom.Bounds(s.Outline), scale, nrgba(s.Color, alpha))
	}
	for i := range o.Extra {
		s := &o.Extra[i]
		fillPath(dst, freehand.Path(s.Outline), geom.Bounds(s.Outline), scale, nrgba(s.Color, 1))
	}
	if r := o.Ring; r != nil && r.Radius > 0 {
		drawRing(dst, *r, scale)
	}
	return dst
}

func nrgba(c state.Color, alpha float64) color.NRGBA {
	n := color.NRGBA(c)
	n.A = uint8(math.Round(float64(n.A) * alpha))
	return n
}

// fillPath fills p, scaled by scale, within the pixels covered by bounds.
// Overlapping parts of the path accumulate instead of cancelling, so a
// stroke that crosses itself has no holes.
func fillPath(dst *image.RGBA, p curve.BezPath, bounds geom.Rect, scale float64, c color.NRGBA) {
	if len(p) == 0 || bounds.Empty() || c.A == 0 {
		return
	}
	rect := image.Rect(
		int(math.Floor(bounds.Min.X*scale))-1,
		int(math.Floor(bounds.Min.Y*scale))-1,
		int(math.Ceil(bounds.Max.X*scale))+1,
		int(math.Ceil(bounds.Max.Y*scale))+1,
	).Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	off := geom.Pt(float64(rect.Min.X), float64(rect.Min.Y))
	at := func(q curve.Point) (float32, float32) {
		return float32(q.X*scale - off.X), float32(q.Y*scale - off.Y)
	}

	r := vector.NewRasterizer(rect.Dx(), rect.Dy())
	r.DrawOp = draw.Over
	for el := range p.PathElements(freehand.FlattenTolerance) {
		switch el.Kind {
		case curve.MoveToKind:
			r.MoveTo(at(el.P0))
		case curve.LineToKind:
			r.LineTo(at(el.P0))
		case curve.QuadToKind:
			cx, cy := at(el.P0)
			x, y := at(el.P1)
			r.QuadTo(cx, cy, x, y)
		case curve.CubicToKind:
			c1x, c1y := at(el.P0)
			c2x, c2y := at(el.P1)
			x, y := at(el.P2)
			r.CubeTo(c1x, c1y, c2x, c2y, x, y)
		case curve.ClosePathKind:
			r.ClosePath()
		}
	}
	r.Draw(dst, rect, image.NewUniform(c), image.Point{})
}

// drawRing fills the band between two circles. The inner circle runs the
// other way so its inside cancels out.
func drawRing(dst *image.RGBA, ring Ring, scale float64) {
	w := ring.Width
	if w <= 0 {
		w = 1
	}
	outer := geom.Circle(ring.Center, ring.Radius+w/2, 48)
	inner := geom.Circle(ring.Center, math.Max(ring.Radius-w/2, 0), 48)

	var p curve.BezPath
	polygon(&p, outer)
	for i, j := 0, len(inner)-1; i < j; i, j = i+1, j-1 {
		inner[i], inner[j] = inner[j], inner[i]
	}
	polygon(&p, inner)
	fillPath(dst, p, geom.Bounds(outer), scale, ring.Color)
}

func polygon(p *curve.BezPath, pts []geom.Point) {
	p.MoveTo(curve.Point{X: pts[0].X, Y: pts[0].Y})
	for _, q := range pts[1:] {
		p.LineTo(curve.Point{X: q.X, Y: q.Y})
	}
	p.ClosePath()
}
