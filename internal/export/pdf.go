package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/jung-kurt/gofpdf"
	"honnef.co/go/curve"

	"InkBoard/internal/freehand"
	"InkBoard/internal/state"
)

const backgroundImage = "background"

// newPDF lays out a single page the size of the canvas, one point per
// canvas unit, with the background and every stroke as a filled path.
func newPDF(strokes []*state.Stroke, bg image.Image, size Size) (*gofpdf.Fpdf, error) {
	w, h := float64(max(size.Width, 1)), float64(max(size.Height, 1))
	orientation := "P"
	if w > h {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	if bg != nil {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, bg); err != nil {
			return nil, err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader(backgroundImage, opts, &buf)
		p.ImageOptions(backgroundImage, 0, 0, w, h, false, opts, 0, "")
	}

	for _, s := range strokes {
		if len(s.Outline) < 3 {
			continue
		}
		p.SetFillColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
		p.SetAlpha(float64(s.Color.A)/255, "Normal")
		for el := range freehand.Path(s.Outline).PathElements(freehand.FlattenTolerance) {
			switch el.Kind {
			case curve.MoveToKind:
				p.MoveTo(el.P0.X, el.P0.Y)
			case curve.LineToKind:
				p.LineTo(el.P0.X, el.P0.Y)
			case curve.QuadToKind:
				p.CurveTo(el.P0.X, el.P0.Y, el.P1.X, el.P1.Y)
			case curve.CubicToKind:
				p.CurveBezierCubicTo(el.P0.X, el.P0.Y, el.P1.X, el.P1.Y, el.P2.X, el.P2.Y)
			case curve.ClosePathKind:
				p.ClosePath()
			}
		}
		p.DrawPath("F")
	}
	p.SetAlpha(1, "Normal")
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return p, nil
}

// WritePDF writes the strokes over bg as a one-page PDF.
func WritePDF(w io.Writer, strokes []*state.Stroke, bg image.Image, size Size) error {
	p, err := newPDF(strokes, bg, size)
	if err != nil {
		return err
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes the PDF to a file at path.
func ExportPDF(path string, strokes []*state.Stroke, bg image.Image, size Size) error {
	p, err := newPDF(strokes, bg, size)
	if err != nil {
		return err
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}
