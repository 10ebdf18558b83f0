package board

import (
	"image"

	"InkBoard/internal/export"
	"InkBoard/internal/state"
)

// Render draws the live view for a display of w by h pixels: committed
// strokes, strokes the eraser has marked drawn faded, the stroke in
// progress and the eraser cursor. The horizontal scale is used for both
// axes; hosts stretch the image to fit.
func (b *Board) Render(w, h int) image.Image {
	b.mu.Lock()
	strokes, bg, size := b.store.Strokes(), b.bg, b.size
	var pending map[state.ID]bool
	for _, s := range strokes {
		if b.machine.Pending(s.ID) {
			if pending == nil {
				pending = make(map[state.ID]bool)
			}
			pending[s.ID] = true
		}
	}
	var o export.RenderOptions
	if p, ok := b.machine.Preview(); ok {
		o.Extra = []state.Stroke{p}
	}
	if c := b.machine.Cursor(); c.Visible {
		o.Ring = &export.Ring{Center: c.Center, Radius: c.Radius, Width: 1, Color: CursorColor}
	}
	b.mu.Unlock()

	if pending != nil {
		o.Faded = func(id state.ID) bool { return pending[id] }
	}
	if size.Width > 0 && w > 0 {
		size.PixelRatio = float64(w) / float64(size.Width)
	} else if size.Height > 0 && h > 0 {
		size.PixelRatio = float64(h) / float64(size.Height)
	}
	return export.Rasterize(strokes, bg, size, o)
}
