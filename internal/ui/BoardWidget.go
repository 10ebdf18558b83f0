package ui

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/board"
	"InkBoard/internal/input"
	"InkBoard/internal/state"
)

// BoardWidget shows a board and feeds it mouse input.
type BoardWidget struct {
	widget.BaseWidget
	board  *board.Board
	raster *canvas.Raster
	start  time.Time
	last   fyne.Position
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(b *board.Board) *BoardWidget {
	w := &BoardWidget{board: b, start: time.Now()}
	w.raster = canvas.NewRaster(func(wPx, hPx int) image.Image {
		return w.board.Render(wPx, hPx)
	})
	w.raster.SetMinSize(fyne.NewSize(300, 300))
	w.ExtendBaseWidget(w)
	return w
}

// Board returns the board shown by the widget.
func (w *BoardWidget) Board() *board.Board { return w.board }

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

// Resize keeps the board's idea of the display size in step with the
// widget.
func (w *BoardWidget) Resize(s fyne.Size) {
	w.BaseWidget.Resize(s)
	w.board.SetViewport(input.Viewport{DisplayWidth: float64(s.Width), DisplayHeight: float64(s.Height)})
}

func (w *BoardWidget) event(pos fyne.Position) input.PointerEvent {
	return input.PointerEvent{
		ClientX:     float64(pos.X),
		ClientY:     float64(pos.Y),
		Kind:        state.DeviceMouse,
		PointerID:   1,
		IsPrimary:   true,
		TimestampMs: time.Since(w.start).Milliseconds(),
	}
}

func (w *BoardWidget) redraw(changed bool) {
	if changed {
		w.raster.Refresh()
	}
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.last = e.Position
	w.redraw(w.board.PointerDown(w.event(e.Position)))
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.redraw(w.board.PointerUp(w.event(e.Position)))
}

func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	w.last = e.Position
	w.redraw(w.board.PointerMove(w.event(e.Position)))
}

// DragEnd finishes the stroke if MouseUp has not already done so.
func (w *BoardWidget) DragEnd() {
	w.redraw(w.board.PointerUp(w.event(w.last)))
}

func (w *BoardWidget) MouseIn(e *desktop.MouseEvent) {
	w.redraw(w.board.PointerMove(w.event(e.Position)))
}

func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	w.redraw(w.board.PointerMove(w.event(e.Position)))
}

// MouseOut ends a stroke in progress and hides the eraser cursor.
func (w *BoardWidget) MouseOut() {
	w.redraw(w.board.PointerLeave(input.PointerEvent{PointerID: 1, IsPrimary: true}))
}

// Do runs a board command and redraws.
func (w *BoardWidget) Do(c board.Command) error {
	err := w.board.Dispatch(c)
	w.raster.Refresh()
	return err
}
