package ui

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/board"
	"InkBoard/internal/input"
	"InkBoard/internal/state"
)

// ToolState is the tool configuration edited by the toolbar. The board
// samples it when a stroke starts.
type ToolState struct {
	mu  sync.RWMutex
	cfg input.ToolConfig
}

func NewToolState(cfg input.ToolConfig) *ToolState {
	return &ToolState{cfg: cfg}
}

func (t *ToolState) Tools() input.ToolConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

func (t *ToolState) update(f func(*input.ToolConfig)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f(&t.cfg)
}

func (t *ToolState) SetTool(tool input.Tool) { t.update(func(c *input.ToolConfig) { c.Tool = tool }) }

// SetColor also switches back to the pen.
func (t *ToolState) SetColor(col state.Color) {
	t.update(func(c *input.ToolConfig) {
		c.Color = col
		c.Tool = input.ToolPen
	})
}

func (t *ToolState) SetWidth(w float64)       { t.update(func(c *input.ToolConfig) { c.Width = w }) }
func (t *ToolState) SetEraserWidth(w float64) { t.update(func(c *input.ToolConfig) { c.EraserWidth = w }) }

// Palette is the set of colors offered by the toolbar.
var Palette = []state.Color{
	state.Black,
	{R: 0xff, A: 0xff},
	{G: 0xa0, A: 0xff},
	{B: 0xff, A: 0xff},
	{R: 0xff, G: 0xc0, A: 0xff},
}

type colorSwatch struct {
	widget.BaseWidget
	Color    state.Color
	OnTapped func(state.Color)
}

func newColorSwatch(c state.Color, tapped func(state.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(color.NRGBA(s.Color))
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

func slider(min, max, value float64, changed func(float64)) fyne.CanvasObject {
	s := widget.NewSlider(min, max)
	s.SetValue(value)
	s.OnChanged = changed
	return container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), s)
}

// NewToolbar builds the tool, color and size controls and the page
// actions for bw.
func NewToolbar(bw *BoardWidget, tools *ToolState, win fyne.Window, status *widget.Label) fyne.CanvasObject {
	report := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("[UI] %s", msg)
		status.SetText(msg)
	}
	run := func(c board.Command) func() {
		return func() {
			if err := bw.Do(c); err != nil {
				report("%v failed: %v", c, err)
			}
		}
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { tools.SetTool(input.ToolPen) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { tools.SetTool(input.ToolEraser) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), run(board.CmdUndo)),
		widget.NewToolbarAction(theme.ContentClearIcon(), run(board.CmdClear)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { saveSnapshot(bw.Board(), win, report) }),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { loadSnapshot(bw, win, report) }),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() { exportPDF(bw.Board(), win, report) }),
	)

	swatches := container.NewHBox()
	for _, c := range Palette {
		swatches.Add(newColorSwatch(c, tools.SetColor))
	}

	cfg := tools.Tools()
	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		slider(1, 50, cfg.Width, tools.SetWidth),
		widget.NewLabel("Eraser:"),
		slider(2, 80, cfg.EraserWidth, tools.SetEraserWidth),
		layout.NewSpacer(),
	)
}

func saveSnapshot(b *board.Board, win fyne.Window, report func(string, ...any)) {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		defer w.Close()
		data, err := state.MarshalSnapshot(b.Snapshot())
		if err == nil {
			_, err = w.Write(data)
		}
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		report("Saved %d strokes", b.Len())
	}, win)
}

func loadSnapshot(bw *BoardWidget, win fyne.Window, report func(string, ...any)) {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		snap, err := state.UnmarshalSnapshot(data)
		if err == nil {
			err = bw.Board().LoadInitial(board.Initial{RasterDataURI: bw.Board().Background(), Vector: &snap})
		}
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		bw.Refresh()
		report("Loaded %d strokes", bw.Board().Len())
	}, win)
}

func exportPDF(b *board.Board, win fyne.Window, report func(string, ...any)) {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		defer w.Close()
		var buf bytes.Buffer
		if err := b.ExportPDF(&buf); err != nil {
			dialog.ShowError(err, win)
			return
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			dialog.ShowError(err, win)
			return
		}
		report("Exported %s", w.URI().Name())
	}, win)
}
