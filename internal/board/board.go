// Package board ties one page together: the stroke store, the pointer
// state machine and the export pipeline that keeps page persistence up to
// date.
package board

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"InkBoard/internal/eraser"
	"InkBoard/internal/export"
	"InkBoard/internal/input"
	"InkBoard/internal/state"
)

// ErrUnknownCommand is returned by Dispatch for commands it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Command is an action requested by the host, such as a toolbar button.
type Command int

const (
	CmdUndo Command = iota
	CmdClear
	// CmdExport renders and delivers a snapshot right away.
	CmdExport
	// CmdFlush delivers a pending debounced snapshot right away.
	CmdFlush
)

func (c Command) String() string {
	switch c {
	case CmdUndo:
		return "undo"
	case CmdClear:
		return "clear"
	case CmdExport:
		return "export"
	case CmdFlush:
		return "flush"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Sink receives the raster snapshot of the page after it changes.
type Sink interface {
	OnChange(dataURI string) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(dataURI string) error

func (f SinkFunc) OnChange(dataURI string) error { return f(dataURI) }

// Initial seeds a page. The raster becomes the background layer; the
// vector snapshot, when present, restores editable strokes.
type Initial struct {
	RasterDataURI string
	Vector        *state.Snapshot
}

// Options configure a Board.
type Options struct {
	Size      export.Size
	Debounce  time.Duration
	Scheduler export.Scheduler
	Tools     input.ToolSource
	Sinks     []Sink
}

// CursorColor is the color of the eraser ring.
var CursorColor = color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xc0}

// Board is one page. All methods are safe for concurrent use; the store
// is only ever changed while the board lock is held.
type Board struct {
	mu      sync.Mutex
	id      uuid.UUID
	store   *state.Store
	machine *input.Machine
	size    export.Size
	bg      image.Image
	bgURI   string
	sinks   []Sink
	dirty   bool

	exports  *export.Debouncer
	exportMu sync.Mutex
	last     string
}

// New returns an empty page.
func New(o Options) *Board {
	if o.Tools == nil {
		o.Tools = input.StaticTools{Color: state.Black, Width: 5, EraserWidth: 10}
	}
	b := &Board{
		id:    uuid.New(),
		store: state.NewStore(),
		size:  o.Size,
		sinks: o.Sinks,
	}
	b.store.OnMutate = b.mutated
	b.machine = input.NewMachine(b.store, o.Tools)
	b.machine.SetViewport(input.Viewport{
		DisplayWidth:  float64(o.Size.Width),
		DisplayHeight: float64(o.Size.Height),
		LogicalWidth:  float64(o.Size.Width),
		LogicalHeight: float64(o.Size.Height),
	})
	b.exports = export.NewDebouncer(o.Debounce, o.Scheduler, b.export)
	return b
}

// ID identifies the page.
func (b *Board) ID() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

// Size returns the logical canvas size.
func (b *Board) Size() export.Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// AddSink registers another receiver of snapshots.
func (b *Board) AddSink(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// SetTools replaces the source sampled at the start of each stroke.
func (b *Board) SetTools(t input.ToolSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.SetTools(t)
}

// SetEngine replaces the eraser hit-testing parameters.
func (b *Board) SetEngine(e *eraser.Engine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.SetEngine(e)
}

// SetViewport updates where and how large the canvas is displayed.
func (b *Board) SetViewport(v input.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v.LogicalWidth, v.LogicalHeight = float64(b.size.Width), float64(b.size.Height)
	b.machine.SetViewport(v)
}

// mutated runs inside store operations, which only happen with b.mu held.
func (b *Board) mutated(m state.Mutation) {
	b.dirty = true
	Logger().Debug("page changed", "page", b.id, "op", m.Op, "ids", len(m.IDs))
}

// unlock releases b.mu and schedules an export if the store changed while
// it was held.
func (b *Board) unlock() {
	dirty := b.dirty
	b.dirty = false
	b.mu.Unlock()
	if dirty {
		b.exports.Trigger()
	}
}

func (b *Board) PointerDown(ev input.PointerEvent) bool {
	b.mu.Lock()
	defer b.unlock()
	return b.machine.PointerDown(ev)
}

func (b *Board) PointerMove(ev input.PointerEvent) bool {
	b.mu.Lock()
	defer b.unlock()
	return b.machine.PointerMove(ev)
}

func (b *Board) PointerUp(ev input.PointerEvent) bool {
	b.mu.Lock()
	defer b.unlock()
	return b.machine.PointerUp(ev)
}

func (b *Board) PointerCancel(ev input.PointerEvent) bool {
	b.mu.Lock()
	defer b.unlock()
	return b.machine.PointerCancel(ev)
}

func (b *Board) PointerLeave(ev input.PointerEvent) bool {
	b.mu.Lock()
	defer b.unlock()
	return b.machine.PointerLeave(ev)
}

// Phase returns the state of the pointer machine.
func (b *Board) Phase() input.Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.Phase()
}

// Undo removes the most recent stroke still on the page.
func (b *Board) Undo() (*state.Stroke, bool) {
	b.mu.Lock()
	defer b.unlock()
	return b.store.UndoLast()
}

// Clear removes every stroke.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.unlock()
	b.store.Clear()
}

// Dispatch runs a host command.
func (b *Board) Dispatch(c Command) error {
	switch c {
	case CmdUndo:
		b.Undo()
	case CmdClear:
		b.Clear()
	case CmdExport:
		b.export()
	case CmdFlush:
		b.exports.Flush()
	default:
		return fmt.Errorf("%v: %w", c, ErrUnknownCommand)
	}
	return nil
}

// Strokes returns the committed strokes in z-order.
func (b *Board) Strokes() []*state.Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Strokes()
}

// Len returns the number of committed strokes.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Len()
}

// Snapshot returns the vector form of the page.
func (b *Board) Snapshot() state.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := b.store.Snapshot()
	snap.PageID = b.id.String()
	snap.Width = float64(b.size.Width)
	snap.Height = float64(b.size.Height)
	return snap
}

// Background returns the data URI of the background layer, if any.
func (b *Board) Background() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bgURI
}

// LoadInitial replaces the page contents. Loading is not an edit, so no
// snapshot is delivered for it.
func (b *Board) LoadInitial(in Initial) error {
	var bg image.Image
	if in.RasterDataURI != "" {
		img, err := export.DecodeDataURI(in.RasterDataURI)
		if err != nil {
			return fmt.Errorf("load background: %w", err)
		}
		bg = img
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if in.Vector != nil {
		if err := b.store.Restore(*in.Vector); err != nil {
			return fmt.Errorf("load strokes: %w", err)
		}
		if id, err := uuid.Parse(in.Vector.PageID); err == nil {
			b.id = id
		}
	} else {
		b.store.Clear()
	}
	b.bg, b.bgURI = bg, in.RasterDataURI
	b.dirty = false
	Logger().Info("page loaded", "page", b.id, "strokes", b.store.Len(), "background", bg != nil)
	return nil
}

// Export renders the committed strokes over the background and returns
// the PNG data URI.
func (b *Board) Export() (string, error) {
	b.mu.Lock()
	strokes, bg, size := b.store.Strokes(), b.bg, b.size
	b.mu.Unlock()
	return export.DataURI(export.Rasterize(strokes, bg, size, export.RenderOptions{}))
}

// ExportPDF writes the page as a PDF.
func (b *Board) ExportPDF(w io.Writer) error {
	b.mu.Lock()
	strokes, bg, size := b.store.Strokes(), b.bg, b.size
	b.mu.Unlock()
	return export.WritePDF(w, strokes, bg, size)
}

// SavePDF writes the page as a PDF file at path.
func (b *Board) SavePDF(path string) error {
	b.mu.Lock()
	strokes, bg, size := b.store.Strokes(), b.bg, b.size
	b.mu.Unlock()
	return export.ExportPDF(path, strokes, bg, size)
}

// LastExport returns the most recent snapshot delivered to the sinks.
func (b *Board) LastExport() string {
	b.exportMu.Lock()
	defer b.exportMu.Unlock()
	return b.last
}

// Close delivers any pending snapshot and stops further exports.
func (b *Board) Close() {
	b.exports.Flush()
	b.exports.Stop()
}

// export renders the page as it is now and hands the result to every
// sink. Exports run one at a time, and each reads the store when it
// starts, so the last one delivered always shows the latest state.
func (b *Board) export() {
	b.exportMu.Lock()
	defer b.exportMu.Unlock()

	uri, err := b.Export()
	if err != nil {
		Logger().Warn("export failed", "page", b.ID(), "err", err)
		return
	}
	b.last = uri

	b.mu.Lock()
	sinks := append([]Sink(nil), b.sinks...)
	b.mu.Unlock()
	for _, s := range sinks {
		deliver(s, uri)
	}
	Logger().Debug("snapshot delivered", "bytes", len(uri), "sinks", len(sinks))
}

// deliver never lets a sink failure reach the caller.
func deliver(s Sink, uri string) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("sink panicked", "panic", r)
		}
	}()
	if err := s.OnChange(uri); err != nil {
		Logger().Warn("sink failed", "err", err)
	}
}
