package board

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/export"
	"InkBoard/internal/geom"
	"InkBoard/internal/input"
	"InkBoard/internal/state"
)

type recorder struct {
	mu   sync.Mutex
	uris []string
}

func (r *recorder) OnChange(uri string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uris = append(r.uris, uri)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uris)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uris[len(r.uris)-1]
}

type tools struct{ cfg input.ToolConfig }

func (t *tools) Tools() input.ToolConfig { return t.cfg }

type fixture struct {
	b     *Board
	sched *export.ManualScheduler
	sink  *recorder
	tools *tools
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sched: &export.ManualScheduler{},
		sink:  &recorder{},
		tools: &tools{cfg: input.ToolConfig{Tool: input.ToolPen, Color: state.Black, Width: 4, EraserWidth: 10}},
	}
	f.b = New(Options{
		Size:      export.Size{Width: 200, Height: 150, PixelRatio: 1},
		Debounce:  100 * time.Millisecond,
		Scheduler: f.sched,
		Tools:     f.tools,
		Sinks:     []Sink{f.sink},
	})
	return f
}

func pe(x, y float64, ms int64) input.PointerEvent {
	return input.PointerEvent{ClientX: x, ClientY: y, Kind: state.DeviceMouse, PointerID: 1, IsPrimary: true, TimestampMs: ms}
}

func (f *fixture) draw(from, to geom.Point) {
	f.b.PointerDown(pe(from.X, from.Y, 0))
	for i := 1; i <= 10; i++ {
		p := from.Lerp(to, float64(i)/10)
		f.b.PointerMove(pe(p.X, p.Y, int64(i*16)))
	}
	f.b.PointerUp(pe(to.X, to.Y, 200))
}

func (f *fixture) erase(at geom.Point) {
	f.tools.cfg.Tool = input.ToolEraser
	f.b.PointerDown(pe(at.X, at.Y, 0))
	f.b.PointerUp(pe(at.X, at.Y, 16))
	f.tools.cfg.Tool = input.ToolPen
}

func TestTapCommitsAndDelivers(t *testing.T) {
	f := newFixture(t)
	f.b.PointerDown(pe(50, 50, 0))
	f.b.PointerUp(pe(50, 50, 30))
	require.Equal(t, 1, f.b.Len())
	assert.Zero(t, f.sink.count())

	f.sched.Advance(100 * time.Millisecond)
	require.Equal(t, 1, f.sink.count())
	want, err := f.b.Export()
	require.NoError(t, err)
	assert.Equal(t, want, f.sink.last())
	assert.Equal(t, want, f.b.LastExport())
}

func TestBurstDeliversFinalState(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	f.draw(geom.Pt(10, 60), geom.Pt(190, 60))
	f.draw(geom.Pt(10, 100), geom.Pt(190, 100))
	f.sched.Advance(time.Second)
	require.Equal(t, 1, f.sink.count())

	f.erase(geom.Pt(100, 20))
	f.sched.Advance(20 * time.Millisecond)
	f.erase(geom.Pt(100, 60))
	f.sched.Advance(20 * time.Millisecond)
	f.b.Undo()
	assert.Zero(t, f.b.Len())
	f.sched.Advance(time.Second)

	require.Equal(t, 2, f.sink.count())
	blank, err := export.DataURI(export.Rasterize(nil, nil, f.b.Size(), export.RenderOptions{}))
	require.NoError(t, err)
	assert.Equal(t, blank, f.sink.last())
}

func TestUndoAfterEraseRemovesNextStroke(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	f.draw(geom.Pt(10, 60), geom.Pt(190, 60))
	f.draw(geom.Pt(10, 100), geom.Pt(190, 100))
	all := f.b.Strokes()
	require.Len(t, all, 3)

	f.erase(geom.Pt(100, 100))
	require.Len(t, f.b.Strokes(), 2)

	undone, ok := f.b.Undo()
	require.True(t, ok)
	assert.Equal(t, all[1].ID, undone.ID)
	rest := f.b.Strokes()
	require.Len(t, rest, 1)
	assert.Equal(t, all[0].ID, rest[0].ID)
}

func TestLeavingWhileErasingDeliversNothing(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	f.sched.Advance(time.Second)
	require.Equal(t, 1, f.sink.count())

	f.tools.cfg.Tool = input.ToolEraser
	f.b.PointerDown(pe(100, 20, 0))
	assert.Equal(t, input.Erasing, f.b.Phase())
	f.b.PointerLeave(pe(100, -50, 16))
	f.sched.Advance(time.Second)

	assert.Equal(t, 1, f.b.Len())
	assert.Equal(t, 1, f.sink.count())
}

func TestFailingSinksDoNotStopDelivery(t *testing.T) {
	f := newFixture(t)
	f.b.AddSink(SinkFunc(func(string) error { return errors.New("disk full") }))
	f.b.AddSink(SinkFunc(func(string) error { panic("boom") }))
	late := &recorder{}
	f.b.AddSink(late)

	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	assert.NotPanics(t, func() { f.sched.Advance(time.Second) })
	assert.Equal(t, 1, f.sink.count())
	assert.Equal(t, 1, late.count())
	assert.Equal(t, 1, f.b.Len())
}

func TestDispatch(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	f.draw(geom.Pt(10, 60), geom.Pt(190, 60))

	require.NoError(t, f.b.Dispatch(CmdFlush))
	assert.Equal(t, 1, f.sink.count())
	require.NoError(t, f.b.Dispatch(CmdFlush))
	assert.Equal(t, 1, f.sink.count(), "nothing pending")

	require.NoError(t, f.b.Dispatch(CmdUndo))
	assert.Equal(t, 1, f.b.Len())
	require.NoError(t, f.b.Dispatch(CmdExport))
	assert.Equal(t, 2, f.sink.count())

	require.NoError(t, f.b.Dispatch(CmdClear))
	assert.Zero(t, f.b.Len())

	err := f.b.Dispatch(Command(42))
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestLoadInitialRestoresStrokes(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	f.draw(geom.Pt(10, 60), geom.Pt(190, 60))
	f.b.Undo()
	snap := f.b.Snapshot()
	assert.Equal(t, f.b.ID().String(), snap.PageID)
	assert.Equal(t, 200.0, snap.Width)

	bg, err := export.DataURI(export.Rasterize(nil, nil, export.Size{Width: 4, Height: 4}, export.RenderOptions{}))
	require.NoError(t, err)

	g := newFixture(t)
	require.NoError(t, g.b.LoadInitial(Initial{RasterDataURI: bg, Vector: &snap}))
	assert.Equal(t, f.b.ID(), g.b.ID())
	assert.Equal(t, bg, g.b.Background())
	require.Equal(t, 1, g.b.Len())
	g.sched.Advance(time.Second)
	assert.Zero(t, g.sink.count(), "loading is not an edit")

	g.draw(geom.Pt(10, 100), geom.Pt(190, 100))
	strokes := g.b.Strokes()
	require.Len(t, strokes, 2)
	assert.Greater(t, strokes[1].ID, snap.Strokes[0].ID+1, "ids are never reused")
}

func TestLoadInitialRejectsBadRaster(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	err := f.b.LoadInitial(Initial{RasterDataURI: "not a uri"})
	assert.True(t, errors.Is(err, export.ErrInvalidDataURI))
	assert.Equal(t, 1, f.b.Len(), "failed load leaves the page alone")
}

func TestRenderShowsPendingAndPreview(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))

	img := f.b.Render(400, 300)
	assert.Equal(t, 400, img.Bounds().Dx())
	solid := color.RGBAModel.Convert(img.At(200, 40)).(color.RGBA)
	assert.Equal(t, uint8(0), solid.R)

	f.tools.cfg.Tool = input.ToolEraser
	f.b.PointerDown(pe(100, 20, 0))
	img = f.b.Render(400, 300)
	faded := color.RGBAModel.Convert(img.At(300, 40)).(color.RGBA)
	assert.Greater(t, faded.R, uint8(0x80))
	f.b.PointerLeave(pe(100, -50, 16))

	f.tools.cfg.Tool = input.ToolPen
	f.tools.cfg.Width = 10
	f.b.PointerDown(pe(20, 120, 0))
	for i := 1; i <= 16; i++ {
		f.b.PointerMove(pe(20+float64(i*10), 120, int64(i*16)))
	}
	assert.Equal(t, input.Drawing, f.b.Phase())
	img = f.b.Render(200, 150)
	preview := color.RGBAModel.Convert(img.At(100, 120)).(color.RGBA)
	assert.Equal(t, uint8(0), preview.R)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	var buf bytes.Buffer
	require.NoError(t, f.b.ExportPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	path := filepath.Join(t.TempDir(), "page.pdf")
	require.NoError(t, f.b.SavePDF(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestCloseFlushesPending(t *testing.T) {
	f := newFixture(t)
	f.draw(geom.Pt(10, 20), geom.Pt(190, 20))
	f.b.Close()
	assert.Equal(t, 1, f.sink.count())

	f.draw(geom.Pt(10, 60), geom.Pt(190, 60))
	f.sched.Advance(time.Second)
	assert.Equal(t, 1, f.sink.count())
}
