// Package input turns pointer events into strokes and erasures.
//
// A Machine tracks one active pointer at a time. With the pen (or select)
// tool it feeds samples to an incremental stroke builder and commits the
// finished outline to the store. With the eraser tool it collects touched
// strokes in an eraser session and removes them together on release.
package input

import (
	"math"

	"InkBoard/internal/eraser"
	"InkBoard/internal/freehand"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

// Phase is the state of a Machine.
type Phase int

const (
	Idle Phase = iota
	Drawing
	Erasing
)

func (p Phase) String() string {
	switch p {
	case Drawing:
		return "drawing"
	case Erasing:
		return "erasing"
	}
	return "idle"
}

// PointerEvent is a pointer sample in client coordinates.
type PointerEvent struct {
	ClientX, ClientY float64
	Pressure         float64
	Kind             state.Device
	PointerID        int64
	IsPrimary        bool
	TimestampMs      int64
}

// Viewport relates the displayed canvas to its logical size.
type Viewport struct {
	Left, Top                   float64
	DisplayWidth, DisplayHeight float64
	LogicalWidth, LogicalHeight float64
}

// ToCanvas converts client coordinates to canvas coordinates. An axis with
// an unknown size is not scaled.
func (v Viewport) ToCanvas(x, y float64) geom.Point {
	sx, sy := 1.0, 1.0
	if v.DisplayWidth > 0 && v.LogicalWidth > 0 {
		sx = v.LogicalWidth / v.DisplayWidth
	}
	if v.DisplayHeight > 0 && v.LogicalHeight > 0 {
		sy = v.LogicalHeight / v.DisplayHeight
	}
	return geom.Pt((x-v.Left)*sx, (y-v.Top)*sy)
}

// Cursor is the eraser overlay.
type Cursor struct {
	Center  geom.Point
	Radius  float64
	Visible bool
}

// Machine is the pointer state machine of one canvas. It is not safe for
// concurrent use.
type Machine struct {
	store  *state.Store
	tools  ToolSource
	eraser *eraser.Engine
	view   Viewport

	phase   Phase
	pointer int64
	device  state.Device
	cfg     ToolConfig

	builder  *freehand.Builder
	pressure *Pressure
	preview  []geom.Point
	dirty    bool

	session   *eraser.Session
	lastErase geom.Point

	cursor Cursor
}

// NewMachine returns an idle machine that commits to st and reads the tool
// configuration from tools.
func NewMachine(st *state.Store, tools ToolSource) *Machine {
	return &Machine{
		store:  st,
		tools:  tools,
		eraser: eraser.DefaultEngine(),
	}
}

func (m *Machine) SetViewport(v Viewport)     { m.view = v }
func (m *Machine) Viewport() Viewport         { return m.view }
func (m *Machine) SetEngine(e *eraser.Engine) { m.eraser = e }
func (m *Machine) SetTools(t ToolSource)      { m.tools = t }
func (m *Machine) Phase() Phase               { return m.phase }
func (m *Machine) Cursor() Cursor             { return m.cursor }

// Pending reports whether the current eraser drag has marked id.
func (m *Machine) Pending(id state.ID) bool { return m.session.Has(id) }

// PointerDown starts a stroke or an erasure. Only a primary pointer can
// leave Idle. It reports whether the event was accepted.
func (m *Machine) PointerDown(ev PointerEvent) bool {
	if m.phase != Idle || !ev.IsPrimary {
		return false
	}
	pos := m.view.ToCanvas(ev.ClientX, ev.ClientY)
	if !pos.IsFinite() {
		return false
	}
	m.cfg = m.tools.Tools()
	m.pointer = ev.PointerID
	m.device = ev.Kind

	if m.cfg.Tool == ToolEraser {
		m.phase = Erasing
		m.session = eraser.NewSession()
		m.lastErase = pos
		m.erase(pos)
		return true
	}
	m.phase = Drawing
	m.pressure = NewPressure(ev.Kind)
	m.builder = freehand.NewBuilder(freehand.Preset(ev.Kind, m.cfg.Width))
	m.add(pos, ev, false)
	return true
}

// PointerMove extends the active stroke or erasure. Hovering with the
// eraser tool moves the cursor. It reports whether anything visible
// changed.
func (m *Machine) PointerMove(ev PointerEvent) bool {
	pos := m.view.ToCanvas(ev.ClientX, ev.ClientY)
	if m.phase == Idle {
		return m.hover(pos)
	}
	if ev.PointerID != m.pointer || !pos.IsFinite() {
		return false
	}
	if m.phase == Erasing {
		m.eraseTo(pos)
		return true
	}
	return m.add(pos, ev, false)
}

// PointerUp finishes the active stroke or erasure.
func (m *Machine) PointerUp(ev PointerEvent) bool {
	if m.phase == Idle || ev.PointerID != m.pointer {
		return false
	}
	pos := m.view.ToCanvas(ev.ClientX, ev.ClientY)
	switch m.phase {
	case Drawing:
		if !pos.IsFinite() || !m.add(pos, ev, true) {
			m.tap(ev.TimestampMs)
		}
		m.commit()
	case Erasing:
		if pos.IsFinite() {
			m.eraseTo(pos)
		}
		m.session.Commit(m.store)
		m.endErase()
	}
	return true
}

// PointerCancel is handled like PointerUp: what has been drawn or marked
// so far is kept.
func (m *Machine) PointerCancel(ev PointerEvent) bool {
	return m.PointerUp(ev)
}

// PointerLeave handles the pointer leaving the canvas. A stroke in
// progress is committed with the samples gathered so far; an erasure in
// progress is abandoned without removing anything.
func (m *Machine) PointerLeave(ev PointerEvent) bool {
	changed := m.cursor.Visible
	m.cursor.Visible = false
	if m.phase == Idle || ev.PointerID != m.pointer {
		return changed
	}
	switch m.phase {
	case Drawing:
		m.commit()
	case Erasing:
		m.session.Discard()
		m.endErase()
	}
	return true
}

// Preview returns the stroke being drawn. The outline is rebuilt at most
// once per call, and only when samples were added since the last call, so
// a host that calls it once per frame coalesces fast input.
func (m *Machine) Preview() (state.Stroke, bool) {
	if m.phase != Drawing {
		return state.Stroke{}, false
	}
	if m.dirty {
		m.preview = m.builder.Outline()
		m.dirty = false
	}
	return state.Stroke{
		Outline: m.preview,
		Color:   m.cfg.Color,
		Width:   m.cfg.Width,
		Device:  m.device,
	}, true
}

func (m *Machine) add(pos geom.Point, ev PointerEvent, final bool) bool {
	if last, ok := m.builder.Last(); ok && last.Pos().Near(pos, freehand.SameEpsilon) {
		return false
	}
	var p float64
	if final {
		p = m.pressure.Final(pos, ev.Pressure, ev.TimestampMs)
	} else {
		p = m.pressure.Next(pos, ev.Pressure, ev.TimestampMs)
	}
	if !m.builder.Add(state.RawPoint{X: pos.X, Y: pos.Y, Pressure: p, TimestampMs: ev.TimestampMs}) {
		return false
	}
	m.dirty = true
	return true
}

// tap gives a lone press sample the tap pressure when the release that
// repeated it came quickly.
func (m *Machine) tap(t int64) {
	if m.builder.Len() != 1 || !m.pressure.Tap(t) {
		return
	}
	p, _ := m.builder.Last()
	p.Pressure = TapPressure
	m.builder = freehand.NewBuilder(m.builder.Options())
	m.builder.Add(p)
	m.dirty = true
}

func (m *Machine) commit() {
	outline := m.builder.Finish()
	if len(outline) >= 3 {
		m.store.Append(state.Stroke{
			Outline: outline,
			Color:   m.cfg.Color,
			Width:   m.cfg.Width,
			Device:  m.device,
		})
	}
	m.phase = Idle
	m.builder = nil
	m.pressure = nil
	m.preview = nil
	m.dirty = false
}

func (m *Machine) erase(pos geom.Point) {
	r := m.cfg.EraserRadius()
	m.eraser.Evaluate(m.store, m.session, pos, r)
	m.cursor = Cursor{Center: pos, Radius: r, Visible: true}
}

// eraseTo erases at pos and at points no more than one radius apart since
// the previous eraser position, so a fast drag does not jump over thin
// strokes. Each point costs a bounding-box check per stroke.
func (m *Machine) eraseTo(pos geom.Point) {
	r := m.cfg.EraserRadius()
	from := m.lastErase
	if d := from.Dist(pos); d > r {
		steps := int(math.Ceil(d / r))
		for k := 1; k < steps; k++ {
			m.eraser.Evaluate(m.store, m.session, from.Lerp(pos, float64(k)/float64(steps)), r)
		}
	}
	m.erase(pos)
	m.lastErase = pos
}

func (m *Machine) endErase() {
	m.phase = Idle
	m.session = nil
}

func (m *Machine) hover(pos geom.Point) bool {
	cfg := m.tools.Tools()
	if cfg.Tool != ToolEraser || !pos.IsFinite() {
		changed := m.cursor.Visible
		m.cursor.Visible = false
		return changed
	}
	m.cursor = Cursor{Center: pos, Radius: cfg.EraserRadius(), Visible: true}
	return true
}
