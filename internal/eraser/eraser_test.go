package eraser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/freehand"
	"InkBoard/internal/geom"
	"InkBoard/internal/state"
)

func drawLine(t *testing.T, st *state.Store, a, b geom.Point, width float64) state.ID {
	t.Helper()
	var raw []state.RawPoint
	for i := 0; i <= 50; i++ {
		p := a.Lerp(b, float64(i)/50)
		raw = append(raw, state.RawPoint{X: p.X, Y: p.Y, Pressure: 0.5})
	}
	o := freehand.Preset(state.DeviceMouse, width)
	o.Last = true
	return st.Append(state.Stroke{
		Outline: freehand.SafeOutline(raw, o),
		Color:   state.Black,
		Width:   width,
	})
}

func TestEraseOnFirstPoint(t *testing.T) {
	st := state.NewStore()
	id := drawLine(t, st, geom.Pt(10, 10), geom.Pt(200, 10), 4)

	sess := NewSession()
	hit := DefaultEngine().Evaluate(st, sess, geom.Pt(10, 10), 5)
	assert.Equal(t, []state.ID{id}, hit)
	assert.True(t, sess.Has(id))
}

func TestEraseFarAwayRemovesNothing(t *testing.T) {
	st := state.NewStore()
	drawLine(t, st, geom.Pt(0, 0), geom.Pt(100, 0), 4)
	drawLine(t, st, geom.Pt(0, 40), geom.Pt(100, 80), 6)

	var union geom.Rect
	for _, id := range st.IDs() {
		b, err := st.Bounds(id)
		require.NoError(t, err)
		union = union.Union(b)
	}
	const radius = 5
	center := geom.Pt(union.Max.X+radius+50, union.Max.Y+radius+50)

	sess := NewSession()
	assert.Empty(t, DefaultEngine().Evaluate(st, sess, center, radius))
	assert.Zero(t, sess.Commit(st))
	assert.Equal(t, 2, st.Len())
}

func TestLongStrokeThroughCenterIsAlwaysHit(t *testing.T) {
	// Outline samples on a long stroke are far apart; the exact check must
	// still catch a center that sits on the ink.
	e := &Engine{Samples: 4}
	for _, x := range []float64{13.7, 250, 499.9, 733.3, 987.6} {
		st := state.NewStore()
		id := drawLine(t, st, geom.Pt(0, 0), geom.Pt(1000, 0), 2)
		hit := e.Evaluate(st, NewSession(), geom.Pt(x, 0), 0.5)
		assert.Equal(t, []state.ID{id}, hit, "x=%v", x)
	}
}

func TestCenterJustOffAStraightStrokeIsHit(t *testing.T) {
	// Outline samples are hundreds of units apart; only the distance to
	// the outline itself can see this stroke.
	e := &Engine{Samples: 4}
	for _, tc := range []struct {
		name string
		a, b geom.Point
		off  func(geom.Rect) geom.Point
	}{
		{"above horizontal", geom.Pt(0, 0), geom.Pt(1000, 0), func(b geom.Rect) geom.Point { return geom.Pt(250, b.Max.Y+3) }},
		{"below horizontal", geom.Pt(0, 0), geom.Pt(1000, 0), func(b geom.Rect) geom.Point { return geom.Pt(730, b.Min.Y-3) }},
		{"left of vertical", geom.Pt(0, 0), geom.Pt(0, 1000), func(b geom.Rect) geom.Point { return geom.Pt(b.Min.X-3, 250) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			st := state.NewStore()
			id := drawLine(t, st, tc.a, tc.b, 4)
			b, err := st.Bounds(id)
			require.NoError(t, err)

			center := tc.off(b)
			require.False(t, b.Contains(center))
			assert.Equal(t, []state.ID{id}, e.Evaluate(st, NewSession(), center, 5))
		})
	}
}

func TestOutlineVertexAsCenterIsHit(t *testing.T) {
	st := state.NewStore()
	id := drawLine(t, st, geom.Pt(0, 0), geom.Pt(300, 120), 3)
	s, err := st.Get(id)
	require.NoError(t, err)

	for _, v := range s.Outline {
		sess := NewSession()
		hit := DefaultEngine().Evaluate(st, sess, v, 0.25)
		require.Equal(t, []state.ID{id}, hit, "vertex %v", v)
	}
}

func TestEvaluateIsIdempotentPerSession(t *testing.T) {
	st := state.NewStore()
	id := drawLine(t, st, geom.Pt(0, 0), geom.Pt(100, 0), 4)
	e := DefaultEngine()
	sess := NewSession()

	assert.Equal(t, []state.ID{id}, e.Evaluate(st, sess, geom.Pt(50, 0), 5))
	assert.Empty(t, e.Evaluate(st, sess, geom.Pt(51, 0), 5))
	assert.Equal(t, 1, sess.Len())
}

func TestSessionCommitAndDiscard(t *testing.T) {
	st := state.NewStore()
	a := drawLine(t, st, geom.Pt(0, 0), geom.Pt(100, 0), 4)
	b := drawLine(t, st, geom.Pt(0, 50), geom.Pt(100, 50), 4)
	c := drawLine(t, st, geom.Pt(0, 100), geom.Pt(100, 100), 4)

	sess := NewSession()
	assert.True(t, sess.Mark(c))
	assert.True(t, sess.Mark(a))
	assert.False(t, sess.Mark(a))
	assert.Equal(t, []state.ID{c, a}, sess.IDs())

	assert.Equal(t, 2, sess.Commit(st))
	assert.Zero(t, sess.Len())
	assert.Equal(t, []state.ID{b}, st.IDs())

	sess.Mark(b)
	sess.Discard()
	assert.Zero(t, sess.Commit(st))
	assert.Equal(t, []state.ID{b}, st.IDs())

	var none *Session
	assert.False(t, none.Has(b))
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	st := state.NewStore()
	drawLine(t, st, geom.Pt(0, 0), geom.Pt(100, 0), 4)
	e := DefaultEngine()
	assert.Empty(t, e.Evaluate(st, NewSession(), geom.Pt(50, 0), 0))
	assert.Empty(t, e.Evaluate(st, NewSession(), geom.Pt(50, 0), -1))
}
