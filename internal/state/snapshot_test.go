package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	st := NewStore()
	st.Append(square(0, 0, 2))
	red := square(4, 4, 2)
	red.Color = Color{R: 0xff, A: 0x80}
	red.Device = DevicePen
	st.Append(red)
	st.Append(square(8, 8, 2))
	st.UndoLast()

	snap := st.Snapshot()
	snap.PageID = "page-1"
	data, err := MarshalSnapshot(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"#ff000080"`)
	assert.Contains(t, string(data), `"pen"`)

	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "page-1", decoded.PageID)

	restored := NewStore()
	require.NoError(t, restored.Restore(decoded))
	assert.Equal(t, []ID{1, 2}, restored.IDs())
	assert.Equal(t, ID(4), restored.NextID(), "clock resumes after the undone id")

	got, err := restored.Get(2)
	require.NoError(t, err)
	assert.Equal(t, red.Color, got.Color)
	assert.Equal(t, DevicePen, got.Device)
}

func TestRestoreRejectsDuplicates(t *testing.T) {
	s := square(0, 0, 1)
	s.ID = 3
	err := NewStore().Restore(Snapshot{Strokes: []Stroke{s, s}})
	assert.Error(t, err)

	s.ID = 0
	assert.Error(t, NewStore().Restore(Snapshot{Strokes: []Stroke{s}}))
}

func TestRestoreNeverMovesClockBack(t *testing.T) {
	st := NewStore()
	for i := 0; i < 10; i++ {
		st.Append(square(0, 0, 1))
	}
	s := square(0, 0, 1)
	s.ID = 2
	require.NoError(t, st.Restore(Snapshot{NextID: 3, Strokes: []Stroke{s}}))
	assert.Equal(t, ID(11), st.NextID())
}

func TestUnmarshalSnapshotError(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte("{"))
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#1a2B3c")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)
	assert.Equal(t, "#1a2b3c", c.Hex())

	c, err = ParseColor("f00")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0xff, A: 0xff}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestParseDevice(t *testing.T) {
	assert.Equal(t, DevicePen, ParseDevice("pen"))
	assert.Equal(t, DeviceTouch, ParseDevice("Touch"))
	assert.Equal(t, DeviceMouse, ParseDevice("stylus"))
}
