package state

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"InkBoard/internal/geom"
)

// ID identifies a committed stroke within one page. IDs come from a
// monotonic Clock and are never reused.
type ID uint64

// RawPoint is one pointer sample in canvas space.
type RawPoint struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Pressure    float64 `json:"pressure"`
	TimestampMs int64   `json:"t"`
}

// Pos returns the sample position.
func (p RawPoint) Pos() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

// Device is the kind of pointer that produced a stroke.
type Device int

const (
	DeviceMouse Device = iota
	DevicePen
	DeviceTouch
)

// ParseDevice maps a pointer type name to a Device. Unknown names are
// treated as mouse input.
func ParseDevice(s string) Device {
	switch strings.ToLower(s) {
	case "pen":
		return DevicePen
	case "touch":
		return DeviceTouch
	}
	return DeviceMouse
}

func (d Device) String() string {
	switch d {
	case DevicePen:
		return "pen"
	case DeviceTouch:
		return "touch"
	}
	return "mouse"
}

func (d Device) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Device) UnmarshalText(b []byte) error {
	*d = ParseDevice(string(b))
	return nil
}

// Stroke is a committed ink mark. Outline is never modified once the
// stroke is in a Store.
type Stroke struct {
	ID      ID           `json:"id"`
	Outline []geom.Point `json:"outline"`
	Color   Color        `json:"color"`
	Width   float64      `json:"width"`
	Device  Device       `json:"device"`
	Created time.Time    `json:"created"`
}

// Color is an 8-bit RGBA color that serializes as a hex string.
type Color color.NRGBA

var Black = Color{A: 0xff}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) { return color.NRGBA(c).RGBA() }

// Hex returns #rrggbb, or #rrggbbaa when the color is not opaque.
func (c Color) Hex() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// OpType names the kind of change a Store went through.
type OpType string

const (
	OpAppend OpType = "append"
	OpRemove OpType = "remove"
	OpUndo   OpType = "undo"
	OpClear  OpType = "clear"
	OpLoad   OpType = "load"
)

// Mutation describes one change to a Store.
type Mutation struct {
	Op  OpType
	IDs []ID
}
