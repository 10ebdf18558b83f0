// Package config loads the board settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"InkBoard/internal/export"
	"InkBoard/internal/input"
	"InkBoard/internal/state"
)

// ErrInvalid is returned for settings that parse but make no sense.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Canvas Canvas `toml:"canvas"`
	Tools  Tools  `toml:"tools"`
	Export Export `toml:"export"`
	Mirror Mirror `toml:"mirror"`
	Page   Page   `toml:"page"`
}

type Canvas struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	PixelRatio float64 `toml:"pixel_ratio"`
}

type Tools struct {
	Tool        string  `toml:"tool"`
	Color       string  `toml:"color"`
	Width       float64 `toml:"width"`
	EraserWidth float64 `toml:"eraser_width"`
}

type Export struct {
	DebounceMs int `toml:"debounce_ms"`
	// Dir is where PDF exports are written when no path is chosen.
	Dir string `toml:"dir"`
}

type Mirror struct {
	Enabled   bool   `toml:"enabled"`
	Port      int    `toml:"port"`
	Advertise bool   `toml:"advertise"`
	Instance  string `toml:"instance"`
}

type Page struct {
	// Key names the page in the preferences store.
	Key string `toml:"key"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: 900, Height: 700, PixelRatio: 2},
		Tools:  Tools{Tool: "pen", Color: "#000000", Width: 5, EraserWidth: 10},
		Export: Export{DebounceMs: 100},
		Mirror: Mirror{Port: 8888, Advertise: true, Instance: "InkBoard"},
		Page:   Page{Key: "page"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse toml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal encodes c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("canvas size %dx%d: %w", c.Canvas.Width, c.Canvas.Height, ErrInvalid)
	case c.Canvas.PixelRatio <= 0:
		return fmt.Errorf("pixel ratio %v: %w", c.Canvas.PixelRatio, ErrInvalid)
	case c.Tools.Width <= 0 || c.Tools.EraserWidth <= 0:
		return fmt.Errorf("tool widths must be positive: %w", ErrInvalid)
	case c.Export.DebounceMs < 0:
		return fmt.Errorf("debounce %dms: %w", c.Export.DebounceMs, ErrInvalid)
	case c.Mirror.Port < 0 || c.Mirror.Port > 65535:
		return fmt.Errorf("mirror port %d: %w", c.Mirror.Port, ErrInvalid)
	case c.Page.Key == "":
		return fmt.Errorf("empty page key: %w", ErrInvalid)
	}
	if _, err := state.ParseColor(c.Tools.Color); err != nil {
		return fmt.Errorf("tool color: %w", errors.Join(ErrInvalid, err))
	}
	return nil
}

// Size returns the export size of the canvas.
func (c Config) Size() export.Size {
	return export.Size{Width: c.Canvas.Width, Height: c.Canvas.Height, PixelRatio: c.Canvas.PixelRatio}
}

// Debounce returns the delay between an edit and its export.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Export.DebounceMs) * time.Millisecond
}

// ToolConfig returns the initial tool state. The color is assumed valid.
func (c Config) ToolConfig() input.ToolConfig {
	col, err := state.ParseColor(c.Tools.Color)
	if err != nil {
		col = state.Black
	}
	return input.ToolConfig{
		Tool:        input.ParseTool(c.Tools.Tool),
		Color:       col,
		Width:       c.Tools.Width,
		EraserWidth: c.Tools.EraserWidth,
	}
}
