package input

import (
	"strings"

	"InkBoard/internal/state"
)

// Tool is the active drawing tool.
type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
	ToolSelect
)

// ParseTool maps a tool name to a Tool. Unknown names select the pen.
func ParseTool(s string) Tool {
	switch strings.ToLower(s) {
	case "eraser":
		return ToolEraser
	case "select":
		return ToolSelect
	}
	return ToolPen
}

func (t Tool) String() string {
	switch t {
	case ToolEraser:
		return "eraser"
	case ToolSelect:
		return "select"
	}
	return "pen"
}

// ToolConfig is the tool state sampled when a stroke starts. Changing it
// later does not affect a stroke in progress.
type ToolConfig struct {
	Tool        Tool
	Color       state.Color
	Width       float64
	EraserWidth float64
}

// EraserRadius returns the radius of the eraser circle.
func (c ToolConfig) EraserRadius() float64 {
	if c.EraserWidth <= 1 {
		return 0.5
	}
	return c.EraserWidth / 2
}

// ToolSource supplies the current tool configuration.
type ToolSource interface {
	Tools() ToolConfig
}

// StaticTools is a ToolSource that never changes.
type StaticTools ToolConfig

func (t StaticTools) Tools() ToolConfig { return ToolConfig(t) }
