// pkg/core/tool.go
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTool is returned when a tool name is not recognised
var ErrUnknownTool = errors.New("unknown tool")

// Tool is an input mode of the board.
type Tool string

const (
	ToolMove   Tool = "move"
	ToolBrush  Tool = "brush"
	ToolDashed Tool = "dashed"
	ToolLine   Tool = "line"
	ToolArrow  Tool = "arrow"
	ToolEraser Tool = "eraser"
)

// Tools lists every tool in control order.
var Tools = []Tool{ToolMove, ToolBrush, ToolDashed, ToolLine, ToolArrow, ToolEraser}

// ParseTool converts a control name into a Tool.
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tools {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// IsDrawing reports whether the tool draws on the annotation layer.
func (t Tool) IsDrawing() bool {
	switch t {
	case ToolBrush, ToolDashed, ToolLine, ToolArrow, ToolEraser:
		return true
	}
	return false
}

// IsShapePreview reports whether the tool previews a single final segment
// instead of accumulating a path.
func (t Tool) IsShapePreview() bool {
	return t == ToolLine || t == ToolArrow
}
