package geo

import (
	"math"

	"github.com/OCAP2/tacticboard/pkg/core"
)

// DefaultBreakpoint is the viewport width at or below which a portrait
// viewport shows the surface rotated.
const DefaultBreakpoint = 600

// Mapper converts client-space pointer positions into logical surface
// coordinates. The surface is laid out in its un-rotated frame and, on narrow
// portrait viewports, displayed rotated 90° clockwise; Bounds is then the
// rotated on-screen box.
type Mapper struct {
	breakpoint float64
	frame      core.Frame
}

// NewMapper returns a Mapper using the given breakpoint. Non-positive values
// fall back to DefaultBreakpoint.
func NewMapper(breakpoint float64) *Mapper {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	return &Mapper{breakpoint: breakpoint}
}

// Rotated reports whether a viewport of the given size displays the surface
// rotated.
func (m *Mapper) Rotated(viewport core.Size) bool {
	return viewport.Width <= m.breakpoint && viewport.Height > viewport.Width
}

// Update recomputes the frame from the viewport and the surface's on-screen
// bounding box.
func (m *Mapper) Update(viewport core.Size, bounds core.Rect) core.Frame {
	f := core.Frame{
		Rotated: m.Rotated(viewport),
		Bounds:  bounds,
	}
	if f.Rotated {
		f.Width, f.Height = bounds.Height, bounds.Width
	} else {
		f.Width, f.Height = bounds.Width, bounds.Height
	}
	m.frame = f
	return f
}

// Frame returns the frame computed by the last Update.
func (m *Mapper) Frame() core.Frame {
	return m.frame
}

// ToLogical maps the first point of an event onto the surface.
func (m *Mapper) ToLogical(ev core.InputEvent) core.LogicalPoint {
	return m.ClientToLogical(ev.Point())
}

// ClientToLogical maps a client point onto the surface. Points outside the
// surface map to coordinates outside [0,W]x[0,H]; nothing is clamped here.
func (m *Mapper) ClientToLogical(p core.Point) core.LogicalPoint {
	b := m.frame.Bounds
	x := p.X - b.Left
	y := p.Y - b.Top
	if m.frame.Rotated {
		return core.LogicalPoint{X: y, Y: b.Width - x}
	}
	return core.LogicalPoint{X: x, Y: y}
}

// ToClient is the inverse of ClientToLogical.
func (m *Mapper) ToClient(p core.LogicalPoint) core.Point {
	b := m.frame.Bounds
	if m.frame.Rotated {
		return core.Point{X: b.Left + b.Width - p.Y, Y: b.Top + p.X}
	}
	return core.Point{X: b.Left + p.X, Y: b.Top + p.Y}
}

// Contains reports whether a client point lies on the surface's on-screen
// bounding box.
func (m *Mapper) Contains(p core.Point) bool {
	if !m.frame.Valid() {
		return false
	}
	return m.frame.Bounds.Contains(p)
}

// Clamp limits the top-left corner of a marker of the given size so that the
// whole marker stays on the surface. It returns false, leaving p untouched,
// while the surface has no valid geometry.
func Clamp(p core.LogicalPoint, size float64, f core.Frame) (core.LogicalPoint, bool) {
	if !f.Valid() {
		return p, false
	}
	return core.LogicalPoint{
		X: clampAxis(p.X, f.Width-size),
		Y: clampAxis(p.Y, f.Height-size),
	}, true
}

func clampAxis(v, upper float64) float64 {
	return math.Max(0, math.Min(v, upper))
}
