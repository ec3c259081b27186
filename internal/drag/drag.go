package drag

import (
	"github.com/OCAP2/tacticboard/pkg/core"
)

// DraggingOpacity is the opacity of a marker while it is carried.
const DraggingOpacity = 0.7

// Markers is the registry surface the controller needs.
type Markers interface {
	Get(id string) (core.Marker, bool)
	Size(kind core.MarkerKind) float64
	Move(id string, p *core.LogicalPoint) bool
	Position(id string) (core.LogicalPoint, bool)
}

// Surface tells whether a client point is on the surface and maps it.
type Surface interface {
	Contains(p core.Point) bool
	ClientToLogical(p core.Point) core.LogicalPoint
}

// ToolGate reports whether the annotation layer has taken pointer input.
type ToolGate interface {
	LayerAcceptsInput() bool
}

// Visual describes how the carried marker is drawn during a drag.
type Visual struct {
	ID string
	// TopLeft is in client space; the marker follows the pointer centre.
	TopLeft  core.Point
	Size     float64
	Opacity  float64
	Elevated bool
}

// Drop is the outcome of a finished drag.
type Drop struct {
	ID        string
	OnSurface bool
	// Position is the clamped top-left corner when OnSurface is set.
	Position core.LogicalPoint
}

// Controller is the Idle/Dragging state machine for markers.
type Controller struct {
	markers Markers
	surface Surface
	tools   ToolGate

	visual *Visual
}

// NewController wires a controller to its collaborators.
func NewController(markers Markers, surface Surface, tools ToolGate) *Controller {
	return &Controller{markers: markers, surface: surface, tools: tools}
}

// Dragging returns the carried marker, if any.
func (c *Controller) Dragging() (Visual, bool) {
	if c.visual == nil {
		return Visual{}, false
	}
	return *c.visual, true
}

// Down picks up the marker under the pointer. It only activates while the
// move tool is selected and the target is a known marker.
func (c *Controller) Down(ev core.InputEvent) bool {
	if c.visual != nil || c.tools.LayerAcceptsInput() || ev.Target == "" {
		return false
	}
	m, ok := c.markers.Get(ev.Target)
	if !ok {
		return false
	}
	size := c.markers.Size(m.Kind)
	c.visual = &Visual{
		ID:       m.ID,
		TopLeft:  centred(ev.Point(), size),
		Size:     size,
		Opacity:  DraggingOpacity,
		Elevated: true,
	}
	return true
}

// Move tracks the pointer in client space.
func (c *Controller) Move(ev core.InputEvent) bool {
	if c.visual == nil {
		return false
	}
	c.visual.TopLeft = centred(ev.Point(), c.visual.Size)
	return true
}

// Up drops the carried marker. Releasing over the surface places the marker
// centred on the release point, clamped to the surface; releasing anywhere
// else returns it to the holding area.
func (c *Controller) Up(ev core.InputEvent) (Drop, bool) {
	if c.visual == nil {
		return Drop{}, false
	}
	v := *c.visual
	c.visual = nil

	p := ev.Point()
	if !c.surface.Contains(p) {
		c.markers.Move(v.ID, nil)
		return Drop{ID: v.ID}, true
	}

	l := c.surface.ClientToLogical(p)
	tl := core.LogicalPoint{X: l.X - v.Size/2, Y: l.Y - v.Size/2}
	c.markers.Move(v.ID, &tl)
	d := Drop{ID: v.ID, OnSurface: true, Position: tl}
	if pos, ok := c.markers.Position(v.ID); ok {
		d.Position = pos
	}
	return d, true
}

// Cancel abandons a drag without moving the marker.
func (c *Controller) Cancel() {
	c.visual = nil
}

func centred(p core.Point, size float64) core.Point {
	return core.Point{X: p.X - size/2, Y: p.Y - size/2}
}
