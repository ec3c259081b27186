// pkg/core/input.go
package core

// EventType is the phase of a pointer interaction.
type EventType int

const (
	EventDown EventType = iota
	EventMove
	EventUp
	// EventLeave fires when the pointer exits the drawing layer.
	EventLeave
)

func (t EventType) String() string {
	switch t {
	case EventDown:
		return "down"
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	case EventLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Source identifies the device that produced an event.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

// InputEvent is one pointer or touch event in client coordinates.
// For touch events Points holds the active (or, on release, the changed)
// touch points in order; only the first is used.
type InputEvent struct {
	Type   EventType
	Source Source
	Points []Point
	// Target is the id of the marker under the pointer, if any.
	Target string
	// OnLayer is set when the pointer is over the annotation layer.
	OnLayer bool
}

// Point returns the first point of the event. Events without points yield
// the origin; producing well-formed events is the caller's job.
func (e InputEvent) Point() Point {
	if len(e.Points) == 0 {
		return Point{}
	}
	return e.Points[0]
}
