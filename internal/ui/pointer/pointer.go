// Package pointer turns per-frame pointer samples into board input events.
package pointer

import (
	"github.com/OCAP2/tacticboard/pkg/core"
)

// Sample is the pointer state read once per frame.
type Sample struct {
	Pressed bool
	Point   core.Point
	Source  core.Source
}

// Tracker remembers the previous sample to detect presses, releases and
// the pointer leaving the annotation layer.
type Tracker struct {
	// Hit returns the marker under a client point, or "".
	Hit func(p core.Point) string
	// Layer reports whether a client point is over the annotation layer.
	Layer func(p core.Point) bool

	down    bool
	source  core.Source
	last    core.Point
	onLayer bool
}

// Step consumes one sample. A release reports the last pressed position
// because touch sources have no position once lifted.
func (t *Tracker) Step(s Sample) []core.InputEvent {
	switch {
	case s.Pressed && !t.down:
		t.down = true
		t.source = s.Source
		t.last = s.Point
		t.onLayer = t.layer(s.Point)
		return []core.InputEvent{t.event(core.EventDown, s.Point, t.hit(s.Point))}

	case s.Pressed:
		if s.Point == t.last {
			return nil
		}
		t.last = s.Point
		wasOn := t.onLayer
		t.onLayer = t.layer(s.Point)
		out := []core.InputEvent{t.event(core.EventMove, s.Point, "")}
		if wasOn && !t.onLayer {
			out = append(out, core.InputEvent{Type: core.EventLeave, Source: t.source})
		}
		return out

	case t.down:
		t.down = false
		p := s.Point
		if t.source == core.SourceTouch {
			p = t.last
		}
		t.onLayer = t.layer(p)
		return []core.InputEvent{t.event(core.EventUp, p, "")}
	}
	return nil
}

func (t *Tracker) event(typ core.EventType, p core.Point, target string) core.InputEvent {
	return core.InputEvent{
		Type:    typ,
		Source:  t.source,
		Points:  []core.Point{p},
		Target:  target,
		OnLayer: t.onLayer,
	}
}

func (t *Tracker) hit(p core.Point) string {
	if t.Hit == nil {
		return ""
	}
	return t.Hit(p)
}

func (t *Tracker) layer(p core.Point) bool {
	if t.Layer == nil {
		return false
	}
	return t.Layer(p)
}
