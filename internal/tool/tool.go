package tool

import (
	"sync"

	"github.com/OCAP2/tacticboard/pkg/core"
)

// Control is one tool-select control as a front end renders it.
type Control struct {
	Tool     core.Tool
	Selected bool
}

// Controller owns the active tool. It is the only gate deciding whether
// pointer input goes to markers or to the annotation layer.
type Controller struct {
	mu     sync.RWMutex
	active core.Tool
	// OnChange is called after every SetTool with the new tool.
	OnChange func(core.Tool)
}

// NewController starts on the move tool.
func NewController() *Controller {
	return &Controller{active: core.ToolMove}
}

// SetTool selects t.
func (c *Controller) SetTool(t core.Tool) error {
	if _, err := core.ParseTool(string(t)); err != nil {
		return err
	}
	c.mu.Lock()
	c.active = t
	cb := c.OnChange
	c.mu.Unlock()
	if cb != nil {
		cb(t)
	}
	return nil
}

// Active returns the selected tool.
func (c *Controller) Active() core.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Selected reports whether the control for t shows as selected.
func (c *Controller) Selected(t core.Tool) bool {
	return c.Active() == t
}

// LayerAcceptsInput reports whether the annotation layer captures pointer
// input, which is the case for every tool but move.
func (c *Controller) LayerAcceptsInput() bool {
	return c.Active() != core.ToolMove
}

// Controls returns every tool control in order with its selected state.
func (c *Controller) Controls() []Control {
	active := c.Active()
	out := make([]Control, len(core.Tools))
	for i, t := range core.Tools {
		out[i] = Control{Tool: t, Selected: t == active}
	}
	return out
}
