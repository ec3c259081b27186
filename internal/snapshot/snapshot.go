package snapshot

import (
	"fmt"

	"github.com/OCAP2/tacticboard/pkg/core"
)

// Markers is the registry side of a snapshot.
type Markers interface {
	Initialize(roster []core.RosterEntry)
	Snapshot() []core.PieceState
	Restore(pieces []core.PieceState)
}

// Drawing is the raster side of a snapshot.
type Drawing interface {
	Encode() (string, error)
	Decode(data string) error
	Clear()
}

// Codec converts between the live board and saved plays. It does not store
// anything itself.
type Codec struct {
	markers Markers
	drawing Drawing
	roster  []core.RosterEntry
}

// NewCodec returns a codec over the given registry and raster. The roster
// is what Apply resets the holding area to.
func NewCodec(markers Markers, drawing Drawing, roster []core.RosterEntry) *Codec {
	return &Codec{markers: markers, drawing: drawing, roster: roster}
}

// Capture records on-surface markers and the drawing under name.
func (c *Codec) Capture(name string) (core.SavedPlay, error) {
	drawing, err := c.drawing.Encode()
	if err != nil {
		return core.SavedPlay{}, fmt.Errorf("failed to capture drawing: %w", err)
	}
	return core.SavedPlay{
		Name:    name,
		Pieces:  c.markers.Snapshot(),
		Drawing: drawing,
	}, nil
}

// Apply replaces the board with a saved play: the drawing is cleared and
// redrawn, every marker is removed, the roster goes back to the holding
// area, and the saved pieces are placed (recreated when missing). A drawing
// that fails to decode leaves the layer blank; the markers are restored
// regardless and the decode error is returned.
func (c *Codec) Apply(play core.SavedPlay) error {
	c.drawing.Clear()
	decodeErr := c.drawing.Decode(play.Drawing)
	if decodeErr != nil {
		c.drawing.Clear()
	}

	c.markers.Initialize(c.roster)
	c.markers.Restore(play.Pieces)

	if decodeErr != nil {
		return fmt.Errorf("play %q: %w", play.Name, decodeErr)
	}
	return nil
}
