// pkg/core/play.go
package core

// PieceState is the persisted position of one on-surface marker.
// Top and Left are kept as the style offsets they were saved with.
type PieceState struct {
	ID   string `json:"id"`
	Top  Offset `json:"top"`
	Left Offset `json:"left"`
}

// Placement returns the piece position as a marker placement.
func (p PieceState) Placement() Placement {
	return Placement{Left: p.Left, Top: p.Top}
}

// SavedPlay is a named snapshot of the board.
type SavedPlay struct {
	Name    string       `json:"-"`
	Pieces  []PieceState `json:"pieces"`
	Drawing string       `json:"drawing"`
}
