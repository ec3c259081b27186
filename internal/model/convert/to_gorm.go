package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/tacticboard/internal/model"
	"github.com/OCAP2/tacticboard/pkg/core"
	"gorm.io/datatypes"
)

// SavedPlayToGorm converts a core.SavedPlay to a GORM SavedPlay.
// A nil piece list is stored as an empty JSON array.
func SavedPlayToGorm(p core.SavedPlay) (model.SavedPlay, error) {
	pieces := p.Pieces
	if pieces == nil {
		pieces = []core.PieceState{}
	}
	raw, err := json.Marshal(pieces)
	if err != nil {
		return model.SavedPlay{}, fmt.Errorf("encoding pieces of %q: %w", p.Name, err)
	}
	return model.SavedPlay{
		Name:       p.Name,
		Pieces:     datatypes.JSON(raw),
		PieceCount: len(pieces),
		Drawing:    p.Drawing,
	}, nil
}
