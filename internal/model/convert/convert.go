package convert

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/tacticboard/internal/model"
	"github.com/OCAP2/tacticboard/pkg/core"
)

// SavedPlayToCore converts a GORM SavedPlay to a core.SavedPlay.
func SavedPlayToCore(m model.SavedPlay) (core.SavedPlay, error) {
	play := core.SavedPlay{
		Name:    m.Name,
		Drawing: m.Drawing,
	}
	if len(m.Pieces) == 0 {
		return play, nil
	}
	if err := json.Unmarshal(m.Pieces, &play.Pieces); err != nil {
		return core.SavedPlay{}, fmt.Errorf("decoding pieces of %q: %w", m.Name, err)
	}
	return play, nil
}
