package convert

import (
	"testing"

	"github.com/OCAP2/tacticboard/internal/model"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSavedPlayToGorm(t *testing.T) {
	play := core.SavedPlay{
		Name: "Corner Kick",
		Pieces: []core.PieceState{
			{ID: "p3", Top: core.Pct(40), Left: core.Pct(60)},
			{ID: "r1", Top: core.Px(12), Left: core.Px(30)},
		},
		Drawing: "data:image/png;base64,AAAA",
	}

	m, err := SavedPlayToGorm(play)
	require.NoError(t, err)

	assert.Equal(t, "Corner Kick", m.Name)
	assert.Equal(t, 2, m.PieceCount)
	assert.Equal(t, "data:image/png;base64,AAAA", m.Drawing)
	assert.JSONEq(t,
		`[{"id":"p3","top":"40%","left":"60%"},{"id":"r1","top":"12px","left":"30px"}]`,
		string(m.Pieces))
}

func TestSavedPlayToGorm_NilPieces(t *testing.T) {
	m, err := SavedPlayToGorm(core.SavedPlay{Name: "Empty"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(m.Pieces))
	assert.Zero(t, m.PieceCount)
}

func TestSavedPlayToCore_KeepsOffsetsVerbatim(t *testing.T) {
	m := model.SavedPlay{
		Name:    "Wall",
		Pieces:  datatypes.JSON(`[{"id":"p0","top":"37.5%","left":"101px"}]`),
		Drawing: "",
	}

	play, err := SavedPlayToCore(m)
	require.NoError(t, err)
	require.Len(t, play.Pieces, 1)
	assert.Equal(t, "Wall", play.Name)
	assert.Equal(t, "p0", play.Pieces[0].ID)
	assert.Equal(t, "37.5%", play.Pieces[0].Top.String())
	assert.Equal(t, "101px", play.Pieces[0].Left.String())
}

func TestSavedPlayToCore_EmptyAndInvalid(t *testing.T) {
	play, err := SavedPlayToCore(model.SavedPlay{Name: "Blank"})
	require.NoError(t, err)
	assert.Empty(t, play.Pieces)

	_, err = SavedPlayToCore(model.SavedPlay{Name: "Broken", Pieces: datatypes.JSON(`{`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}
