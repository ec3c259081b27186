package gormstorage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/tacticboard/internal/database"
	"github.com/OCAP2/tacticboard/internal/model"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "plays.db"), zerolog.Nop())
	require.NoError(t, err)

	s := New(db, zerolog.Nop())
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInit_NoDB(t *testing.T) {
	s := New(nil, zerolog.Nop())
	require.Error(t, s.Init(context.Background()))
	assert.NoError(t, s.Close())
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	play := core.SavedPlay{
		Name: "Corner Kick",
		Pieces: []core.PieceState{
			{ID: "p3", Top: core.Pct(40), Left: core.Pct(60)},
			{ID: "r1", Top: core.CenteredAt(50, 30), Left: core.CenteredAt(88, 30)},
		},
		Drawing: "data:image/png;base64,AAAA",
	}
	require.NoError(t, s.Set(ctx, play))

	got, ok, err := s.Get(ctx, "Corner Kick")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Corner Kick", got.Name)
	assert.Equal(t, play.Drawing, got.Drawing)
	require.Len(t, got.Pieces, 2)
	assert.Equal(t, "40%", got.Pieces[0].Top.String())
	assert.Equal(t, "calc(88% - 15px)", got.Pieces[1].Left.String())

	_, ok, err = s.Get(ctx, "Missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_Overwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, core.SavedPlay{
		Name:   "Press",
		Pieces: []core.PieceState{{ID: "p1", Top: core.Px(1), Left: core.Px(2)}},
	}))
	var first model.SavedPlay
	require.NoError(t, s.DB().Take(&first, "name = ?", "Press").Error)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Set(ctx, core.SavedPlay{Name: "Press", Drawing: "data:image/png;base64,BBBB"}))

	var count int64
	require.NoError(t, s.DB().Model(&model.SavedPlay{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, ok, err := s.Get(ctx, "Press")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.Pieces)
	assert.Equal(t, "data:image/png;base64,BBBB", got.Drawing)

	var second model.SavedPlay
	require.NoError(t, s.DB().Take(&second, "name = ?", "Press").Error)
	assert.Equal(t, 0, second.PieceCount)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestGetAllAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"Wall", "Corner Kick", "Free Kick"} {
		require.NoError(t, s.Set(ctx, core.SavedPlay{Name: name}))
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Wall", all["Wall"].Name)

	require.NoError(t, s.Delete(ctx, "Wall"))
	require.NoError(t, s.Delete(ctx, "Missing"))

	all, err = s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotContains(t, all, "Wall")
}

func TestGetAll_SkipsUnreadableRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, core.SavedPlay{Name: "Wall"}))
	require.NoError(t, s.db.Create(&model.SavedPlay{Name: "Broken", Pieces: datatypes.JSON("{broken")}).Error)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, all, "Wall")

	_, _, err = s.Get(ctx, "Broken")
	assert.Error(t, err)
}
