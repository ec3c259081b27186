package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/OCAP2/tacticboard/internal/raster"
	"github.com/OCAP2/tacticboard/internal/registry"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roster = []core.RosterEntry{
	{ID: "p0", Number: "0", Name: "Felipe"},
	{ID: "p1", Number: "1", Name: "Léo"},
}

var formation = []core.Anchor{
	{Left: 88, Top: 50}, {Left: 80, Top: 30}, {Left: 80, Top: 70},
	{Left: 65, Top: 25}, {Left: 65, Top: 50}, {Left: 65, Top: 75},
	{Left: 55, Top: 50},
}

func newBoard(t *testing.T) (*registry.Registry, *raster.Raster, *Codec) {
	t.Helper()
	reg := registry.New(registry.DefaultConfig())
	reg.SetFrame(core.Frame{Width: 600, Height: 400})
	reg.Initialize(roster)
	reg.PlaceOpposing(formation)
	r := raster.New(600, 400)
	return reg, r, NewCodec(reg, r, roster)
}

func scribble(t *testing.T, r *raster.Raster) {
	t.Helper()
	require.NoError(t, r.StrokeStart(core.ToolBrush, core.LogicalPoint{X: 20, Y: 20}))
	r.StrokeExtend(core.LogicalPoint{X: 200, Y: 150})
	r.StrokeEnd(core.LogicalPoint{X: 300, Y: 100})
}

func TestCaptureApplyIdempotent(t *testing.T) {
	reg, r, codec := newBoard(t)
	reg.Move("p1", &core.LogicalPoint{X: 123.5, Y: 77})
	scribble(t, r)

	markersBefore := reg.Markers()
	positions := make(map[string]core.LogicalPoint)
	for _, m := range markersBefore {
		if pos, ok := reg.Position(m.ID); ok {
			positions[m.ID] = pos
		}
	}
	pixBefore := append([]byte(nil), r.Image().Pix...)

	play, err := codec.Capture("x")
	require.NoError(t, err)
	require.NoError(t, codec.Apply(play))

	assert.Equal(t, pixBefore, r.Image().Pix)
	require.Len(t, reg.Markers(), len(markersBefore))
	for _, m := range markersBefore {
		want, wantOK := positions[m.ID]
		got, ok := reg.Position(m.ID)
		assert.Equal(t, wantOK, ok, m.ID)
		assert.Equal(t, want, got, m.ID)
	}
	for _, p := range play.Pieces {
		got, ok := reg.Get(p.ID)
		require.True(t, ok, p.ID)
		assert.Equal(t, p.Left.String(), got.Placement.Left.String())
		assert.Equal(t, p.Top.String(), got.Placement.Top.String())
	}
}

func TestCornerKick(t *testing.T) {
	reg, r, codec := newBoard(t)
	reg.Move("p0", &core.LogicalPoint{X: 50, Y: 50})
	reg.Move("r3", &core.LogicalPoint{X: 300, Y: 120})
	scribble(t, r)

	play, err := codec.Capture("Corner Kick")
	require.NoError(t, err)
	assert.Equal(t, "Corner Kick", play.Name)

	// persisted form goes through JSON
	raw, err := json.Marshal(play)
	require.NoError(t, err)
	var stored core.SavedPlay
	require.NoError(t, json.Unmarshal(raw, &stored))
	stored.Name = "Corner Kick"

	// delete all markers and the drawing
	reg.Initialize(nil)
	r.Clear()
	require.Empty(t, reg.Markers())

	require.NoError(t, codec.Apply(stored))

	p0, ok := reg.Position("p0")
	require.True(t, ok)
	assert.Equal(t, core.LogicalPoint{X: 50, Y: 50}, p0)
	r3, ok := reg.Position("r3")
	require.True(t, ok)
	assert.Equal(t, core.LogicalPoint{X: 300, Y: 120}, r3)
	assert.False(t, r.Empty())
}

func TestApplyFullyReplaces(t *testing.T) {
	reg, r, codec := newBoard(t)
	reg.Move("p0", &core.LogicalPoint{X: 10, Y: 10})
	play, err := codec.Capture("only p0")
	require.NoError(t, err)

	// diverge: more markers on the surface and a drawing
	reg.Move("p1", &core.LogicalPoint{X: 200, Y: 200})
	scribble(t, r)

	require.NoError(t, codec.Apply(play))

	var onSurface []string
	for _, p := range reg.Snapshot() {
		onSurface = append(onSurface, p.ID)
	}
	// opposing markers were on the surface when captured
	assert.Contains(t, onSurface, "p0")
	assert.Contains(t, onSurface, "r0")
	assert.NotContains(t, onSurface, "p1")
	assert.Len(t, reg.Markers(), 2+7)
	assert.True(t, r.Empty())
}

func TestApplyBadDrawingStillRestoresMarkers(t *testing.T) {
	reg, r, codec := newBoard(t)
	scribble(t, r)
	left, err := core.ParseOffset("calc(40% - 15px)")
	require.NoError(t, err)

	err = codec.Apply(core.SavedPlay{
		Name:    "broken",
		Pieces:  []core.PieceState{{ID: "r1", Left: left, Top: core.Px(5)}},
		Drawing: "garbage",
	})

	require.ErrorIs(t, err, raster.ErrInvalidDrawing)
	assert.True(t, r.Empty())
	pos, ok := reg.Position("r1")
	require.True(t, ok)
	assert.Equal(t, core.LogicalPoint{X: 225, Y: 5}, pos)
}
