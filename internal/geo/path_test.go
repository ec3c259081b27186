package geo

import (
	"testing"

	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	p := NewPath(core.LogicalPoint{X: 0, Y: 0})
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 0.0, p.Length())
	assert.True(t, p.LineString().IsEmpty())

	p.Add(core.LogicalPoint{X: 3, Y: 4})
	p.Add(core.LogicalPoint{X: 3, Y: 10})

	require.Equal(t, 3, p.Len())
	assert.Equal(t, core.LogicalPoint{X: 0, Y: 0}, p.First())
	assert.Equal(t, core.LogicalPoint{X: 3, Y: 10}, p.Last())
	assert.InDelta(t, 11.0, p.Length(), 1e-9)

	seq := p.LineString().Coordinates()
	require.Equal(t, 3, seq.Length())
	assert.Equal(t, 3.0, seq.GetXY(1).X)
}

func TestSegmentLength(t *testing.T) {
	assert.InDelta(t, 5.0, SegmentLength(core.LogicalPoint{X: 1, Y: 1}, core.LogicalPoint{X: 4, Y: 5}), 1e-9)
	assert.Equal(t, 0.0, SegmentLength(core.LogicalPoint{X: 2, Y: 2}, core.LogicalPoint{X: 2, Y: 2}))
}

func TestPath_RepeatedPoint(t *testing.T) {
	p := NewPath(core.LogicalPoint{X: 5, Y: 5})
	p.Add(core.LogicalPoint{X: 5, Y: 5})

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 0.0, p.Length())
	assert.True(t, p.LineString().IsEmpty())
}
