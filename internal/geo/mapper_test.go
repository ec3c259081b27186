package geo

import (
	"testing"

	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotated(t *testing.T) {
	m := NewMapper(600)

	tests := []struct {
		name     string
		viewport core.Size
		want     bool
	}{
		{"wide desktop", core.Size{Width: 1280, Height: 800}, false},
		{"narrow portrait", core.Size{Width: 400, Height: 800}, true},
		{"at breakpoint portrait", core.Size{Width: 600, Height: 900}, true},
		{"narrow landscape", core.Size{Width: 500, Height: 400}, false},
		{"narrow square", core.Size{Width: 500, Height: 500}, false},
		{"just above breakpoint", core.Size{Width: 601, Height: 1200}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Rotated(tt.viewport))
		})
	}
}

func TestNewMapper_DefaultBreakpoint(t *testing.T) {
	m := NewMapper(0)
	assert.True(t, m.Rotated(core.Size{Width: 600, Height: 700}))
}

func TestUpdate_SwapsLogicalSizeWhenRotated(t *testing.T) {
	m := NewMapper(600)

	f := m.Update(core.Size{Width: 400, Height: 800}, core.Rect{Left: 10, Top: 20, Width: 300, Height: 450})
	assert.True(t, f.Rotated)
	assert.Equal(t, 450.0, f.Width)
	assert.Equal(t, 300.0, f.Height)
	assert.Equal(t, f, m.Frame())

	f = m.Update(core.Size{Width: 1200, Height: 800}, core.Rect{Left: 10, Top: 20, Width: 450, Height: 300})
	assert.False(t, f.Rotated)
	assert.Equal(t, 450.0, f.Width)
	assert.Equal(t, 300.0, f.Height)
}

func TestClientToLogical_Unrotated(t *testing.T) {
	m := NewMapper(600)
	m.Update(core.Size{Width: 1200, Height: 800}, core.Rect{Left: 100, Top: 50, Width: 600, Height: 400})

	p := m.ClientToLogical(core.Point{X: 130, Y: 90})
	assert.Equal(t, core.LogicalPoint{X: 30, Y: 40}, p)
}

func TestClientToLogical_Rotated(t *testing.T) {
	m := NewMapper(600)
	// Logical surface is 600x400, shown rotated as a 400x600 box.
	m.Update(core.Size{Width: 420, Height: 800}, core.Rect{Left: 10, Top: 20, Width: 400, Height: 600})

	// The on-screen top-right corner is the logical origin.
	p := m.ClientToLogical(core.Point{X: 410, Y: 20})
	assert.Equal(t, core.LogicalPoint{X: 0, Y: 0}, p)

	// The on-screen bottom-left corner is the logical far corner.
	p = m.ClientToLogical(core.Point{X: 10, Y: 620})
	assert.Equal(t, core.LogicalPoint{X: 600, Y: 400}, p)

	p = m.ClientToLogical(core.Point{X: 60, Y: 120})
	assert.Equal(t, core.LogicalPoint{X: 100, Y: 350}, p)
}

func TestToLogical_UsesFirstTouchPoint(t *testing.T) {
	m := NewMapper(600)
	m.Update(core.Size{Width: 1200, Height: 800}, core.Rect{Width: 600, Height: 400})

	ev := core.InputEvent{
		Type:   core.EventDown,
		Source: core.SourceTouch,
		Points: []core.Point{{X: 5, Y: 6}, {X: 100, Y: 100}},
	}
	assert.Equal(t, core.LogicalPoint{X: 5, Y: 6}, m.ToLogical(ev))
}

func TestRoundTrip(t *testing.T) {
	viewports := map[string]struct {
		viewport core.Size
		bounds   core.Rect
	}{
		"unrotated": {core.Size{Width: 1200, Height: 800}, core.Rect{Left: 37, Top: 12, Width: 600, Height: 400}},
		"rotated":   {core.Size{Width: 420, Height: 800}, core.Rect{Left: 10, Top: 20, Width: 400, Height: 600}},
	}
	points := []core.LogicalPoint{{X: 0, Y: 0}, {X: 12.5, Y: 300}, {X: 599, Y: 1}, {X: 250.25, Y: 199.75}}

	for name, vp := range viewports {
		t.Run(name, func(t *testing.T) {
			m := NewMapper(600)
			m.Update(vp.viewport, vp.bounds)
			for _, p := range points {
				got := m.ClientToLogical(m.ToClient(p))
				assert.InDelta(t, p.X, got.X, 1e-9)
				assert.InDelta(t, p.Y, got.Y, 1e-9)
			}
		})
	}
}

func TestContains(t *testing.T) {
	m := NewMapper(600)
	assert.False(t, m.Contains(core.Point{}), "no frame yet")

	m.Update(core.Size{Width: 1200, Height: 800}, core.Rect{Left: 100, Top: 50, Width: 600, Height: 400})
	assert.True(t, m.Contains(core.Point{X: 100, Y: 50}))
	assert.True(t, m.Contains(core.Point{X: 700, Y: 450}))
	assert.False(t, m.Contains(core.Point{X: 99, Y: 60}))
	assert.False(t, m.Contains(core.Point{X: 400, Y: 451}))
}

func TestClamp(t *testing.T) {
	f := core.Frame{Width: 600, Height: 400}

	tests := []struct {
		name string
		in   core.LogicalPoint
		want core.LogicalPoint
	}{
		{"inside", core.LogicalPoint{X: 100, Y: 100}, core.LogicalPoint{X: 100, Y: 100}},
		{"negative", core.LogicalPoint{X: -50, Y: -1}, core.LogicalPoint{X: 0, Y: 0}},
		{"far out", core.LogicalPoint{X: 10000, Y: 9000}, core.LogicalPoint{X: 560, Y: 360}},
		{"edge", core.LogicalPoint{X: 560, Y: 360}, core.LogicalPoint{X: 560, Y: 360}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Clamp(tt.in, 40, f)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClamp_InvalidFrame(t *testing.T) {
	p := core.LogicalPoint{X: -5, Y: 900}
	got, ok := Clamp(p, 40, core.Frame{})
	assert.False(t, ok)
	assert.Equal(t, p, got)
}
