// Package layout places the board's regions inside the window: a toolbar
// across the top, the holding strip and the surface fitted at 3:2.
package layout

import (
	"math"

	"github.com/OCAP2/tacticboard/pkg/core"
)

const (
	ToolbarHeight = 36
	// HoldingExtent is the strip width beside a landscape surface, or its
	// height below a rotated one.
	HoldingExtent = 120
	Margin        = 8
	// SurfaceAspect is logical width over logical height.
	SurfaceAspect = 1.5
	SlotGap       = 8
)

// Regions are the window areas in client space.
type Regions struct {
	Toolbar core.Rect
	Holding core.Rect
	Surface core.Rect
}

// Fit lays out a viewport. When rotated the surface box on screen is tall
// (2:3) and the holding strip moves below it. A viewport too small for a
// surface yields an empty Surface rect.
func Fit(viewport core.Size, rotated bool) Regions {
	w, h := viewport.Width, viewport.Height
	r := Regions{
		Toolbar: core.Rect{Width: w, Height: math.Min(ToolbarHeight, h)},
	}

	var area core.Rect
	if rotated {
		r.Holding = core.Rect{Left: 0, Top: h - HoldingExtent, Width: w, Height: HoldingExtent}
		area = core.Rect{
			Left:   Margin,
			Top:    ToolbarHeight + Margin,
			Width:  w - 2*Margin,
			Height: h - HoldingExtent - ToolbarHeight - 2*Margin,
		}
	} else {
		r.Holding = core.Rect{Left: 0, Top: ToolbarHeight, Width: HoldingExtent, Height: h - ToolbarHeight}
		area = core.Rect{
			Left:   HoldingExtent + Margin,
			Top:    ToolbarHeight + Margin,
			Width:  w - HoldingExtent - 2*Margin,
			Height: h - ToolbarHeight - 2*Margin,
		}
	}
	if area.Width <= 0 || area.Height <= 0 {
		return r
	}

	aspect := SurfaceAspect
	if rotated {
		aspect = 1 / SurfaceAspect
	}
	sw, sh := area.Width, area.Height
	if sw/sh > aspect {
		sw = sh * aspect
	} else {
		sh = sw / aspect
	}
	r.Surface = core.Rect{
		Left:   math.Floor(area.Left + (area.Width-sw)/2),
		Top:    math.Floor(area.Top + (area.Height-sh)/2),
		Width:  math.Floor(sw),
		Height: math.Floor(sh),
	}
	return r
}

// Slot is where a holding-area marker is drawn.
type Slot struct {
	ID     string
	Kind   core.MarkerKind
	Label  *core.Label
	Centre core.Point
	Radius float64
}

// Slots arranges holding markers row by row in cells sized for the largest
// marker kind. When the strip cannot hold them all at full size, cells and
// markers shrink together until every slot lies inside holding.
func Slots(holding core.Rect, markers []core.Marker, size func(core.MarkerKind) float64) []Slot {
	if len(markers) == 0 || holding.Width <= 0 || holding.Height <= 0 {
		return nil
	}
	natural := math.Max(size(core.KindRoster), size(core.KindOpposing)) + SlotGap
	cell, cols := fitGrid(holding, len(markers), natural)
	scale := cell / natural

	out := make([]Slot, len(markers))
	for i, m := range markers {
		col, row := i%cols, i/cols
		out[i] = Slot{
			ID:    m.ID,
			Kind:  m.Kind,
			Label: m.Label,
			Centre: core.Point{
				X: holding.Left + cell*(float64(col)+0.5),
				Y: holding.Top + cell*(float64(row)+0.5),
			},
			Radius: size(m.Kind) / 2 * scale,
		}
	}
	return out
}

// fitGrid returns the largest square cell, at most natural, that fits n
// cells inside r, and the column count to lay them out with.
func fitGrid(r core.Rect, n int, natural float64) (float64, int) {
	best, bestCols := 0.0, 1
	for cols := 1; cols <= n; cols++ {
		rows := (n + cols - 1) / cols
		cell := math.Min(natural, math.Min(r.Width/float64(cols), r.Height/float64(rows)))
		if cell > best {
			best, bestCols = cell, cols
		}
	}
	// widest rows the cell allows; fewer rows never overflow the height
	return best, max(int(r.Width/best), bestCols)
}

// Hit reports whether p lies on a circle.
func Hit(centre core.Point, radius float64, p core.Point) bool {
	dx, dy := p.X-centre.X, p.Y-centre.Y
	return dx*dx+dy*dy <= radius*radius
}
