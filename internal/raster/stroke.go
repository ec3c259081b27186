package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/OCAP2/tacticboard/internal/geo"
	"github.com/OCAP2/tacticboard/pkg/core"
)

type stroke struct {
	tool  core.Tool
	style Style
	path  *geo.Path
	// travelled length, carries the dash phase across segments
	dashed float64
	// pixels before the stroke began, for shape previews
	before *image.NRGBA
}

// StrokeStart begins a stroke at p. Shape-preview tools capture the current
// pixels so every extend can redraw from a clean slate.
func (r *Raster) StrokeStart(t core.Tool, p core.LogicalPoint) error {
	if !t.IsDrawing() {
		return fmt.Errorf("%w: %q cannot draw", core.ErrUnknownTool, t)
	}
	s := &stroke{
		tool:  t,
		style: StyleFor(t),
		path:  geo.NewPath(p),
	}
	if t.IsShapePreview() {
		s.before = image.NewNRGBA(r.img.Bounds())
		copy(s.before.Pix, r.img.Pix)
	}
	r.stroke = s
	return nil
}

// Stroking reports whether a stroke is in progress.
func (r *Raster) Stroking() bool {
	return r.stroke != nil
}

// StrokeTool returns the tool of the stroke in progress.
func (r *Raster) StrokeTool() (core.Tool, bool) {
	if r.stroke == nil {
		return "", false
	}
	return r.stroke.tool, true
}

// LastPoint returns the most recent point of the stroke in progress.
func (r *Raster) LastPoint() (core.LogicalPoint, bool) {
	if r.stroke == nil {
		return core.LogicalPoint{}, false
	}
	return r.stroke.path.Last(), true
}

// StrokeExtend continues the stroke to p. Without a stroke it does nothing.
func (r *Raster) StrokeExtend(p core.LogicalPoint) {
	s := r.stroke
	if s == nil {
		return
	}
	if s.tool.IsShapePreview() {
		s.path.Add(p)
		r.preview(p)
		return
	}
	from := s.path.Last()
	s.path.Add(p)
	r.continuous(from, p)
}

// StrokeEnd finishes the stroke at p and returns the length travelled.
// Arrow strokes get their head here.
func (r *Raster) StrokeEnd(p core.LogicalPoint) float64 {
	s := r.stroke
	if s == nil {
		return 0
	}
	if s.tool.IsShapePreview() {
		if p != s.path.Last() {
			s.path.Add(p)
		}
		r.preview(p)
		if s.tool == core.ToolArrow {
			r.fill(arrowHead(s.path.First(), p), s.style)
		}
	} else if from := s.path.Last(); from != p {
		s.path.Add(p)
		r.continuous(from, p)
	}
	r.stroke = nil
	return s.path.Length()
}

// preview restores the pre-stroke pixels and draws one segment from the
// stroke origin to p.
func (r *Raster) preview(p core.LogicalPoint) {
	s := r.stroke
	copyPix(r.img, s.before)
	r.segment(s.path.First(), p, s.style)
}

func (r *Raster) continuous(from, to core.LogicalPoint) {
	s := r.stroke
	if !s.style.Dashed {
		r.segment(from, to, s.style)
		return
	}
	l := geo.SegmentLength(from, to)
	start := s.dashed
	s.dashed += l
	if l == 0 {
		return
	}

	period := DashPattern[0] + DashPattern[1]
	// walk the on-intervals overlapping [start, start+l) in path length
	for on := math.Floor(start/period) * period; on < start+l; on += period {
		a := math.Max(on, start)
		b := math.Min(on+DashPattern[0], start+l)
		if b <= a {
			continue
		}
		r.segment(lerp(from, to, (a-start)/l), lerp(from, to, (b-start)/l), s.style)
	}
}

func lerp(a, b core.LogicalPoint, t float64) core.LogicalPoint {
	return core.LogicalPoint{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// arrowHead returns the filled triangle at the end of a shaft from -> to.
func arrowHead(from, to core.LogicalPoint) []core.LogicalPoint {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	return []core.LogicalPoint{
		to,
		{
			X: to.X - ArrowHeadLength*math.Cos(angle-ArrowHeadAngle),
			Y: to.Y - ArrowHeadLength*math.Sin(angle-ArrowHeadAngle),
		},
		{
			X: to.X - ArrowHeadLength*math.Cos(angle+ArrowHeadAngle),
			Y: to.Y - ArrowHeadLength*math.Sin(angle+ArrowHeadAngle),
		},
	}
}
