package geo

import (
	"github.com/OCAP2/tacticboard/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Path accumulates the logical points of one stroke.
type Path struct {
	flat []float64
}

// NewPath starts a path at p.
func NewPath(p core.LogicalPoint) *Path {
	return &Path{flat: []float64{p.X, p.Y}}
}

// Add appends a point.
func (p *Path) Add(pt core.LogicalPoint) {
	p.flat = append(p.flat, pt.X, pt.Y)
}

// Len returns the number of points.
func (p *Path) Len() int {
	return len(p.flat) / 2
}

// At returns the i-th point.
func (p *Path) At(i int) core.LogicalPoint {
	return core.LogicalPoint{X: p.flat[2*i], Y: p.flat[2*i+1]}
}

// First returns the starting point.
func (p *Path) First() core.LogicalPoint {
	return p.At(0)
}

// Last returns the most recent point.
func (p *Path) Last() core.LogicalPoint {
	return p.At(p.Len() - 1)
}

// LineString returns the path as a geometry. Paths without two distinct
// points yield an empty line string.
func (p *Path) LineString() geom.LineString {
	if p.Len() < 2 {
		return geom.LineString{}
	}
	return lineString(append([]float64(nil), p.flat...))
}

// Length returns the travelled length of the path.
func (p *Path) Length() float64 {
	if p.Len() < 2 {
		return 0
	}
	return p.LineString().Length()
}

// SegmentLength returns the length of the straight segment between a and b.
func SegmentLength(a, b core.LogicalPoint) float64 {
	return lineString([]float64{a.X, a.Y, b.X, b.Y}).Length()
}

func lineString(flat []float64) geom.LineString {
	// OmitInvalid never errors; a degenerate sequence becomes empty
	ls, _ := geom.NewLineString(geom.NewSequence(flat, geom.DimXY), geom.OmitInvalid)
	return ls
}
