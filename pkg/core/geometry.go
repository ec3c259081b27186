// pkg/core/geometry.go
package core

// Point is a position in client (viewport) space, as reported by the input
// source before any surface mapping.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LogicalPoint is a position in the surface's own un-rotated, unscaled frame.
type LogicalPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an on-screen bounding box in client space.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Frame is the surface geometry recomputed on every resize or orientation
// change. Width and Height are logical (layout) dimensions; Bounds is the
// on-screen bounding box, which is swapped relative to Width/Height while
// Rotated is set.
type Frame struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Rotated bool    `json:"rotated"`
	Bounds  Rect    `json:"bounds"`
}

// Valid reports whether the surface has been laid out.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}
