package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/OCAP2/tacticboard/pkg/core"
	"golang.org/x/image/vector"
)

const (
	// StrokeWidth is the width of every stroke in logical units.
	StrokeWidth = 4
	// ArrowHeadLength is the length of the arrowhead sides.
	ArrowHeadLength = 15
	// ArrowHeadAngle is the half-angle between the shaft and each side.
	ArrowHeadAngle = math.Pi / 6

	// circle approximation used for round caps and joins
	capSegments = 16
)

// StrokeColor is the fixed annotation colour (#FFFF00).
var StrokeColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}

// DashPattern is the on/off pattern of dashed strokes.
var DashPattern = [2]float64{10, 10}

// Style is how a tool marks the raster.
type Style struct {
	// Erase removes coverage instead of painting.
	Erase bool
	// Dashed strokes follow DashPattern.
	Dashed bool
}

// StyleFor maps a drawing tool to its style.
func StyleFor(t core.Tool) Style {
	return Style{
		Erase:  t == core.ToolEraser,
		Dashed: t == core.ToolDashed,
	}
}

// Raster is the annotation bitmap laid over the surface, in logical pixels.
type Raster struct {
	img      *image.NRGBA
	stroke   *stroke
	revision uint64
}

// New allocates a transparent raster.
func New(width, height int) *Raster {
	return &Raster{img: image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Size returns the buffer dimensions.
func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the live buffer. Callers must not modify it.
func (r *Raster) Image() *image.NRGBA {
	return r.img
}

// Revision changes whenever the pixels change.
func (r *Raster) Revision() uint64 {
	return r.revision
}

// Resize reallocates the buffer and copies prior content to the top-left
// corner, unscaled. Content beyond the new bounds is dropped.
func (r *Raster) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if w, h := r.Size(); w == width && h == height {
		return
	}
	r.img = resized(r.img, width, height)
	if r.stroke != nil && r.stroke.before != nil {
		r.stroke.before = resized(r.stroke.before, width, height)
	}
	r.revision++
}

// Clear blanks the whole buffer.
func (r *Raster) Clear() {
	clear(r.img.Pix)
	r.revision++
}

// Empty reports whether no pixel has any coverage.
func (r *Raster) Empty() bool {
	for i := 3; i < len(r.img.Pix); i += 4 {
		if r.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

func resized(src *image.NRGBA, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	copyPix(dst, src)
	return dst
}

// copyPix copies the overlapping top-left region of src into dst.
func copyPix(dst, src *image.NRGBA) {
	b := dst.Bounds().Intersect(src.Bounds())
	n := b.Dx() * 4
	for y := b.Min.Y; y < b.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(b.Min.X, y):][:n], src.Pix[src.PixOffset(b.Min.X, y):][:n])
	}
}

// segment marks a round-capped line of StrokeWidth from a to b.
func (r *Raster) segment(a, b core.LogicalPoint, st Style) {
	half := float64(StrokeWidth) / 2
	area := image.Rect(
		int(math.Floor(math.Min(a.X, b.X)-half)), int(math.Floor(math.Min(a.Y, b.Y)-half)),
		int(math.Ceil(math.Max(a.X, b.X)+half)), int(math.Ceil(math.Max(a.Y, b.Y)+half)),
	).Intersect(r.img.Bounds())
	if area.Empty() {
		return
	}

	z := vector.NewRasterizer(area.Dx(), area.Dy())
	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	shift := func(p core.LogicalPoint) core.LogicalPoint {
		return core.LogicalPoint{X: p.X - ox, Y: p.Y - oy}
	}
	a, b = shift(a), shift(b)

	circle(z, a, half)
	circle(z, b, half)
	if dx, dy := b.X-a.X, b.Y-a.Y; dx != 0 || dy != 0 {
		l := math.Hypot(dx, dy)
		nx, ny := -dy/l*half, dx/l*half
		quad := []core.LogicalPoint{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		}
		polygon(z, quad)
	}
	r.apply(z, area, st)
}

// fill marks a closed polygon.
func (r *Raster) fill(pts []core.LogicalPoint, st Style) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	area := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(r.img.Bounds())
	if area.Empty() {
		return
	}

	z := vector.NewRasterizer(area.Dx(), area.Dy())
	shifted := make([]core.LogicalPoint, len(pts))
	for i, p := range pts {
		shifted[i] = core.LogicalPoint{X: p.X - float64(area.Min.X), Y: p.Y - float64(area.Min.Y)}
	}
	polygon(z, shifted)
	r.apply(z, area, st)
}

func (r *Raster) apply(z *vector.Rasterizer, area image.Rectangle, st Style) {
	mask := image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	if st.Erase {
		// destination-out: keep colour, scale alpha by (1 - coverage)
		for y := 0; y < area.Dy(); y++ {
			for x := 0; x < area.Dx(); x++ {
				m := uint32(mask.Pix[mask.PixOffset(x, y)])
				if m == 0 {
					continue
				}
				i := r.img.PixOffset(area.Min.X+x, area.Min.Y+y) + 3
				r.img.Pix[i] = uint8(uint32(r.img.Pix[i]) * (255 - m) / 255)
			}
		}
	} else {
		draw.DrawMask(r.img, area, image.NewUniform(StrokeColor), image.Point{}, mask, image.Point{}, draw.Over)
	}
	r.revision++
}

// polygon adds a closed path with positive signed area, so overlapping
// shapes accumulate instead of cancelling.
func polygon(z *vector.Rasterizer, pts []core.LogicalPoint) {
	if len(pts) < 3 {
		return
	}
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if area < 0 {
		rev := make([]core.LogicalPoint, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		pts = rev
	}
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

func circle(z *vector.Rasterizer, c core.LogicalPoint, radius float64) {
	pts := make([]core.LogicalPoint, capSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / capSegments
		pts[i] = core.LogicalPoint{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	polygon(z, pts)
}
