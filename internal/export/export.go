// Package export renders a board scene to a PNG image.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/OCAP2/tacticboard/pkg/core"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ErrEmptyScene is returned when the surface has not been laid out.
var ErrEmptyScene = errors.New("scene has no size")

// Piece is one on-surface marker in logical coordinates.
type Piece struct {
	ID      string
	Kind    core.MarkerKind
	Label   *core.Label
	TopLeft core.LogicalPoint
	Size    float64
}

// Scene is everything visible on the surface.
type Scene struct {
	Width   int
	Height  int
	Pieces  []Piece
	Drawing *image.NRGBA
}

// Palette holds the export colours.
type Palette struct {
	Pitch    color.RGBA
	Lines    color.RGBA
	Roster   color.RGBA
	Opposing color.RGBA
	Text     color.RGBA
}

// DefaultPalette is a grass pitch with blue roster and red opposing markers.
var DefaultPalette = Palette{
	Pitch:    color.RGBA{0x2e, 0x7d, 0x32, 0xff},
	Lines:    color.RGBA{0xff, 0xff, 0xff, 0xcc},
	Roster:   color.RGBA{0x15, 0x65, 0xc0, 0xff},
	Opposing: color.RGBA{0xc6, 0x28, 0x28, 0xff},
	Text:     color.RGBA{0xff, 0xff, 0xff, 0xff},
}

const lineWidth = 2

// Renderer composes scenes into images.
type Renderer struct {
	Palette Palette
	Face    font.Face
}

// NewRenderer returns a renderer with the default palette and the basic
// 7x13 bitmap font.
func NewRenderer() *Renderer {
	return &Renderer{Palette: DefaultPalette, Face: basicfont.Face7x13}
}

// Render draws the pitch, the annotation layer and the markers and
// encodes the result as PNG.
func (r *Renderer) Render(s Scene) ([]byte, error) {
	img, err := r.Compose(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return buf.Bytes(), nil
}

// Compose draws the scene without encoding it.
func (r *Renderer) Compose(s Scene) (*image.RGBA, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, ErrEmptyScene
	}
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.Palette.Pitch), image.Point{}, draw.Src)
	r.pitchLines(img)

	if s.Drawing != nil {
		draw.Draw(img, img.Bounds(), s.Drawing, image.Point{}, draw.Over)
	}

	for _, p := range s.Pieces {
		r.piece(img, p)
	}
	return img, nil
}

func (r *Renderer) pitchLines(img *image.RGBA) {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	z := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())
	inset := float64(lineWidth) * 2

	// touchlines
	rectRing(z, inset, inset, w-inset, h-inset, lineWidth)
	// halfway line
	rect(z, w/2-lineWidth/2, inset, w/2+lineWidth/2, h-inset)
	// centre circle
	radius := math.Min(w, h) * 0.15
	ring(z, w/2, h/2, radius, lineWidth)
	// goal areas
	boxH := h * 0.4
	boxW := w * 0.12
	rectRing(z, inset, h/2-boxH/2, inset+boxW, h/2+boxH/2, lineWidth)
	rectRing(z, w-inset-boxW, h/2-boxH/2, w-inset, h/2+boxH/2, lineWidth)

	z.Draw(img, img.Bounds(), image.NewUniform(r.Palette.Lines), image.Point{})
}

func (r *Renderer) piece(img *image.RGBA, p Piece) {
	c := r.Palette.Roster
	if p.Kind == core.KindOpposing {
		c = r.Palette.Opposing
	}
	radius := p.Size / 2
	cx, cy := p.TopLeft.X+radius, p.TopLeft.Y+radius

	z := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())
	disc(z, cx, cy, radius, false)
	z.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})

	if p.Label == nil || r.Face == nil {
		return
	}
	r.text(img, p.Label.Number, cx, cy)
	if p.Label.Name != "" {
		r.text(img, p.Label.Name, cx, cy+radius+float64(r.Face.Metrics().Height.Ceil())/2+2)
	}
}

// text draws s centred on (cx, cy).
func (r *Renderer) text(img *image.RGBA, s string, cx, cy float64) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.Palette.Text),
		Face: r.Face,
	}
	m := r.Face.Metrics()
	width := d.MeasureString(s)
	x := fixed.Int26_6(cx*64) - width/2
	y := fixed.Int26_6(cy*64) + (m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(s)
}

// The rasterizer accumulates absolute coverage, so holes are cut by
// tracing the inner outline in the opposite direction.

func rect(z *vector.Rasterizer, x0, y0, x1, y1 float64) {
	z.MoveTo(float32(x0), float32(y0))
	z.LineTo(float32(x1), float32(y0))
	z.LineTo(float32(x1), float32(y1))
	z.LineTo(float32(x0), float32(y1))
	z.ClosePath()
}

func rectRing(z *vector.Rasterizer, x0, y0, x1, y1, width float64) {
	rect(z, x0, y0, x1, y1)
	x0, y0, x1, y1 = x0+width, y0+width, x1-width, y1-width
	z.MoveTo(float32(x0), float32(y0))
	z.LineTo(float32(x0), float32(y1))
	z.LineTo(float32(x1), float32(y1))
	z.LineTo(float32(x1), float32(y0))
	z.ClosePath()
}

func ring(z *vector.Rasterizer, cx, cy, radius, width float64) {
	disc(z, cx, cy, radius+width/2, false)
	disc(z, cx, cy, radius-width/2, true)
}

func disc(z *vector.Rasterizer, cx, cy, radius float64, reverse bool) {
	const segments = 48
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		if reverse {
			a = -a
		}
		x, y := float32(cx+radius*math.Cos(a)), float32(cy+radius*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

// WriteFile stores an exported image under dir and returns its path.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
