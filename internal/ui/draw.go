package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/OCAP2/tacticboard/internal/drag"
	"github.com/OCAP2/tacticboard/internal/export"
	"github.com/OCAP2/tacticboard/internal/ui/layout"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	background  = color.RGBA{0x1e, 0x1e, 0x24, 0xff}
	stripColour = color.RGBA{0x2b, 0x2b, 0x33, 0xff}
	overlay     = color.RGBA{0, 0, 0, 0xa0}
	panel       = color.RGBA{0x33, 0x33, 0x3d, 0xff}
)

// debug font cell
const (
	charW = 6
	charH = 16
)

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	h := g.regions.Holding
	vector.DrawFilledRect(screen, float32(h.Left), float32(h.Top), float32(h.Width), float32(h.Height), stripColour, false)

	g.drawSurface(screen)

	carried, dragging := g.board.Dragging()
	for _, m := range g.board.Markers() {
		if !m.OnSurface() || (dragging && m.ID == carried.ID) {
			continue
		}
		if c, r, ok := g.markerCircle(m); ok {
			g.drawMarker(screen, c, r, m.Kind, m.Label, 1)
		}
	}
	for _, s := range g.holdingSlots() {
		if dragging && s.ID == carried.ID {
			continue
		}
		g.drawMarker(screen, s.Centre, s.Radius, s.Kind, s.Label, 1)
	}
	if dragging {
		g.drawCarried(screen, carried)
	}

	g.drawToolbar(screen)
	g.drawPrompt(screen)
}

// drawSurface composes the pitch and the annotation layer in logical space
// and places the result, turned 90° clockwise when rotated.
func (g *Game) drawSurface(screen *ebiten.Image) {
	f := g.board.Frame()
	w, h := int(math.Round(f.Width)), int(math.Round(f.Height))
	if w <= 0 || h <= 0 {
		return
	}

	if g.surface == nil || g.surface.Bounds().Dx() != w || g.surface.Bounds().Dy() != h {
		g.resizeSurface(w, h)
	}

	r := g.board.Raster()
	if rw, rh := r.Size(); rw == w && rh == h && r.Revision() != g.drawingRev {
		draw.Draw(g.rgba, g.rgba.Bounds(), r.Image(), image.Point{}, draw.Src)
		g.drawing.WritePixels(g.rgba.Pix)
		g.drawingRev = r.Revision()
	}

	g.surface.Clear()
	g.surface.DrawImage(g.pitch, nil)
	g.surface.DrawImage(g.drawing, nil)

	op := &ebiten.DrawImageOptions{}
	b := f.Bounds
	if f.Rotated {
		op.GeoM.Rotate(math.Pi / 2)
		op.GeoM.Translate(b.Left+b.Width, b.Top)
	} else {
		op.GeoM.Translate(b.Left, b.Top)
	}
	screen.DrawImage(g.surface, op)
}

func (g *Game) resizeSurface(w, h int) {
	for _, img := range []*ebiten.Image{g.surface, g.pitch, g.drawing} {
		if img != nil {
			img.Deallocate()
		}
	}
	g.surface = ebiten.NewImage(w, h)
	g.drawing = ebiten.NewImage(w, h)
	g.rgba = image.NewRGBA(image.Rect(0, 0, w, h))

	pitch, err := g.renderer.Compose(export.Scene{Width: w, Height: h})
	if err != nil {
		g.log.Error("Failed to draw pitch", "error", err)
		pitch = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	g.pitch = ebiten.NewImageFromImage(pitch)
	// force a re-upload of the annotation pixels
	g.drawingRev = math.MaxUint64
}

func (g *Game) markerColour(kind core.MarkerKind) color.RGBA {
	if kind == core.KindOpposing {
		return g.palette.Opposing
	}
	return g.palette.Roster
}

func (g *Game) drawMarker(screen *ebiten.Image, c core.Point, radius float64, kind core.MarkerKind, label *core.Label, opacity float64) {
	clr := g.markerColour(kind)
	if opacity < 1 {
		clr = fade(clr, opacity)
	}
	vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), float32(radius), clr, true)
	if label == nil {
		return
	}
	printCentred(screen, label.Number, c.X, c.Y-charH/2)
	printCentred(screen, label.Name, c.X, c.Y+radius)
}

func (g *Game) drawCarried(screen *ebiten.Image, v drag.Visual) {
	m, ok := g.findMarker(v.ID)
	if !ok {
		return
	}
	r := v.Size / 2
	c := core.Point{X: v.TopLeft.X + r, Y: v.TopLeft.Y + r}
	g.drawMarker(screen, c, r, m.Kind, m.Label, v.Opacity)
}

func (g *Game) findMarker(id string) (core.Marker, bool) {
	for _, m := range g.board.Markers() {
		if m.ID == id {
			return m, true
		}
	}
	return core.Marker{}, false
}

func (g *Game) drawToolbar(screen *ebiten.Image) {
	var tools strings.Builder
	for _, c := range g.board.Tools().Controls() {
		name := string(c.Tool)
		if c.Selected {
			name = "*" + strings.ToUpper(name) + "*"
		}
		tools.WriteString(name)
		tools.WriteString("  ")
	}
	ebitenutil.DebugPrintAt(screen, tools.String(), layout.Margin, 2)

	play := g.selected
	if play == "" {
		play = "-"
	}
	help := fmt.Sprintf("play: %s (F3)   S save  Enter load  Del delete  C clear  R reset  X export", play)
	ebitenutil.DebugPrintAt(screen, help, layout.Margin, 2+charH)
}

func (g *Game) drawPrompt(screen *ebiten.Image) {
	var lines []string
	switch {
	case g.notice != "":
		lines = []string{g.notice, "", "Press Enter to continue"}
	case g.mode == modeNaming:
		lines = []string{"Play name: " + string(g.name) + "_", "", "Enter to save, Esc to cancel"}
	case g.mode == modeConfirmDelete:
		lines = []string{fmt.Sprintf("Delete play %q?", g.selected), "", "Y / N"}
	default:
		return
	}

	sw, sh := g.viewport.Width, g.viewport.Height
	vector.DrawFilledRect(screen, 0, 0, float32(sw), float32(sh), overlay, false)

	width := 0
	for _, l := range lines {
		width = max(width, len(l)*charW)
	}
	bw, bh := float64(width+4*layout.Margin), float64(len(lines)*charH+4*layout.Margin)
	bx, by := (sw-bw)/2, (sh-bh)/2
	vector.DrawFilledRect(screen, float32(bx), float32(by), float32(bw), float32(bh), panel, false)
	vector.StrokeRect(screen, float32(bx), float32(by), float32(bw), float32(bh), 1, color.White, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, int(bx)+2*layout.Margin, int(by)+2*layout.Margin+i*charH)
	}
}

func printCentred(screen *ebiten.Image, s string, cx, y float64) {
	if s == "" {
		return
	}
	ebitenutil.DebugPrintAt(screen, s, int(cx)-len(s)*charW/2, int(y))
}

// fade scales a premultiplied colour by opacity.
func fade(c color.RGBA, opacity float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(float64(c.A) * opacity),
	}
}
