// Package ui is the desktop front end: an ebiten window showing the board,
// translating mouse, touch and keyboard input into board operations.
package ui

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/OCAP2/tacticboard/internal/board"
	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/dispatcher"
	"github.com/OCAP2/tacticboard/internal/export"
	"github.com/OCAP2/tacticboard/internal/ui/layout"
	"github.com/OCAP2/tacticboard/internal/ui/pointer"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type mode int

const (
	modeNormal mode = iota
	modeNaming
	modeConfirmDelete
)

var toolKeys = map[ebiten.Key]core.Tool{
	ebiten.KeyM: core.ToolMove,
	ebiten.KeyB: core.ToolBrush,
	ebiten.KeyD: core.ToolDashed,
	ebiten.KeyL: core.ToolLine,
	ebiten.KeyA: core.ToolArrow,
	ebiten.KeyE: core.ToolEraser,
}

// Game implements ebiten.Game, board.Layout and board.Notifier.
type Game struct {
	board *board.Board
	d     *dispatcher.Dispatcher
	log   *slog.Logger

	viewport core.Size
	outside  core.Size
	rotated  bool
	regions  layout.Regions
	tracker  *pointer.Tracker

	activeTouch ebiten.TouchID
	touching    bool

	mode     mode
	name     []rune
	selected string
	notice   string

	palette    export.Palette
	renderer   *export.Renderer
	pitch      *ebiten.Image
	drawing    *ebiten.Image
	surface    *ebiten.Image
	drawingRev uint64
	rgba       *image.RGBA
}

// New creates the window game at the configured initial size. Attach must
// be called before the game runs.
func New(cfg config.WindowConfig, d *dispatcher.Dispatcher, log *slog.Logger) *Game {
	if log == nil {
		log = slog.Default()
	}
	g := &Game{
		d:        d,
		log:      log,
		viewport: core.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)},
		palette:  export.DefaultPalette,
		renderer: export.NewRenderer(),
	}
	g.outside = g.viewport
	g.tracker = &pointer.Tracker{Hit: g.hitTest, Layer: g.onLayer}
	return g
}

// Attach connects the game to its board and lays out the first frame.
func (g *Game) Attach(b *board.Board) {
	g.board = b
	g.rotated = b.Mapper().Rotated(g.viewport)
	g.regions = layout.Fit(g.viewport, g.rotated)
}

// Viewport implements board.Layout.
func (g *Game) Viewport() core.Size { return g.viewport }

// SurfaceRect implements board.Layout.
func (g *Game) SurfaceRect() core.Rect { return g.regions.Surface }

// Notify implements board.Notifier. The notice blocks input until it is
// dismissed.
func (g *Game) Notify(msg string) {
	g.notice = msg
}

// Layout implements ebiten.Game. The screen is drawn at window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outside = core.Size{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	return outsideWidth, outsideHeight
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	now := time.Now()
	g.applyViewport(now)
	g.board.Tick(now)

	if g.notice != "" {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
			inpututil.IsKeyJustPressed(ebiten.KeyEscape) ||
			inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
			inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.notice = ""
		}
		return nil
	}

	switch g.mode {
	case modeNaming:
		g.updateNaming()
		return nil
	case modeConfirmDelete:
		g.updateConfirm()
		return nil
	}

	g.updateKeys()
	for _, ev := range g.tracker.Step(g.sample()) {
		g.board.HandleInput(ev)
	}
	return nil
}

// applyViewport follows window resizes. Crossing the rotation breakpoint
// is an orientation change and settles before re-layout; any other resize
// re-lays out at once.
func (g *Game) applyViewport(now time.Time) {
	if g.outside == g.viewport {
		return
	}
	g.viewport = g.outside
	rotated := g.board.Mapper().Rotated(g.viewport)
	g.regions = layout.Fit(g.viewport, rotated)
	if rotated != g.rotated {
		g.rotated = rotated
		g.board.OrientationChanged(now)
		return
	}
	g.board.Resize()
}

func (g *Game) updateKeys() {
	for key, t := range toolKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.dispatch(board.CmdTool, string(t))
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.dispatch(board.CmdClear)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.dispatch(board.CmdReset)
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.dispatch(board.CmdExport)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.mode = modeNaming
		g.name = g.name[:0]
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.cyclePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.dispatch(board.CmdLoad, g.selected)
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		if g.selected != "" {
			g.mode = modeConfirmDelete
		}
	}
}

func (g *Game) updateNaming() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.mode = modeNormal
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.mode = modeNormal
		if _, err := g.dispatch(board.CmdSave, string(g.name)); err == nil {
			g.selected = string(g.name)
			g.name = g.name[:0]
		}
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(g.name) > 0:
		g.name = g.name[:len(g.name)-1]
	}
	g.name = ebiten.AppendInputChars(g.name)
}

func (g *Game) updateConfirm() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyY):
		g.mode = modeNormal
		if _, err := g.dispatch(board.CmdDelete, g.selected); err == nil {
			g.selected = ""
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyN), inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.mode = modeNormal
	}
}

// cyclePlay selects the next saved play, wrapping to none after the last.
func (g *Game) cyclePlay() {
	names := g.board.PlayNames()
	if len(names) == 0 {
		g.selected = ""
		return
	}
	for i, n := range names {
		if n == g.selected {
			if i+1 < len(names) {
				g.selected = names[i+1]
			} else {
				g.selected = ""
			}
			return
		}
	}
	g.selected = names[0]
}

func (g *Game) dispatch(command string, args ...string) (any, error) {
	res, err := g.d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	if err != nil && !errors.Is(err, board.ErrEmptyName) {
		g.log.Error("Command failed", "command", command, "error", err)
		g.Notify(fmt.Sprintf("Could not %s: %v", command, err))
	}
	return res, err
}

// sample reads the first active touch, or the mouse when nothing touches
// the screen.
func (g *Game) sample() pointer.Sample {
	touches := ebiten.AppendTouchIDs(nil)
	if g.touching {
		for _, id := range touches {
			if id == g.activeTouch {
				x, y := ebiten.TouchPosition(id)
				return pointer.Sample{Pressed: true, Point: core.Point{X: float64(x), Y: float64(y)}, Source: core.SourceTouch}
			}
		}
		g.touching = false
		return pointer.Sample{Source: core.SourceTouch}
	}
	if len(touches) > 0 {
		g.activeTouch = touches[0]
		g.touching = true
		x, y := ebiten.TouchPosition(g.activeTouch)
		return pointer.Sample{Pressed: true, Point: core.Point{X: float64(x), Y: float64(y)}, Source: core.SourceTouch}
	}

	x, y := ebiten.CursorPosition()
	return pointer.Sample{
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Point:   core.Point{X: float64(x), Y: float64(y)},
		Source:  core.SourceMouse,
	}
}

func (g *Game) onLayer(p core.Point) bool {
	return g.board.Mapper().Contains(p)
}

// hitTest finds the marker under p: surface markers from the top of the
// stack down, then the holding strip.
func (g *Game) hitTest(p core.Point) string {
	markers := g.board.Markers()
	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		if !m.OnSurface() {
			continue
		}
		c, r, ok := g.markerCircle(m)
		if ok && layout.Hit(c, r, p) {
			return m.ID
		}
	}
	for _, s := range g.holdingSlots() {
		if layout.Hit(s.Centre, s.Radius, p) {
			return s.ID
		}
	}
	return ""
}

// markerCircle is the on-screen circle of an on-surface marker.
func (g *Game) markerCircle(m core.Marker) (core.Point, float64, bool) {
	pos, ok := g.board.Position(m.ID)
	if !ok {
		return core.Point{}, 0, false
	}
	size := g.board.MarkerSize(m.Kind)
	c := g.board.Mapper().ToClient(core.LogicalPoint{X: pos.X + size/2, Y: pos.Y + size/2})
	return c, size / 2, true
}

func (g *Game) holdingSlots() []layout.Slot {
	return layout.Slots(g.regions.Holding, g.board.Holding(), g.board.MarkerSize)
}
