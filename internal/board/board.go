// Package board holds one editing session: the surface geometry, the
// markers, the annotation layer and the controls that act on them.
//
// A Board is driven from a single goroutine (the front end's frame loop).
// The only methods safe to call from elsewhere are the BoardState accessors
// used by the logging context handler.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/drag"
	"github.com/OCAP2/tacticboard/internal/export"
	"github.com/OCAP2/tacticboard/internal/geo"
	"github.com/OCAP2/tacticboard/internal/raster"
	"github.com/OCAP2/tacticboard/internal/registry"
	"github.com/OCAP2/tacticboard/internal/snapshot"
	"github.com/OCAP2/tacticboard/internal/storage"
	"github.com/OCAP2/tacticboard/internal/tool"
	"github.com/OCAP2/tacticboard/pkg/core"
	"go.opentelemetry.io/otel/metric"
)

// ErrEmptyName is returned by Save when the trimmed name is empty.
var ErrEmptyName = errors.New("play name is empty")

// Notices shown to the user.
const (
	NoticeEmptyName = "Please enter a name for the play."
	NoticeSaved     = "Play saved successfully!"
)

// Layout measures the front end. SurfaceRect is the on-screen bounding box
// of the surface, already rotated when the viewport calls for it.
type Layout interface {
	Viewport() core.Size
	SurfaceRect() core.Rect
}

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(msg string)
}

// Exporter renders a scene to image bytes.
type Exporter interface {
	Render(s export.Scene) ([]byte, error)
}

// Recorder receives usage events; *influx.Recorder satisfies it.
type Recorder interface {
	Record(ctx context.Context, event string, fields map[string]any) error
}

// Options wires a Board to its collaborators. Store and Layout are
// required; the rest are optional.
type Options struct {
	Config   config.BoardConfig
	Layout   Layout
	Store    storage.Store
	Exporter Exporter
	Notifier Notifier
	Recorder Recorder
	Logger   *slog.Logger
	// Meter defaults to the global OTel meter.
	Meter metric.Meter
}

// Board is the explicit session state.
type Board struct {
	cfg      config.BoardConfig
	normal   []core.Anchor
	rotated  []core.Anchor
	layout   Layout
	store    storage.Store
	exporter Exporter
	notifier Notifier
	recorder Recorder
	log      *slog.Logger
	metrics  *metrics

	mapper  *geo.Mapper
	markers *registry.Registry
	raster  *raster.Raster
	drag    *drag.Controller
	tools   *tool.Controller
	codec   *snapshot.Codec

	namesMu sync.RWMutex
	names   []string

	// mirrored for BoardState readers on other goroutines
	draggingID atomic.Value
	stroking   atomic.Bool

	// orientation settle
	preserved []core.PieceState
	settleAt  time.Time
	settling  bool
	// reform deals the opposing formation afresh when the settle runs
	reform bool
}

// New builds a board from its options. Both formation tables are parsed up
// front so a bad config fails here rather than on the first rotation.
func New(opts Options) (*Board, error) {
	if opts.Layout == nil {
		return nil, errors.New("board: layout is required")
	}
	if opts.Store == nil {
		return nil, errors.New("board: store is required")
	}

	normal, err := opts.Config.Formation(false)
	if err != nil {
		return nil, fmt.Errorf("normal formation: %w", err)
	}
	rotated, err := opts.Config.Formation(true)
	if err != nil {
		return nil, fmt.Errorf("rotated formation: %w", err)
	}

	m, err := newMetrics(opts.Meter)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	exporter := opts.Exporter
	if exporter == nil {
		exporter = export.NewRenderer()
	}

	b := &Board{
		cfg:      opts.Config,
		normal:   normal,
		rotated:  rotated,
		layout:   opts.Layout,
		store:    opts.Store,
		exporter: exporter,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		log:      log,
		metrics:  m,
		mapper:   geo.NewMapper(opts.Config.Breakpoint),
		markers: registry.New(registry.Config{
			OpposingPrefix: opts.Config.OpposingPrefix,
			OpposingCount:  opts.Config.OpposingCount,
			RosterSize:     opts.Config.RosterSize,
			OpposingSize:   opts.Config.OpposingSize,
		}),
		raster: raster.New(0, 0),
		tools:  tool.NewController(),
	}
	b.draggingID.Store("")
	b.drag = drag.NewController(b.markers, b.mapper, b.tools)
	b.codec = snapshot.NewCodec(b.markers, b.raster, opts.Config.Roster)
	b.tools.OnChange = func(t core.Tool) {
		b.log.Debug("Tool selected", "selected", string(t))
	}
	return b, nil
}

// Init lays out the surface, fills the holding area, places the opposing
// set for the current orientation and loads the saved play names.
func (b *Board) Init(ctx context.Context) {
	f := b.Resize()
	b.markers.Initialize(b.cfg.Roster)
	if !b.markers.PlaceOpposing(b.formation(f.Rotated)) {
		b.log.Debug("Surface has no size yet, opposing placement deferred")
	}
	_ = b.tools.SetTool(core.ToolMove)
	if err := b.RefreshPlayNames(ctx); err != nil {
		b.log.Warn("Failed to load saved plays", "error", err)
	}
	b.log.Info("Board initialized",
		"width", f.Width,
		"height", f.Height,
		"rotated", f.Rotated,
		"roster", len(b.cfg.Roster))
}

func (b *Board) formation(rotated bool) []core.Anchor {
	if rotated {
		return b.rotated
	}
	return b.normal
}

// Resize re-measures the layout. The raster keeps its content and a
// placement deferred on a zero-size surface runs once the size is valid.
func (b *Board) Resize() core.Frame {
	f := b.mapper.Update(b.layout.Viewport(), b.layout.SurfaceRect())
	b.markers.SetFrame(f)
	b.raster.Resize(int(math.Round(f.Width)), int(math.Round(f.Height)))
	return f
}

// OrientationChanged captures marker positions as percentages and schedules
// the re-layout for after the settle delay.
func (b *Board) OrientationChanged(now time.Time) {
	b.preserved = b.markers.Preserve()
	b.settleAt = now.Add(b.cfg.SettleDelay)
	b.settling = true
	b.log.Debug("Orientation changed", "preserved", len(b.preserved))
}

// Tick runs the pending orientation re-layout once its delay has passed.
// It reports whether the layout changed.
func (b *Board) Tick(now time.Time) bool {
	if !b.settling || now.Before(b.settleAt) {
		return false
	}
	b.settling = false
	f := b.Resize()
	if b.reform {
		b.markers.PlaceOpposing(b.formation(f.Rotated))
		b.reform = false
	} else {
		b.markers.RestorePlacements(b.preserved)
	}
	b.preserved = nil
	b.log.Debug("Orientation settled", "width", f.Width, "height", f.Height, "rotated", f.Rotated)
	return true
}

// HandleInput routes a pointer event by the active tool: the move tool
// drives the drag controller, drawing tools drive the annotation layer.
func (b *Board) HandleInput(ev core.InputEvent) {
	if b.tools.LayerAcceptsInput() {
		b.handleStroke(ev)
		return
	}
	b.handleDrag(ev)
}

func (b *Board) handleDrag(ev core.InputEvent) {
	switch ev.Type {
	case core.EventDown:
		if b.drag.Down(ev) {
			b.draggingID.Store(ev.Target)
		}
	case core.EventMove:
		b.drag.Move(ev)
	case core.EventUp:
		d, ok := b.drag.Up(ev)
		if !ok {
			return
		}
		b.draggingID.Store("")
		b.metrics.drops.Add(context.Background(), 1)
		b.log.Debug("Marker dropped", "id", d.ID, "onSurface", d.OnSurface)
		b.record(context.Background(), "drop", map[string]any{
			"id":        d.ID,
			"onSurface": d.OnSurface,
		})
	}
}

func (b *Board) handleStroke(ev core.InputEvent) {
	switch ev.Type {
	case core.EventDown:
		if !ev.OnLayer || b.raster.Stroking() {
			return
		}
		if err := b.raster.StrokeStart(b.tools.Active(), b.mapper.ToLogical(ev)); err != nil {
			b.log.Error("Failed to start stroke", "error", err)
			return
		}
		b.stroking.Store(true)
	case core.EventMove:
		if !b.raster.Stroking() {
			return
		}
		if !ev.OnLayer {
			b.endStrokeAtLast()
			return
		}
		b.raster.StrokeExtend(b.mapper.ToLogical(ev))
	case core.EventUp:
		if !b.raster.Stroking() {
			return
		}
		if !ev.OnLayer {
			b.endStrokeAtLast()
			return
		}
		b.endStroke(b.mapper.ToLogical(ev))
	case core.EventLeave:
		b.endStrokeAtLast()
	}
}

func (b *Board) endStrokeAtLast() {
	if p, ok := b.raster.LastPoint(); ok {
		b.endStroke(p)
	}
}

func (b *Board) endStroke(p core.LogicalPoint) {
	t, ok := b.raster.StrokeTool()
	if !ok {
		return
	}
	length := b.raster.StrokeEnd(p)
	b.stroking.Store(false)
	b.metrics.strokes.Add(context.Background(), 1)
	b.log.Debug("Stroke finished", "stroke", string(t), "length", length)
	b.record(context.Background(), "stroke", map[string]any{
		"tool":   string(t),
		"length": length,
	})
}

// SetTool selects a tool. A stroke in progress ends at its last point and
// leaving the move tool abandons any drag.
func (b *Board) SetTool(t core.Tool) error {
	if _, err := core.ParseTool(string(t)); err != nil {
		return err
	}
	b.endStrokeAtLast()
	if t != core.ToolMove {
		b.cancelDrag()
	}
	return b.tools.SetTool(t)
}

func (b *Board) cancelDrag() {
	b.drag.Cancel()
	b.draggingID.Store("")
}

// ClearDrawing blanks the annotation layer.
func (b *Board) ClearDrawing() {
	b.endStrokeAtLast()
	b.raster.Clear()
	b.log.Info("Drawing cleared")
}

// ResetMarkers returns the roster to the holding area and re-places the
// opposing set for the current orientation. The drawing is kept.
func (b *Board) ResetMarkers() {
	b.cancelDrag()
	b.markers.Initialize(b.cfg.Roster)
	b.markers.PlaceOpposing(b.formation(b.mapper.Frame().Rotated))
	if b.settling {
		b.preserved = nil
		b.reform = true
	}
	b.log.Info("Markers reset")
}

// Scene describes the current surface for the exporter.
func (b *Board) Scene() export.Scene {
	f := b.mapper.Frame()
	s := export.Scene{
		Width:   int(math.Round(f.Width)),
		Height:  int(math.Round(f.Height)),
		Drawing: b.raster.Image(),
	}
	for _, m := range b.markers.Markers() {
		if !m.OnSurface() {
			continue
		}
		pos, ok := b.markers.Position(m.ID)
		if !ok {
			continue
		}
		s.Pieces = append(s.Pieces, export.Piece{
			ID:      m.ID,
			Kind:    m.Kind,
			Label:   m.Label,
			TopLeft: pos,
			Size:    b.markers.Size(m.Kind),
		})
	}
	return s
}

// Export switches to the move tool and renders the surface.
func (b *Board) Export(ctx context.Context) ([]byte, error) {
	if err := b.SetTool(core.ToolMove); err != nil {
		return nil, err
	}
	s := b.Scene()
	data, err := b.exporter.Render(s)
	if err != nil {
		return nil, fmt.Errorf("failed to export surface: %w", err)
	}
	b.metrics.exports.Add(ctx, 1)
	b.log.Info("Surface exported", "pieces", len(s.Pieces), "bytes", len(data))
	b.record(ctx, "export", map[string]any{"pieces": len(s.Pieces)})
	return data, nil
}

// Save stores the current board under name, overwriting any play with the
// same name. An empty name shows a notice and changes nothing.
func (b *Board) Save(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		b.notify(NoticeEmptyName)
		return ErrEmptyName
	}

	play, err := b.codec.Capture(name)
	if err != nil {
		return err
	}
	if err := b.store.Set(ctx, play); err != nil {
		return fmt.Errorf("failed to save play %q: %w", name, err)
	}
	if err := b.RefreshPlayNames(ctx); err != nil {
		b.log.Warn("Failed to refresh saved plays", "error", err)
	}

	b.metrics.saved.Add(ctx, 1)
	b.log.Info("Play saved", "name", name, "pieces", len(play.Pieces))
	b.record(ctx, "save", map[string]any{"pieces": len(play.Pieces)})
	b.notify(NoticeSaved)
	return nil
}

// Load replaces the board with a saved play. Unknown names do nothing.
func (b *Board) Load(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	play, ok, err := b.store.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load play %q: %w", name, err)
	}
	if !ok {
		b.log.Debug("Play not found", "name", name)
		return nil
	}

	b.endStrokeAtLast()
	b.cancelDrag()
	applyErr := b.codec.Apply(play)
	if applyErr != nil {
		b.log.Warn("Play drawing could not be restored", "name", name, "error", applyErr)
	}
	if b.settling {
		// carry the loaded play, not the old board, through the rotation
		b.preserved = b.markers.Preserve()
		b.reform = false
	}

	b.metrics.loaded.Add(ctx, 1)
	b.log.Info("Play loaded", "name", name, "pieces", len(play.Pieces))
	b.record(ctx, "load", map[string]any{"pieces": len(play.Pieces)})
	return applyErr
}

// Delete removes a saved play. Unknown names do nothing.
func (b *Board) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if err := b.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete play %q: %w", name, err)
	}
	if err := b.RefreshPlayNames(ctx); err != nil {
		b.log.Warn("Failed to refresh saved plays", "error", err)
	}
	b.log.Info("Play deleted", "name", name)
	return nil
}

// RefreshPlayNames reloads the saved play names from the store.
func (b *Board) RefreshPlayNames(ctx context.Context) error {
	plays, err := b.store.GetAll(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(plays))
	for name := range plays {
		names = append(names, name)
	}
	sort.Strings(names)

	b.namesMu.Lock()
	b.names = names
	b.namesMu.Unlock()
	return nil
}

// PlayNames returns the saved play names in order, as of the last refresh.
func (b *Board) PlayNames() []string {
	b.namesMu.RLock()
	defer b.namesMu.RUnlock()
	return append([]string(nil), b.names...)
}

func (b *Board) notify(msg string) {
	b.log.Info("Notice", "message", msg)
	if b.notifier != nil {
		b.notifier.Notify(msg)
	}
}

func (b *Board) record(ctx context.Context, event string, fields map[string]any) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.Record(ctx, event, fields); err != nil {
		b.log.Debug("Failed to record board event", "event", event, "error", err)
	}
}

// Markers returns every marker in stacking order.
func (b *Board) Markers() []core.Marker { return b.markers.Markers() }

// Holding returns the markers resting in the holding area.
func (b *Board) Holding() []core.Marker { return b.markers.Holding() }

// Position returns the top-left corner of an on-surface marker.
func (b *Board) Position(id string) (core.LogicalPoint, bool) { return b.markers.Position(id) }

// MarkerSize returns the bounding-box edge for a marker kind.
func (b *Board) MarkerSize(kind core.MarkerKind) float64 { return b.markers.Size(kind) }

// Frame returns the current surface geometry.
func (b *Board) Frame() core.Frame { return b.mapper.Frame() }

// Mapper returns the coordinate mapper.
func (b *Board) Mapper() *geo.Mapper { return b.mapper }

// Dragging returns the marker being carried, if any.
func (b *Board) Dragging() (drag.Visual, bool) { return b.drag.Dragging() }

// Raster returns the annotation layer.
func (b *Board) Raster() *raster.Raster { return b.raster }

// Tools returns the tool controller.
func (b *Board) Tools() *tool.Controller { return b.tools }

// ActiveTool implements logging.BoardState.
func (b *Board) ActiveTool() string { return string(b.tools.Active()) }

// DraggingID implements logging.BoardState.
func (b *Board) DraggingID() (string, bool) {
	id, _ := b.draggingID.Load().(string)
	return id, id != ""
}

// Stroking implements logging.BoardState.
func (b *Board) Stroking() bool { return b.stroking.Load() }
