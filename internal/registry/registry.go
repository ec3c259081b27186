package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/OCAP2/tacticboard/internal/geo"
	"github.com/OCAP2/tacticboard/pkg/core"
)

// Config holds the marker conventions of a board.
type Config struct {
	// OpposingPrefix marks opposing-marker ids ("r0", "r1", ...).
	OpposingPrefix string
	// OpposingCount is the size of the opposing set.
	OpposingCount int
	RosterSize    float64
	OpposingSize  float64
}

// DefaultConfig returns the stock marker conventions.
func DefaultConfig() Config {
	return Config{
		OpposingPrefix: "r",
		OpposingCount:  7,
		RosterSize:     40,
		OpposingSize:   30,
	}
}

type pendingPlacement struct {
	anchors []core.Anchor
}

// Registry maps marker ids to marker records. Order is the stacking order:
// markers dropped or restored most recently come last, and holding-area
// markers keep their order of arrival.
type Registry struct {
	mu      sync.RWMutex
	cfg     Config
	markers map[string]*core.Marker
	order   []string
	roster  map[string]core.RosterEntry
	frame   core.Frame
	pending *pendingPlacement
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	if cfg.OpposingPrefix == "" {
		cfg.OpposingPrefix = DefaultConfig().OpposingPrefix
	}
	return &Registry{
		cfg:     cfg,
		markers: make(map[string]*core.Marker),
		roster:  make(map[string]core.RosterEntry),
	}
}

// Size returns the bounding-box edge of markers of the given kind.
func (r *Registry) Size(kind core.MarkerKind) float64 {
	if kind == core.KindOpposing {
		return r.cfg.OpposingSize
	}
	return r.cfg.RosterSize
}

// KindOf infers a marker kind from its id.
func (r *Registry) KindOf(id string) core.MarkerKind {
	if strings.HasPrefix(id, r.cfg.OpposingPrefix) {
		return core.KindOpposing
	}
	return core.KindRoster
}

// SetFrame records new surface geometry. A placement that was deferred while
// the surface had no size is carried out now.
func (r *Registry) SetFrame(f core.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = f
	if r.pending != nil && f.Valid() {
		anchors := r.pending.anchors
		r.pending = nil
		r.placeOpposingLocked(anchors)
	}
}

// Initialize clears all markers and puts one roster marker per entry into
// the holding area, in roster order.
func (r *Registry) Initialize(roster []core.RosterEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.markers = make(map[string]*core.Marker, len(roster))
	r.order = r.order[:0]
	r.roster = make(map[string]core.RosterEntry, len(roster))
	r.pending = nil
	for _, e := range roster {
		r.roster[e.ID] = e
		r.addLocked(&core.Marker{
			ID:    e.ID,
			Kind:  core.KindRoster,
			Label: &core.Label{Name: e.Name, Number: e.Number},
		})
	}
}

// PlaceOpposing replaces every opposing marker with a fresh set centred on
// the formation anchors. Markers beyond the table length are centred on the
// middle of the surface. It reports false when placement was deferred
// because the surface has not been laid out yet.
func (r *Registry) PlaceOpposing(anchors []core.Anchor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frame.Valid() {
		r.pending = &pendingPlacement{anchors: append([]core.Anchor(nil), anchors...)}
		return false
	}
	r.placeOpposingLocked(anchors)
	return true
}

func (r *Registry) placeOpposingLocked(anchors []core.Anchor) {
	for _, id := range append([]string(nil), r.order...) {
		if r.markers[id].Kind == core.KindOpposing {
			r.removeLocked(id)
		}
	}

	count := r.cfg.OpposingCount
	if count <= 0 {
		count = len(anchors)
	}
	size := r.cfg.OpposingSize
	for i := 0; i < count; i++ {
		a := core.Anchor{Left: 50, Top: 50}
		if i < len(anchors) {
			a = anchors[i]
		}
		r.addLocked(&core.Marker{
			ID:   fmt.Sprintf("%s%d", r.cfg.OpposingPrefix, i),
			Kind: core.KindOpposing,
			Placement: &core.Placement{
				Left: core.CenteredAt(a.Left, size),
				Top:  core.CenteredAt(a.Top, size),
			},
		})
	}
}

// Move sets a marker's position. A nil point sends the marker to the end of
// the holding area. Other points are the marker's top-left corner and are
// clamped so the marker stays on the surface; clamping is skipped while the
// surface has no size. Unknown ids are ignored.
func (r *Registry) Move(id string, p *core.LogicalPoint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.markers[id]
	if !ok {
		return false
	}
	if p == nil {
		m.Placement = nil
	} else {
		pos, _ := geo.Clamp(*p, r.Size(m.Kind), r.frame)
		pl := core.PlacementAt(pos)
		m.Placement = &pl
	}
	r.raiseLocked(id)
	return true
}

// Get returns a copy of the marker with the given id.
func (r *Registry) Get(id string) (core.Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[id]
	if !ok {
		return core.Marker{}, false
	}
	return copyMarker(m), true
}

// Markers returns every marker in stacking order.
func (r *Registry) Markers() []core.Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Marker, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyMarker(r.markers[id]))
	}
	return out
}

// Holding returns the markers resting in the holding area, in flow order.
func (r *Registry) Holding() []core.Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Marker
	for _, id := range r.order {
		if m := r.markers[id]; m.Placement == nil {
			out = append(out, copyMarker(m))
		}
	}
	return out
}

// Position resolves a marker's top-left corner against the current frame.
// Markers in the holding area and unknown ids report false.
func (r *Registry) Position(id string) (core.LogicalPoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[id]
	if !ok || m.Placement == nil {
		return core.LogicalPoint{}, false
	}
	return m.Placement.Resolve(r.frame), true
}

// Snapshot returns the placements of all on-surface markers as persisted
// records, offsets unchanged.
func (r *Registry) Snapshot() []core.PieceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.PieceState
	for _, id := range r.order {
		m := r.markers[id]
		if m.Placement == nil {
			continue
		}
		out = append(out, core.PieceState{ID: id, Top: m.Placement.Top, Left: m.Placement.Left})
	}
	return out
}

// Restore places each record on the surface verbatim. Markers that do not
// exist are recreated, their kind inferred from the id prefix and roster
// labels looked up by id.
func (r *Registry) Restore(pieces []core.PieceState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pieces {
		m, ok := r.markers[p.ID]
		if !ok {
			m = r.newMarkerLocked(p.ID)
			r.addLocked(m)
		}
		pl := p.Placement()
		m.Placement = &pl
		r.raiseLocked(p.ID)
	}
}

// Preserve captures on-surface positions as percentages of the current
// surface, so they survive a layout change. Nothing is captured while the
// surface has no size.
func (r *Registry) Preserve() []core.PieceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.frame.Valid() {
		return nil
	}
	var out []core.PieceState
	for _, id := range r.order {
		m := r.markers[id]
		if m.Placement == nil {
			continue
		}
		pos := m.Placement.Resolve(r.frame)
		out = append(out, core.PieceState{
			ID:   id,
			Top:  core.Pct(pos.Y / r.frame.Height * 100),
			Left: core.Pct(pos.X / r.frame.Width * 100),
		})
	}
	return out
}

// RestorePlacements re-applies positions captured by Preserve. Ids that no
// longer exist are skipped.
func (r *Registry) RestorePlacements(pieces []core.PieceState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pieces {
		m, ok := r.markers[p.ID]
		if !ok {
			continue
		}
		pl := p.Placement()
		m.Placement = &pl
		r.raiseLocked(p.ID)
	}
}

func (r *Registry) newMarkerLocked(id string) *core.Marker {
	m := &core.Marker{ID: id, Kind: r.KindOf(id)}
	if m.Kind == core.KindRoster {
		if e, ok := r.roster[id]; ok {
			m.Label = &core.Label{Name: e.Name, Number: e.Number}
		}
	}
	return m
}

func (r *Registry) addLocked(m *core.Marker) {
	if _, exists := r.markers[m.ID]; exists {
		r.removeLocked(m.ID)
	}
	r.markers[m.ID] = m
	r.order = append(r.order, m.ID)
}

func (r *Registry) removeLocked(id string) {
	delete(r.markers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *Registry) raiseLocked(id string) {
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.order = append(r.order, id)
}

func copyMarker(m *core.Marker) core.Marker {
	out := *m
	if m.Label != nil {
		l := *m.Label
		out.Label = &l
	}
	if m.Placement != nil {
		p := *m.Placement
		out.Placement = &p
	}
	return out
}
