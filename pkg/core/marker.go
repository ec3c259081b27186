// pkg/core/marker.go
package core

// MarkerKind distinguishes roster markers from opposing markers.
type MarkerKind int

const (
	KindRoster MarkerKind = iota
	KindOpposing
)

func (k MarkerKind) String() string {
	switch k {
	case KindOpposing:
		return "opposing"
	default:
		return "roster"
	}
}

// Label is the display text carried by roster markers.
type Label struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// RosterEntry is one configured roster member.
type RosterEntry struct {
	ID     string `json:"id" mapstructure:"id"`
	Number string `json:"number" mapstructure:"number"`
	Name   string `json:"name" mapstructure:"name"`
}

// Marker is a placed or resting marker. A nil Placement means the marker sits
// in the holding area.
type Marker struct {
	ID        string
	Kind      MarkerKind
	Label     *Label
	Placement *Placement
}

// OnSurface reports whether the marker has an explicit position on the surface.
func (m Marker) OnSurface() bool {
	return m.Placement != nil
}

// Anchor is a formation point expressed as percentages of the surface.
type Anchor struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}
