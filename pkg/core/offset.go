// pkg/core/offset.go
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidOffset is returned when a style offset cannot be parsed
var ErrInvalidOffset = errors.New("invalid offset")

// Offset is a one-axis style offset such as "120px", "40%" or
// "calc(40% - 15px)". Saved plays store offsets as strings and must get the
// same string back on restore, so a parsed Offset remembers its source text.
type Offset struct {
	Percent float64
	Pixels  float64

	raw      string
	verbatim bool
}

// Px returns a pixel offset.
func Px(v float64) Offset {
	return Offset{Pixels: v}
}

// Pct returns a percentage offset.
func Pct(p float64) Offset {
	return Offset{Percent: p}
}

// CenteredAt returns an offset that centres an extent of size on the given
// percentage, i.e. calc(p% - size/2 px).
func CenteredAt(p, size float64) Offset {
	return Offset{Percent: p, Pixels: -size / 2}
}

// ParseOffset parses the offset forms written by the board: "Npx", "N%",
// a bare number (pixels), and calc() sums of those terms. An empty string
// yields the zero offset.
func ParseOffset(s string) (Offset, error) {
	src := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Offset{raw: src, verbatim: true}, nil
	}

	if strings.HasPrefix(s, "calc(") && strings.HasSuffix(s, ")") {
		o, err := parseCalc(s[len("calc(") : len(s)-1])
		if err != nil {
			return Offset{}, fmt.Errorf("%w: %q", ErrInvalidOffset, src)
		}
		o.raw, o.verbatim = src, true
		return o, nil
	}

	o, err := parseTerm(s)
	if err != nil {
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalidOffset, src)
	}
	o.raw, o.verbatim = src, true
	return o, nil
}

func parseCalc(expr string) (Offset, error) {
	tokens := strings.Fields(expr)
	if len(tokens) == 0 || len(tokens)%2 == 0 {
		return Offset{}, ErrInvalidOffset
	}

	out, err := parseTerm(tokens[0])
	if err != nil {
		return Offset{}, err
	}
	for i := 1; i+1 < len(tokens); i += 2 {
		term, err := parseTerm(tokens[i+1])
		if err != nil {
			return Offset{}, err
		}
		switch tokens[i] {
		case "+":
			out.Percent += term.Percent
			out.Pixels += term.Pixels
		case "-":
			out.Percent -= term.Percent
			out.Pixels -= term.Pixels
		default:
			return Offset{}, ErrInvalidOffset
		}
	}
	return out, nil
}

func parseTerm(t string) (Offset, error) {
	switch {
	case strings.HasSuffix(t, "px"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(t, "px"), 64)
		if err != nil {
			return Offset{}, ErrInvalidOffset
		}
		return Offset{Pixels: v}, nil
	case strings.HasSuffix(t, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(t, "%"), 64)
		if err != nil {
			return Offset{}, ErrInvalidOffset
		}
		return Offset{Percent: v}, nil
	default:
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return Offset{}, ErrInvalidOffset
		}
		return Offset{Pixels: v}, nil
	}
}

// Resolve converts the offset to pixels along an axis of the given extent.
func (o Offset) Resolve(extent float64) float64 {
	return o.Percent/100*extent + o.Pixels
}

// String returns the text the offset was parsed from, or a canonical form for
// offsets built in code.
func (o Offset) String() string {
	if o.verbatim {
		return o.raw
	}
	switch {
	case o.Percent == 0:
		return formatNumber(o.Pixels) + "px"
	case o.Pixels == 0:
		return formatNumber(o.Percent) + "%"
	case o.Pixels < 0:
		return fmt.Sprintf("calc(%s%% - %spx)", formatNumber(o.Percent), formatNumber(-o.Pixels))
	default:
		return fmt.Sprintf("calc(%s%% + %spx)", formatNumber(o.Percent), formatNumber(o.Pixels))
	}
}

// MarshalJSON writes the offset as its string form.
func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts any string. Text that does not parse is kept verbatim
// and resolves to zero, so stale saves still load.
func (o *Offset) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOffset(s)
	if err != nil {
		*o = Offset{raw: s, verbatim: true}
		return nil
	}
	*o = parsed
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Placement is a marker's explicit position: the top-left corner of its
// bounding box expressed as style offsets.
type Placement struct {
	Left Offset `json:"left"`
	Top  Offset `json:"top"`
}

// PlacementAt returns a pixel placement for a logical top-left corner.
func PlacementAt(p LogicalPoint) Placement {
	return Placement{Left: Px(p.X), Top: Px(p.Y)}
}

// Resolve returns the top-left corner in logical coordinates for the frame.
func (p Placement) Resolve(f Frame) LogicalPoint {
	return LogicalPoint{
		X: p.Left.Resolve(f.Width),
		Y: p.Top.Resolve(f.Height),
	}
}
