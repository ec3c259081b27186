package board

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName names the board meter.
const InstrumentationName = "github.com/OCAP2/tacticboard/internal/board"

type metrics struct {
	strokes metric.Int64Counter
	drops   metric.Int64Counter
	saved   metric.Int64Counter
	loaded  metric.Int64Counter
	exports metric.Int64Counter
}

// newMetrics creates the board counters. A nil meter falls back to the
// global OTel meter (no-op if not configured).
func newMetrics(m metric.Meter) (*metrics, error) {
	if m == nil {
		m = otel.Meter(InstrumentationName)
	}
	out := &metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&out.strokes, "board.strokes", "Finished annotation strokes"},
		{&out.drops, "board.drops", "Markers dropped on the surface or the holding area"},
		{&out.saved, "board.plays.saved", "Plays saved"},
		{&out.loaded, "board.plays.loaded", "Plays loaded"},
		{&out.exports, "board.exports", "Surface images exported"},
	}
	for _, c := range counters {
		counter, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}
	return out, nil
}
