package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/tacticboard/internal/dispatcher"

// instruments tracks queued, handled and dropped commands.
type instruments struct {
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// newInstruments registers the dispatcher metrics on the global meter
// provider, which stays a no-op unless main installs one. depths is polled
// at collection time and maps each buffered command to its backlog.
func newInstruments(depths func() map[string]int) (*instruments, error) {
	m := otel.Meter(instrumentationName)
	ins := &instruments{}

	var err error
	if ins.processed, err = m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Commands handed to their handler")); err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}
	if ins.dropped, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Commands dropped because their buffer was full")); err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	if ins.queueSize, err = m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Commands waiting in a buffered handler")); err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	observe := func(_ context.Context, o metric.Observer) error {
		for command, n := range depths() {
			o.ObserveInt64(ins.queueSize, int64(n), commandAttr(command))
		}
		return nil
	}
	if _, err = m.RegisterCallback(observe, ins.queueSize); err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}
	return ins, nil
}

func commandAttr(command string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", command))
}

func (ins *instruments) handled(command string) {
	ins.processed.Add(context.Background(), 1, commandAttr(command))
}

func (ins *instruments) rejected(command string) {
	ins.dropped.Add(context.Background(), 1, commandAttr(command))
}
