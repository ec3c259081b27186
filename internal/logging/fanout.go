package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Fanout is a slog.Handler that hands every record to each sink accepting
// its level: the text log plus the optional GELF and OTel outputs.
type Fanout []slog.Handler

// NewFanout skips nil sinks, so Setup can pass optional outputs as is.
func NewFanout(sinks ...slog.Handler) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, h := range sinks {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (f Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

// Handle gives each sink its own copy of the record. A sink that fails
// does not keep the record from the rest.
func (f Fanout) Handle(ctx context.Context, r slog.Record) error {
	var err error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			err = errors.Join(err, h.Handle(ctx, r.Clone()))
		}
	}
	return err
}

func (f Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f Fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f Fanout) derive(fn func(slog.Handler) slog.Handler) Fanout {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
