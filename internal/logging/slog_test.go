package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_FileOnly_NoStdout(t *testing.T) {
	restore := captureStdout(t)

	var fileBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&fileBuf, "info", nil, nil)
	m.Logger().Info("hello file")

	stdout := restore()

	assert.Contains(t, fileBuf.String(), "hello file")
	assert.Empty(t, stdout, "nothing should be written to stdout when file is provided")
}

func TestSetup_NoFile_WritesToStdout(t *testing.T) {
	restore := captureStdout(t)

	m := NewSlogManager()
	m.Setup(nil, "info", nil, nil)
	m.Logger().Info("hello console")

	assert.Contains(t, restore(), "hello console")
}

func TestSetup_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, nil)

	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")

	assert.NotContains(t, buf.String(), "should be filtered")
	assert.Contains(t, buf.String(), "should appear")
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager()

	m.Setup(&buf1, "info", nil, nil)
	m.Logger().Info("first")

	m.Setup(&buf2, "info", nil, nil)
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second")
	assert.Contains(t, buf2.String(), "second")
}

func TestSetup_WithGelf(t *testing.T) {
	var buf bytes.Buffer
	gw := &fakeGelf{}
	m := NewSlogManager()
	m.Setup(&buf, "info", gw, nil)

	m.Logger().Info("play saved", "name", "Corner Kick")

	msgs := gw.messages()
	require.Len(t, msgs, 2, "init message plus the record")
	assert.Equal(t, "play saved", msgs[1].Short)
	assert.Equal(t, "Corner Kick", msgs[1].Extra["_name"])
	assert.Contains(t, buf.String(), "play saved")
}

func TestSetup_WithContext(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Context = BoardContext(fakeBoard{tool: "brush", dragging: "p3"})
	m.Setup(&buf, "info", nil, nil)

	m.Logger().Info("tick")

	out := buf.String()
	assert.Contains(t, out, "tool=brush")
	assert.Contains(t, out, "dragging=p3")
	assert.NotContains(t, out, "stroking")
}

func TestSetup_WithOTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()

	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, provider)

	m.Logger().Info("otel integrated")
	assert.Contains(t, buf.String(), "otel integrated")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
}

func TestFlush_NilProvider(t *testing.T) {
	m := NewSlogManager()
	assert.NoError(t, m.Flush(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestFanout_FansOut(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewTextHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewTextHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelInfo})

	slog.New(NewFanout(h1, h2)).Info("fanned out")

	assert.Contains(t, buf1.String(), "fanned out")
	assert.Contains(t, buf2.String(), "fanned out")
}

func TestFanout_SkipsNilSinks(t *testing.T) {
	var buf bytes.Buffer
	multi := NewFanout(nil, slog.NewTextHandler(&buf, nil), nil)
	require.Len(t, multi, 1)

	slog.New(multi).Info("works")
	assert.Contains(t, buf.String(), "works")
}

func TestFanout_Enabled(t *testing.T) {
	infoHandler := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	infoOnly := NewFanout(infoHandler)
	assert.False(t, infoOnly.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, infoOnly.Enabled(context.Background(), slog.LevelInfo))

	both := NewFanout(infoHandler, debugHandler)
	assert.True(t, both.Enabled(context.Background(), slog.LevelDebug))

	assert.False(t, NewFanout().Enabled(context.Background(), slog.LevelInfo))
}

func TestFanout_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	multi := NewFanout(slog.NewTextHandler(&buf, nil))

	slog.New(multi.WithAttrs([]slog.Attr{slog.String("component", "registry")})).Info("with attrs")
	slog.New(multi.WithGroup("grp")).Info("grouped", "key", "val")

	assert.Contains(t, buf.String(), "component=registry")
	assert.Contains(t, buf.String(), "grp.key=val")
	assert.Equal(t, multi, multi.WithGroup(""))
}

type errorHandler struct {
	slog.Handler
}

func (h *errorHandler) Handle(_ context.Context, _ slog.Record) error {
	return errors.New("handler error")
}

func (h *errorHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func TestFanout_HandleError(t *testing.T) {
	var buf bytes.Buffer
	spy := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	multi := NewFanout(&errorHandler{}, spy)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "should reach spy", 0)
	err := multi.Handle(context.Background(), r)

	assert.EqualError(t, err, "handler error")
	assert.Contains(t, buf.String(), "should reach spy")
}

func TestContextHandler_Stroking(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewTextHandler(&buf, nil), BoardContext(fakeBoard{tool: "dashed", stroking: true}))

	slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "raster")})).Info("segment")

	out := buf.String()
	assert.Contains(t, out, "tool=dashed")
	assert.Contains(t, out, "stroking=true")
	assert.Contains(t, out, "component=raster")
	assert.NotContains(t, out, "dragging")
}

func TestGelfHandler_Fields(t *testing.T) {
	gw := &fakeGelf{}
	h := NewGelfHandler(gw, slog.LevelDebug)
	logger := slog.New(h).With("session", 7).WithGroup("drop")

	logger.Warn("marker benched", "id", "r2", "err", errors.New("outside surface"))

	msgs := gw.messages()
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, "marker benched", m.Short)
	assert.Equal(t, int32(4), m.Level)
	assert.Equal(t, Facility, m.Facility)
	assert.Equal(t, int64(7), m.Extra["_session"])
	assert.Equal(t, "r2", m.Extra["_drop.id"])
	assert.Equal(t, "outside surface", m.Extra["_drop.err"])
}

func TestGelfHandler_Level(t *testing.T) {
	gw := &fakeGelf{}
	logger := slog.New(NewGelfHandler(gw, slog.LevelWarn))

	logger.Info("dropped")
	logger.Error("kept")

	msgs := gw.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Short)
	assert.Equal(t, int32(3), msgs[0].Level)
}

func TestSyslogLevel(t *testing.T) {
	assert.Equal(t, int32(7), syslogLevel(slog.LevelDebug))
	assert.Equal(t, int32(6), syslogLevel(slog.LevelInfo))
	assert.Equal(t, int32(4), syslogLevel(slog.LevelWarn))
	assert.Equal(t, int32(3), syslogLevel(slog.LevelError))
}

type fakeGelf struct {
	mu   sync.Mutex
	msgs []*gelf.Message
}

func (f *fakeGelf) WriteMessage(m *gelf.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeGelf) messages() []*gelf.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*gelf.Message(nil), f.msgs...)
}

type fakeBoard struct {
	tool     string
	dragging string
	stroking bool
}

func (b fakeBoard) ActiveTool() string { return b.tool }

func (b fakeBoard) DraggingID() (string, bool) { return b.dragging, b.dragging != "" }

func (b fakeBoard) Stroking() bool { return b.stroking }

// captureStdout redirects stdout to a pipe and returns a function
// that restores stdout and returns what was captured.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	origStdout := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = origStdout
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}
