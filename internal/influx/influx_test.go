package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/tacticboard/internal/config"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Disabled(t *testing.T) {
	r := NewRecorder(config.InfluxConfig{Enabled: false}, zerolog.Nop())
	require.ErrorIs(t, r.Connect(context.Background()), ErrDisabled)
	assert.False(t, r.Valid())
}

func TestWritePoint_NotConnected(t *testing.T) {
	r := NewRecorder(config.InfluxConfig{}, zerolog.Nop())
	err := r.Record(context.Background(), "save", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup writer not available")
}

func TestNewBoardPoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	p := NewBoardPoint("drop", map[string]any{"id": "r2"}, ts)

	line := influxdb2_write.PointToLineProtocol(p, time.Second)
	assert.Contains(t, line, `board_event,event=drop id="r2" 1700000000`)

	p = NewBoardPoint("clear", nil, ts)
	line = influxdb2_write.PointToLineProtocol(p, time.Second)
	assert.Contains(t, line, "board_event,event=clear count=1i")
}

func TestConnect_UnreachableFallsBackToBackup(t *testing.T) {
	backupPath := filepath.Join(t.TempDir(), "influx_backup.log.gzip")
	r := NewRecorder(config.InfluxConfig{
		Enabled:    true,
		Protocol:   "http",
		Host:       "127.0.0.1",
		Port:       "1",
		Org:        "tacticboard",
		Bucket:     "tacticboard",
		BackupPath: backupPath,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Connect(ctx))
	assert.False(t, r.Valid())

	require.NoError(t, r.Record(ctx, "save", map[string]any{"name": "Corner Kick"}))
	require.NoError(t, r.Record(ctx, "export", nil))
	require.NoError(t, r.Close())

	f, err := os.Open(backupPath)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.Contains(t, string(body), `board_event,event=save name="Corner Kick"`)
	assert.Contains(t, string(body), "board_event,event=export count=1i")
}
