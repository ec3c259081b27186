package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"storage": { "type": "sqlite", "sqlite": { "path": "/tmp/plays.db" } }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "/tmp/plays.db", GetStorageConfig().SQLite.Path)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "play.png", viper.GetString("export.fileName"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults still apply
	assert.Equal(t, "memory", GetStorageConfig().Type)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TACTICBOARD_STORAGE_TYPE", "redis")
	t.Setenv("TACTICBOARD_STORAGE_REDIS_ADDR", "cache:6379")

	require.NoError(t, Load(writeConfig(t, `{}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "redis", sc.Type)
	assert.Equal(t, "cache:6379", sc.Redis.Addr)
	assert.Equal(t, "savedPlays", sc.Redis.Key)
}

func TestLoadEnv(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TACTICBOARD_EXPORT_FILENAME=corner.png\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TACTICBOARD_EXPORT_FILENAME") })

	LoadEnv(envFile)
	LoadEnv(filepath.Join(dir, "missing.env"))
	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "corner.png", GetExportConfig().FileName)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetBoardConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetBoardConfig()
	assert.Equal(t, 600.0, cfg.Breakpoint)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 7, cfg.OpposingCount)
	assert.Equal(t, "r", cfg.OpposingPrefix)
	assert.Equal(t, 40.0, cfg.RosterSize)
	assert.Equal(t, 30.0, cfg.OpposingSize)

	require.Len(t, cfg.Roster, 22)
	assert.Equal(t, core.RosterEntry{ID: "p0", Number: "0", Name: "Felipe"}, cfg.Roster[0])
	assert.Equal(t, core.RosterEntry{ID: "p21", Number: "99", Name: "Breedveld"}, cfg.Roster[21])

	normal, err := cfg.Formation(false)
	require.NoError(t, err)
	require.Len(t, normal, 7)
	assert.Equal(t, core.Anchor{Left: 88, Top: 50}, normal[0])
	assert.Equal(t, core.Anchor{Left: 55, Top: 50}, normal[6])

	rotated, err := cfg.Formation(true)
	require.NoError(t, err)
	require.Len(t, rotated, 7)
	assert.Equal(t, core.Anchor{Left: 11, Top: 50}, rotated[0])
	assert.Equal(t, core.Anchor{Left: 35, Top: 75}, rotated[5])
}

func TestGetBoardConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := writeConfig(t, `{
		"board": {
			"settleDelay": "1s",
			"opposing": { "count": 2 },
			"roster": [ { "id": "a", "number": "9", "name": "Nine" } ],
			"formations": {
				"normal": [ { "top": "10%", "left": "20%" }, { "top": "30%", "left": "40%" } ]
			}
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := GetBoardConfig()
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Equal(t, 2, cfg.OpposingCount)
	assert.Equal(t, []core.RosterEntry{{ID: "a", Number: "9", Name: "Nine"}}, cfg.Roster)
	normal, err := cfg.Formation(false)
	require.NoError(t, err)
	assert.Equal(t, []core.Anchor{{Left: 20, Top: 10}, {Left: 40, Top: 30}}, normal)
	assert.Len(t, cfg.Rotated, 7)
}

func TestFormation_InvalidPoint(t *testing.T) {
	cfg := BoardConfig{Normal: []FormationPoint{{Top: "50%", Left: "wide"}}}
	_, err := cfg.Formation(false)
	require.ErrorIs(t, err, core.ErrInvalidOffset)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./plays.json", cfg.Memory.Path)
	assert.False(t, cfg.Memory.Compress)
	assert.Equal(t, "./tacticboard.db", cfg.SQLite.Path)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "tacticboard", cfg.Postgres.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "tacticboard", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "board",
			"batchTimeout": "30s",
			"endpoint": "localhost:4318",
			"insecure": false
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "board", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4318", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "influx": { "host": "metrics", "port": "9999" } }`)))

	ic := GetInfluxConfig()
	assert.Equal(t, "http://metrics:9999", ic.ServerURL())
	assert.Equal(t, "tacticboard", ic.Bucket)
}

func TestGetWindowAndGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "graylog": { "enabled": true } }`)))

	wc := GetWindowConfig()
	assert.Equal(t, 1280, wc.Width)
	assert.Equal(t, 800, wc.Height)
	assert.Equal(t, "Tactic Board", wc.Title)
	assert.True(t, wc.Resizable)

	gc := GetGraylogConfig()
	assert.True(t, gc.Enabled)
	assert.Equal(t, "localhost:12201", gc.Address)
}
