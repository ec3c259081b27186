package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "tacticboard.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. TACTICBOARD_STORAGE_TYPE.
const EnvPrefix = "TACTICBOARD"

// FormationPoint is one anchor of a formation table as written in config,
// e.g. {"top": "50%", "left": "88%"}.
type FormationPoint struct {
	Top  string `json:"top" mapstructure:"top"`
	Left string `json:"left" mapstructure:"left"`
}

// Anchor converts the point to percentages of the surface.
func (p FormationPoint) Anchor() (core.Anchor, error) {
	left, err := core.ParseOffset(p.Left)
	if err != nil {
		return core.Anchor{}, err
	}
	top, err := core.ParseOffset(p.Top)
	if err != nil {
		return core.Anchor{}, err
	}
	return core.Anchor{Left: left.Percent, Top: top.Percent}, nil
}

// BoardConfig holds the board geometry and marker configuration
type BoardConfig struct {
	Breakpoint     float64
	SettleDelay    time.Duration
	OpposingCount  int
	OpposingPrefix string
	RosterSize     float64
	OpposingSize   float64
	Roster         []core.RosterEntry
	Normal         []FormationPoint
	Rotated        []FormationPoint
}

// Formation returns the anchors for the given orientation.
func (b BoardConfig) Formation(rotated bool) ([]core.Anchor, error) {
	points := b.Normal
	if rotated {
		points = b.Rotated
	}
	anchors := make([]core.Anchor, 0, len(points))
	for i, p := range points {
		a, err := p.Anchor()
		if err != nil {
			return nil, fmt.Errorf("formation point %d: %w", i, err)
		}
		anchors = append(anchors, a)
	}
	return anchors, nil
}

// MemoryConfig holds file-backed in-memory store settings
type MemoryConfig struct {
	Path     string `json:"path" mapstructure:"path"`
	Compress bool   `json:"compress" mapstructure:"compress"`
}

// SQLiteConfig holds SQLite store settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// RedisConfig holds Redis store settings
type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
	Key      string `json:"key" mapstructure:"key"`
}

// StorageConfig selects and configures the saved-play store
type StorageConfig struct {
	Type     string
	Memory   MemoryConfig
	SQLite   SQLiteConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

// ExportConfig holds image export settings
type ExportConfig struct {
	Dir      string
	FileName string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GraylogConfig holds GELF log shipping settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// InfluxConfig holds InfluxDB usage metric settings
type InfluxConfig struct {
	Enabled    bool
	Protocol   string
	Host       string
	Port       string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// ServerURL returns the InfluxDB base URL.
func (c InfluxConfig) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// WindowConfig holds desktop window settings
type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
}

// LoadEnv reads .env files into the environment. Missing files are not an
// error.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("board.breakpoint", 600)
	viper.SetDefault("board.settleDelay", "250ms")
	viper.SetDefault("board.opposing.count", 7)
	viper.SetDefault("board.opposing.prefix", "r")
	viper.SetDefault("board.markerSize.roster", 40)
	viper.SetDefault("board.markerSize.opposing", 30)
	viper.SetDefault("board.roster", defaultRoster)
	viper.SetDefault("board.formations.normal", defaultNormalFormation)
	viper.SetDefault("board.formations.rotated", defaultRotatedFormation)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.path", "./plays.json")
	viper.SetDefault("storage.memory.compress", false)
	viper.SetDefault("storage.sqlite.path", "./tacticboard.db")
	viper.SetDefault("storage.redis.addr", "localhost:6379")
	viper.SetDefault("storage.redis.password", "")
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.key", "savedPlays")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "tacticboard")

	viper.SetDefault("export.dir", ".")
	viper.SetDefault("export.fileName", "play.png")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "tacticboard")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "tacticboard")
	viper.SetDefault("influx.bucket", "tacticboard")
	viper.SetDefault("influx.backupPath", "./logs/influx_backup.log.gzip")

	viper.SetDefault("window.width", 1280)
	viper.SetDefault("window.height", 800)
	viper.SetDefault("window.title", "Tactic Board")
	viper.SetDefault("window.resizable", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetBoardConfig returns the board configuration.
func GetBoardConfig() BoardConfig {
	cfg := BoardConfig{
		Breakpoint:     viper.GetFloat64("board.breakpoint"),
		SettleDelay:    viper.GetDuration("board.settleDelay"),
		OpposingCount:  viper.GetInt("board.opposing.count"),
		OpposingPrefix: viper.GetString("board.opposing.prefix"),
		RosterSize:     viper.GetFloat64("board.markerSize.roster"),
		OpposingSize:   viper.GetFloat64("board.markerSize.opposing"),
	}
	_ = viper.UnmarshalKey("board.roster", &cfg.Roster)
	_ = viper.UnmarshalKey("board.formations.normal", &cfg.Normal)
	_ = viper.UnmarshalKey("board.formations.rotated", &cfg.Rotated)
	return cfg
}

// GetStorageConfig returns the storage configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			Path:     viper.GetString("storage.memory.path"),
			Compress: viper.GetBool("storage.memory.compress"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("storage.redis.addr"),
			Password: viper.GetString("storage.redis.password"),
			DB:       viper.GetInt("storage.redis.db"),
			Key:      viper.GetString("storage.redis.key"),
		},
	}
}

// GetExportConfig returns the image export configuration.
func GetExportConfig() ExportConfig {
	return ExportConfig{
		Dir:      viper.GetString("export.dir"),
		FileName: viper.GetString("export.fileName"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the Graylog configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Protocol:   viper.GetString("influx.protocol"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetWindowConfig returns the desktop window configuration.
func GetWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     viper.GetInt("window.width"),
		Height:    viper.GetInt("window.height"),
		Title:     viper.GetString("window.title"),
		Resizable: viper.GetBool("window.resizable"),
	}
}
