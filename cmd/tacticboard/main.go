package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/OCAP2/tacticboard/internal/board"
	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/dispatcher"
	"github.com/OCAP2/tacticboard/internal/export"
	"github.com/OCAP2/tacticboard/internal/influx"
	"github.com/OCAP2/tacticboard/internal/logging"
	intOtel "github.com/OCAP2/tacticboard/internal/otel"
	"github.com/OCAP2/tacticboard/internal/storage"
	"github.com/OCAP2/tacticboard/internal/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const AppName = "tacticboard"

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime = time.Now()

	// Version is set at build time.
	Version = "dev"

	logFile *os.File

	// session is read by the logging context provider
	session *board.Board
)

// configDir is where tacticboard.cfg.json is looked up.
func configDir() string {
	if dir := os.Getenv(config.EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

func setupLogging() zerolog.Logger {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil, nil)
	Logger = SlogManager.Logger()

	config.LoadEnv()
	if err := config.Load(configDir()); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	var out io.Writer
	path := logging.LogFilePath(config.GetString("logsDir"), AppName, SessionStartTime)
	f, err := logging.OpenLogFile(path)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", path)
	} else {
		logFile = f
		out = f
		Logger.Info("Begin logging in logs directory", "path", path)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			Version:      Version,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    out,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var gelf logging.MessageWriter
	if gcfg := config.GetGraylogConfig(); gcfg.Enabled {
		w, err := logging.NewGelfWriter(gcfg.Address)
		if err != nil {
			Logger.Error("Failed to set up Graylog output", "error", err)
		} else {
			gelf = w
			Logger.Info("Shipping logs to Graylog", "address", gcfg.Address)
		}
	}

	// Re-setup logging with file output and optional outputs
	SlogManager.Context = func() []slog.Attr {
		if session == nil {
			return nil
		}
		return logging.BoardContext(session)()
	}
	var provider *sdklog.LoggerProvider
	if OTelProvider != nil {
		provider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(out, config.GetString("logLevel"), gelf, provider)
	Logger = SlogManager.Logger()

	zw := out
	if zw == nil {
		zw = os.Stdout
	}
	return logging.NewZerolog(zw, config.GetString("logLevel"))
}

func run() error {
	ctx := context.Background()
	zlog := setupLogging()
	Logger.Info("Starting up...", "version", Version)

	store, err := storage.New(config.GetStorageConfig(), zlog)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	Logger.Info("Storage initialized", "type", config.GetStorageConfig().Type)

	var recorder board.Recorder
	influxCfg := config.GetInfluxConfig()
	rec := influx.NewRecorder(influxCfg, zlog)
	if err := rec.Connect(ctx); err != nil && !errors.Is(err, influx.ErrDisabled) {
		Logger.Warn("InfluxDB unavailable", "error", err)
	}
	if influxCfg.Enabled {
		recorder = rec
		defer rec.Close()
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer d.Close()

	windowCfg := config.GetWindowConfig()
	game := ui.New(windowCfg, d, Logger)

	opts := board.Options{
		Config:   config.GetBoardConfig(),
		Layout:   game,
		Store:    store,
		Exporter: export.NewRenderer(),
		Notifier: game,
		Recorder: recorder,
		Logger:   Logger,
	}
	if OTelProvider != nil {
		opts.Meter = OTelProvider.Meter(board.InstrumentationName)
	}
	b, err := board.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}
	session = b
	game.Attach(b)
	b.RegisterHandlers(d, config.GetExportConfig())
	b.Init(ctx)

	ebiten.SetWindowSize(windowCfg.Width, windowCfg.Height)
	ebiten.SetWindowTitle(windowCfg.Title)
	if windowCfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	Logger.Info("Starting window...")
	return ebiten.RunGame(game)
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel: %v\n", err)
		}
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}

func main() {
	err := run()
	if err != nil {
		Logger.Error("Exiting", "error", err)
	} else {
		Logger.Info("Shutting down")
	}
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}
