package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/OCAP2/tacticboard/internal/board"
	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/export"
	"github.com/OCAP2/tacticboard/internal/logging"
	"github.com/OCAP2/tacticboard/internal/storage"
	"github.com/OCAP2/tacticboard/internal/ui/layout"
	"github.com/OCAP2/tacticboard/pkg/core"
)

const AppName = "tacticctl"

var (
	Logger *slog.Logger
	store  storage.Store
)

const usage = `usage: tacticctl <command> [args]

commands:
  list                    list saved plays
  show <name>             print a saved play
  delete <name>           delete a saved play
  export <name> [file]    render a saved play to PNG`

// fixedLayout lays the surface out as the window would at its configured
// size, landscape.
type fixedLayout struct {
	viewport core.Size
	regions  layout.Regions
}

func newFixedLayout(cfg config.WindowConfig) *fixedLayout {
	vp := core.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	return &fixedLayout{viewport: vp, regions: layout.Fit(vp, false)}
}

func (l *fixedLayout) Viewport() core.Size    { return l.viewport }
func (l *fixedLayout) SurfaceRect() core.Rect { return l.regions.Surface }

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	ctx := context.Background()

	config.LoadEnv()
	configDir := os.Getenv(config.EnvPrefix + "_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	configErr := config.Load(configDir)

	var logOut io.Writer = io.Discard
	logPath := logging.LogFilePath(config.GetString("logsDir"), AppName, time.Now())
	if f, err := logging.OpenLogFile(logPath); err == nil {
		defer f.Close()
		logOut = f
	}
	slogManager := logging.NewSlogManager()
	slogManager.Setup(logOut, config.GetString("logLevel"), nil, nil)
	Logger = slogManager.Logger()
	if configErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", configErr)
	}

	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return nil
	}

	var err error
	store, err = storage.New(config.GetStorageConfig(), logging.NewZerolog(logOut, config.GetString("logLevel")))
	if err != nil {
		return err
	}
	if err = store.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	switch strings.ToLower(args[0]) {
	case "list":
		return listPlays(ctx, out)
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("no play name provided")
		}
		return showPlay(ctx, out, args[1])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("no play name provided")
		}
		return deletePlay(ctx, out, args[1])
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("no play name provided")
		}
		file := ""
		if len(args) > 2 {
			file = args[2]
		}
		return exportPlay(ctx, out, args[1], file)
	default:
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listPlays(ctx context.Context, out io.Writer) error {
	plays, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(plays))
	for name := range plays {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s\t%d pieces\n", name, len(plays[name].Pieces))
	}
	Logger.Info("Listed plays", "count", len(names))
	return nil
}

type playView struct {
	Name         string            `json:"name"`
	Pieces       []core.PieceState `json:"pieces"`
	DrawingBytes int               `json:"drawingBytes"`
}

func showPlay(ctx context.Context, out io.Writer, name string) error {
	play, ok, err := store.Get(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("play %q not found", name)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(playView{Name: play.Name, Pieces: play.Pieces, DrawingBytes: len(play.Drawing)})
}

func deletePlay(ctx context.Context, out io.Writer, name string) error {
	if err := store.Delete(ctx, name); err != nil {
		return err
	}
	Logger.Info("Play deleted", "name", name)
	fmt.Fprintf(out, "Deleted %s\n", name)
	return nil
}

// exportPlay loads the play into a board laid out at the configured window
// size and renders it like the window's export control.
func exportPlay(ctx context.Context, out io.Writer, name, file string) error {
	if _, ok, err := store.Get(ctx, name); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("play %q not found", name)
	}

	b, err := board.New(board.Options{
		Config: config.GetBoardConfig(),
		Layout: newFixedLayout(config.GetWindowConfig()),
		Store:  store,
		Logger: Logger,
	})
	if err != nil {
		return err
	}
	b.Init(ctx)
	if err := b.Load(ctx, name); err != nil {
		return err
	}
	data, err := b.Export(ctx)
	if err != nil {
		return err
	}

	exportCfg := config.GetExportConfig()
	if file == "" {
		file = exportCfg.FileName
	}
	path, err := export.WriteFile(exportCfg.Dir, file, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %s to %s\n", name, path)
	return nil
}
