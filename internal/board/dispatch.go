package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/dispatcher"
	"github.com/OCAP2/tacticboard/internal/export"
	"github.com/OCAP2/tacticboard/pkg/core"
)

// Commands understood by the handlers from RegisterHandlers.
const (
	CmdTool        = "tool"
	CmdClear       = "clear"
	CmdReset       = "reset"
	CmdExport      = "export"
	CmdExportWrite = "export.write"
	CmdSave        = "save"
	CmdLoad        = "load"
	CmdDelete      = "delete"
	CmdList        = "list"
)

var errMissingArg = errors.New("missing argument")

// RegisterHandlers registers the board controls with the dispatcher.
// Rendering happens on the caller's goroutine; the PNG is written to disk
// by a buffered worker so the frame loop never waits on the file system.
func (b *Board) RegisterHandlers(d *dispatcher.Dispatcher, out config.ExportConfig) {
	d.Register(CmdTool, b.handleTool, dispatcher.Logged())
	d.Register(CmdClear, b.handleClear, dispatcher.Logged())
	d.Register(CmdReset, b.handleReset, dispatcher.Logged())
	d.Register(CmdSave, b.handleSave, dispatcher.Logged())
	d.Register(CmdLoad, b.handleLoad, dispatcher.Logged())
	d.Register(CmdDelete, b.handleDelete, dispatcher.Logged())
	d.Register(CmdList, b.handleList)

	d.Register(CmdExport, func(e dispatcher.Event) (any, error) {
		data, err := b.Export(context.Background())
		if err != nil {
			return nil, err
		}
		return d.Dispatch(dispatcher.Event{
			Command:   CmdExportWrite,
			Args:      e.Args,
			Payload:   data,
			Timestamp: e.Timestamp,
		})
	}, dispatcher.Logged())

	d.Register(CmdExportWrite, func(e dispatcher.Event) (any, error) {
		data, ok := e.Payload.([]byte)
		if !ok {
			return nil, fmt.Errorf("export.write: payload is %T, want []byte", e.Payload)
		}
		name := out.FileName
		if len(e.Args) > 0 && e.Args[0] != "" {
			name = e.Args[0]
		}
		path, err := export.WriteFile(out.Dir, name, data)
		if err != nil {
			return nil, err
		}
		b.log.Info("Export written", "path", path)
		return path, nil
	}, dispatcher.Buffered(4), dispatcher.Blocking(), dispatcher.Logged())
}

func (b *Board) handleTool(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return nil, fmt.Errorf("tool: %w", errMissingArg)
	}
	t, err := core.ParseTool(e.Args[0])
	if err != nil {
		return nil, err
	}
	return nil, b.SetTool(t)
}

func (b *Board) handleClear(dispatcher.Event) (any, error) {
	b.ClearDrawing()
	return nil, nil
}

func (b *Board) handleReset(dispatcher.Event) (any, error) {
	b.ResetMarkers()
	return nil, nil
}

// the save name may contain spaces, so every argument is part of it
func (b *Board) handleSave(e dispatcher.Event) (any, error) {
	return nil, b.Save(context.Background(), strings.Join(e.Args, " "))
}

func (b *Board) handleLoad(e dispatcher.Event) (any, error) {
	return nil, b.Load(context.Background(), firstArg(e))
}

func (b *Board) handleDelete(e dispatcher.Event) (any, error) {
	return nil, b.Delete(context.Background(), firstArg(e))
}

func (b *Board) handleList(dispatcher.Event) (any, error) {
	if err := b.RefreshPlayNames(context.Background()); err != nil {
		return nil, err
	}
	return b.PlayNames(), nil
}

func firstArg(e dispatcher.Event) string {
	if len(e.Args) == 0 {
		return ""
	}
	return e.Args[0]
}
