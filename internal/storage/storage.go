// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/OCAP2/tacticboard/pkg/core"
)

// ErrUnknownType is returned by New for an unrecognised storage.type.
var ErrUnknownType = errors.New("unknown storage type")

// Store is the interface all saved-play backends must satisfy. Plays are
// keyed by name; saving an existing name overwrites it.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	GetAll(ctx context.Context) (map[string]core.SavedPlay, error)
	// Get reports ok=false with a nil error when the name is absent.
	Get(ctx context.Context, name string) (core.SavedPlay, bool, error)
	Set(ctx context.Context, play core.SavedPlay) error
	// Delete is a no-op when the name is absent.
	Delete(ctx context.Context, name string) error
}
