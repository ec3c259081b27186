// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/storage/memory"
	"github.com/OCAP2/tacticboard/internal/storage/postgres"
	redisstorage "github.com/OCAP2/tacticboard/internal/storage/redis"
	sqlitestorage "github.com/OCAP2/tacticboard/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// New creates a saved-play store based on configuration. The store still
// needs Init before use.
func New(cfg config.StorageConfig, log zerolog.Logger) (Store, error) {
	log = log.With().Str("store", cfg.Type).Logger()

	switch cfg.Type {
	case "", "memory":
		return memory.New(cfg.Memory, log), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, log), nil
	case "postgres":
		return postgres.New(cfg.Postgres, log), nil
	case "redis":
		return redisstorage.New(cfg.Redis, log), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, cfg.Type)
	}
}
