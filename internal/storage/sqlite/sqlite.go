// Package sqlitestorage stores saved plays in a local SQLite file through
// the GORM backend. An empty path keeps the database in memory.
package sqlitestorage

import (
	"context"
	"fmt"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/database"
	gormstorage "github.com/OCAP2/tacticboard/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Store wraps the GORM store for SQLite.
type Store struct {
	*gormstorage.Store
	cfg config.SQLiteConfig
	log zerolog.Logger
}

// New creates a new SQLite store. The file is opened by Init.
func New(cfg config.SQLiteConfig, log zerolog.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// Init opens the database file and migrates the schema.
func (s *Store) Init(ctx context.Context) error {
	db, err := database.OpenSQLite(s.cfg.Path, s.log)
	if err != nil {
		return fmt.Errorf("failed to open SQLite DB: %w", err)
	}
	s.Store = gormstorage.New(db, s.log)
	return s.Store.Init(ctx)
}

// Close closes the database if it was opened.
func (s *Store) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}
