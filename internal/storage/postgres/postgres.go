// Package postgres stores saved plays in PostgreSQL through the GORM backend.
package postgres

import (
	"context"
	"fmt"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/internal/database"
	gormstorage "github.com/OCAP2/tacticboard/internal/storage/gorm"
	"github.com/rs/zerolog"
)

// Store wraps the GORM store for PostgreSQL.
type Store struct {
	*gormstorage.Store
	cfg config.PostgresConfig
	log zerolog.Logger
}

// New creates a new PostgreSQL store. The connection is made by Init.
func New(cfg config.PostgresConfig, log zerolog.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// Init connects, validates the connection and migrates the schema.
func (s *Store) Init(ctx context.Context) error {
	db, err := database.OpenPostgres(s.cfg, s.log)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s.Store = gormstorage.New(db, s.log)
	return s.Store.Init(ctx)
}

// Close closes the connection if it was opened.
func (s *Store) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}
