// Package gormstorage stores saved plays in any GORM database. The sqlite
// and postgres backends embed it and only differ in how they connect.
package gormstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/OCAP2/tacticboard/internal/database"
	"github.com/OCAP2/tacticboard/internal/model"
	"github.com/OCAP2/tacticboard/internal/model/convert"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements the saved-play store over a *gorm.DB.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New wraps an open database. Init migrates the schema.
func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Init migrates the saved_plays table.
func (s *Store) Init(_ context.Context) error {
	if s.db == nil {
		return errors.New("gorm store has no database")
	}
	return database.Migrate(s.db, s.log)
}

// Close closes the underlying sql.DB.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// GetAll returns every saved play keyed by name. Rows that do not decode
// are skipped and logged.
func (s *Store) GetAll(ctx context.Context) (map[string]core.SavedPlay, error) {
	var rows []model.SavedPlay
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}

	out := make(map[string]core.SavedPlay, len(rows))
	for _, row := range rows {
		play, err := convert.SavedPlayToCore(row)
		if err != nil {
			s.log.Warn().Err(err).Str("name", row.Name).Msg("Skipping unreadable play")
			continue
		}
		out[play.Name] = play
	}
	return out, nil
}

// Get returns the play saved under name.
func (s *Store) Get(ctx context.Context, name string) (core.SavedPlay, bool, error) {
	var row model.SavedPlay
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.SavedPlay{}, false, nil
	}
	if err != nil {
		return core.SavedPlay{}, false, fmt.Errorf("failed to get play %q: %w", name, err)
	}

	play, err := convert.SavedPlayToCore(row)
	if err != nil {
		return core.SavedPlay{}, false, err
	}
	return play, true, nil
}

// Set upserts the play by name.
func (s *Store) Set(ctx context.Context, play core.SavedPlay) error {
	row, err := convert.SavedPlayToGorm(play)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"pieces", "piece_count", "drawing", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save play %q: %w", play.Name, err)
	}
	s.log.Debug().Str("name", play.Name).Int("pieces", row.PieceCount).Msg("Play saved")
	return nil
}

// Delete removes the named play.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&model.SavedPlay{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete play %q: %w", name, err)
	}
	return nil
}
