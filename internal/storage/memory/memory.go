// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sync"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/rs/zerolog"
)

// Store keeps saved plays in a map and, when a path is configured,
// mirrors them to a JSON file after every change.
type Store struct {
	cfg config.MemoryConfig
	log zerolog.Logger

	plays map[string]core.SavedPlay
	mu    sync.RWMutex
}

// New creates a new memory store
func New(cfg config.MemoryConfig, log zerolog.Logger) *Store {
	return &Store{
		cfg:   cfg,
		log:   log,
		plays: make(map[string]core.SavedPlay),
	}
}

// Init loads the plays file if one is configured and present.
func (s *Store) Init(_ context.Context) error {
	if s.cfg.Path == "" {
		return nil
	}

	plays, err := readFile(s.cfg.Path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays = plays
	s.log.Info().Str("path", s.cfg.Path).Int("plays", len(plays)).Msg("Loaded saved plays")
	return nil
}

// Close cleans up resources
func (s *Store) Close() error {
	return nil
}

// GetAll returns a copy of every saved play.
func (s *Store) GetAll(_ context.Context) (map[string]core.SavedPlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]core.SavedPlay, len(s.plays))
	for name, p := range s.plays {
		out[name] = clonePlay(p)
	}
	return out, nil
}

// Get returns the play saved under name.
func (s *Store) Get(_ context.Context, name string) (core.SavedPlay, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plays[name]
	if !ok {
		return core.SavedPlay{}, false, nil
	}
	return clonePlay(p), true, nil
}

// Set stores play under its name, replacing any previous play. When the
// file cannot be written the store is left unchanged.
func (s *Store) Set(_ context.Context, play core.SavedPlay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	next[play.Name] = clonePlay(play)
	return s.commitLocked(next)
}

// Delete removes the named play.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plays[name]; !ok {
		return nil
	}
	next := s.copyLocked()
	delete(next, name)
	return s.commitLocked(next)
}

// copyLocked returns a shallow copy of the play map. Stored plays are never
// mutated in place, so sharing them is safe.
func (s *Store) copyLocked() map[string]core.SavedPlay {
	next := make(map[string]core.SavedPlay, len(s.plays)+1)
	for name, p := range s.plays {
		next[name] = p
	}
	return next
}

// commitLocked writes next to the file, then makes it current.
func (s *Store) commitLocked(next map[string]core.SavedPlay) error {
	if s.cfg.Path != "" {
		if err := writeFile(s.cfg.Path, next, s.cfg.Compress); err != nil {
			s.log.Error().Err(err).Str("path", s.cfg.Path).Msg("Failed to write saved plays")
			return err
		}
	}
	s.plays = next
	return nil
}

func clonePlay(p core.SavedPlay) core.SavedPlay {
	out := p
	if p.Pieces != nil {
		out.Pieces = append([]core.PieceState(nil), p.Pieces...)
	}
	return out
}
