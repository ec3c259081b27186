// Package redisstorage keeps saved plays in one Redis hash: the field is
// the play name and the value the play's JSON.
package redisstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OCAP2/tacticboard/internal/config"
	"github.com/OCAP2/tacticboard/pkg/core"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Store implements the saved-play store over go-redis.
type Store struct {
	cfg    config.RedisConfig
	log    zerolog.Logger
	client *redis.Client
}

// New creates a new Redis store. The client is created by Init.
func New(cfg config.RedisConfig, log zerolog.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// Init connects and pings the server.
func (s *Store) Init(ctx context.Context) error {
	s.client = redis.NewClient(&redis.Options{
		Addr:     s.cfg.Addr,
		Password: s.cfg.Password,
		DB:       s.cfg.DB,
	})
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.client.Close()
		s.client = nil
		return fmt.Errorf("failed to connect to redis at %s: %w", s.cfg.Addr, err)
	}
	s.log.Info().Str("addr", s.cfg.Addr).Str("key", s.cfg.Key).Msg("Connected to Redis")
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// GetAll returns every play in the hash. Fields that do not decode are
// skipped and logged.
func (s *Store) GetAll(ctx context.Context) (map[string]core.SavedPlay, error) {
	fields, err := s.client.HGetAll(ctx, s.cfg.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}

	out := make(map[string]core.SavedPlay, len(fields))
	for name, raw := range fields {
		play, err := decodePlay(name, raw)
		if err != nil {
			s.log.Warn().Err(err).Str("name", name).Msg("Skipping unreadable play")
			continue
		}
		out[name] = play
	}
	return out, nil
}

// Get returns the play saved under name.
func (s *Store) Get(ctx context.Context, name string) (core.SavedPlay, bool, error) {
	raw, err := s.client.HGet(ctx, s.cfg.Key, name).Result()
	if errors.Is(err, redis.Nil) {
		return core.SavedPlay{}, false, nil
	}
	if err != nil {
		return core.SavedPlay{}, false, fmt.Errorf("failed to get play %q: %w", name, err)
	}

	play, err := decodePlay(name, raw)
	if err != nil {
		return core.SavedPlay{}, false, err
	}
	return play, true, nil
}

// Set writes the play under its name.
func (s *Store) Set(ctx context.Context, play core.SavedPlay) error {
	raw, err := encodePlay(play)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.cfg.Key, play.Name, raw).Err(); err != nil {
		return fmt.Errorf("failed to save play %q: %w", play.Name, err)
	}
	return nil
}

// Delete removes the named play.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.HDel(ctx, s.cfg.Key, name).Err(); err != nil {
		return fmt.Errorf("failed to delete play %q: %w", name, err)
	}
	return nil
}

func encodePlay(play core.SavedPlay) (string, error) {
	if play.Pieces == nil {
		play.Pieces = []core.PieceState{}
	}
	raw, err := json.Marshal(play)
	if err != nil {
		return "", fmt.Errorf("encoding play %q: %w", play.Name, err)
	}
	return string(raw), nil
}

func decodePlay(name, raw string) (core.SavedPlay, error) {
	var play core.SavedPlay
	if err := json.Unmarshal([]byte(raw), &play); err != nil {
		return core.SavedPlay{}, fmt.Errorf("decoding play %q: %w", name, err)
	}
	play.Name = name
	return play, nil
}
