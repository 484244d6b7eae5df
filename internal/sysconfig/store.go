// Package sysconfig implements the database-backed configuration store that
// drives the accrual engine: cycle cadence, nominal rates, and proration
// policy. Values are stored as strings with typed accessors; a missing key is
// a hard configuration error, never a silent default.
package sysconfig

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

// Store exposes typed access to the persisted configuration
type Store struct {
	repo   domain.Repository
	logger *slog.Logger
}

// NewStore creates a configuration store backed by the given repository
func NewStore(logger *slog.Logger, repo domain.Repository) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
	}
}

// SeedDefaults inserts every recognized key that is not already present.
// Existing values are never overwritten, so operator changes survive restarts.
func (s *Store) SeedDefaults(ctx context.Context) error {
	for _, def := range domain.Defaults() {
		existing, err := s.repo.Find(ctx, def.Key)
		if err != nil {
			return fmt.Errorf("failed to check config key %s: %w", def.Key, err)
		}
		if existing != nil {
			continue
		}

		entry := &domain.Entry{
			Key:         def.Key,
			Value:       def.Value,
			Description: def.Description,
			UpdatedAt:   time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, entry); err != nil {
			return fmt.Errorf("failed to seed config key %s: %w", def.Key, err)
		}
		s.logger.Info("Seeded config default", "key", def.Key, "value", def.Value)
	}
	return nil
}

// Get returns the raw value for a key, or ErrConfigMissing when absent
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.repo.Find(ctx, key)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", domain.ErrConfigMissing{Key: key}
	}
	return entry.Value, nil
}

// GetDecimal returns the value parsed as a decimal
func (s *Store) GetDecimal(ctx context.Context, key string) (decimal.Decimal, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config key %s has non-decimal value %q: %w", key, raw, err)
	}
	return d, nil
}

// GetInt returns the value parsed as an integer
func (s *Store) GetInt(ctx context.Context, key string) (int, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config key %s has non-integer value %q: %w", key, raw, err)
	}
	return n, nil
}

// GetBool returns the value parsed as a boolean
func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config key %s has non-boolean value %q: %w", key, raw, err)
	}
	return b, nil
}

// Set updates an existing key. Unknown keys are rejected so typos cannot
// create orphan configuration rows.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.repo.UpdateValue(ctx, key, value); err != nil {
		return err
	}
	s.logger.Info("Updated config value", "key", key, "value", value)
	return nil
}

// GetAll returns every configured key/value pair
func (s *Store) GetAll(ctx context.Context) (map[string]string, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	all := make(map[string]string, len(entries))
	for _, entry := range entries {
		all[entry.Key] = entry.Value
	}
	return all, nil
}
