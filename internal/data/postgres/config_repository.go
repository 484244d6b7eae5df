package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/portfolio-profit-engine/internal/domain/sysconfig"
	"github.com/portfolio-profit-engine/internal/platform/persistence"
)

// ConfigRepository implements the sysconfig.Repository interface for PostgreSQL
type ConfigRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewConfigRepository creates a new PostgreSQL configuration repository
func NewConfigRepository(logger *slog.Logger, db *persistence.PostgresDB) sysconfig.Repository {
	return &ConfigRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ConfigRepository) WithTx(tx pgx.Tx) sysconfig.Repository {
	return &ConfigRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Find retrieves a configuration row, returning (nil, nil) when absent
func (r *ConfigRepository) Find(ctx context.Context, key string) (*sysconfig.Entry, error) {
	query := `
		SELECT key, value, description, updated_at
		FROM global_config
		WHERE key = $1
	`

	var entry sysconfig.Entry
	err := r.querier.QueryRow(ctx, query, key).Scan(
		&entry.Key,
		&entry.Value,
		&entry.Description,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to find config entry", "key", key, "error", err)
		return nil, fmt.Errorf("failed to find config entry: %w", err)
	}

	return &entry, nil
}

// Insert stores a new configuration row
func (r *ConfigRepository) Insert(ctx context.Context, entry *sysconfig.Entry) error {
	query := `
		INSERT INTO global_config (key, value, description, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query, entry.Key, entry.Value, entry.Description, entry.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert config entry", "key", entry.Key, "error", err)
		return fmt.Errorf("failed to insert config entry: %w", err)
	}

	return nil
}

// UpdateValue changes an existing configuration value
func (r *ConfigRepository) UpdateValue(ctx context.Context, key, value string) error {
	query := `
		UPDATE global_config
		SET value = $1, updated_at = now()
		WHERE key = $2
	`

	tag, err := r.querier.Exec(ctx, query, value, key)
	if err != nil {
		r.logger.Error("Failed to update config entry", "key", key, "error", err)
		return fmt.Errorf("failed to update config entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return sysconfig.ErrConfigMissing{Key: key}
	}

	return nil
}

// List returns every configuration row
func (r *ConfigRepository) List(ctx context.Context) ([]*sysconfig.Entry, error) {
	query := `
		SELECT key, value, description, updated_at
		FROM global_config
		ORDER BY key
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list config entries", "error", err)
		return nil, fmt.Errorf("failed to list config entries: %w", err)
	}
	defer rows.Close()

	var entries []*sysconfig.Entry
	for rows.Next() {
		var entry sysconfig.Entry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.Description, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate config rows: %w", err)
	}

	return entries, nil
}
