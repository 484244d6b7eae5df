// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the accrual engine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/portfolio-profit-engine/internal/domain/portfolio"
	"github.com/portfolio-profit-engine/internal/platform/persistence"
)

// PortfolioRepository implements the portfolio.Repository interface for PostgreSQL
type PortfolioRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewPortfolioRepository creates a new PostgreSQL portfolio repository
func NewPortfolioRepository(logger *slog.Logger, db *persistence.PostgresDB) portfolio.Repository {
	return &PortfolioRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *PortfolioRepository) WithTx(tx pgx.Tx) portfolio.Repository {
	return &PortfolioRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const portfolioColumns = `
		id, user_id, principal, available_profit, total_value, lifetime_profit,
		mode, rate_percent, accrual_status, approval_date, proration_enabled,
		allow_early_exit, mode_effective_date, role, deleted_at, version,
		created_at, updated_at`

func scanPortfolio(row pgx.Row) (*portfolio.Portfolio, error) {
	var p portfolio.Portfolio
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Principal,
		&p.AvailableProfit,
		&p.TotalValue,
		&p.LifetimeProfit,
		&p.Mode,
		&p.RatePercent,
		&p.AccrualStatus,
		&p.ApprovalDate,
		&p.ProrationEnabled,
		&p.AllowEarlyExit,
		&p.ModeEffectiveDate,
		&p.Role,
		&p.DeletedAt,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores a new portfolio in the database
func (r *PortfolioRepository) Create(ctx context.Context, p *portfolio.Portfolio) error {
	query := `
		INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Principal,
		p.AvailableProfit,
		p.TotalValue,
		p.LifetimeProfit,
		p.Mode,
		p.RatePercent,
		p.AccrualStatus,
		p.ApprovalDate,
		p.ProrationEnabled,
		p.AllowEarlyExit,
		p.ModeEffectiveDate,
		p.Role,
		p.DeletedAt,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create portfolio", "error", err)
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	return nil
}

// GetByID retrieves a portfolio by its ID
func (r *PortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	query := `SELECT` + portfolioColumns + `
		FROM portfolios
		WHERE id = $1`

	p, err := scanPortfolio(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, portfolio.ErrPortfolioNotFound{PortfolioID: id}
		}
		r.logger.Error("Failed to get portfolio", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	return p, nil
}

// GetByUserID retrieves a portfolio by its owner's user ID
func (r *PortfolioRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*portfolio.Portfolio, error) {
	query := `SELECT` + portfolioColumns + `
		FROM portfolios
		WHERE user_id = $1 AND deleted_at IS NULL`

	p, err := scanPortfolio(r.querier.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No portfolio for this user
		}
		r.logger.Error("Failed to get portfolio by user", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get portfolio by user: %w", err)
	}

	return p, nil
}

// Update persists portfolio changes using optimistic locking. The version in
// the struct must be the post-increment value produced by the mutation.
func (r *PortfolioRepository) Update(ctx context.Context, p *portfolio.Portfolio) error {
	query := `
		UPDATE portfolios
		SET principal = $1, available_profit = $2, total_value = $3,
		    lifetime_profit = $4, mode = $5, rate_percent = $6,
		    accrual_status = $7, proration_enabled = $8, allow_early_exit = $9,
		    mode_effective_date = $10, version = $11, updated_at = $12
		WHERE id = $13 AND version = $14
	`

	tag, err := r.querier.Exec(ctx, query,
		p.Principal,
		p.AvailableProfit,
		p.TotalValue,
		p.LifetimeProfit,
		p.Mode,
		p.RatePercent,
		p.AccrualStatus,
		p.ProrationEnabled,
		p.AllowEarlyExit,
		p.ModeEffectiveDate,
		p.Version,
		p.UpdatedAt,
		p.ID,
		p.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update portfolio", "id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return portfolio.ErrConcurrentModification{PortfolioID: p.ID}
	}

	return nil
}

// ListActiveClients returns every portfolio eligible for a batch run
func (r *PortfolioRepository) ListActiveClients(ctx context.Context) ([]*portfolio.Portfolio, error) {
	query := `SELECT` + portfolioColumns + `
		FROM portfolios
		WHERE role = $1 AND accrual_status = $2 AND deleted_at IS NULL
		ORDER BY created_at`

	rows, err := r.querier.Query(ctx, query, portfolio.RoleClient, portfolio.StatusActive)
	if err != nil {
		r.logger.Error("Failed to list active client portfolios", "error", err)
		return nil, fmt.Errorf("failed to list active client portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*portfolio.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
		}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolio rows: %w", err)
	}

	return portfolios, nil
}

// LockForUpdate acquires a pessimistic lock on the portfolio row, serializing
// the accrual transaction against concurrent admin-driven balance mutations.
func (r *PortfolioRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	query := `SELECT` + portfolioColumns + `
		FROM portfolios
		WHERE id = $1
		FOR UPDATE`

	p, err := scanPortfolio(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, portfolio.ErrPortfolioNotFound{PortfolioID: id}
		}
		r.logger.Error("Failed to lock portfolio", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock portfolio: %w", err)
	}

	return p, nil
}
