package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/platform/persistence"
)

// ProfitHistoryRepository implements the accrual.Repository interface for PostgreSQL
type ProfitHistoryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewProfitHistoryRepository creates a new PostgreSQL accrual history repository
func NewProfitHistoryRepository(logger *slog.Logger, db *persistence.PostgresDB) accrual.Repository {
	return &ProfitHistoryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *ProfitHistoryRepository) WithTx(tx pgx.Tx) accrual.Repository {
	return &ProfitHistoryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends one accrual record. The unique (portfolio_id, cycle_ref)
// constraint turns an exact same-cycle replay into ErrDuplicateCycle; the
// once-per-month rule for MONTHS cadences is the caller's in-transaction
// Exists check, so sub-month cycles insert freely within a month.
func (r *ProfitHistoryRepository) Create(ctx context.Context, record *accrual.Record) error {
	query := `
		INSERT INTO profit_history (
			id, portfolio_id, user_id, month, year, cycle_ref, opening_balance,
			rate_percent, profit_amount, closing_balance, mode, is_prorated,
			is_manual, calculated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.querier.Exec(ctx, query,
		record.ID,
		record.PortfolioID,
		record.UserID,
		record.Month,
		record.Year,
		record.CycleRef,
		record.OpeningBalance,
		record.RatePercent,
		record.ProfitAmount,
		record.ClosingBalance,
		record.Mode,
		record.IsProrated,
		record.IsManual,
		record.CalculatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return accrual.ErrDuplicateCycle{
				PortfolioID: record.PortfolioID,
				Month:       record.Month,
				Year:        record.Year,
			}
		}
		r.logger.Error("Failed to create accrual record", "portfolio_id", record.PortfolioID.String(), "error", err)
		return fmt.Errorf("failed to create accrual record: %w", err)
	}

	return nil
}

// Exists reports whether a record already exists for the (portfolio, month, year)
func (r *ProfitHistoryRepository) Exists(ctx context.Context, portfolioID uuid.UUID, month, year int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM profit_history
			WHERE portfolio_id = $1 AND month = $2 AND year = $3
		)
	`

	var exists bool
	err := r.querier.QueryRow(ctx, query, portfolioID, month, year).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check accrual record existence", "portfolio_id", portfolioID.String(), "error", err)
		return false, fmt.Errorf("failed to check accrual record existence: %w", err)
	}

	return exists, nil
}

// ListByPortfolio returns the portfolio's accrual history, newest first
func (r *ProfitHistoryRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*accrual.Record, error) {
	query := `
		SELECT id, portfolio_id, user_id, month, year, cycle_ref, opening_balance,
		       rate_percent, profit_amount, closing_balance, mode, is_prorated,
		       is_manual, calculated_at
		FROM profit_history
		WHERE portfolio_id = $1
		ORDER BY year DESC, month DESC, cycle_ref DESC
	`

	rows, err := r.querier.Query(ctx, query, portfolioID)
	if err != nil {
		r.logger.Error("Failed to list accrual history", "portfolio_id", portfolioID.String(), "error", err)
		return nil, fmt.Errorf("failed to list accrual history: %w", err)
	}
	defer rows.Close()

	var records []*accrual.Record
	for rows.Next() {
		var rec accrual.Record
		err := rows.Scan(
			&rec.ID,
			&rec.PortfolioID,
			&rec.UserID,
			&rec.Month,
			&rec.Year,
			&rec.CycleRef,
			&rec.OpeningBalance,
			&rec.RatePercent,
			&rec.ProfitAmount,
			&rec.ClosingBalance,
			&rec.Mode,
			&rec.IsProrated,
			&rec.IsManual,
			&rec.CalculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accrual record row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accrual record rows: %w", err)
	}

	return records, nil
}
