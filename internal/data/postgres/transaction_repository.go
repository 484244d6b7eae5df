package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/portfolio-profit-engine/internal/domain/ledger"
	"github.com/portfolio-profit-engine/internal/platform/persistence"
)

// TransactionRepository implements the ledger.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL ledger transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *TransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends one ledger transaction row. Rows are never updated or deleted.
func (r *TransactionRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO transactions (id, portfolio_id, user_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.PortfolioID,
		entry.UserID,
		entry.Type,
		entry.Amount,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger transaction", "id", entry.ID.String(), "error", err)
		return fmt.Errorf("failed to create ledger transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT id, portfolio_id, user_id, type, amount, description, created_at
		FROM transactions
		WHERE id = $1
	`

	var entry ledger.Entry
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.PortfolioID,
		&entry.UserID,
		&entry.Type,
		&entry.Amount,
		&entry.Description,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{ID: id}
		}
		r.logger.Error("Failed to get ledger transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger transaction: %w", err)
	}

	return &entry, nil
}

// GetByPortfolioID retrieves a portfolio's ledger transactions, newest first
func (r *TransactionRepository) GetByPortfolioID(ctx context.Context, portfolioID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT id, portfolio_id, user_id, type, amount, description, created_at
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, portfolioID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger transactions", "portfolio_id", portfolioID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var entry ledger.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.PortfolioID,
			&entry.UserID,
			&entry.Type,
			&entry.Amount,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger transaction row: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger transaction rows: %w", err)
	}

	return entries, nil
}
