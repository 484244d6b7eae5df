package accrual

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages accrual history persistence
type Repository interface {
	Create(ctx context.Context, record *Record) error

	// Exists reports whether a record was already written for the given
	// (portfolio, month, year). Only consulted under MONTHS cadence;
	// sub-month cadences rely on the scheduler's cadence gate instead.
	Exists(ctx context.Context, portfolioID uuid.UUID, month, year int) (bool, error)

	// ListByPortfolio returns the portfolio's accrual history, newest first
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*Record, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrDuplicateCycle indicates a record already exists for the cycle
type ErrDuplicateCycle struct {
	PortfolioID uuid.UUID
	Month       int
	Year        int
}

func (e ErrDuplicateCycle) Error() string {
	return fmt.Sprintf("accrual already recorded for portfolio %s for %d/%d", e.PortfolioID, e.Month, e.Year)
}
