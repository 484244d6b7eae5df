package portfolio

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines portfolio persistence operations
type Repository interface {
	Create(ctx context.Context, p *Portfolio) error
	GetByID(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Portfolio, error)
	Update(ctx context.Context, p *Portfolio) error

	// ListActiveClients returns every portfolio eligible for a batch run:
	// role CLIENT, not soft-deleted, accrual status ACTIVE.
	ListActiveClients(ctx context.Context) ([]*Portfolio, error)

	// LockForUpdate acquires a pessimistic row lock for accrual processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrPortfolioNotFound indicates missing portfolio
type ErrPortfolioNotFound struct {
	PortfolioID uuid.UUID
}

func (e ErrPortfolioNotFound) Error() string {
	return "portfolio not found: " + e.PortfolioID.String()
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	PortfolioID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for portfolio: " + e.PortfolioID.String()
}
