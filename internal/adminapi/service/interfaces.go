package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portfolio-profit-engine/internal/accrual"
	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/outbox"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
)

// BatchRunner drives accrual runs. Satisfied by *accrual.Coordinator.
type BatchRunner interface {
	RunBatch(ctx context.Context, cycle domain.Cycle, manual bool) (*accrual.BatchResult, error)
	RunForPortfolio(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle) (accrual.Outcome, error)
}

// ConfigStore exposes the persisted global configuration to the API.
// Satisfied by *sysconfig.Store.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// AuditReader queries the audit trail fed by the outbox poller.
// Satisfied by *mongo.AuditRepository.
type AuditReader interface {
	GetByRecordID(ctx context.Context, recordID uuid.UUID) (*outbox.Event, error)
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID, limit int64) ([]*outbox.Event, error)
}

// ProfitService defines the admin-facing accrual operations
type ProfitService interface {
	TriggerBatch(ctx context.Context, cycle domain.Cycle) (*accrual.BatchResult, error)
	TriggerPortfolio(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle) (accrual.Outcome, error)
	GetHistory(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Record, error)
	GetPortfolioConfig(ctx context.Context, portfolioID uuid.UUID) (*portfolio.Portfolio, error)
	UpdatePortfolioConfig(ctx context.Context, portfolioID uuid.UUID, update PortfolioConfigUpdate) (*portfolio.Portfolio, error)
	GetAuditTrail(ctx context.Context, portfolioID uuid.UUID, limit int64) ([]*outbox.Event, error)
	GetAuditRecord(ctx context.Context, recordID uuid.UUID) (*outbox.Event, error)
}

// ConfigService defines the admin-facing configuration operations
type ConfigService interface {
	GetConfig(ctx context.Context, key string) (string, error)
	GetAllConfig(ctx context.Context) (map[string]string, error)
	UpdateConfig(ctx context.Context, key, value string) error
}

// PortfolioConfigUpdate carries the optional per-portfolio setting changes.
// Nil fields are left untouched.
type PortfolioConfigUpdate struct {
	RatePercent      *decimal.Decimal
	Mode             *portfolio.Mode
	ProrationEnabled *bool
	AllowEarlyExit   *bool
}
