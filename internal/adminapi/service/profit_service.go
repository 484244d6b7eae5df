package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/portfolio-profit-engine/internal/accrual"
	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/outbox"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
)

// ProfitServiceImpl implements the ProfitService interface
type ProfitServiceImpl struct {
	runner        BatchRunner
	historyRepo   domain.Repository
	portfolioRepo portfolio.Repository
	auditRepo     AuditReader
}

// NewProfitService creates a new profit service
func NewProfitService(runner BatchRunner, historyRepo domain.Repository, portfolioRepo portfolio.Repository, auditRepo AuditReader) ProfitService {
	return &ProfitServiceImpl{
		runner:        runner,
		historyRepo:   historyRepo,
		portfolioRepo: portfolioRepo,
		auditRepo:     auditRepo,
	}
}

// TriggerBatch runs accrual for every active client portfolio against the
// given cycle. Manual runs are marked as such on every record produced.
func (s *ProfitServiceImpl) TriggerBatch(ctx context.Context, cycle domain.Cycle) (*accrual.BatchResult, error) {
	return s.runner.RunBatch(ctx, cycle, true)
}

// TriggerPortfolio runs accrual for a single portfolio against the given
// cycle. Eligibility and duplicate checks still apply; a manual trigger can
// skip but never double-post.
func (s *ProfitServiceImpl) TriggerPortfolio(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle) (accrual.Outcome, error) {
	return s.runner.RunForPortfolio(ctx, portfolioID, cycle)
}

// GetHistory returns the accrual history of a portfolio, newest first
func (s *ProfitServiceImpl) GetHistory(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Record, error) {
	if _, err := s.portfolioRepo.GetByID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByPortfolio(ctx, portfolioID)
}

// GetPortfolioConfig retrieves the portfolio's accrual settings
func (s *ProfitServiceImpl) GetPortfolioConfig(ctx context.Context, portfolioID uuid.UUID) (*portfolio.Portfolio, error) {
	return s.portfolioRepo.GetByID(ctx, portfolioID)
}

// UpdatePortfolioConfig applies the provided setting changes. A mode change
// records its effective date so past cycles keep their recorded mode.
func (s *ProfitServiceImpl) UpdatePortfolioConfig(ctx context.Context, portfolioID uuid.UUID, update PortfolioConfigUpdate) (*portfolio.Portfolio, error) {
	p, err := s.portfolioRepo.GetByID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	// An empty update is a read: no version bump, no write.
	if update.RatePercent == nil && update.Mode == nil &&
		update.ProrationEnabled == nil && update.AllowEarlyExit == nil {
		return p, nil
	}

	loadedVersion := p.Version

	if update.RatePercent != nil {
		if err := p.SetRatePercent(*update.RatePercent); err != nil {
			return nil, err
		}
	}
	if update.Mode != nil && *update.Mode != p.Mode {
		p.SetMode(*update.Mode, time.Now().UTC())
	}
	if update.ProrationEnabled != nil {
		p.ProrationEnabled = *update.ProrationEnabled
		p.UpdatedAt = time.Now().UTC()
	}
	if update.AllowEarlyExit != nil {
		p.AllowEarlyExit = *update.AllowEarlyExit
		p.UpdatedAt = time.Now().UTC()
	}

	// The optimistic update advances the version by exactly one step,
	// regardless of how many settings changed in this request.
	p.Version = loadedVersion + 1

	if err := s.portfolioRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetAuditTrail returns a portfolio's audit documents, newest first
func (s *ProfitServiceImpl) GetAuditTrail(ctx context.Context, portfolioID uuid.UUID, limit int64) ([]*outbox.Event, error) {
	if _, err := s.portfolioRepo.GetByID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByPortfolio(ctx, portfolioID, limit)
}

// GetAuditRecord returns one posted accrual's audit document, or (nil, nil)
// when no document exists for the record ID
func (s *ProfitServiceImpl) GetAuditRecord(ctx context.Context, recordID uuid.UUID) (*outbox.Event, error) {
	return s.auditRepo.GetByRecordID(ctx, recordID)
}
