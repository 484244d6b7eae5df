package accrual

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
)

// PortfolioProcessor runs one portfolio's accrual. Satisfied by *Engine.
type PortfolioProcessor interface {
	Process(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle, settings *Settings, manual bool) (Outcome, error)
}

// Coordinator enumerates eligible portfolios for a run and drives the engine
// over each one on a bounded worker pool, isolating per-portfolio failures.
type Coordinator struct {
	engine     PortfolioProcessor
	portfolios portfolio.Repository
	config     ConfigReader
	pool       *ants.Pool
	logger     *slog.Logger
}

// NewCoordinator creates the batch coordinator with a worker pool of the
// given size.
func NewCoordinator(
	engine PortfolioProcessor,
	portfolios portfolio.Repository,
	config ConfigReader,
	poolSize int,
	logger *slog.Logger,
) (*Coordinator, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create accrual worker pool: %w", err)
	}

	return &Coordinator{
		engine:     engine,
		portfolios: portfolios,
		config:     config,
		pool:       pool,
		logger:     logger,
	}, nil
}

// RunBatch processes every active client portfolio for the given cycle.
// Each portfolio runs in its own transaction on the worker pool; one
// portfolio's failure is recorded in its outcome and never aborts the rest.
// RunBatch itself errors only on batch-level faults: missing configuration or
// a failed portfolio enumeration.
func (c *Coordinator) RunBatch(ctx context.Context, cycle domain.Cycle, manual bool) (*BatchResult, error) {
	settings, err := ResolveSettings(ctx, c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accrual settings: %w", err)
	}

	portfolios, err := c.portfolios.ListActiveClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate portfolios for batch: %w", err)
	}

	c.logger.Info("Starting accrual batch",
		"cycle", cycle.String(),
		"portfolios", len(portfolios),
		"duration_value", settings.DurationValue,
		"duration_unit", string(settings.DurationUnit),
		"calc_mode", string(settings.CalcMode),
		"manual", manual,
	)

	result := &BatchResult{Cycle: cycle}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, pf := range portfolios {
		pf := pf
		wg.Add(1)

		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			outcome := c.processOne(ctx, pf, cycle, settings, manual)

			mu.Lock()
			result.add(outcome)
			mu.Unlock()
		})
		if submitErr != nil {
			// Pool rejected the task (released or overloaded); record the
			// failure for this portfolio and keep going.
			wg.Done()
			c.logger.Error("Failed to submit portfolio to worker pool",
				"portfolio_id", pf.ID.String(),
				"error", submitErr,
			)
			mu.Lock()
			result.add(Outcome{
				PortfolioID: pf.ID,
				UserID:      pf.UserID,
				Status:      OutcomeFailed,
				Reason:      submitErr.Error(),
			})
			mu.Unlock()
		}
	}

	wg.Wait()

	c.logger.Info("Accrual batch finished",
		"cycle", cycle.String(),
		"posted", result.Posted,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, nil
}

// RunForPortfolio processes a single portfolio, used by the manual admin
// trigger. The resulting record is marked as manual.
func (c *Coordinator) RunForPortfolio(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle) (Outcome, error) {
	settings, err := ResolveSettings(ctx, c.config)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to resolve accrual settings: %w", err)
	}

	return c.engine.Process(ctx, portfolioID, cycle, settings, true)
}

// processOne shields the batch from a single portfolio's failure
func (c *Coordinator) processOne(ctx context.Context, pf *portfolio.Portfolio, cycle domain.Cycle, settings *Settings, manual bool) Outcome {
	outcome, err := c.engine.Process(ctx, pf.ID, cycle, settings, manual)
	if err != nil {
		c.logger.Error("Portfolio accrual failed",
			"portfolio_id", pf.ID.String(),
			"user_id", pf.UserID.String(),
			"cycle", cycle.String(),
			"error", err,
		)
	}
	return outcome
}

// Close releases the worker pool
func (c *Coordinator) Close() {
	c.pool.Release()
}
