package accrual

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

// BatchRunner triggers one full accrual run. Satisfied by *Coordinator.
type BatchRunner interface {
	RunBatch(ctx context.Context, cycle domain.Cycle, manual bool) (*BatchResult, error)
}

// Scheduler decides when a new batch is due. It polls at a short fixed
// interval, independent of the accrual cadence, and re-reads the cadence from
// the configuration store on every tick, so cycles can be shortened to
// minutes for testing or stretched to calendar months for production without
// a restart.
//
// The last-run timestamp is process-local and deliberately not persisted: on
// startup it is backdated by a day, so every restart triggers a catch-up
// batch on the first due tick. Under MONTHS cadence the duplicate-cycle check
// makes that catch-up idempotent; sub-month cadences will accrue one extra
// cycle after a restart.
type Scheduler struct {
	runner       BatchRunner
	config       ConfigReader
	pollInterval time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	lastRun time.Time

	now func() time.Time // Injectable clock for tests
}

// NewScheduler creates the accrual scheduler
func NewScheduler(runner BatchRunner, config ConfigReader, pollInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		config:       config,
		pollInterval: pollInterval,
		logger:       logger,
		lastRun:      time.Now().UTC().Add(-24 * time.Hour),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start begins polling until the context is canceled. The loop is a single
// goroutine and the batch call is synchronous, so a tick can never start a
// new batch while a previous one is still running.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting accrual scheduler",
		"poll_interval", s.pollInterval.String(),
	)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Accrual scheduler stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick checks due-ness once, running a batch when the configured cadence has
// elapsed since the last successful run. Config errors abort the tick; the
// next tick retries.
func (s *Scheduler) Tick(ctx context.Context) {
	durationValue, err := s.config.GetInt(ctx, sysconfig.KeyAccrualDurationValue)
	if err != nil {
		s.logger.Error("Scheduler tick aborted: cannot read accrual duration value", "error", err)
		return
	}
	rawUnit, err := s.config.Get(ctx, sysconfig.KeyAccrualDurationUnit)
	if err != nil {
		s.logger.Error("Scheduler tick aborted: cannot read accrual duration unit", "error", err)
		return
	}
	unit, err := domain.ParseDurationUnit(rawUnit)
	if err != nil {
		s.logger.Error("Scheduler tick aborted: invalid accrual duration unit", "error", err)
		return
	}

	now := s.now()

	s.mu.Lock()
	lastRun := s.lastRun
	s.mu.Unlock()

	nextDue := domain.NextRun(lastRun, durationValue, unit)
	if now.Before(nextDue) {
		s.logger.Debug("Accrual batch not due",
			"last_run", lastRun,
			"next_due", nextDue,
		)
		return
	}

	s.logger.Info("Triggering accrual batch",
		"now", now,
		"next_due", nextDue,
		"duration_value", durationValue,
		"duration_unit", string(unit),
	)

	result, err := s.runner.RunBatch(ctx, domain.CycleAt(now), false)
	if err != nil {
		// Batch-level fault (missing config, enumeration failure). Leave
		// lastRun untouched so the next tick retries.
		s.logger.Error("Accrual batch failed", "error", err)
		return
	}

	// Per-portfolio failures are already handled inside the batch; the run
	// itself counts as done.
	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()

	s.logger.Info("Accrual batch completed",
		"posted", result.Posted,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}

// LastRun returns the timestamp of the last completed batch
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}
