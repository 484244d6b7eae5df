package accrual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/ledger"
	"github.com/portfolio-profit-engine/internal/domain/outbox"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
	"github.com/portfolio-profit-engine/internal/platform/persistence"
)

var oneHundred = decimal.NewFromInt(100)

// errSkip signals an ineligible portfolio from inside the transaction
// closure. The transaction rolls back (nothing was written) and the caller
// reports a skip outcome instead of a failure.
type errSkip struct {
	reason string
}

func (e errSkip) Error() string { return "accrual skipped: " + e.reason }

// Engine computes and posts profit for a single portfolio. Every invocation
// runs in its own database transaction holding a row lock on the portfolio,
// so accruals serialize against concurrent deposits, withdrawals and admin
// config changes.
type Engine struct {
	tx         persistence.TxRunner
	portfolios portfolio.Repository
	history    domain.Repository
	ledger     ledger.Repository
	outbox     outbox.Repository
	logger     *slog.Logger
}

// NewEngine creates the per-portfolio accrual engine
func NewEngine(
	tx persistence.TxRunner,
	portfolios portfolio.Repository,
	history domain.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		tx:         tx,
		portfolios: portfolios,
		history:    history,
		ledger:     ledgerRepo,
		outbox:     outboxRepo,
		logger:     logger,
	}
}

// Process runs one portfolio's accrual for the given cycle. Ineligibility is
// reported as a skip outcome, never an error; an error return means the
// transaction failed and nothing was written.
func (e *Engine) Process(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle, settings *Settings, manual bool) (Outcome, error) {
	outcome := Outcome{PortfolioID: portfolioID, ProfitAmount: decimal.Zero}

	err := e.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		pf, err := e.portfolios.WithTx(tx).LockForUpdate(ctx, portfolioID)
		if err != nil {
			return err
		}
		outcome.UserID = pf.UserID

		if pf.AccrualStatus != portfolio.StatusActive {
			return errSkip{SkipReasonPaused}
		}
		if !pf.Principal.IsPositive() {
			return errSkip{SkipReasonZeroCapital}
		}

		// Idempotency applies to calendar-month cycles only; sub-month
		// cadences rely on the scheduler's cadence gate.
		if settings.DurationUnit == domain.UnitMonths {
			exists, err := e.history.WithTx(tx).Exists(ctx, pf.ID, cycle.Month(), cycle.Year())
			if err != nil {
				return err
			}
			if exists {
				return errSkip{SkipReasonDuplicate}
			}
		}

		entryDate := pf.EntryDate(settings.UseApprovalDate)
		if entryDate.After(cycle.Ref) {
			return errSkip{SkipReasonNotEligible}
		}

		firstCycle := cycle.ContainsEntry(entryDate)
		fraction := decimal.NewFromInt(1)
		prorated := false

		if firstCycle {
			if settings.ProrationEnabled && pf.ProrationEnabled {
				fraction = FirstCycleFraction(settings.ProrationMethod, settings.Slabs, cycle, entryDate.Day())
				prorated = fraction.LessThan(decimal.NewFromInt(1))
			} else if entryDate.Day() > settings.CutoffDay {
				// Without proration, late entries sit out their first
				// cycle entirely; no partial record is written.
				return errSkip{SkipReasonAfterCutoff}
			}
		}

		nominal := settings.FixedRate
		if pf.Mode == portfolio.ModeCompounding {
			nominal = settings.CompoundingRate
		}
		if pf.RatePercent.IsPositive() {
			nominal = pf.RatePercent
		}

		effective := EffectiveRate(nominal, settings.DurationValue, settings.DurationUnit, settings.CalcMode)
		applied := effective.Mul(fraction)

		opening := pf.Principal.Add(pf.AvailableProfit)

		// Round half-up to currency precision. Decimal's Round rounds half
		// away from zero, which is half-up for the non-negative amounts here.
		profit := pf.Principal.Mul(applied).Div(oneHundred).Round(2)
		if profit.IsZero() {
			return errSkip{SkipReasonZeroProfit}
		}

		// First-cycle profit is never compounded; a partial-period amount
		// must not enter the compounding base.
		compound := pf.Mode == portfolio.ModeCompounding && !firstCycle

		record := domain.NewRecord(pf, cycle, opening, applied, profit, prorated, manual)
		entry := ledger.NewProfitEntry(pf.ID, pf.UserID, profit, applied, cycle.Month(), cycle.Year())

		if err := pf.ApplyProfit(profit, compound); err != nil {
			return err
		}
		if err := e.portfolios.WithTx(tx).Update(ctx, pf); err != nil {
			return err
		}

		if err := e.history.WithTx(tx).Create(ctx, record); err != nil {
			// The row lock serializes runs, but a replayed cycle ref still
			// collides on the unique key; treat it as a clean skip.
			var dup domain.ErrDuplicateCycle
			if errors.As(err, &dup) {
				return errSkip{SkipReasonDuplicate}
			}
			return err
		}
		if err := e.ledger.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(record, entry)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		if err := e.outbox.WithTx(tx).Create(ctx, msg); err != nil {
			return err
		}

		outcome.Status = OutcomePosted
		outcome.ProfitAmount = profit

		e.logger.Info("Profit accrued",
			"portfolio_id", pf.ID.String(),
			"cycle", cycle.String(),
			"amount", profit.String(),
			"applied_percent", applied.String(),
			"compounded", compound,
			"prorated", prorated,
			"manual", manual,
		)
		return nil
	})

	if err != nil {
		var skip errSkip
		if errors.As(err, &skip) {
			outcome.Status = OutcomeSkipped
			outcome.Reason = skip.reason
			e.logger.Info("Accrual skipped",
				"portfolio_id", portfolioID.String(),
				"cycle", cycle.String(),
				"reason", skip.reason,
			)
			return outcome, nil
		}
		outcome.Status = OutcomeFailed
		outcome.Reason = err.Error()
		return outcome, err
	}

	return outcome, nil
}
