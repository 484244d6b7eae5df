package accrual

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
)

// OutcomeStatus classifies one portfolio's result in a run
type OutcomeStatus string

const (
	OutcomePosted  OutcomeStatus = "POSTED"
	OutcomeSkipped OutcomeStatus = "SKIPPED"
	OutcomeFailed  OutcomeStatus = "FAILED"
)

// Skip reasons. Skips are informational, never failures.
const (
	SkipReasonPaused      = "accrual paused"
	SkipReasonZeroCapital = "no invested capital"
	SkipReasonDuplicate   = "already calculated for cycle"
	SkipReasonNotEligible = "entry date after cycle reference"
	SkipReasonAfterCutoff = "entered after cutoff day"
	SkipReasonZeroProfit  = "computed profit is zero"
)

// Outcome is one portfolio's result in an accrual run
type Outcome struct {
	PortfolioID  uuid.UUID       `json:"portfolio_id"`
	UserID       uuid.UUID       `json:"user_id"`
	Status       OutcomeStatus   `json:"status"`
	Reason       string          `json:"reason,omitempty"`
	ProfitAmount decimal.Decimal `json:"profit_amount"`
}

// BatchResult aggregates one full run's outcomes
type BatchResult struct {
	Cycle    domain.Cycle `json:"cycle"`
	Outcomes []Outcome    `json:"outcomes"`
	Posted   int          `json:"posted"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
}

func (r *BatchResult) add(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case OutcomePosted:
		r.Posted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
