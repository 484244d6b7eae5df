package accrual

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portfolio-profit-engine/internal/domain/portfolio"
)

// Record is one immutable accrual history row: the audit trail entry for a
// single (portfolio, cycle) profit posting. Records are created exactly once
// per eligible cycle and never mutated or deleted.
type Record struct {
	ID             uuid.UUID       `json:"id" bson:"record_id"`
	PortfolioID    uuid.UUID       `json:"portfolio_id" bson:"portfolio_id"`
	UserID         uuid.UUID       `json:"user_id" bson:"user_id"`
	Month          int             `json:"month" bson:"month"`
	Year           int             `json:"year" bson:"year"`
	CycleRef       time.Time       `json:"cycle_ref" bson:"cycle_ref"`
	OpeningBalance decimal.Decimal `json:"opening_balance" bson:"opening_balance"`
	RatePercent    decimal.Decimal `json:"rate_percent" bson:"rate_percent"` // Percentage actually applied, after resolution and proration
	ProfitAmount   decimal.Decimal `json:"profit_amount" bson:"profit_amount"`
	ClosingBalance decimal.Decimal `json:"closing_balance" bson:"closing_balance"`
	Mode           portfolio.Mode  `json:"mode" bson:"mode"` // Snapshot at calculation time
	IsProrated     bool            `json:"is_prorated" bson:"is_prorated"`
	IsManual       bool            `json:"is_manual" bson:"is_manual"`
	CalculatedAt   time.Time       `json:"calculated_at" bson:"calculated_at"`
}

// NewRecord builds the history row for one posted accrual
func NewRecord(p *portfolio.Portfolio, cycle Cycle, opening, applied, profit decimal.Decimal, prorated, manual bool) *Record {
	return &Record{
		ID:             uuid.New(),
		PortfolioID:    p.ID,
		UserID:         p.UserID,
		Month:          cycle.Month(),
		Year:           cycle.Year(),
		CycleRef:       cycle.Ref,
		OpeningBalance: opening,
		RatePercent:    applied,
		ProfitAmount:   profit,
		ClosingBalance: opening.Add(profit),
		Mode:           p.Mode,
		IsProrated:     prorated,
		IsManual:       manual,
		CalculatedAt:   time.Now().UTC(),
	}
}
