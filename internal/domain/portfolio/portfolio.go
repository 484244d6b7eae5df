package portfolio

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNegativeProfit = errors.New("profit amount must not be negative")
	ErrInvalidRate    = errors.New("rate percent must not be negative")
)

// Mode determines where accrued profit is posted
type Mode string

const (
	ModeFixed       Mode = "FIXED"       // Profit goes to the withdrawable balance
	ModeCompounding Mode = "COMPOUNDING" // Profit is folded into the principal
)

// AccrualStatus defines whether a portfolio participates in accrual runs
type AccrualStatus string

const (
	StatusActive AccrualStatus = "ACTIVE"
	StatusPaused AccrualStatus = "PAUSED"
)

// Role defines the portfolio owner's role; only client portfolios accrue
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

// Portfolio represents one client's ledger state.
// Invariant: TotalValue == Principal + AvailableProfit.
type Portfolio struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Principal         decimal.Decimal `json:"principal"`
	AvailableProfit   decimal.Decimal `json:"available_profit"`
	TotalValue        decimal.Decimal `json:"total_value"`
	LifetimeProfit    decimal.Decimal `json:"lifetime_profit"` // Never decreases
	Mode              Mode            `json:"mode"`
	RatePercent       decimal.Decimal `json:"rate_percent"` // Per-portfolio override; zero means "use global rate"
	AccrualStatus     AccrualStatus   `json:"accrual_status"`
	ApprovalDate      *time.Time      `json:"approval_date,omitempty"`
	ProrationEnabled  bool            `json:"proration_enabled"`
	AllowEarlyExit    bool            `json:"allow_early_exit"`
	ModeEffectiveDate *time.Time      `json:"mode_effective_date,omitempty"`
	Role              Role            `json:"role"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
	Version           int             `json:"version"` // For optimistic locking
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewPortfolio creates a zero-balance portfolio for a newly onboarded client
func NewPortfolio(userID uuid.UUID, mode Mode) *Portfolio {
	now := time.Now().UTC()
	return &Portfolio{
		ID:               uuid.New(),
		UserID:           userID,
		Principal:        decimal.Zero,
		AvailableProfit:  decimal.Zero,
		TotalValue:       decimal.Zero,
		LifetimeProfit:   decimal.Zero,
		Mode:             mode,
		RatePercent:      decimal.Zero,
		AccrualStatus:    StatusActive,
		ProrationEnabled: true,
		Role:             RoleClient,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// EntryDate returns the date eligibility and proration math start from.
// The approval date is used when configured and recorded; otherwise the
// portfolio's creation date.
func (p *Portfolio) EntryDate(useApprovalDate bool) time.Time {
	if useApprovalDate && p.ApprovalDate != nil {
		return *p.ApprovalDate
	}
	return p.CreatedAt
}

// ApplyProfit posts an accrued profit amount to the portfolio balances.
// When compound is true the amount is added to the principal, otherwise to
// the withdrawable profit balance. TotalValue is recomputed and the lifetime
// profit counter accumulates in either case.
func (p *Portfolio) ApplyProfit(amount decimal.Decimal, compound bool) error {
	if amount.IsNegative() {
		return ErrNegativeProfit
	}

	if compound {
		p.Principal = p.Principal.Add(amount)
	} else {
		p.AvailableProfit = p.AvailableProfit.Add(amount)
	}
	p.TotalValue = p.Principal.Add(p.AvailableProfit)
	p.LifetimeProfit = p.LifetimeProfit.Add(amount)
	p.UpdatedAt = time.Now().UTC()
	p.Version++
	return nil
}

// SetMode switches the accrual mode and records when the change was made.
// The new mode takes effect from the next cycle; past records are untouched.
func (p *Portfolio) SetMode(mode Mode, effectiveFrom time.Time) {
	p.Mode = mode
	p.ModeEffectiveDate = &effectiveFrom
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}

// SetRatePercent overrides the global rate for this portfolio
func (p *Portfolio) SetRatePercent(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ErrInvalidRate
	}
	p.RatePercent = rate
	p.UpdatedAt = time.Now().UTC()
	p.Version++
	return nil
}
