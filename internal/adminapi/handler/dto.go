package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfolio-profit-engine/internal/accrual"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
)

// BatchRunResponse summarizes a batch run triggered through the API.
type BatchRunResponse struct {
	Total   int              `json:"total"`
	Posted  int              `json:"posted"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Results []AccrualOutcome `json:"results,omitempty"`
}

// AccrualOutcome describes the result of processing a single portfolio.
type AccrualOutcome struct {
	PortfolioID  string          `json:"portfolio_id"`
	Status       string          `json:"status"`
	ProfitAmount decimal.Decimal `json:"profit_amount"`
	Reason       string          `json:"reason,omitempty"`
}

// UpdateConfigRequest updates a single global configuration value.
type UpdateConfigRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdatePortfolioConfigRequest updates per-portfolio accrual settings.
// All fields are optional; absent fields are left unchanged.
type UpdatePortfolioConfigRequest struct {
	RatePercent      *decimal.Decimal `json:"rate_percent,omitempty"`
	Mode             *string          `json:"mode,omitempty"`
	ProrationEnabled *bool            `json:"proration_enabled,omitempty"`
	AllowEarlyExit   *bool            `json:"allow_early_exit,omitempty"`
}

// PortfolioConfigResponse reports the accrual settings of a portfolio.
type PortfolioConfigResponse struct {
	PortfolioID       string          `json:"portfolio_id"`
	Mode              string          `json:"mode"`
	RatePercent       decimal.Decimal `json:"rate_percent"`
	ProrationEnabled  bool            `json:"proration_enabled"`
	AllowEarlyExit    bool            `json:"allow_early_exit"`
	ModeEffectiveDate *time.Time      `json:"mode_effective_date,omitempty"`
	Version           int             `json:"version"`
}

// ProfitHistoryItem is a single posted accrual cycle.
type ProfitHistoryItem struct {
	ID             string          `json:"id"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	RatePercent    decimal.Decimal `json:"rate_percent"`
	ProfitAmount   decimal.Decimal `json:"profit_amount"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Mode           string          `json:"mode"`
	IsProrated     bool            `json:"is_prorated"`
	IsManual       bool            `json:"is_manual"`
	CalculatedAt   time.Time       `json:"calculated_at"`
}

// ProfitHistoryResponse lists the accrual history of a portfolio.
type ProfitHistoryResponse struct {
	PortfolioID string              `json:"portfolio_id"`
	Items       []ProfitHistoryItem `json:"items"`
}

func toBatchRunResponse(result *accrual.BatchResult) BatchRunResponse {
	resp := BatchRunResponse{
		Total:   len(result.Outcomes),
		Posted:  result.Posted,
		Skipped: result.Skipped,
		Failed:  result.Failed,
		Results: make([]AccrualOutcome, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		resp.Results = append(resp.Results, toAccrualOutcome(o))
	}
	return resp
}

func toAccrualOutcome(o accrual.Outcome) AccrualOutcome {
	return AccrualOutcome{
		PortfolioID:  o.PortfolioID.String(),
		Status:       string(o.Status),
		ProfitAmount: o.ProfitAmount,
		Reason:       o.Reason,
	}
}

func toPortfolioConfigResponse(p *portfolio.Portfolio) PortfolioConfigResponse {
	return PortfolioConfigResponse{
		PortfolioID:       p.ID.String(),
		Mode:              string(p.Mode),
		RatePercent:       p.RatePercent,
		ProrationEnabled:  p.ProrationEnabled,
		AllowEarlyExit:    p.AllowEarlyExit,
		ModeEffectiveDate: p.ModeEffectiveDate,
		Version:           p.Version,
	}
}
