package handler

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/portfolio-profit-engine/internal/adminapi/service"
	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
	domainconfig "github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

// ProfitHandler handles HTTP requests for accrual operations
type ProfitHandler struct {
	profitService service.ProfitService
	logger        *slog.Logger
}

// NewProfitHandler creates a new profit handler
func NewProfitHandler(logger *slog.Logger, profitService service.ProfitService) *ProfitHandler {
	return &ProfitHandler{
		profitService: profitService,
		logger:        logger,
	}
}

// TriggerBatch runs accrual for every active client portfolio. Optional
// month/year query parameters target a specific cycle instead of the current
// one.
func (h *ProfitHandler) TriggerBatch(c *gin.Context) {
	cycle, ok := resolveCycle(c)
	if !ok {
		return
	}

	result, err := h.profitService.TriggerBatch(c.Request.Context(), cycle)
	if err != nil {
		var missing domainconfig.ErrConfigMissing
		if errors.As(err, &missing) {
			h.logger.Error("Batch rejected: configuration incomplete", "key", missing.Key)
			RespondUnprocessable(c, "Configuration incomplete: "+missing.Key)
			return
		}
		h.logger.Error("Failed to run accrual batch", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, toBatchRunResponse(result))
}

// TriggerPortfolio runs accrual for a single portfolio, optionally against an
// explicit month/year cycle
func (h *ProfitHandler) TriggerPortfolio(c *gin.Context) {
	id, ok := parsePortfolioID(c, h.logger)
	if !ok {
		return
	}
	cycle, ok := resolveCycle(c)
	if !ok {
		return
	}

	outcome, err := h.profitService.TriggerPortfolio(c.Request.Context(), id, cycle)
	if err != nil {
		var notFound portfolio.ErrPortfolioNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Portfolio not found")
			return
		}
		var missing domainconfig.ErrConfigMissing
		if errors.As(err, &missing) {
			h.logger.Error("Run rejected: configuration incomplete", "key", missing.Key)
			RespondUnprocessable(c, "Configuration incomplete: "+missing.Key)
			return
		}
		h.logger.Error("Failed to run accrual for portfolio", "portfolio_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, toAccrualOutcome(outcome))
}

// GetHistory returns the accrual history of a portfolio, newest first
func (h *ProfitHandler) GetHistory(c *gin.Context) {
	id, ok := parsePortfolioID(c, h.logger)
	if !ok {
		return
	}

	records, err := h.profitService.GetHistory(c.Request.Context(), id)
	if err != nil {
		var notFound portfolio.ErrPortfolioNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Portfolio not found")
			return
		}
		h.logger.Error("Failed to fetch profit history", "portfolio_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	response := ProfitHistoryResponse{
		PortfolioID: id.String(),
		Items:       make([]ProfitHistoryItem, 0, len(records)),
	}
	for _, r := range records {
		response.Items = append(response.Items, ProfitHistoryItem{
			ID:             r.ID.String(),
			Month:          r.Month,
			Year:           r.Year,
			OpeningBalance: r.OpeningBalance,
			RatePercent:    r.RatePercent,
			ProfitAmount:   r.ProfitAmount,
			ClosingBalance: r.ClosingBalance,
			Mode:           string(r.Mode),
			IsProrated:     r.IsProrated,
			IsManual:       r.IsManual,
			CalculatedAt:   r.CalculatedAt,
		})
	}

	RespondOK(c, response)
}

// GetPortfolioConfig returns the portfolio's accrual settings
func (h *ProfitHandler) GetPortfolioConfig(c *gin.Context) {
	id, ok := parsePortfolioID(c, h.logger)
	if !ok {
		return
	}

	p, err := h.profitService.GetPortfolioConfig(c.Request.Context(), id)
	if err != nil {
		var notFound portfolio.ErrPortfolioNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Portfolio not found")
			return
		}
		h.logger.Error("Failed to fetch portfolio config", "portfolio_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, toPortfolioConfigResponse(p))
}

// UpdatePortfolioConfig updates per-portfolio accrual settings
func (h *ProfitHandler) UpdatePortfolioConfig(c *gin.Context) {
	id, ok := parsePortfolioID(c, h.logger)
	if !ok {
		return
	}

	var req UpdatePortfolioConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	update := service.PortfolioConfigUpdate{
		RatePercent:      req.RatePercent,
		ProrationEnabled: req.ProrationEnabled,
		AllowEarlyExit:   req.AllowEarlyExit,
	}
	if req.Mode != nil {
		mode := portfolio.Mode(*req.Mode)
		if mode != portfolio.ModeFixed && mode != portfolio.ModeCompounding {
			RespondBadRequest(c, "Invalid mode: must be FIXED or COMPOUNDING")
			return
		}
		update.Mode = &mode
	}

	p, err := h.profitService.UpdatePortfolioConfig(c.Request.Context(), id, update)
	if err != nil {
		var notFound portfolio.ErrPortfolioNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Portfolio not found")
			return
		}
		if errors.Is(err, portfolio.ErrInvalidRate) {
			RespondBadRequest(c, "Rate percent must not be negative")
			return
		}
		h.logger.Error("Failed to update portfolio config", "portfolio_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, toPortfolioConfigResponse(p))
}

// GetAuditTrail returns a portfolio's audit documents from the audit trail,
// newest first
func (h *ProfitHandler) GetAuditTrail(c *gin.Context) {
	id, ok := parsePortfolioID(c, h.logger)
	if !ok {
		return
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 || limit > maxAuditLimit {
		RespondBadRequest(c, "Invalid limit: must be between 1 and 500")
		return
	}

	events, err := h.profitService.GetAuditTrail(c.Request.Context(), id, limit)
	if err != nil {
		var notFound portfolio.ErrPortfolioNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Portfolio not found")
			return
		}
		h.logger.Error("Failed to fetch audit trail", "portfolio_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"portfolio_id": id.String(), "events": events})
}

// GetAuditRecord returns the audit document for one posted accrual record
func (h *ProfitHandler) GetAuditRecord(c *gin.Context) {
	idParam := c.Param("recordId")
	recordID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid record ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid record ID")
		return
	}

	event, err := h.profitService.GetAuditRecord(c.Request.Context(), recordID)
	if err != nil {
		h.logger.Error("Failed to fetch audit record", "record_id", recordID.String(), "error", err)
		RespondInternalError(c)
		return
	}
	if event == nil {
		RespondNotFound(c, "Audit record not found")
		return
	}

	RespondOK(c, event)
}

const maxAuditLimit = 500

// resolveCycle reads the optional month/year query parameters. Absent, the
// cycle is the current instant; present, the cycle anchors on the last day of
// the requested month so the whole month is eligible.
func resolveCycle(c *gin.Context) (domain.Cycle, bool) {
	monthStr := c.Query("month")
	yearStr := c.Query("year")

	if monthStr == "" && yearStr == "" {
		return domain.CycleAt(time.Now().UTC()), true
	}
	if monthStr == "" || yearStr == "" {
		RespondBadRequest(c, "month and year must be provided together")
		return domain.Cycle{}, false
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		RespondBadRequest(c, "Invalid month: must be 1-12")
		return domain.Cycle{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 9999 {
		RespondBadRequest(c, "Invalid year")
		return domain.Cycle{}, false
	}

	// Day 0 of the following month normalizes to this month's last day
	ref := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return domain.CycleAt(ref), true
}

func parsePortfolioID(c *gin.Context, logger *slog.Logger) (uuid.UUID, bool) {
	idParam := c.Param("portfolioId")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Error("Invalid portfolio ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid portfolio ID")
		return uuid.Nil, false
	}
	return id, true
}
