package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-profit-engine/internal/accrual"
	"github.com/portfolio-profit-engine/internal/adminapi/service"
	domain "github.com/portfolio-profit-engine/internal/domain/accrual"
	"github.com/portfolio-profit-engine/internal/domain/outbox"
	"github.com/portfolio-profit-engine/internal/domain/portfolio"
	domainconfig "github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

type MockProfitService struct {
	mock.Mock
}

func (m *MockProfitService) TriggerBatch(ctx context.Context, cycle domain.Cycle) (*accrual.BatchResult, error) {
	args := m.Called(ctx, cycle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accrual.BatchResult), args.Error(1)
}

func (m *MockProfitService) TriggerPortfolio(ctx context.Context, portfolioID uuid.UUID, cycle domain.Cycle) (accrual.Outcome, error) {
	args := m.Called(ctx, portfolioID, cycle)
	return args.Get(0).(accrual.Outcome), args.Error(1)
}

func (m *MockProfitService) GetHistory(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Record, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Record), args.Error(1)
}

func (m *MockProfitService) GetPortfolioConfig(ctx context.Context, portfolioID uuid.UUID) (*portfolio.Portfolio, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Portfolio), args.Error(1)
}

func (m *MockProfitService) UpdatePortfolioConfig(ctx context.Context, portfolioID uuid.UUID, update service.PortfolioConfigUpdate) (*portfolio.Portfolio, error) {
	args := m.Called(ctx, portfolioID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Portfolio), args.Error(1)
}

func (m *MockProfitService) GetAuditTrail(ctx context.Context, portfolioID uuid.UUID, limit int64) ([]*outbox.Event, error) {
	args := m.Called(ctx, portfolioID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Event), args.Error(1)
}

func (m *MockProfitService) GetAuditRecord(ctx context.Context, recordID uuid.UUID) (*outbox.Event, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Event), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

func TestProfitHandler_TriggerBatch(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		result := &accrual.BatchResult{
			Cycle: domain.CycleAt(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)),
			Outcomes: []accrual.Outcome{
				{PortfolioID: uuid.New(), UserID: uuid.New(), Status: accrual.OutcomePosted, ProfitAmount: decimal.RequireFromString("400.00")},
				{PortfolioID: uuid.New(), UserID: uuid.New(), Status: accrual.OutcomeSkipped, Reason: accrual.SkipReasonPaused, ProfitAmount: decimal.Zero},
			},
			Posted:  1,
			Skipped: 1,
		}
		mockService.On("TriggerBatch", mock.Anything, mock.Anything).Return(result, nil)

		router := setupTestRouter()
		router.POST("/admin/profit/run", handler.TriggerBatch)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody BatchRunResponse
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, 2, responseBody.Total)
		assert.Equal(t, 1, responseBody.Posted)
		assert.Equal(t, 1, responseBody.Skipped)
		assert.Equal(t, 0, responseBody.Failed)
		assert.Len(t, responseBody.Results, 2)

		mockService.AssertExpectations(t)
	})

	t.Run("IncompleteConfig", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		mockService.On("TriggerBatch", mock.Anything, mock.Anything).
			Return(nil, domainconfig.ErrConfigMissing{Key: "FIXED_RATE_PERCENT"})

		router := setupTestRouter()
		router.POST("/admin/profit/run", handler.TriggerBatch)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var response Response
		err := json.Unmarshal(rr.Body.Bytes(), &response)
		assert.NoError(t, err)
		require.NotNil(t, response.Error)
		assert.Equal(t, "UNPROCESSABLE", response.Error.Code)
		assert.Contains(t, response.Error.Message, "FIXED_RATE_PERCENT")
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		mockService.On("TriggerBatch", mock.Anything, mock.Anything).Return(nil, errors.New("database unavailable"))

		router := setupTestRouter()
		router.POST("/admin/profit/run", handler.TriggerBatch)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ExplicitCycle", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		// month=2&year=2025 targets February 2025, anchored on its last day
		mockService.On("TriggerBatch", mock.Anything, mock.MatchedBy(func(cycle domain.Cycle) bool {
			return cycle.Month() == 2 && cycle.Year() == 2025 && cycle.Ref.Day() == 28
		})).Return(&accrual.BatchResult{}, nil)

		router := setupTestRouter()
		router.POST("/admin/profit/run", handler.TriggerBatch)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run?month=2&year=2025", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/admin/profit/run", handler.TriggerBatch)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run?month=13&year=2025", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MonthWithoutYear", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/admin/profit/run", handler.TriggerBatch)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run?month=2", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProfitHandler_TriggerPortfolio(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		outcome := accrual.Outcome{
			PortfolioID:  portfolioID,
			UserID:       uuid.New(),
			Status:       accrual.OutcomePosted,
			ProfitAmount: decimal.RequireFromString("360.00"),
		}
		mockService.On("TriggerPortfolio", mock.Anything, portfolioID, mock.Anything).Return(outcome, nil)

		router := setupTestRouter()
		router.POST("/admin/profit/run/:portfolioId", handler.TriggerPortfolio)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run/"+portfolioID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody AccrualOutcome
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, portfolioID.String(), responseBody.PortfolioID)
		assert.Equal(t, string(accrual.OutcomePosted), responseBody.Status)
		assert.True(t, responseBody.ProfitAmount.Equal(decimal.RequireFromString("360.00")))

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidPortfolioID", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/admin/profit/run/:portfolioId", handler.TriggerPortfolio)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("PortfolioNotFound", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		mockService.On("TriggerPortfolio", mock.Anything, portfolioID, mock.Anything).
			Return(accrual.Outcome{}, portfolio.ErrPortfolioNotFound{PortfolioID: portfolioID})

		router := setupTestRouter()
		router.POST("/admin/profit/run/:portfolioId", handler.TriggerPortfolio)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run/"+portfolioID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var response Response
		err := json.Unmarshal(rr.Body.Bytes(), &response)
		assert.NoError(t, err)
		require.NotNil(t, response.Error)
		assert.Equal(t, "NOT_FOUND", response.Error.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("IncompleteConfig", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		mockService.On("TriggerPortfolio", mock.Anything, portfolioID, mock.Anything).
			Return(accrual.Outcome{}, domainconfig.ErrConfigMissing{Key: "ACCRUAL_DURATION_UNIT"})

		router := setupTestRouter()
		router.POST("/admin/profit/run/:portfolioId", handler.TriggerPortfolio)

		req, _ := http.NewRequest(http.MethodPost, "/admin/profit/run/"+portfolioID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProfitHandler_GetHistory(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		records := []*domain.Record{
			{
				ID:             uuid.New(),
				PortfolioID:    portfolioID,
				UserID:         uuid.New(),
				Month:          2,
				Year:           2025,
				OpeningBalance: decimal.RequireFromString("10400.00"),
				RatePercent:    decimal.RequireFromString("4.0"),
				ProfitAmount:   decimal.RequireFromString("416.00"),
				ClosingBalance: decimal.RequireFromString("10816.00"),
				Mode:           portfolio.ModeFixed,
				CalculatedAt:   time.Now().UTC(),
			},
			{
				ID:             uuid.New(),
				PortfolioID:    portfolioID,
				UserID:         uuid.New(),
				Month:          1,
				Year:           2025,
				OpeningBalance: decimal.RequireFromString("10000.00"),
				RatePercent:    decimal.RequireFromString("4.0"),
				ProfitAmount:   decimal.RequireFromString("400.00"),
				ClosingBalance: decimal.RequireFromString("10400.00"),
				Mode:           portfolio.ModeFixed,
				CalculatedAt:   time.Now().UTC(),
			},
		}
		mockService.On("GetHistory", mock.Anything, portfolioID).Return(records, nil)

		router := setupTestRouter()
		router.GET("/portfolios/:portfolioId/profit-history", handler.GetHistory)

		req, _ := http.NewRequest(http.MethodGet, "/portfolios/"+portfolioID.String()+"/profit-history", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody ProfitHistoryResponse
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, portfolioID.String(), responseBody.PortfolioID)
		require.Len(t, responseBody.Items, 2)
		assert.Equal(t, 2, responseBody.Items[0].Month)
		assert.Equal(t, 1, responseBody.Items[1].Month)

		mockService.AssertExpectations(t)
	})

	t.Run("PortfolioNotFound", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		mockService.On("GetHistory", mock.Anything, portfolioID).
			Return(nil, portfolio.ErrPortfolioNotFound{PortfolioID: portfolioID})

		router := setupTestRouter()
		router.GET("/portfolios/:portfolioId/profit-history", handler.GetHistory)

		req, _ := http.NewRequest(http.MethodGet, "/portfolios/"+portfolioID.String()+"/profit-history", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProfitHandler_UpdatePortfolioConfig(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		newRate := decimal.RequireFromString("6.0")
		newMode := portfolio.ModeCompounding
		effectiveDate := time.Now().UTC()
		updated := &portfolio.Portfolio{
			ID:                portfolioID,
			Mode:              newMode,
			RatePercent:       newRate,
			ProrationEnabled:  true,
			ModeEffectiveDate: &effectiveDate,
			Version:           3,
		}
		mockService.On("UpdatePortfolioConfig", mock.Anything, portfolioID, mock.MatchedBy(func(u service.PortfolioConfigUpdate) bool {
			return u.RatePercent != nil && u.RatePercent.Equal(newRate) &&
				u.Mode != nil && *u.Mode == newMode &&
				u.ProrationEnabled == nil && u.AllowEarlyExit == nil
		})).Return(updated, nil)

		router := setupTestRouter()
		router.PUT("/admin/portfolios/:portfolioId/profit-config", handler.UpdatePortfolioConfig)

		jsonBody, _ := json.Marshal(gin.H{"rate_percent": "6.0", "mode": "COMPOUNDING"})
		req, _ := http.NewRequest(http.MethodPut, "/admin/portfolios/"+portfolioID.String()+"/profit-config", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody PortfolioConfigResponse
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, portfolioID.String(), responseBody.PortfolioID)
		assert.Equal(t, string(portfolio.ModeCompounding), responseBody.Mode)
		assert.Equal(t, 3, responseBody.Version)
		require.NotNil(t, responseBody.ModeEffectiveDate)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidMode", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()

		router := setupTestRouter()
		router.PUT("/admin/portfolios/:portfolioId/profit-config", handler.UpdatePortfolioConfig)

		jsonBody, _ := json.Marshal(gin.H{"mode": "VARIABLE"})
		req, _ := http.NewRequest(http.MethodPut, "/admin/portfolios/"+portfolioID.String()+"/profit-config", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NegativeRate", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		mockService.On("UpdatePortfolioConfig", mock.Anything, portfolioID, mock.Anything).
			Return(nil, portfolio.ErrInvalidRate)

		router := setupTestRouter()
		router.PUT("/admin/portfolios/:portfolioId/profit-config", handler.UpdatePortfolioConfig)

		jsonBody, _ := json.Marshal(gin.H{"rate_percent": "-1.0"})
		req, _ := http.NewRequest(http.MethodPut, "/admin/portfolios/"+portfolioID.String()+"/profit-config", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response Response
		err := json.Unmarshal(rr.Body.Bytes(), &response)
		assert.NoError(t, err)
		require.NotNil(t, response.Error)
		assert.Equal(t, "BAD_REQUEST", response.Error.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()

		router := setupTestRouter()
		router.PUT("/admin/portfolios/:portfolioId/profit-config", handler.UpdatePortfolioConfig)

		req, _ := http.NewRequest(http.MethodPut, "/admin/portfolios/"+portfolioID.String()+"/profit-config", bytes.NewBufferString(`{"invalid`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProfitHandler_GetAuditTrail(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		events := []*outbox.Event{
			{Record: domain.Record{ID: uuid.New(), PortfolioID: portfolioID, Month: 1, Year: 2025}},
		}
		mockService.On("GetAuditTrail", mock.Anything, portfolioID, int64(50)).Return(events, nil)

		router := setupTestRouter()
		router.GET("/admin/portfolios/:portfolioId/audit", handler.GetAuditTrail)

		req, _ := http.NewRequest(http.MethodGet, "/admin/portfolios/"+portfolioID.String()+"/audit", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody struct {
			PortfolioID string          `json:"portfolio_id"`
			Events      []*outbox.Event `json:"events"`
		}
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, portfolioID.String(), responseBody.PortfolioID)
		require.Len(t, responseBody.Events, 1)
		assert.Equal(t, 2025, responseBody.Events[0].Record.Year)

		mockService.AssertExpectations(t)
	})

	t.Run("CustomLimit", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		mockService.On("GetAuditTrail", mock.Anything, portfolioID, int64(10)).
			Return([]*outbox.Event{}, nil)

		router := setupTestRouter()
		router.GET("/admin/portfolios/:portfolioId/audit", handler.GetAuditTrail)

		req, _ := http.NewRequest(http.MethodGet, "/admin/portfolios/"+portfolioID.String()+"/audit?limit=10", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidLimit", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()

		router := setupTestRouter()
		router.GET("/admin/portfolios/:portfolioId/audit", handler.GetAuditTrail)

		req, _ := http.NewRequest(http.MethodGet, "/admin/portfolios/"+portfolioID.String()+"/audit?limit=0", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("PortfolioNotFound", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		portfolioID := uuid.New()
		mockService.On("GetAuditTrail", mock.Anything, portfolioID, int64(50)).
			Return(nil, portfolio.ErrPortfolioNotFound{PortfolioID: portfolioID})

		router := setupTestRouter()
		router.GET("/admin/portfolios/:portfolioId/audit", handler.GetAuditTrail)

		req, _ := http.NewRequest(http.MethodGet, "/admin/portfolios/"+portfolioID.String()+"/audit", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProfitHandler_GetAuditRecord(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		recordID := uuid.New()
		event := &outbox.Event{Record: domain.Record{ID: recordID, Month: 1, Year: 2025}}
		mockService.On("GetAuditRecord", mock.Anything, recordID).Return(event, nil)

		router := setupTestRouter()
		router.GET("/admin/audit/:recordId", handler.GetAuditRecord)

		req, _ := http.NewRequest(http.MethodGet, "/admin/audit/"+recordID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		recordID := uuid.New()
		mockService.On("GetAuditRecord", mock.Anything, recordID).Return(nil, nil)

		router := setupTestRouter()
		router.GET("/admin/audit/:recordId", handler.GetAuditRecord)

		req, _ := http.NewRequest(http.MethodGet, "/admin/audit/"+recordID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRecordID", func(t *testing.T) {
		mockService := new(MockProfitService)
		handler := NewProfitHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/admin/audit/:recordId", handler.GetAuditRecord)

		req, _ := http.NewRequest(http.MethodGet, "/admin/audit/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}
