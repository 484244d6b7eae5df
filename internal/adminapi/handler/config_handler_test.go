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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainconfig "github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

type MockConfigService struct {
	mock.Mock
}

func (m *MockConfigService) GetConfig(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockConfigService) GetAllConfig(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockConfigService) UpdateConfig(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func TestConfigHandler_GetAll(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		all := map[string]string{
			"FIXED_RATE_PERCENT":    "4.0",
			"ACCRUAL_DURATION_UNIT": "MONTHS",
		}
		mockService.On("GetAllConfig", mock.Anything).Return(all, nil)

		router := setupTestRouter()
		router.GET("/admin/config", handler.GetAll)

		req, _ := http.NewRequest(http.MethodGet, "/admin/config", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody map[string]string
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, all, responseBody)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		mockService.On("GetAllConfig", mock.Anything).Return(nil, errors.New("database unavailable"))

		router := setupTestRouter()
		router.GET("/admin/config", handler.GetAll)

		req, _ := http.NewRequest(http.MethodGet, "/admin/config", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestConfigHandler_GetByKey(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		mockService.On("GetConfig", mock.Anything, "FIXED_RATE_PERCENT").Return("4.0", nil)

		router := setupTestRouter()
		router.GET("/admin/config/:key", handler.GetByKey)

		req, _ := http.NewRequest(http.MethodGet, "/admin/config/FIXED_RATE_PERCENT", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		assert.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody map[string]string
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, "FIXED_RATE_PERCENT", responseBody["key"])
		assert.Equal(t, "4.0", responseBody["value"])
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		mockService.On("GetConfig", mock.Anything, "NO_SUCH_KEY").
			Return("", domainconfig.ErrConfigMissing{Key: "NO_SUCH_KEY"})

		router := setupTestRouter()
		router.GET("/admin/config/:key", handler.GetByKey)

		req, _ := http.NewRequest(http.MethodGet, "/admin/config/NO_SUCH_KEY", nil)
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
}

func TestConfigHandler_Update(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		mockService.On("UpdateConfig", mock.Anything, "FIXED_RATE_PERCENT", "5.5").Return(nil)

		router := setupTestRouter()
		router.PUT("/admin/config/:key", handler.Update)

		jsonBody, _ := json.Marshal(UpdateConfigRequest{Value: "5.5"})
		req, _ := http.NewRequest(http.MethodPut, "/admin/config/FIXED_RATE_PERCENT", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingValue", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		router := setupTestRouter()
		router.PUT("/admin/config/:key", handler.Update)

		req, _ := http.NewRequest(http.MethodPut, "/admin/config/FIXED_RATE_PERCENT", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		mockService := new(MockConfigService)
		handler := NewConfigHandler(logger, mockService)

		mockService.On("UpdateConfig", mock.Anything, "NO_SUCH_KEY", "x").
			Return(domainconfig.ErrConfigMissing{Key: "NO_SUCH_KEY"})

		router := setupTestRouter()
		router.PUT("/admin/config/:key", handler.Update)

		jsonBody, _ := json.Marshal(UpdateConfigRequest{Value: "x"})
		req, _ := http.NewRequest(http.MethodPut, "/admin/config/NO_SUCH_KEY", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}
