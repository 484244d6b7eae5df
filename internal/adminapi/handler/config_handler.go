package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-profit-engine/internal/adminapi/service"
	domainconfig "github.com/portfolio-profit-engine/internal/domain/sysconfig"
)

// ConfigHandler handles HTTP requests for global configuration
type ConfigHandler struct {
	configService service.ConfigService
	logger        *slog.Logger
}

// NewConfigHandler creates a new configuration handler
func NewConfigHandler(logger *slog.Logger, configService service.ConfigService) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// GetAll returns every configured key/value pair
func (h *ConfigHandler) GetAll(c *gin.Context) {
	all, err := h.configService.GetAllConfig(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list configuration", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, all)
}

// GetByKey returns the value of a single configuration key
func (h *ConfigHandler) GetByKey(c *gin.Context) {
	key := c.Param("key")

	value, err := h.configService.GetConfig(c.Request.Context(), key)
	if err != nil {
		var missing domainconfig.ErrConfigMissing
		if errors.As(err, &missing) {
			RespondNotFound(c, "Config key not found")
			return
		}
		h.logger.Error("Failed to fetch configuration", "key", key, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"key": key, "value": value})
}

// Update sets the value of an existing configuration key. Unknown keys are
// rejected so a typo cannot create an orphan row.
func (h *ConfigHandler) Update(c *gin.Context) {
	key := c.Param("key")

	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.configService.UpdateConfig(c.Request.Context(), key, req.Value); err != nil {
		var missing domainconfig.ErrConfigMissing
		if errors.As(err, &missing) {
			RespondNotFound(c, "Config key not found")
			return
		}
		h.logger.Error("Failed to update configuration", "key", key, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"key": key, "value": req.Value})
}
