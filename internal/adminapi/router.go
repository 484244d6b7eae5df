package adminapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-profit-engine/internal/adminapi/handler"
	"github.com/portfolio-profit-engine/internal/adminapi/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	profitHandler *handler.ProfitHandler,
	configHandler *handler.ConfigHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Admin-only operations
		admin := v1.Group("/admin")
		{
			profit := admin.Group("/profit")
			{
				profit.POST("/run", profitHandler.TriggerBatch)
				profit.POST("/run/:portfolioId", profitHandler.TriggerPortfolio)
			}

			config := admin.Group("/config")
			{
				config.GET("", configHandler.GetAll)
				config.GET("/:key", configHandler.GetByKey)
				config.PUT("/:key", configHandler.Update)
			}

			admin.GET("/portfolios/:portfolioId/profit-config", profitHandler.GetPortfolioConfig)
			admin.PUT("/portfolios/:portfolioId/profit-config", profitHandler.UpdatePortfolioConfig)
			admin.GET("/portfolios/:portfolioId/audit", profitHandler.GetAuditTrail)
			admin.GET("/audit/:recordId", profitHandler.GetAuditRecord)
		}

		// Client-visible operations
		v1.GET("/portfolios/:portfolioId/profit-history", profitHandler.GetHistory)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
