package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pos-cash-recon/internal/api/handler"
	"github.com/pos-cash-recon/internal/api/middleware"
)

// setupRouter configures the dashboard routes and middleware
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	catalogHandler *handler.CatalogHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	v1 := r.Group("/api/v1")
	{
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.PATCH("/:id", transactionHandler.Review)
			transactions.POST("/bulk-flag", transactionHandler.BulkFlag)
		}

		v1.GET("/stores", catalogHandler.ListStores)

		categories := v1.Group("/categories")
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.GET("/stats", catalogHandler.CategoryStats)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
