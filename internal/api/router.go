// Package api exposes the stock store over a conventional HTTP API
// guarded by basic auth. It is one of two access surfaces over the same
// store; the other is the MCP server in internal/mcp.
package api

import (
	"net/http"

	"stockmcp/internal/auth"
	"stockmcp/internal/logging"
	"stockmcp/internal/stockdb"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "Stock Management API"
	ServiceVersion = "1.0.0"
)

// NewRouter builds the REST surface over the given store and auth gate.
func NewRouter(db *stockdb.StockDatabase, gate *auth.Gate, logger *logging.AppLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logging(logger))

	handler := NewStockHandler(db, logger)

	// Open endpoints
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": ServiceName,
			"version": ServiceVersion,
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	})

	// Everything else sits behind the basic-auth gate
	protected := router.Group("/", BasicAuth(gate))
	{
		protected.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Welcome, " + c.GetString("username") + "! This is a protected endpoint.",
			})
		})

		protected.GET("/stocks", handler.List)
		protected.POST("/stocks", handler.Create)
		protected.GET("/stocks/symbol/:symbol", handler.GetBySymbol)
		protected.GET("/stocks/:id", handler.Get)
		protected.PUT("/stocks/:id", handler.Update)
		protected.DELETE("/stocks/:id", handler.Delete)
		protected.GET("/stats", handler.Stats)
	}

	return router
}
