package api

import (
	"errors"
	"fmt"
	"net/http"

	"stockmcp/internal/logging"
	"stockmcp/internal/stockdb"

	"github.com/gin-gonic/gin"
)

// StockHandler handles stock-related HTTP requests
type StockHandler struct {
	db     *stockdb.StockDatabase
	logger *logging.AppLogger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(db *stockdb.StockDatabase, logger *logging.AppLogger) *StockHandler {
	return &StockHandler{
		db:     db,
		logger: logger,
	}
}

// List handles GET /stocks
func (h *StockHandler) List(c *gin.Context) {
	stocks, err := h.db.List()
	if err != nil {
		h.serverError(c, "list stocks", err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

// Create handles POST /stocks
func (h *StockHandler) Create(c *gin.Context) {
	var input stockdb.StockCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	stock, err := h.db.Create(input)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}

// Get handles GET /stocks/:id
func (h *StockHandler) Get(c *gin.Context) {
	stock, err := h.db.Get(c.Param("id"))
	if err != nil {
		h.serverError(c, "get stock", err)
		return
	}
	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
		return
	}
	c.JSON(http.StatusOK, stock)
}

// GetBySymbol handles GET /stocks/symbol/:symbol
func (h *StockHandler) GetBySymbol(c *gin.Context) {
	symbol := c.Param("symbol")

	stock, err := h.db.GetBySymbol(symbol)
	if err != nil {
		h.serverError(c, "get stock by symbol", err)
		return
	}
	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("stock symbol %s not found", symbol)})
		return
	}
	c.JSON(http.StatusOK, stock)
}

// Update handles PUT /stocks/:id
func (h *StockHandler) Update(c *gin.Context) {
	var patch stockdb.StockUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	stock, err := h.db.Update(c.Param("id"), patch)
	if err != nil {
		h.storeError(c, err)
		return
	}
	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
		return
	}
	c.JSON(http.StatusOK, stock)
}

// Delete handles DELETE /stocks/:id
func (h *StockHandler) Delete(c *gin.Context) {
	removed, err := h.db.Delete(c.Param("id"))
	if err != nil {
		h.serverError(c, "delete stock", err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stock deleted"})
}

// Stats handles GET /stats
func (h *StockHandler) Stats(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		h.serverError(c, "compute stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// storeError maps store failures onto client-visible signals: duplicate
// symbols and rejected input are client errors, everything else is a 500.
func (h *StockHandler) storeError(c *gin.Context, err error) {
	var dup *stockdb.DuplicateSymbolError
	if errors.As(err, &dup) {
		c.JSON(http.StatusBadRequest, gin.H{"error": dup.Error(), "symbol": dup.Symbol})
		return
	}

	var ve *stockdb.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}

	h.serverError(c, "store operation", err)
}

func (h *StockHandler) serverError(c *gin.Context, op string, err error) {
	h.logger.Error("Store operation failed",
		"request_id", GetRequestID(c),
		"operation", op,
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
