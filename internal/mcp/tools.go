package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"stockmcp/internal/stockdb"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools wires the store's operations into MCP tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_stocks",
			mcp.WithDescription("List every stock in the catalog"),
		),
		s.handleListStocks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_stock",
			mcp.WithDescription("Get a stock by ID or symbol"),
			mcp.WithString("identifier", mcp.Required(),
				mcp.Description("Stock ID, or symbol when by_symbol is true"),
			),
			mcp.WithBoolean("by_symbol",
				mcp.Description("Look up by symbol instead of ID"),
				mcp.DefaultBool(false),
			),
		),
		s.handleGetStock,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_stock",
			mcp.WithDescription("Create a new stock record"),
			mcp.WithString("symbol", mcp.Required(), mcp.Description("Ticker symbol, unique across the catalog")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Company display name")),
			mcp.WithNumber("price", mcp.Required(), mcp.Description("Current price")),
			mcp.WithNumber("change", mcp.Description("Price change"), mcp.DefaultNumber(0)),
			mcp.WithNumber("volume", mcp.Description("Trading volume"), mcp.DefaultNumber(0)),
			mcp.WithNumber("market_cap", mcp.Description("Market capitalization"), mcp.DefaultNumber(0)),
		),
		s.handleCreateStock,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_stock",
			mcp.WithDescription("Update fields of an existing stock; omitted fields are left untouched"),
			mcp.WithString("stock_id", mcp.Required(), mcp.Description("ID of the stock to update")),
			mcp.WithString("symbol", mcp.Description("New ticker symbol")),
			mcp.WithString("name", mcp.Description("New display name")),
			mcp.WithNumber("price", mcp.Description("New price")),
			mcp.WithNumber("change", mcp.Description("New price change")),
			mcp.WithNumber("volume", mcp.Description("New trading volume")),
			mcp.WithNumber("market_cap", mcp.Description("New market capitalization")),
		),
		s.handleUpdateStock,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_stock",
			mcp.WithDescription("Delete a stock record"),
			mcp.WithString("stock_id", mcp.Required(), mcp.Description("ID of the stock to delete")),
		),
		s.handleDeleteStock,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_stock_stats",
			mcp.WithDescription("Aggregate statistics over the catalog"),
		),
		s.handleGetStockStats,
	)
}

func (s *Server) handleListStocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stocks, err := s.db.List()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Tool list_stocks", "count", len(stocks))
	return toolJSON(map[string]any{
		"count":  len(stocks),
		"stocks": stocks,
	})
}

func (s *Server) handleGetStock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bySymbol := req.GetBool("by_symbol", false)

	var stock *stockdb.Stock
	if bySymbol {
		stock, err = s.db.GetBySymbol(identifier)
	} else {
		stock, err = s.db.Get(identifier)
	}
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return mcp.NewToolResultError(fmt.Sprintf("stock %s not found", identifier)), nil
	}

	return toolJSON(map[string]any{
		"success": true,
		"stock":   stock,
	})
}

func (s *Server) handleCreateStock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := req.RequireString("symbol")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input := stockdb.StockCreate{
		Symbol:    symbol,
		Name:      name,
		Price:     req.GetFloat("price", 0),
		Change:    req.GetFloat("change", 0),
		Volume:    int64(req.GetFloat("volume", 0)),
		MarketCap: req.GetFloat("market_cap", 0),
	}

	stock, err := s.db.Create(input)
	if err != nil {
		if stockdb.IsDuplicateSymbol(err) || stockdb.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	s.logger.Debug("Tool create_stock", "id", stock.ID, "symbol", stock.Symbol)
	return toolJSON(map[string]any{
		"success": true,
		"message": "stock created",
		"stock":   stock,
	})
}

func (s *Server) handleUpdateStock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stockID, err := req.RequireString("stock_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Only arguments present in the call become part of the patch, so an
	// omitted field and an explicit zero stay distinguishable.
	args := req.GetArguments()
	var patch stockdb.StockUpdate
	if v, ok := args["symbol"]; ok {
		sv := fmt.Sprintf("%v", v)
		patch.Symbol = &sv
	}
	if v, ok := args["name"]; ok {
		sv := fmt.Sprintf("%v", v)
		patch.Name = &sv
	}
	if f, ok := argFloat(args, "price"); ok {
		patch.Price = &f
	}
	if f, ok := argFloat(args, "change"); ok {
		patch.Change = &f
	}
	if f, ok := argFloat(args, "volume"); ok {
		vol := int64(f)
		patch.Volume = &vol
	}
	if f, ok := argFloat(args, "market_cap"); ok {
		patch.MarketCap = &f
	}

	stock, err := s.db.Update(stockID, patch)
	if err != nil {
		if stockdb.IsDuplicateSymbol(err) || stockdb.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	if stock == nil {
		return mcp.NewToolResultError("stock not found"), nil
	}

	s.logger.Debug("Tool update_stock", "id", stockID, "symbol", stock.Symbol)
	return toolJSON(map[string]any{
		"success": true,
		"message": "stock updated",
		"stock":   stock,
	})
}

func (s *Server) handleDeleteStock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stockID, err := req.RequireString("stock_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Fetch first so the deleted record can be returned
	stock, err := s.db.Get(stockID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return mcp.NewToolResultError("stock not found"), nil
	}

	removed, err := s.db.Delete(stockID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return mcp.NewToolResultError("stock not found"), nil
	}

	s.logger.Debug("Tool delete_stock", "id", stockID, "symbol", stock.Symbol)
	return toolJSON(map[string]any{
		"success":       true,
		"message":       "stock deleted",
		"deleted_stock": stock,
	})
}

func (s *Server) handleGetStockStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.db.Stats()
	if err != nil {
		return nil, err
	}

	return toolJSON(map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// toolJSON renders a tool result as indented JSON text.
func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// argFloat extracts a numeric argument, accepting the numeric types a JSON
// decode or a direct call may produce.
func argFloat(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
