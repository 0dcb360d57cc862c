package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"stockmcp/internal/auth"
	"stockmcp/internal/config"
	"stockmcp/internal/logging"
	"stockmcp/internal/stockdb"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *stockdb.StockDatabase) {
	t.Helper()

	logger, _ := logging.NewTestLogger()
	path := filepath.Join(t.TempDir(), "stocks.json")

	db, err := stockdb.New(path, config.CorruptionReset, logger)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.DataFile = path

	gate := auth.NewGate("admin", "admin")
	return NewServer(&cfg, db, gate, logger), db
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	return body
}

func TestCreateAndListTools(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleCreateStock(ctx, toolRequest("create_stock", map[string]any{
		"symbol": "aapl",
		"name":   "Apple Inc.",
		"price":  175.43,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	body := resultJSON(t, result)
	stock := body["stock"].(map[string]any)
	assert.Equal(t, "AAPL", stock["symbol"])
	assert.Equal(t, 175.43, stock["price"])

	result, err = s.handleListStocks(ctx, toolRequest("list_stocks", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	body = resultJSON(t, result)
	assert.Equal(t, float64(1), body["count"])
}

func TestCreateToolRejectsDuplicate(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()

	_, err := db.Create(stockdb.StockCreate{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43})
	require.NoError(t, err)

	result, err := s.handleCreateStock(ctx, toolRequest("create_stock", map[string]any{
		"symbol": "AAPL",
		"name":   "Apple clone",
		"price":  1.0,
	}))
	require.NoError(t, err, "domain failures are tool errors, not protocol errors")
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "AAPL")

	stocks, err := db.List()
	require.NoError(t, err)
	assert.Len(t, stocks, 1)
}

func TestCreateToolRequiresArguments(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleCreateStock(context.Background(), toolRequest("create_stock", map[string]any{
		"name": "No symbol",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestGetStockTool(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()

	created, err := db.Create(stockdb.StockCreate{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 378.85})
	require.NoError(t, err)

	// By ID
	result, err := s.handleGetStock(ctx, toolRequest("get_stock", map[string]any{
		"identifier": created.ID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	body := resultJSON(t, result)
	assert.Equal(t, "MSFT", body["stock"].(map[string]any)["symbol"])

	// By symbol, case-insensitive
	result, err = s.handleGetStock(ctx, toolRequest("get_stock", map[string]any{
		"identifier": "msft",
		"by_symbol":  true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	// Unknown identifier is a tool error
	result, err = s.handleGetStock(ctx, toolRequest("get_stock", map[string]any{
		"identifier": "no-such-id",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestUpdateStockToolPatchSemantics(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()

	created, err := db.Create(stockdb.StockCreate{Symbol: "TSLA", Name: "Tesla Inc.", Price: 248.42, Volume: 89000000})
	require.NoError(t, err)

	result, err := s.handleUpdateStock(ctx, toolRequest("update_stock", map[string]any{
		"stock_id": created.ID,
		"price":    250.00,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	stock := resultJSON(t, result)["stock"].(map[string]any)
	assert.Equal(t, 250.00, stock["price"])
	assert.Equal(t, "TSLA", stock["symbol"])
	assert.Equal(t, "Tesla Inc.", stock["name"])
	assert.Equal(t, float64(89000000), stock["volume"])

	// Missing record
	result, err = s.handleUpdateStock(ctx, toolRequest("update_stock", map[string]any{
		"stock_id": "no-such-id",
		"price":    1.0,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestUpdateStockToolDuplicateSymbol(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()

	_, err := db.Create(stockdb.StockCreate{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43})
	require.NoError(t, err)
	googl, err := db.Create(stockdb.StockCreate{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 138.21})
	require.NoError(t, err)

	result, err := s.handleUpdateStock(ctx, toolRequest("update_stock", map[string]any{
		"stock_id": googl.ID,
		"symbol":   "aapl",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "AAPL")
}

func TestDeleteStockTool(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()

	created, err := db.Create(stockdb.StockCreate{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 875.28})
	require.NoError(t, err)

	result, err := s.handleDeleteStock(ctx, toolRequest("delete_stock", map[string]any{
		"stock_id": created.ID,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	deleted := resultJSON(t, result)["deleted_stock"].(map[string]any)
	assert.Equal(t, "NVDA", deleted["symbol"])

	// Deleting again is a tool error
	result, err = s.handleDeleteStock(ctx, toolRequest("delete_stock", map[string]any{
		"stock_id": created.ID,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestStatsToolEmptyAndPopulated(t *testing.T) {
	s, db := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleGetStockStats(ctx, toolRequest("get_stock_stats", nil))
	require.NoError(t, err)
	stats := resultJSON(t, result)["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["count"])

	for _, input := range []stockdb.StockCreate{
		{Symbol: "LOW", Name: "Low Co", Price: 10, MarketCap: 100},
		{Symbol: "MID", Name: "Mid Co", Price: 20, MarketCap: 200},
		{Symbol: "HIGH", Name: "High Co", Price: 30, MarketCap: 300},
	} {
		_, err := db.Create(input)
		require.NoError(t, err)
	}

	result, err = s.handleGetStockStats(ctx, toolRequest("get_stock_stats", nil))
	require.NoError(t, err)
	stats = resultJSON(t, result)["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["count"])
	assert.Equal(t, float64(20), stats["average_price"])
	assert.Equal(t, float64(600), stats["total_market_cap"])
	assert.Equal(t, "HIGH", stats["highest_symbol"])
	assert.Equal(t, "LOW", stats["lowest_symbol"])
}

func readResource(t *testing.T, s *Server, uri string,
	handler func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)) string {
	t.Helper()

	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	contents, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, uri, text.URI)
	assert.Equal(t, jsonMIMEType, text.MIMEType)
	return text.Text
}

func TestAllStocksResource(t *testing.T) {
	s, db := newTestServer(t)

	_, err := db.Create(stockdb.StockCreate{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.43})
	require.NoError(t, err)

	text := readResource(t, s, "stock://all", s.handleAllStocksResource)

	var stocks []stockdb.Stock
	require.NoError(t, json.Unmarshal([]byte(text), &stocks))
	require.Len(t, stocks, 1)
	assert.Equal(t, "AAPL", stocks[0].Symbol)
}

func TestStatsResource(t *testing.T) {
	s, _ := newTestServer(t)

	text := readResource(t, s, "stock://stats", s.handleStatsResource)

	var stats stockdb.Stats
	require.NoError(t, json.Unmarshal([]byte(text), &stats))
	assert.Equal(t, 0, stats.Count)
}

func TestConfigResource(t *testing.T) {
	s, _ := newTestServer(t)

	text := readResource(t, s, "stock://config", s.handleConfigResource)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &cfg))
	assert.Equal(t, ServerName, cfg["server_name"])
	assert.NotEmpty(t, cfg["data_file"])
}

func TestSymbolResource(t *testing.T) {
	s, db := newTestServer(t)

	_, err := db.Create(stockdb.StockCreate{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 138.21})
	require.NoError(t, err)

	text := readResource(t, s, "stock://GOOGL/info", s.handleSymbolResource)

	var stock stockdb.Stock
	require.NoError(t, json.Unmarshal([]byte(text), &stock))
	assert.Equal(t, "GOOGL", stock.Symbol)

	// Unknown symbol yields an error body, not a protocol failure
	text = readResource(t, s, "stock://ZZZZ/info", s.handleSymbolResource)
	assert.Contains(t, text, "not found")
}

func TestSymbolFromURI(t *testing.T) {
	assert.Equal(t, "AAPL", symbolFromURI("stock://AAPL/info"))
	assert.Equal(t, "", symbolFromURI("stock://AAPL"))
	assert.Equal(t, "", symbolFromURI("bogus://AAPL/info"))
}

func TestAuthMiddleware(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.Handler()

	// Open paths skip the gate
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth-info", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bearer")

	// MCP endpoint requires a token
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong token is rejected
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer wrong-token")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The right token reaches the MCP handler
	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
	req.Header.Set("Authorization", s.gate.AuthorizationHeader())
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}
