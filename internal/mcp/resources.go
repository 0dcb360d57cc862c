package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const jsonMIMEType = "application/json"

// registerResources wires read-only views of the store into MCP resources.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource("stock://all", "All stocks",
			mcp.WithResourceDescription("Every stock record in the catalog"),
			mcp.WithMIMEType(jsonMIMEType),
		),
		s.handleAllStocksResource,
	)

	s.mcpServer.AddResource(
		mcp.NewResource("stock://stats", "Stock statistics",
			mcp.WithResourceDescription("Aggregate statistics over the catalog"),
			mcp.WithMIMEType(jsonMIMEType),
		),
		s.handleStatsResource,
	)

	s.mcpServer.AddResource(
		mcp.NewResource("stock://config", "Server configuration",
			mcp.WithResourceDescription("Server name, version and supported operations"),
			mcp.WithMIMEType(jsonMIMEType),
		),
		s.handleConfigResource,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate("stock://{symbol}/info", "Stock info",
			mcp.WithTemplateDescription("A single stock record looked up by symbol"),
			mcp.WithTemplateMIMEType(jsonMIMEType),
		),
		s.handleSymbolResource,
	)
}

func (s *Server) handleAllStocksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stocks, err := s.db.List()
	if err != nil {
		return nil, err
	}
	return resourceJSON(req.Params.URI, stocks)
}

func (s *Server) handleStatsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.db.Stats()
	if err != nil {
		return nil, err
	}
	return resourceJSON(req.Params.URI, stats)
}

func (s *Server) handleConfigResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return resourceJSON(req.Params.URI, map[string]any{
		"server_name":          ServerName,
		"version":              ServerVersion,
		"supported_operations": []string{"create", "read", "update", "delete"},
		"data_file":            s.db.Path(),
		"last_updated":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSymbolResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	symbol := symbolFromURI(req.Params.URI)
	if symbol == "" {
		return nil, fmt.Errorf("invalid stock resource URI: %s", req.Params.URI)
	}

	stock, err := s.db.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return resourceJSON(req.Params.URI, map[string]string{
			"error": fmt.Sprintf("stock symbol %s not found", symbol),
		})
	}

	return resourceJSON(req.Params.URI, stock)
}

// symbolFromURI extracts the symbol from a stock://{symbol}/info URI.
func symbolFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "stock://")
	if !ok {
		return ""
	}
	symbol, ok := strings.CutSuffix(rest, "/info")
	if !ok {
		return ""
	}
	return symbol
}

// resourceJSON renders a resource body as indented JSON.
func resourceJSON(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource contents: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		},
	}, nil
}
