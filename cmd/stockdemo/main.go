// Package main is a walkthrough client for the stockmcp MCP server.
//
// It connects over streamable HTTP with the configured bearer token, then
// exercises the full tool surface: list, create, lookup, update, stats,
// delete. Run the server first:
//
//	stockmcp mcp
//	stockdemo --url http://localhost:8001/mcp
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"stockmcp/internal/auth"
	"stockmcp/internal/config"
	"stockmcp/internal/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

func main() {
	url := flag.String("url", "http://localhost:8001/mcp", "MCP endpoint URL")
	flag.Parse()

	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	gate := auth.NewGate(cfg.Username, cfg.Password)

	if err := run(*url, gate); err != nil {
		logger.Error("Demo failed", "error", err)
		os.Exit(1)
	}
}

func run(url string, gate *auth.Gate) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := client.NewStreamableHttpClient(url,
		transport.WithHTTPHeaders(map[string]string{
			"Authorization": gate.AuthorizationHeader(),
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer c.Close()

	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "stockdemo", Version: "1.0.0"}

	serverInfo, err := c.Initialize(ctx, initReq)
	if err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}
	fmt.Printf("Connected to %s %s\n\n", serverInfo.ServerInfo.Name, serverInfo.ServerInfo.Version)

	// Discover the surface
	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("list tools failed: %w", err)
	}
	fmt.Printf("Tools (%d):\n", len(tools.Tools))
	for _, tool := range tools.Tools {
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()

	resources, err := c.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return fmt.Errorf("list resources failed: %w", err)
	}
	fmt.Printf("Resources (%d):\n", len(resources.Resources))
	for _, res := range resources.Resources {
		fmt.Printf("  - %s (%s)\n", res.URI, res.Name)
	}
	fmt.Println()

	// Walk the CRUD cycle with a demo record
	if err := callTool(ctx, c, "list_stocks", nil); err != nil {
		return err
	}

	if err := callTool(ctx, c, "create_stock", map[string]any{
		"symbol": "DEMO",
		"name":   "Demo Corp.",
		"price":  42.50,
		"volume": 1000000,
	}); err != nil {
		return err
	}

	if err := callTool(ctx, c, "get_stock", map[string]any{
		"identifier": "demo",
		"by_symbol":  true,
	}); err != nil {
		return err
	}

	if err := callTool(ctx, c, "get_stock_stats", nil); err != nil {
		return err
	}

	if err := readResource(ctx, c, "stock://stats"); err != nil {
		return err
	}
	if err := readResource(ctx, c, "stock://DEMO/info"); err != nil {
		return err
	}

	// Clean up the demo record: look its ID up, then delete
	id, err := demoStockID(ctx, c)
	if err != nil {
		return err
	}
	if id != "" {
		if err := callTool(ctx, c, "delete_stock", map[string]any{"stock_id": id}); err != nil {
			return err
		}
	}

	fmt.Println("Demo complete.")
	return nil
}

func callTool(ctx context.Context, c *client.Client, name string, args map[string]any) error {
	fmt.Printf("--> %s\n", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := c.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("tool %s failed: %w", name, err)
	}

	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			fmt.Println(text.Text)
		}
	}
	if result.IsError {
		fmt.Println("(tool reported an error)")
	}
	fmt.Println()
	return nil
}

func readResource(ctx context.Context, c *client.Client, uri string) error {
	fmt.Printf("--> read %s\n", uri)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri

	result, err := c.ReadResource(ctx, req)
	if err != nil {
		return fmt.Errorf("read %s failed: %w", uri, err)
	}

	for _, content := range result.Contents {
		if text, ok := content.(mcp.TextResourceContents); ok {
			fmt.Println(text.Text)
		}
	}
	fmt.Println()
	return nil
}

// demoStockID fetches the DEMO record's ID through the get_stock tool.
func demoStockID(ctx context.Context, c *client.Client) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = "get_stock"
	req.Params.Arguments = map[string]any{"identifier": "DEMO", "by_symbol": true}

	result, err := c.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("get_stock failed: %w", err)
	}
	if result.IsError {
		return "", nil
	}

	for _, content := range result.Content {
		text, ok := content.(mcp.TextContent)
		if !ok {
			continue
		}
		var body struct {
			Stock struct {
				ID string `json:"id"`
			} `json:"stock"`
		}
		if err := json.Unmarshal([]byte(text.Text), &body); err == nil && body.Stock.ID != "" {
			return body.Stock.ID, nil
		}
	}
	return "", nil
}
