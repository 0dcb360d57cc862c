package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"stockmcp/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server over streamable HTTP (bearer auth).

Tools:
  list_stocks, get_stock, create_stock, update_stock, delete_stock,
  get_stock_stats

Resources:
  stock://all, stock://stats, stock://config, stock://{symbol}/info

Open endpoints beside /mcp: /health, /auth-info (shows the expected
bearer token for the configured credentials).`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}

	server := mcp.NewServer(cfg, db, newGate(), appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
