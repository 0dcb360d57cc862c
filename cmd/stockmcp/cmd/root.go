// Package cmd - stockmcp CLI commands
package cmd

import (
	"fmt"

	"stockmcp/internal/auth"
	"stockmcp/internal/config"
	"stockmcp/internal/logging"
	"stockmcp/internal/stockdb"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	appLogger *logging.AppLogger
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stockmcp",
	Short: "Stock catalog served over MCP and REST",
	Long: `stockmcp serves a small stock catalog from a file-backed store
through two surfaces sharing the same data:

  api     REST API with basic auth (default :8000)
  mcp     MCP server over streamable HTTP with bearer auth (default :8001)
  seed    Populate the store with sample records
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logging.Error("Command failed", "error", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(seedCmd)
}

// initConfig loads .env, the config file and environment overrides.
func initConfig() error {
	appLogger = logging.NewAppLogger()

	if err := godotenv.Load(); err != nil {
		// A missing .env is fine; environment variables still apply
		appLogger.Debug("No .env file found, using environment variables")
	}

	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger.Debug("Configuration loaded",
		"data_file", cfg.DataFile,
		"api_addr", cfg.APIAddr,
		"mcp_addr", cfg.MCPAddr,
		"corruption_policy", cfg.CorruptionPolicy,
	)
	return nil
}

// openDatabase opens the shared store and seeds it when configured.
func openDatabase() (*stockdb.StockDatabase, error) {
	db, err := stockdb.New(cfg.DataFile, cfg.CorruptionPolicy, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open stock database: %w", err)
	}

	if cfg.SeedSampleData {
		created, err := stockdb.SeedSampleData(db)
		if err != nil {
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
		if created > 0 {
			appLogger.Info("Seeded sample data", "records", created)
		}
	}

	return db, nil
}

func newGate() *auth.Gate {
	return auth.NewGate(cfg.Username, cfg.Password)
}
