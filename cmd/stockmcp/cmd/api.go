package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"stockmcp/internal/api"

	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the REST API server (basic auth).

Endpoints:
  GET    /                       service banner (open)
  GET    /health                 health probe (open)
  GET    /protected              auth smoke test
  GET    /stocks                 list all stocks
  POST   /stocks                 create a stock
  GET    /stocks/{id}            get a stock by ID
  GET    /stocks/symbol/{sym}    get a stock by symbol
  PUT    /stocks/{id}            update a stock
  DELETE /stocks/{id}            delete a stock
  GET    /stats                  aggregate statistics`,
	RunE: runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}

	router := api.NewRouter(db, newGate(), appLogger)

	server := &http.Server{
		Addr:    cfg.APIAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("REST API listening",
			"addr", cfg.APIAddr,
			"data_file", db.Path(),
			"user", cfg.Username,
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down REST API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
