// Package mcp implements a Model Context Protocol (MCP) server over the
// stock store using the mcp-go library.
//
// The server exposes the store's CRUD operations as tools and read-only
// views (collection, stats, per-symbol info, server config) as resources.
// It serves the protocol over streamable HTTP behind a bearer-token gate;
// health and auth-info endpoints stay open beside the MCP endpoint.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stockmcp/internal/auth"
	"stockmcp/internal/config"
	"stockmcp/internal/logging"
	"stockmcp/internal/stockdb"

	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "StockMCPServer"
	ServerVersion = "1.0.0"
)

// mcpPathPrefix is the guarded protocol endpoint.
const mcpPathPrefix = "/mcp"

// Server represents an MCP server instance using mcp-go
type Server struct {
	config     *config.Config
	gate       *auth.Gate
	logger     *logging.AppLogger
	db         *stockdb.StockDatabase
	mcpServer  *server.MCPServer
	httpServer *http.Server
}

// NewServer creates a new MCP server instance over the given store.
func NewServer(cfg *config.Config, db *stockdb.StockDatabase, gate *auth.Gate, logger *logging.AppLogger) *Server {
	s := &Server{
		config: cfg,
		gate:   gate,
		logger: logger,
		db:     db,
	}

	s.mcpServer = server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	s.registerTools()
	s.registerResources()

	return s
}

// Handler returns the full HTTP surface: the MCP endpoint behind the bearer
// gate, plus open health and auth-info endpoints.
func (s *Server) Handler() http.Handler {
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(mcpPathPrefix),
	)

	mux := http.NewServeMux()
	mux.Handle(mcpPathPrefix, streamable)
	mux.Handle(mcpPathPrefix+"/", streamable)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/auth-info", s.handleAuthInfo)

	return s.authMiddleware(mux)
}

// Start serves the MCP surface until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server",
		"addr", s.config.MCPAddr,
		"endpoint", mcpPathPrefix,
		"data_file", s.db.Path(),
	)

	s.httpServer = &http.Server{
		Addr:    s.config.MCPAddr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("MCP server failed: %w", err)
	}
}

// Stop gracefully shuts down the MCP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// authMiddleware rejects MCP requests without a valid bearer token. Open
// paths (root, health, auth-info) pass through.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/health", "/auth-info":
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSONError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		if !s.gate.CheckAuthorizationHeader(header) {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServerName,
	})
}

// handleAuthInfo documents the expected token format, including a usable
// token for the configured credentials.
func (s *Server) handleAuthInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":       "Bearer Token Authentication Required",
		"token_format":  "Bearer <base64_encoded_credentials>",
		"example_token": s.gate.AuthorizationHeader(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
