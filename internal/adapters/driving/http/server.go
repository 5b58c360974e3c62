// Package http exposes the chat and ingestion services over a JSON
// HTTP API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/futureme-labs/futureme-core/internal/core/ports/driving"
	"github.com/futureme-labs/futureme-core/internal/runtime"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	chatService      driving.ChatService
	ingestionService driving.IngestionService
	readiness        *runtime.Readiness

	adminSecret []byte

	// Optional backend health check (nil when running in-memory)
	redisClient Pinger
}

// Config holds server configuration
type Config struct {
	Addr    string
	Version string

	// AdminSecret signs tokens for the administrative endpoints.
	// Empty disables them.
	AdminSecret string
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	chatService driving.ChatService,
	ingestionService driving.IngestionService,
	readiness *runtime.Readiness,
	redisClient Pinger,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		logger:           logger,
		chatService:      chatService,
		ingestionService: ingestionService,
		readiness:        readiness,
		adminSecret:      []byte(cfg.AdminSecret),
		redisClient:      redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      requestLogger(logger, s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Chat endpoint (public)
	s.router.HandleFunc("POST /api/chat", s.handleChat)

	// Admin endpoints, only wired when a signing secret is configured
	if len(s.adminSecret) > 0 {
		adminAuth := newAdminAuth(s.adminSecret)
		s.router.Handle("POST /api/admin/reingest",
			adminAuth.Authenticate(http.HandlerFunc(s.handleReingest)))
	}
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
