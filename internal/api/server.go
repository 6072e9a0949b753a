// Package api exposes the reconciliation engine over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/service"
)

// Server is the HTTP API server
type Server struct {
	cfg        config.ServerConfig
	router     chi.Router
	httpServer *http.Server
	svc        *service.ReconciliationService
	logger     *slog.Logger
}

// NewServer creates the API server around a reconciliation service
func NewServer(cfg config.ServerConfig, svc *service.ReconciliationService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		svc:    svc,
		logger: logger,
	}

	s.router.Use(corsMiddleware(cfg.AllowedOrigins))
	s.router.Use(loggingMiddleware(logger))

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check stays unprefixed for load balancers
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/statements", s.handleProcessStatement)
		r.Post("/manual-match", s.handleManualMatch)
		r.Get("/matching-rules", s.handleMatchingRules)
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing
func (s *Server) Router() chi.Router {
	return s.router
}
