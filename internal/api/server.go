package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ecoscan/internal/config"
	"ecoscan/internal/engine"
	"ecoscan/internal/version"
)

// Server represents the HTTP front end
type Server struct {
	router    *http.ServeMux
	server    *http.Server
	addr      string
	logger    *slog.Logger
	engine    *engine.Engine
	config    config.ServerConfig
	startedAt time.Time
}

// NewServer creates a new HTTP server instance. The upload and optimized
// directories are created if missing.
func NewServer(cfg config.ServerConfig, eng *engine.Engine, logger *slog.Logger) (*Server, error) {
	for _, dir := range []string{cfg.UploadDir, cfg.OptimizedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	s := &Server{
		addr:      cfg.Addr,
		logger:    logger,
		engine:    eng,
		config:    cfg,
		router:    http.NewServeMux(),
		startedAt: time.Now(),
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr, "version", version.Info())

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}
