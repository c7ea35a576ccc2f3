package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/analyst/internal/app"
	"github.com/ulule/limiter/v3"
)

// Server manages the HTTP server and routes
type Server struct {
	app            *app.App
	router         *http.ServeMux
	server         *http.Server
	analyzeLimiter *limiter.Limiter
	pdfLimiter     *limiter.Limiter
}

// New creates a new HTTP server with the given app
func New(application *app.App) (*Server, error) {
	s := &Server{
		app: application,
	}

	window, err := application.Config.RateLimitWindow()
	if err != nil {
		return nil, err
	}
	limits := application.Config.RateLimit
	s.analyzeLimiter = newRouteLimiter("analyze", limits.AnalyzePerWindow, window, limits.TrustForwardedFor)
	s.pdfLimiter = newRouteLimiter("pdf", limits.PDFPerWindow, window, limits.TrustForwardedFor)

	// Setup routes
	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(s.router),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped root handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Str("static_dir", s.app.Config.Server.StaticDir).
		Msg("HTTP server starting")

	s.app.Logger.Info().
		Str("url", fmt.Sprintf("http://%s", s.server.Addr)).
		Msg("Web UI available")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
