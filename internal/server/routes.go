package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes. The /api/ prefix is more specific
// than "/", so API paths never fall through to the static site. Method
// dispatch happens here; handlers assume the method is already checked.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", RouteByMethod(MethodRouter{
		http.MethodPost: s.requireAPIKey(s.rateLimit(s.analyzeLimiter, s.app.AnalyzeHandler.AnalyzeHandler)),
	}))
	mux.HandleFunc("/api/pdf", RouteByMethod(MethodRouter{
		http.MethodPost: s.rateLimit(s.pdfLimiter, s.app.PDFHandler.PDFHandler),
	}))

	// API routes - System
	mux.HandleFunc("/api/health", RouteByMethod(MethodRouter{
		http.MethodGet: s.app.APIHandler.HealthHandler,
	}))
	mux.HandleFunc("/api/version", RouteByMethod(MethodRouter{
		http.MethodGet: s.app.APIHandler.VersionHandler,
	}))
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	// Front-end bundle
	mux.Handle("/", http.FileServer(http.Dir(s.app.Config.Server.StaticDir)))

	return mux
}
