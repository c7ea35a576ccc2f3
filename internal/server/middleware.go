package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/handlers"
	"github.com/ulule/limiter/v3"
)

// withMiddleware wraps the router with middleware chain
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = s.bodyLimitMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	return handler
}

// loggingMiddleware logs HTTP requests and responses
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logEvent := s.app.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr)
		if r.URL.RawQuery != "" {
			logEvent.Str("query", r.URL.RawQuery)
		}
		logEvent.Msg("HTTP request")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.app.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP response")
	})
}

// corsMiddleware answers preflights and echoes allowed origins
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Add("Vary", "Origin")
			if allowed, ok := s.allowedOrigin(origin); ok {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, x-api-key")
				w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, Retry-After")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) (string, bool) {
	for _, allowed := range s.app.Config.CORS.AllowedOrigins {
		if allowed == "*" {
			return "*", true
		}
		if strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return origin, true
		}
	}
	return "", false
}

// recoveryMiddleware recovers from panics and returns 500 error
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.app.Logger.Error().
					Str("error", fmt.Sprintf("%v", err)).
					Str("path", r.URL.Path).
					Msg("Panic recovered")

				handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// bodyLimitMiddleware caps request bodies for every route
func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, handlers.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// requireAPIKey checks x-api-key in constant time. A missing header is
// only accepted when auth.require_key is false; a wrong key never is.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	expected := []byte(s.app.Config.Auth.APIKey)
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		if key == "" {
			if s.app.Config.Auth.RequireKey {
				s.app.Logger.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("Missing API key")
				handlers.WriteServiceError(w, fmt.Errorf("%w: missing API key", common.ErrAuth))
				return
			}
			next(w, r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			s.app.Logger.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("Invalid API key")
			handlers.WriteServiceError(w, fmt.Errorf("%w: invalid API key", common.ErrAuth))
			return
		}
		next(w, r)
	}
}

// rateLimit rejects callers that exhausted their budget on this route
func (s *Server) rateLimit(l *limiter.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := l.GetIPKey(r)
		budget, err := l.Get(r.Context(), client)
		if err != nil {
			s.app.Logger.Error().Str("client", client).Str("path", r.URL.Path).Err(err).Msg("Rate limiter failed")
			handlers.WriteServiceError(w, fmt.Errorf("rate limiter unavailable: %w", err))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(budget.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(budget.Remaining, 10))

		if budget.Reached {
			seconds := retryAfterSeconds(budget.Reset, time.Now())
			s.app.Logger.Warn().
				Str("client", client).
				Str("path", r.URL.Path).
				Int("retry_after", seconds).
				Msg("Rate limit exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			handlers.WriteServiceError(w, fmt.Errorf("%w, try again in %ds", common.ErrRateLimited, seconds))
			return
		}
		next(w, r)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
