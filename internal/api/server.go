// Package api exposes the HTTP interface for the news backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/netra-news/backend/internal/auth"
	"github.com/netra-news/backend/internal/metrics"
	"github.com/netra-news/backend/internal/news"
)

// Config carries the handler-level settings the server needs.
type Config struct {
	// MinSourceVotes excludes thin samples from source and author rankings.
	MinSourceVotes int
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the store and token issuer.
type Server struct {
	router chi.Router
	store  news.Store
	tokens *auth.Tokens
	logger *zap.Logger
	cfg    Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store news.Store, tokens *auth.Tokens, logger *zap.Logger, cfg Config) *Server {
	if cfg.MinSourceVotes <= 0 {
		cfg.MinSourceVotes = 3
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		store:  store,
		tokens: tokens,
		logger: logger,
		cfg:    cfg,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Get("/categories", s.listCategories)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", s.overviewStats)
			r.Get("/voting", s.votingStats)
			r.Get("/bookmarks", s.bookmarkStats)
			r.Get("/sources", s.sourceStats)
			r.Get("/categories", s.categoryStats)
			r.Get("/authors", s.authorStats)
			r.Get("/engagement", s.engagementStats)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.optionalUser)
			r.Get("/articles", s.listArticles)
			r.Get("/articles/{article_id}", s.getArticle)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/auth/me", s.me)
			r.Post("/articles/{article_id}/vote", s.castVote)
			r.Delete("/articles/{article_id}/vote", s.removeVote)
			r.Post("/articles/{article_id}/bookmark", s.addBookmark)
			r.Delete("/articles/{article_id}/bookmark", s.removeBookmark)
			r.Get("/bookmarks", s.listBookmarks)
			r.Get("/user/activity", s.userActivity)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps the domain sentinels onto HTTP statuses. notFoundMsg
// lets each handler keep its own phrasing for the common 404 case.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, news.ErrNotFound):
		s.writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, news.ErrConflict):
		s.writeError(w, http.StatusConflict, "resource already exists")
	default:
		s.logger.Error("store operation failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", requestIDFrom(r.Context())),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
	}
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
