// Package api exposes the HTTP interface for the analytics service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/simswatch/sims-analytics/internal/config"
	"github.com/simswatch/sims-analytics/internal/dashboard"
	"github.com/simswatch/sims-analytics/internal/ingest"
	"github.com/simswatch/sims-analytics/internal/metrics"
	"github.com/simswatch/sims-analytics/internal/news"
)

// Server wires HTTP handlers to the store, the ingestor and the aggregator.
type Server struct {
	router     chi.Router
	store      news.Store
	ingestor   *ingest.Ingestor
	aggregator *dashboard.Aggregator
	cfg        config.Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	store news.Store,
	ingestor *ingest.Ingestor,
	aggregator *dashboard.Aggregator,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		store:      store,
		ingestor:   ingestor,
		aggregator: aggregator,
		cfg:        cfg,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
	}))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.listArticles)
		r.Get("/articles/{id}", s.getArticle)
		r.Get("/dashboard", s.getDashboard)
		r.Group(func(r chi.Router) {
			if cfg.Auth.Enabled {
				r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
			}
			r.Post("/ingest", s.triggerIngest)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// The store is the only hard dependency of the read surface.
	if _, _, err := s.store.ListArticles(r.Context(), news.ArticleFilter{Limit: 1}); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
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
