// Package worker exposes the analysis pipeline over HTTP for the local
// dashboard. All caller-supplied filter validation happens here; the
// analysis core trusts its inputs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/promptscope/internal/config"
	"github.com/thebtf/promptscope/internal/ingest"
	"github.com/thebtf/promptscope/internal/quality"
	"github.com/thebtf/promptscope/internal/stats"
	"github.com/thebtf/promptscope/internal/worker/sse"
)

// Service is the HTTP worker.
type Service struct {
	version     string
	settings    config.Settings
	analysis    config.Analysis
	reader      *ingest.Reader
	stats       *stats.Service
	quality     *quality.Scorer
	broadcaster *sse.Broadcaster
	router      chi.Router
	metrics     *metrics
	startTime   time.Time
}

// NewService wires the worker with its dependencies and routes.
func NewService(version string, settings config.Settings, analysis config.Analysis) *Service {
	s := &Service{
		version:     version,
		settings:    settings,
		analysis:    analysis,
		reader:      ingest.NewReader(settings.SourcePaths(), analysis.Ingest),
		stats:       stats.NewService(),
		quality:     quality.NewScorer(analysis.Quality),
		broadcaster: sse.NewBroadcaster(),
		router:      chi.NewRouter(),
		metrics:     newMetrics(),
		startTime:   time.Now(),
	}
	s.setupRoutes()
	return s
}

// Router returns the configured HTTP handler.
func (s *Service) Router() http.Handler {
	return s.router
}

// NotifySourcesChanged broadcasts a sources_changed event to every SSE
// client. The watcher calls this after its debounce window.
func (s *Service) NotifySourcesChanged() {
	log.Info().Msg("log sources changed, notifying clients")
	s.broadcaster.Broadcast(sse.NewEvent("sources_changed"))
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.settings.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("version", s.version).Msg("worker listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("worker stopped")
	return nil
}

func (s *Service) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.countRequests)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/antipatterns", s.handleAntipatterns)
		r.Get("/antipatterns/summary", s.handleAntipatternSummary)
		r.Get("/health/report", s.handleHealthReport)
		r.Get("/prompts/good", s.handleGoodPrompts)
		r.Get("/statistics/overview", s.handleStatisticsOverview)
		r.Get("/statistics/projects", s.handleStatisticsProjects)
		r.Get("/events", s.broadcaster.ServeHTTP)
	})
}

func (s *Service) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count(r.Context(), s.metrics.requests, 1)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
