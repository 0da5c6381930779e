// Package server exposes the tracker core over a local HTTP API: the
// aggregated views consumed by the dashboard, category and privacy
// rule management, sample ingest for external pollers, and the export
// endpoint peers pull during sync.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dwelltrack/lumen/internal/aggregate"
	"github.com/dwelltrack/lumen/internal/logger"
	"github.com/dwelltrack/lumen/internal/storage"
	"github.com/dwelltrack/lumen/internal/tracker"
)

// Server wires the store, aggregator and recorder behind HTTP
// handlers.
type Server struct {
	store    *storage.Store
	agg      *aggregate.Aggregator
	recorder *tracker.Recorder
	log      *logger.Logger
	version  string
}

// New builds a server. recorder may be nil when the API runs without a
// live tracking loop (query-only mode); ingest and live endpoints then
// respond 503.
func New(store *storage.Store, recorder *tracker.Recorder, log *logger.Logger, version string) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		store:    store,
		agg:      aggregate.New(store),
		recorder: recorder,
		log:      log,
		version:  version,
	}
}

// Router builds the chi router with all API routes registered.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/summary", s.summary)
		r.Get("/timeline", s.timeline)
		r.Get("/history", s.history)
		r.Get("/metrics", s.metrics)
		r.Get("/goals", s.goals)
		r.Get("/live", s.live)
		r.Get("/export", s.export)

		r.Post("/events", s.ingestSample)

		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.upsertCategory)
		r.Delete("/categories/{id}", s.deleteCategory)

		r.Get("/rules", s.listRules)
		r.Post("/rules", s.upsertRule)
		r.Delete("/rules/{id}", s.deleteRule)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", addr).Msg("http server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
