// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/nlsql/internal/catalog"
	"github.com/roach88/nlsql/internal/engine"
	"github.com/roach88/nlsql/internal/store"
)

// Engine is the pipeline the server drives. *engine.Engine implements it.
type Engine interface {
	Ask(ctx context.Context, question, dataset string) (*engine.Outcome, error)
	Schema(ctx context.Context, dataset string) (map[string][]catalog.Column, error)
	Metrics() *engine.Metrics
}

// History reads answered questions. *store.Store implements it.
type History interface {
	Recent(ctx context.Context, n int) ([]store.Entry, error)
	RecentForDataset(ctx context.Context, dataset string, n int) ([]store.Entry, error)
}

// Options configures a Server.
type Options struct {
	// HistorySize is how many entries GET /history returns.
	HistorySize int
	// AllowedOrigins defaults to every origin.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server is the HTTP surface.
type Server struct {
	eng         Engine
	history     History
	historySize int
	registry    *prometheus.Registry
	metrics     *httpMetrics
	router      chi.Router
	log         *slog.Logger
}

// New builds the router and registers engine and HTTP metrics on a
// registry owned by the server. history may be nil.
func New(eng Engine, history History, opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if err := eng.Metrics().Register(reg); err != nil {
		return nil, fmt.Errorf("register engine metrics: %w", err)
	}
	hm, err := newHTTPMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	s := &Server{
		eng:         eng,
		history:     history,
		historySize: opts.HistorySize,
		registry:    reg,
		metrics:     hm,
		log:         log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(hm.middleware)

	r.Post("/ask", s.handleAsk)
	r.Get("/schema", s.handleSchema)
	r.Get("/history", s.handleHistory)
	r.Get("/metrics", s.handleMetrics)
	r.Handle("/metrics/prometheus", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to 30 seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
