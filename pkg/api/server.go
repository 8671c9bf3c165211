// Package api serves the catalog and saved workflows over HTTP.
//
// Routes:
//
//	GET    /components?ids=a,b           batch lookup, unknown ids in "missing"
//	GET    /components/{id}
//	GET    /categories
//	GET    /categories/{id}
//	GET    /categories/{id}/components
//	GET    /search?query=cam&type=input  free-text component search
//	GET    /workflows                    saved workflow index
//	POST   /workflows                    validate and store, returns the new id
//	POST   /workflows/check              compatibility report for a posted workflow
//	GET    /workflows/{id}
//	DELETE /workflows/{id}
//	GET    /workflows/{id}/check
//	GET    /workflows/{id}/render?format=svg|dot
//	GET    /healthz
//	GET    /version
//	GET    /metrics                      Prometheus, when enabled
//
// Errors are JSON objects {"code", "message"} with the status derived from
// the error code.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canicai/canicai/pkg/buildinfo"
	"github.com/canicai/canicai/pkg/cache"
	"github.com/canicai/canicai/pkg/catalog"
	"github.com/canicai/canicai/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server holds the API dependencies.
type Server struct {
	catalog catalog.Source
	store   store.Store
	logger  *log.Logger
	spacing float64
	metrics prometheus.Gatherer
	origin  string
	router  chi.Router

	renders   cache.Cache
	renderTTL time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSpacing sets the layout spacing used when rebuilding workflows.
func WithSpacing(spacing float64) Option {
	return func(s *Server) { s.spacing = spacing }
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// WithCORSOrigin allows cross-origin requests from origin ("*" for any).
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.origin = origin }
}

// WithRenderCache keeps rendered SVG diagrams in c for ttl.
func WithRenderCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.renders = c
		s.renderTTL = ttl
	}
}

// New builds the router.
func New(src catalog.Source, st store.Store, opts ...Option) *Server {
	s := &Server{catalog: src, store: st, logger: log.Default(), renders: cache.NewNull()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.origin != "" {
		r.Use(allowOrigin(s.origin))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/components", func(r chi.Router) {
		r.Get("/", s.getComponents)
		r.Get("/{id}", s.getComponent)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.getCategories)
		r.Get("/{id}", s.getCategory)
		r.Get("/{id}/components", s.getCategoryComponents)
	})
	r.Get("/search", s.search)
	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.listWorkflows)
		r.Post("/", s.saveWorkflow)
		r.Post("/check", s.checkPosted)
		r.Get("/{id}", s.getWorkflow)
		r.Delete("/{id}", s.deleteWorkflow)
		r.Get("/{id}/check", s.checkStored)
		r.Get("/{id}/render", s.renderStored)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Timeouts bounds request handling and shutdown.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, t Timeouts) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       t.Read,
		ReadHeaderTimeout: t.Read,
		WriteTimeout:      t.Write,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), t.Shutdown)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
