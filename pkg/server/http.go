// Package server exposes asset resolution over HTTP: a JSON resolve API,
// redirects to fingerprinted asset URLs and a Prometheus endpoint.
//
//	srv := server.New(reg, server.Config{Address: ":8080"})
//	srv.Run()
//
//	GET /resolve?origin=child&file=css/app.css
//	GET /assets/child/css/app.css   → 302 https://…/public/css/app.a1b2c3.css
//	GET /files/child/css/app.css    → contents of …/public/css/app.a1b2c3.css
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/themeassets/pkg/assets"
	"github.com/vango-dev/themeassets/pkg/middleware"
	"github.com/vango-dev/themeassets/pkg/registry"
)

// Config configures the HTTP server.
type Config struct {
	// Address is the listen address. Default: ":8080".
	Address string

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	// Requests records every request when set. telemetry.Metrics implements it.
	Requests middleware.RequestObserver

	// TracerProvider traces requests. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Logger is the request logger. Default: slog.Default().
	Logger *slog.Logger

	// Files is where /files reads asset bytes from. Default: local filesystem.
	Files assets.Files

	// CacheControl is the policy for /files responses. Default: production.
	CacheControl CacheControl

	// ManifestDirs lists the manifest_dir values requests may use.
	// Empty allows any directory inside the origin.
	ManifestDirs []string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout for the underlying http.Server. Default: 5s.
	ReadHeaderTimeout time.Duration
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		Address:           ":8080",
		CacheControl:      CacheControlProduction,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Server serves a registry over HTTP.
type Server struct {
	config       Config
	registry     *registry.Registry
	manifestDirs map[string]bool
	router       chi.Router
	logger       *slog.Logger
	httpServer   *http.Server
}

// New creates a Server for reg.
func New(reg *registry.Registry, config Config) *Server {
	defaults := DefaultConfig()
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.Files == nil {
		config.Files = assets.OSFiles{}
	}
	if config.CacheControl == "" {
		config.CacheControl = defaults.CacheControl
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.ReadHeaderTimeout == 0 {
		config.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		config:   config,
		registry: reg,
		logger:   config.Logger.With("component", "server"),
	}
	for _, dir := range config.ManifestDirs {
		if clean, ok := cleanManifestDir(dir); ok && clean != "" {
			if s.manifestDirs == nil {
				s.manifestDirs = make(map[string]bool)
			}
			s.manifestDirs[clean] = true
		}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerProvider(s.config.TracerProvider),
		middleware.WithFilter(traced),
	))
	r.Use(middleware.Metrics(s.config.Requests))
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get("/resolve", s.handleResolve)
	r.Get("/manifest/{origin}", s.handleManifest)
	r.Get("/assets/{origin}/*", s.handleRedirect)
	r.Get("/files/{origin}/*", s.handleFile)

	if s.config.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server as an http.Handler, for mounting in another router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// traced reports whether a request gets a span. Health checks are skipped.
func traced(r *http.Request) bool {
	return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
}

// Run starts the server and blocks until SIGINT/SIGTERM or a listen error.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
