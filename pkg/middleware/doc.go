// Package middleware provides net/http middleware for the asset server.
//
// This package includes:
//   - OpenTelemetry tracing, one server span per request
//   - request metrics through a RequestObserver
//   - structured request logging with log/slog
//
// All middleware has the func(http.Handler) http.Handler shape and plugs
// into chi:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("themeassets"),
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//	r.Use(middleware.Metrics(metrics))
//	r.Use(middleware.Logger(logger))
//
// Spans and metrics are labelled with the chi route pattern
// ("/assets/{origin}/*") rather than the raw path, so label cardinality
// stays bounded.
package middleware
