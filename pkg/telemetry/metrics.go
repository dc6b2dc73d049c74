// Package telemetry provides assets.Observer implementations backed by
// Prometheus and OpenTelemetry.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/themeassets/pkg/assets"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "themeassets").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "themeassets",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records resolution and HTTP metrics in Prometheus.
//
// Metrics collected:
//   - themeassets_manifest_loads_total: manifest loads by origin and result
//     ("loaded", "missing", "invalid")
//   - themeassets_manifest_load_duration_seconds: manifest load latency by origin
//   - themeassets_manifest_entries: entries in the last loaded manifest, by origin
//   - themeassets_lookups_total: resolutions by origin and result ("hit", "miss")
//   - themeassets_http_requests_total: HTTP requests by route and status
//   - themeassets_http_request_duration_seconds: HTTP latency by route
type Metrics struct {
	manifestLoads    *prometheus.CounterVec
	manifestDuration *prometheus.HistogramVec
	manifestEntries  *prometheus.GaugeVec
	lookups          *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var _ assets.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the metrics. Registering twice on the
// same registry panics, so create one Metrics per registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		manifestLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "manifest_loads_total",
			Help:        "Total number of manifest loads",
			ConstLabels: config.ConstLabels,
		}, []string{"origin", "result"}),

		manifestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "manifest_load_duration_seconds",
			Help:        "Manifest load duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"origin"}),

		manifestEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "manifest_entries",
			Help:        "Number of entries in the manifest last read for the origin, from any location",
			ConstLabels: config.ConstLabels,
		}, []string{"origin"}),

		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "lookups_total",
			Help:        "Total number of asset resolutions",
			ConstLabels: config.ConstLabels,
		}, []string{"origin", "result"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),
	}
}

// ManifestLoaded implements assets.Observer. The entries gauge follows the
// most recent read for the origin, so a one-off manifest_dir override moves
// it until the next read.
func (m *Metrics) ManifestLoaded(origin, _ string, entries int, err error, took time.Duration) {
	result := "loaded"
	switch {
	case err != nil:
		result = "invalid"
	case entries == 0:
		result = "missing"
	}
	m.manifestLoads.WithLabelValues(origin, result).Inc()
	m.manifestDuration.WithLabelValues(origin).Observe(took.Seconds())
	m.manifestEntries.WithLabelValues(origin).Set(float64(entries))
}

// Lookup implements assets.Observer.
func (m *Metrics) Lookup(origin string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(origin, result).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(took.Seconds())
}
