package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/themeassets/pkg/assets"
)

// Default tracer name.
const defaultTracerName = "themeassets"

// TracerOption configures the tracing observer.
type TracerOption func(*Tracer)

// WithTracerProvider sets the provider. Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(t *Tracer) {
		t.provider = tp
	}
}

// WithTracerName sets the tracer name (default: "themeassets").
func WithTracerName(name string) TracerOption {
	return func(t *Tracer) {
		t.name = name
	}
}

// Tracer records a span for every manifest load. Lookups are too frequent
// to trace individually and are ignored.
type Tracer struct {
	name     string
	provider trace.TracerProvider
	tracer   trace.Tracer
}

var _ assets.Observer = (*Tracer)(nil)

// NewTracer creates a tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{name: defaultTracerName}
	for _, opt := range opts {
		opt(t)
	}
	if t.provider == nil {
		t.provider = otel.GetTracerProvider()
	}
	t.tracer = t.provider.Tracer(t.name)
	return t
}

// ManifestLoaded implements assets.Observer. The span is back-dated to
// cover the load.
func (t *Tracer) ManifestLoaded(origin, path string, entries int, err error, took time.Duration) {
	end := time.Now()
	_, span := t.tracer.Start(context.Background(), "themeassets.manifest.load",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(end.Add(-took)),
		trace.WithAttributes(
			attribute.String("themeassets.origin", origin),
			attribute.String("themeassets.manifest_path", path),
			attribute.Int("themeassets.manifest_entries", entries),
		),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

// Lookup implements assets.Observer.
func (t *Tracer) Lookup(string, bool) {}
