//go:build !nometrics

package obs

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/searchforge/booksearch"

var (
	setupOnce sync.Once
	shutdown  = func(context.Context) error { return nil }
)

var (
	searchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_requests_total",
		Help: "Total book searches by outcome.",
	}, []string{"outcome"})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booksearch_request_duration_ms",
		Help:    "Histogram of end-to-end search latency in ms.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 12),
	})
	upstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booksearch_upstream_duration_ms",
		Help:    "Histogram of upstream search API latency in ms.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 12),
	})
	upstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_upstream_errors_total",
		Help: "Count of failed searches grouped by error kind.",
	}, []string{"kind"})
	deadlineHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booksearch_deadline_hit_total",
		Help: "Total upstream calls cancelled by the request deadline.",
	})
)

// ObserveSearch records search-level metrics.
func ObserveSearch(outcome string, duration time.Duration, traceID string) {
	searchRequests.WithLabelValues(outcome).Inc()
	if eo, ok := searchDuration.(prometheus.ExemplarObserver); ok && traceID != "" {
		eo.ObserveWithExemplar(
			float64(duration.Milliseconds()),
			prometheus.Labels{"trace_id": traceID},
		)
		return
	}
	searchDuration.Observe(float64(duration.Milliseconds()))
}

// RecordUpstreamDuration observes the latency of the upstream call.
func RecordUpstreamDuration(duration time.Duration) {
	upstreamDuration.Observe(float64(duration.Milliseconds()))
}

// RecordUpstreamError increments the error counter for an error kind.
func RecordUpstreamError(kind string) {
	upstreamErrors.WithLabelValues(kind).Inc()
}

// IncDeadlineHit records a deadline cancellation.
func IncDeadlineHit() {
	deadlineHits.Inc()
}

// Tracer returns the package tracer. It is a no-op until InitTracer runs.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// InitTracer sets up a minimal OpenTelemetry tracer provider.
func InitTracer(serviceName string) (func(context.Context) error, error) {
	var initErr error
	setupOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
			),
		)
		if err != nil {
			initErr = err
			return
		}

		provider := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.3))),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
		shutdown = provider.Shutdown
	})
	return shutdown, initErr
}
