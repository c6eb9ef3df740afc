//go:build nometrics

package obs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func ObserveSearch(string, time.Duration, string) {}

func RecordUpstreamDuration(time.Duration) {}

func RecordUpstreamError(string) {}

func IncDeadlineHit() {}

func Tracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("")
}

func InitTracer(string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
