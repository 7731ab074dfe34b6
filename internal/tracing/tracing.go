// Package tracing wraps each server request in an OpenTelemetry span when
// KICKOFF_TRACE_URL is configured. Tracing is entirely optional: a no-op
// shutdown func and a no-op tracer are used when it is disabled, so callers
// never need to branch on whether tracing is active.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/judnich/Kickoff/internal/config"
)

// Init configures the global tracer provider when cfg is non-nil. It
// returns a shutdown func that flushes pending spans; when tracing is
// disabled the returned func is a no-op.
func Init(ctx context.Context, serviceName string, cfg *config.TracingConfig) (func(context.Context) error, error) {
	if cfg == nil {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.URL),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(500*time.Millisecond),
			sdktrace.WithExportTimeout(2*time.Second),
		),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Tracer returns the process-wide tracer. Safe to call regardless of
// whether Init configured a real exporter; the default provider returns a
// no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer("kickoff")
}
