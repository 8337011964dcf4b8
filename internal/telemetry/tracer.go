// Package telemetry wires the gateway's trace pipeline. Request spans
// come from the otelhttp middleware in internal/server and share the
// trace id the envelope carries, so a span in the export stream can be
// matched against a request_logs row.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Option adjusts the pipeline before the provider is installed.
type Option func(*options)

type options struct {
	out io.Writer
}

// WithWriter redirects span output. Tests use it to keep the pretty
// printed spans out of the test log.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// InitTracer installs the global tracer provider and returns its
// shutdown hook. Spans go to stdout; the resource names the service so
// exported spans stay attributable when several processes share a sink.
func InitTracer(serviceName string, logger *slog.Logger, opts ...Option) (func(context.Context) error, error) {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(o.out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing enabled", slog.String("service", serviceName))
	return tp.Shutdown, nil
}
