package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerInstallsProvider(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer("bright-gateway-test", slog.New(slog.DiscardHandler), WithWriter(&buf))
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	t.Cleanup(func() {
		// t.Context() is already canceled by the time cleanups run.
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	tracer := otel.Tracer("test")
	_, span := tracer.Start(t.Context(), "resolve-tenant")
	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span from the installed provider")
	}
	span.End()
}

func TestInitTracerWriterOption(t *testing.T) {
	shutdown, err := InitTracer("bright-gateway-test", slog.New(slog.DiscardHandler), WithWriter(io.Discard))
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
