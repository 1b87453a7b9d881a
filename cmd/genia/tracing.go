package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/genia-lsp/genia/internal/buildinfo"
	"github.com/genia-lsp/genia/internal/log"
)

const serviceName = "genia"

// tracingShutdown flushes exported spans. Nil when tracing is off.
var tracingShutdown func(context.Context) error

// tracingEnabled reports whether an OTLP endpoint is configured.
func tracingEnabled() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" ||
		os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") != ""
}

// initTracing installs a global tracer provider exporting over OTLP/HTTP.
// The exporter reads the standard OTEL_* variables.
func initTracing(ctx context.Context) error {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return fmt.Errorf("creating OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			"",
			attribute.String("service.name", serviceName),
			attribute.String("service.version", buildinfo.Version()),
		)),
	)
	otel.SetTracerProvider(tp)
	tracingShutdown = tp.Shutdown
	return nil
}

// setupTracing starts tracing when configured. Failures only warn.
func setupTracing() {
	if !tracingEnabled() {
		return
	}
	if err := initTracing(context.Background()); err != nil {
		log.Default().Warn("tracing disabled", "error", err)
	}
}

// shutdownTracing flushes pending spans before the process exits.
func shutdownTracing() {
	if tracingShutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracingShutdown(ctx); err != nil {
		log.Default().Debug("flushing traces failed", "error", err)
	}
	tracingShutdown = nil
}
