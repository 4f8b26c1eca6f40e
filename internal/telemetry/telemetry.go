// Package telemetry wires OpenTelemetry tracing for quill.
//
// Tracing is off by default. Set QUILL_OTEL_ENABLED=true to print spans to
// stderr with the stdout exporter.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationScope = "github.com/danielolaszy/quill"

// Enabled reports whether tracing is switched on.
func Enabled() bool {
	return os.Getenv("QUILL_OTEL_ENABLED") == "true"
}

// Init installs the tracer provider and returns a shutdown function that
// flushes pending spans.
func Init() (func(context.Context) error, error) {
	if !Enabled() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns a tracer scoped to the given component.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationScope + "/" + component)
}
