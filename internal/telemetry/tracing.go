// Package telemetry wires OpenTelemetry tracing for the gateway proxy
// pipeline.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// SetupTracing builds a TracerProvider that exports completed spans to w
// and installs it as the global provider. The returned shutdown func
// flushes pending spans and stops the provider; callers should invoke it
// during graceful shutdown, after the shutdown func is called further
// spans fall back to the no-op tracer.
func SetupTracing(w io.Writer) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the currently installed global
// provider. Before SetupTracing is called, this resolves to the no-op
// tracer, so instrumented code pays no cost when tracing is disabled.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
