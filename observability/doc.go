// Package observability wires OpenTelemetry tracing and metrics for the
// registry and gateway services. Providers export over OTLP HTTP and are
// installed globally so instrumented code can use otel.Tracer / otel.Meter.
package observability
