// Package tracing configures OpenTelemetry distributed tracing.
//
// When enabled, spans are exported over OTLP/gRPC to the configured
// collector endpoint. When disabled, New returns a noop tracer so
// instrumented code paths carry no overhead and need no branching.
package tracing
