// Package telemetry provides observability for the governance engine.
//
// # Components
//
//   - logging: structured slog logging with configurable level and format
//   - metrics: Prometheus metrics for decisions, budgets, and transport
//   - tracing: OpenTelemetry distributed tracing over OTLP/gRPC
//
// Each subpackage is independent; the server wires them together at
// startup from the telemetry section of the configuration file.
//
// Prompts never reach the telemetry layer: governance records store
// prompt digests only, so logs and spans carry session identifiers,
// modes, decisions, and amounts rather than conversation content.
package telemetry
