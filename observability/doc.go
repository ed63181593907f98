// Package observability wires OpenTelemetry tracing and metrics over
// OTLP/HTTP. When disabled the global no-op providers stay in place, so
// instruments and spans created through this package cost nothing.
package observability
