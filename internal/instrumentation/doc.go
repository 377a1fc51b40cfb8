// Package instrumentation provides OpenTelemetry metrics and tracing for the
// fleet server. Instrumentation is disabled by default; when enabled, the
// Provider wires a meter provider (prometheus, OTLP-HTTP, or stdout
// exporters), an optional tracer provider, and the recorder implementations
// consumed by the dispatch engine and the cluster registry.
package instrumentation
