// Package tracer provides request tracing for playgate.
//
// It uses the OpenTelemetry API only. Spans are created from the global
// tracer provider, which is a no-op until an embedder installs an SDK
// provider with otel.SetTracerProvider. W3C trace context headers are
// honored so an upstream proxy's trace is continued.
package tracer
