package tracer

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultName is the instrumentation scope name.
const DefaultName = "github.com/yndnr/playgate"

// Tracer starts spans for incoming requests.
type Tracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// New creates a tracer from the global provider.
func New(name string) *Tracer {
	if name == "" {
		name = DefaultName
	}
	return &Tracer{
		tracer: otel.Tracer(name),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// StartRequest extracts any upstream trace context from r and starts a
// server span named after the method and path.
func (t *Tracer) StartRequest(r *http.Request) (context.Context, trace.Span) {
	ctx := t.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return t.tracer.Start(ctx, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		),
	)
}

// EndRequest records the response status and dispatch stage, then ends the span.
func EndRequest(span trace.Span, status int, stage string) {
	span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.String("playgate.stage", stage),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	span.End()
}
