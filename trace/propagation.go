package trace

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// InjectMode controls whether headers already present on a request win.
type InjectMode int

const (
	// InjectPreserve only fills headers that are missing.
	InjectPreserve InjectMode = iota
	// InjectOverwrite replaces headers with values derived from the context.
	InjectOverwrite
)

var traceContext = propagation.TraceContext{}

// InjectHeaders writes X-Request-ID, traceparent and tracestate onto h.
//
// An active OpenTelemetry span wins for traceparent/tracestate; otherwise the
// values stored with WithTraceParent/WithTraceState are used, and a fresh
// traceparent is generated as a last resort. X-Request-ID comes from
// WithTraceID, falling back to the trace-id segment of the traceparent.
func InjectHeaders(ctx context.Context, h http.Header, mode InjectMode) {
	set := func(key, value string) {
		if value == "" {
			return
		}
		if mode == InjectPreserve && h.Get(key) != "" {
			return
		}
		h.Set(key, value)
	}

	traceParent, traceState := parentFromSpan(ctx)
	if traceParent == "" {
		traceParent, _ = ParentFromContext(ctx)
		traceState, _ = StateFromContext(ctx)
	}
	if traceParent == "" && h.Get(HeaderTraceParent) == "" {
		traceParent = GenerateTraceParent()
	}
	set(HeaderTraceParent, traceParent)
	set(HeaderTraceState, traceState)

	requestID, ok := IDFromContext(ctx)
	if !ok {
		requestID = traceIDFromParent(h.Get(HeaderTraceParent))
	}
	set(HeaderXRequestID, requestID)
}

func parentFromSpan(ctx context.Context) (traceParent, traceState string) {
	if !oteltrace.SpanContextFromContext(ctx).IsValid() {
		return "", ""
	}
	carrier := propagation.MapCarrier{}
	traceContext.Inject(ctx, carrier)
	return carrier.Get(HeaderTraceParent), carrier.Get(HeaderTraceState)
}

func traceIDFromParent(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) != 4 || len(parts[1]) != 32 {
		return ""
	}
	return parts[1]
}
