// Package trace carries request correlation identifiers through a context and
// onto outbound AMOS / MVR API requests.
package trace

import (
	"context"
	crand "crypto/rand"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	traceIDKey     contextKey = "trace_id"
	traceParentKey contextKey = "traceparent"
	traceStateKey  contextKey = "tracestate"

	// HeaderXRequestID is the correlation header sent with every API call.
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name.
	HeaderTraceParent = "traceparent"
	// HeaderTraceState is the W3C trace context "tracestate" header name.
	HeaderTraceState = "tracestate"
)

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// IDFromContext returns the trace ID stored in ctx, if any.
func IDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, traceIDKey)
}

// EnsureTraceID returns the trace ID stored in ctx or a fresh UUID.
func EnsureTraceID(ctx context.Context) string {
	if traceID, ok := IDFromContext(ctx); ok {
		return traceID
	}
	return uuid.NewString()
}

// WithTraceParent adds a W3C traceparent value to the context.
func WithTraceParent(ctx context.Context, traceParent string) context.Context {
	return context.WithValue(ctx, traceParentKey, traceParent)
}

// ParentFromContext returns the traceparent stored in ctx, if any.
func ParentFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, traceParentKey)
}

// WithTraceState adds a W3C tracestate value to the context.
func WithTraceState(ctx context.Context, traceState string) context.Context {
	return context.WithValue(ctx, traceStateKey, traceState)
}

// StateFromContext returns the tracestate stored in ctx, if any.
func StateFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, traceStateKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// GenerateTraceParent creates a sampled W3C traceparent with random IDs,
// e.g. "00-<32 hex>-<16 hex>-01".
func GenerateTraceParent() string {
	var traceID oteltrace.TraceID
	var spanID oteltrace.SpanID
	_, _ = crand.Read(traceID[:])
	_, _ = crand.Read(spanID[:])
	if !traceID.IsValid() {
		traceID[len(traceID)-1] = 0x01
	}
	if !spanID.IsValid() {
		spanID[len(spanID)-1] = 0x01
	}
	return formatTraceParent(traceID, spanID, oteltrace.FlagsSampled)
}

func formatTraceParent(traceID oteltrace.TraceID, spanID oteltrace.SpanID, flags oteltrace.TraceFlags) string {
	return "00-" + traceID.String() + "-" + spanID.String() + "-" + flags.String()
}
