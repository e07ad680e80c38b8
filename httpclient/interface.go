// Package httpclient is the physical transport underneath the AMOS / MVR API
// client. One call is one HTTP attempt: retry decisions belong to the caller.
package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/africanmarketos/amos-mvr-go/trace"
)

const (
	// HeaderXRequestID is the default header used for request correlation.
	HeaderXRequestID = trace.HeaderXRequestID

	// DefaultTimeout bounds a single attempt when no timeout is configured.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxPayloadLogBytes caps logged body previews.
	DefaultMaxPayloadLogBytes = 1024
)

// Client sends single HTTP attempts.
//
// A non-2xx status yields both the Response and an HTTP ClientError so callers
// can inspect status, headers and body of failures.
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request is an outbound call. Headers override Config.DefaultHeaders.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is a received HTTP response with execution statistics.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
}

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the client configuration
type Config struct {
	Timeout              time.Duration
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	DefaultHeaders       map[string]string
	// Transport overrides the underlying round tripper (default: http.DefaultTransport)
	Transport nethttp.RoundTripper
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// TraceIDHeader configures the header name used for request correlation (default: X-Request-ID)
	TraceIDHeader string
	// PropagateTraceContext injects W3C traceparent/tracestate headers
	PropagateTraceContext bool
}

// WithTraceID adds a trace ID to the context for propagation on outbound requests.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return trace.WithTraceID(ctx, traceID)
}
