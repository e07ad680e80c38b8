// Package retry decides whether a failed attempt against the AMOS / MVR API is
// worth repeating and how long to wait first. Decisions are pure functions of
// the attempt number, the retry budget and the attempt's outcome.
package retry

import "net/http"

// OutcomeKind tags the result of one physical attempt.
type OutcomeKind int

const (
	// OutcomeSuccess is a 2xx response.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeHTTPFailure is a response with a non-2xx status.
	OutcomeHTTPFailure
	// OutcomeTransportFailure means no response was received.
	OutcomeTransportFailure
)

// String returns the metric/log label for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPFailure:
		return "http_failure"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is produced once per physical attempt.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Header     http.Header
	Body       []byte
	// Err is the transport error for OutcomeTransportFailure and the typed
	// HTTP error for OutcomeHTTPFailure.
	Err error
}

// Success builds a successful outcome.
func Success(status int, header http.Header, body []byte) Outcome {
	return Outcome{Kind: OutcomeSuccess, StatusCode: status, Header: header, Body: body}
}

// HTTPFailure builds an outcome for a response with an error status.
func HTTPFailure(status int, header http.Header, body []byte, err error) Outcome {
	return Outcome{Kind: OutcomeHTTPFailure, StatusCode: status, Header: header, Body: body, Err: err}
}

// TransportFailure builds an outcome for an attempt that got no response.
func TransportFailure(err error) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Err: err}
}

// RateLimited reports whether the outcome is a 429 response.
func (o Outcome) RateLimited() bool {
	return o.Kind == OutcomeHTTPFailure && o.StatusCode == http.StatusTooManyRequests
}
