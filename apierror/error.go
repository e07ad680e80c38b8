package apierror

import (
	"errors"
	"fmt"
)

// Error kinds and codes produced locally, as opposed to codes supplied by the
// remote service.
const (
	CodeAPIError         = "API_ERROR"
	CodeNetworkError     = "NETWORK_ERROR"
	CodeUnknownError     = "UNKNOWN_ERROR"
	CodeInvalidResponse  = "INVALID_RESPONSE"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInterceptorError = "INTERCEPTOR_ERROR"
)

// Error is the normalized error envelope. It marshals to
//
//	{ "ok": false, "error": ..., "error_code": ..., "message": ...,
//	  "request_id"?, "limit"?, "window"?, "retry_after"?, "attribution": {...} }
type Error struct {
	OK          bool        `json:"ok"`
	Kind        string      `json:"error"`
	Code        string      `json:"error_code"`
	Message     string      `json:"message"`
	RequestID   string      `json:"request_id,omitempty"`
	Limit       *int        `json:"limit,omitempty"`
	Window      string      `json:"window,omitempty"`
	RetryAfter  *int        `json:"retry_after,omitempty"`
	Attribution Attribution `json:"attribution"`

	// StatusCode is the HTTP status of the failed response, 0 when no response
	// was received.
	StatusCode int `json:"-"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("mvr api error: %s (%s, status %d): %s", e.Kind, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("mvr api error: %s (%s): %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the transport failure behind the error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a normalized error with the given code.
func HasCode(err error, code string) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}
