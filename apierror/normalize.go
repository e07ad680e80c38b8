package apierror

import "strconv"

const (
	// DefaultMessage is used when an error response carries neither a message
	// nor an error string.
	DefaultMessage = "Unknown error from AMOS / MVR API endpoint"

	unknownNetworkMessage = "Unknown network error"
	unknownMessage        = "Unknown error calling AMOS / MVR API"
)

// FromResponse normalizes an HTTP error response.
func FromResponse(status int, body []byte) *Error {
	return FromRaw(status, ParseRawBody(body))
}

// FromRaw fills an Error from an already parsed error body. Remote values win;
// the local fallbacks only fill what the remote service left out.
func FromRaw(status int, raw RawBody) *Error {
	e := &Error{
		Kind:        CodeAPIError,
		Message:     DefaultMessage,
		Attribution: DefaultAttribution(),
		StatusCode:  status,
	}

	if raw.Error != nil {
		e.Kind = *raw.Error
	}

	switch {
	case raw.ErrorCode != nil:
		e.Code = *raw.ErrorCode
	case status > 0:
		e.Code = strconv.Itoa(status)
	default:
		e.Code = CodeAPIError
	}

	switch {
	case raw.Message != nil:
		e.Message = *raw.Message
	case raw.Error != nil:
		e.Message = *raw.Error
	}

	if raw.RequestID != nil {
		e.RequestID = *raw.RequestID
	}
	if raw.Limit != nil {
		limit := *raw.Limit
		e.Limit = &limit
	}
	if raw.Window != nil {
		e.Window = *raw.Window
	}
	if raw.RetryAfter != nil {
		retryAfter := *raw.RetryAfter
		e.RetryAfter = &retryAfter
	}
	if raw.Attribution != nil {
		e.Attribution = *raw.Attribution
	}

	return e
}

// FromTransport normalizes a failure where no response was received.
func FromTransport(err error) *Error {
	msg := unknownNetworkMessage
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:        CodeNetworkError,
		Code:        CodeNetworkError,
		Message:     msg,
		Attribution: DefaultAttribution(),
		cause:       err,
	}
}

// Unknown is returned when a call ends without a definitive outcome.
func Unknown() *Error {
	return &Error{
		Kind:        CodeUnknownError,
		Code:        CodeUnknownError,
		Message:     unknownMessage,
		Attribution: DefaultAttribution(),
	}
}

// InvalidResponse reports a successful response whose body could not be decoded.
func InvalidResponse(status int, err error) *Error {
	return local(CodeInvalidResponse, status, "failed to decode AMOS / MVR API response", err)
}

// InvalidRequest reports a request body that could not be encoded.
func InvalidRequest(err error) *Error {
	return local(CodeInvalidRequest, 0, "failed to encode AMOS / MVR API request", err)
}

// Validation reports a request rejected before it was sent.
func Validation(err error) *Error {
	return local(CodeValidationError, 0, "invalid AMOS / MVR API request", err)
}

// Interceptor reports a caller supplied interceptor that rejected a request or
// its response. status is the received status, or 0 when nothing was sent.
func Interceptor(status int, err error) *Error {
	return local(CodeInterceptorError, status, "AMOS / MVR API interceptor failed", err)
}

func local(code string, status int, msg string, cause error) *Error {
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return &Error{
		Kind:        code,
		Code:        code,
		Message:     msg,
		Attribution: DefaultAttribution(),
		StatusCode:  status,
		cause:       cause,
	}
}
