package executor

import (
	"errors"

	"github.com/africanmarketos/amos-mvr-go/apierror"
	"github.com/africanmarketos/amos-mvr-go/httpclient"
)

type httpStatusError interface {
	StatusCode() int
	Body() []byte
}

// NormalizeError converts any error returned by Execute, under either
// strategy, into the normalized envelope. A nil error stays nil.
func NormalizeError(err error) *apierror.Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := apierror.As(err); ok {
		return apiErr
	}
	if httpclient.IsErrorType(err, httpclient.InterceptorError) {
		return apierror.Interceptor(0, err)
	}
	var he httpStatusError
	if errors.As(err, &he) {
		return apierror.FromResponse(he.StatusCode(), he.Body())
	}
	return apierror.FromTransport(err)
}
