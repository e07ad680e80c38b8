package executor

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/africanmarketos/amos-mvr-go/apierror"
	"github.com/africanmarketos/amos-mvr-go/httpclient"
	"github.com/africanmarketos/amos-mvr-go/internal/tracking"
	"github.com/africanmarketos/amos-mvr-go/retry"
)

// Execute performs the call described by spec and returns the raw body of the
// first successful (2xx) response, unmodified.
//
// Attempts are sequential and bounded by Config.MaxRetries+1. Under
// StrategyResilient every failure is an *apierror.Error; under
// StrategyPassthrough HTTP and transport failures are returned as reported by
// the transport. Ending ctx abandons the call, including a pending wait.
func (e *Executor) Execute(ctx context.Context, spec RequestSpec) ([]byte, error) {
	call := tracking.Call{Method: spec.Method, Route: spec.Path, Strategy: e.config.Strategy.String()}
	start := time.Now()
	done := tracking.TrackInflight(ctx, call)
	defer done()

	ctx, span := e.tracer.Start(ctx, spec.Method+" "+spec.Path,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.request.method", spec.Method),
			attribute.String("url.path", spec.Path),
			attribute.String("mvr.strategy", call.Strategy),
			attribute.Int("mvr.max_retries", e.config.MaxRetries),
		),
	)
	defer span.End()

	body, attempts, err := e.execute(ctx, call, spec)

	span.SetAttributes(attribute.Int("mvr.attempts", attempts))
	errorCode := ""
	if err != nil {
		errorCode = errorCodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, errorCode)
		e.log.Error().
			Err(err).
			Str("method", spec.Method).
			Str("path", spec.Path).
			Str("error_code", errorCode).
			Int("attempts", attempts).
			Msg("AMOS / MVR API call failed")
	}
	tracking.RecordCall(ctx, call, time.Since(start), errorCode)

	return body, err
}

func (e *Executor) execute(ctx context.Context, call tracking.Call, spec RequestSpec) ([]byte, int, error) {
	payload, err := encodeBody(spec.Body)
	if err != nil {
		return nil, 0, apierror.InvalidRequest(err)
	}
	req := &httpclient.Request{URL: buildURL(e.config.BaseURL, spec), Body: payload}

	maxRetries := e.config.MaxRetries
	attempts := 0
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attempts++
		resp, err := e.client.Do(ctx, spec.Method, req)
		if httpclient.IsErrorType(err, httpclient.ValidationError) {
			return nil, attempts, apierror.InvalidRequest(err)
		}
		if httpclient.IsErrorType(err, httpclient.InterceptorError) {
			return nil, attempts, e.interceptorFailure(ctx, call, resp, err)
		}

		outcome := classify(resp, err)
		tracking.RecordAttempt(ctx, call, outcome.Kind.String(), outcome.StatusCode)

		if outcome.Kind == retry.OutcomeSuccess {
			return outcome.Body, attempts, nil
		}

		decision := e.policy.Decide(attempt, maxRetries, outcome)
		if !decision.Retry {
			return nil, attempts, e.fail(outcome)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, attempts, e.fail(aborted(ctxErr))
		}

		e.log.Warn().
			Str("method", spec.Method).
			Str("path", spec.Path).
			Str("reason", string(decision.Reason)).
			Int("attempt", attempt+1).
			Int("status", outcome.StatusCode).
			Dur("delay", decision.Delay).
			Msg("Retrying AMOS / MVR API call")
		tracking.RecordRetry(ctx, call, string(decision.Reason))
		oteltrace.SpanFromContext(ctx).AddEvent("retry", oteltrace.WithAttributes(
			attribute.String("mvr.retry.reason", string(decision.Reason)),
			attribute.Int64("mvr.retry.delay_ms", decision.Delay.Milliseconds()),
		))

		if err := e.sleep(ctx, decision.Delay); err != nil {
			return nil, attempts, e.fail(aborted(err))
		}
	}

	return nil, attempts, apierror.Unknown()
}

const outcomeInterceptorFailure = "interceptor_failure"

// classify turns a transport result into an attempt outcome. A response that
// comes back with an HTTP error is a failure with a response; anything else
// that failed got no usable response.
func classify(resp *httpclient.Response, err error) retry.Outcome {
	switch {
	case err == nil && resp != nil:
		return retry.Success(resp.StatusCode, resp.Headers, resp.Body)
	case resp != nil && httpclient.IsErrorType(err, httpclient.HTTPError):
		return retry.HTTPFailure(resp.StatusCode, resp.Headers, resp.Body, err)
	case err == nil:
		return retry.TransportFailure(errors.New("empty response"))
	default:
		return retry.TransportFailure(err)
	}
}

// interceptorFailure ends the call. Interceptor failures are never retried and
// a received response keeps its status.
func (e *Executor) interceptorFailure(ctx context.Context, call tracking.Call, resp *httpclient.Response, err error) error {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	tracking.RecordAttempt(ctx, call, outcomeInterceptorFailure, status)
	if e.config.Strategy == StrategyPassthrough {
		return err
	}
	return apierror.Interceptor(status, err)
}

func aborted(err error) retry.Outcome {
	return retry.TransportFailure(httpclient.NewNetworkError("request aborted", err))
}

func (e *Executor) fail(outcome retry.Outcome) error {
	if e.config.Strategy == StrategyPassthrough {
		if outcome.Err != nil {
			return outcome.Err
		}
		return apierror.Unknown()
	}

	switch outcome.Kind {
	case retry.OutcomeHTTPFailure:
		return apierror.FromResponse(outcome.StatusCode, outcome.Body)
	case retry.OutcomeTransportFailure:
		return apierror.FromTransport(outcome.Err)
	default:
		return apierror.Unknown()
	}
}

func errorCodeOf(err error) string {
	if apiErr, ok := apierror.As(err); ok {
		return apiErr.Code
	}
	var ce httpclient.ClientError
	if errors.As(err, &ce) {
		return string(ce.Type())
	}
	return apierror.CodeUnknownError
}
