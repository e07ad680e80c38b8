package executor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/africanmarketos/amos-mvr-go/apierror"
	"github.com/africanmarketos/amos-mvr-go/httpclient"
	"github.com/africanmarketos/amos-mvr-go/logger"
	"github.com/africanmarketos/amos-mvr-go/retry"
)

const (
	testBaseURL   = "https://api.example.test"
	testScorePath = "/v1/amos/score"
)

var errConnRefused = errors.New("connection refused")

type step struct {
	status int
	header http.Header
	body   string
	err    error
}

func rateLimited(retryAfter string) step {
	h := http.Header{}
	if retryAfter != "" {
		h.Set(retry.HeaderRetryAfter, retryAfter)
	}
	return step{status: http.StatusTooManyRequests, header: h, body: `{"error":"RATE_LIMITED"}`}
}

// scriptedTransport replays steps in order and repeats the last one.
type scriptedTransport struct {
	mu     sync.Mutex
	steps  []step
	urls   []string
	bodies []string
}

func (s *scriptedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body string
	if r.Body != nil {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}
	s.urls = append(s.urls, r.URL.String())
	s.bodies = append(s.bodies, body)

	st := s.steps[min(len(s.urls), len(s.steps))-1]
	if st.err != nil {
		return nil, st.err
	}
	header := st.header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: st.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(st.body)),
		Request:    r,
	}, nil
}

func (s *scriptedTransport) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestExecutor(strategy Strategy, maxRetries int, steps ...step) (*Executor, *scriptedTransport, *recordingSleeper) {
	transport := &scriptedTransport{steps: steps}
	client := httpclient.NewBuilder(logger.Nop()).WithTransport(transport).Build()
	sleeper := &recordingSleeper{}
	exec := New(client, Config{BaseURL: testBaseURL, MaxRetries: maxRetries, Strategy: strategy},
		WithSleeper(sleeper.sleep))
	return exec, transport, sleeper
}

func scoreSpec() RequestSpec {
	return RequestSpec{Method: http.MethodPost, Path: testScorePath, Body: map[string]any{"amos_id": "A-1"}}
}

func requireAPIError(t *testing.T, err error) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok, "expected *apierror.Error, got %T", err)
	return apiErr
}

func TestExecuteRateLimitedUntilExhausted(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 3} {
		t.Run("max_retries_"+strconv.Itoa(maxRetries), func(t *testing.T) {
			exec, transport, sleeper := newTestExecutor(StrategyResilient, maxRetries, rateLimited("5"))

			body, err := exec.Execute(context.Background(), scoreSpec())
			assert.Nil(t, body)

			apiErr := requireAPIError(t, err)
			assert.Equal(t, "429", apiErr.Code)
			assert.Equal(t, "RATE_LIMITED", apiErr.Kind)
			assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

			assert.Equal(t, maxRetries+1, transport.attempts())
			require.Len(t, sleeper.delays, maxRetries)
			for _, d := range sleeper.delays {
				assert.Equal(t, 5*time.Second, d)
			}
		})
	}
}

func TestExecuteRateLimitedWithoutRetryAfter(t *testing.T) {
	exec, transport, sleeper := newTestExecutor(StrategyResilient, 3, rateLimited(""))

	_, err := exec.Execute(context.Background(), scoreSpec())

	apiErr := requireAPIError(t, err)
	assert.Equal(t, "429", apiErr.Code)
	assert.Equal(t, 4, transport.attempts())
	assert.Equal(t, []time.Duration{60 * time.Second, 60 * time.Second, 60 * time.Second}, sleeper.delays)
}

func TestExecuteServerErrorIsNotRetried(t *testing.T) {
	exec, transport, sleeper := newTestExecutor(StrategyResilient, 3, step{
		status: http.StatusInternalServerError,
		body:   `{"error":"SCORING_FAILED","error_code":"E_SCORE","message":"model unavailable","request_id":"req-9"}`,
	})

	_, err := exec.Execute(context.Background(), scoreSpec())

	apiErr := requireAPIError(t, err)
	assert.Equal(t, "SCORING_FAILED", apiErr.Kind)
	assert.Equal(t, "E_SCORE", apiErr.Code)
	assert.Equal(t, "model unavailable", apiErr.Message)
	assert.Equal(t, "req-9", apiErr.RequestID)
	assert.Equal(t, apierror.DefaultAttribution(), apiErr.Attribution)
	assert.Equal(t, 1, transport.attempts())
	assert.Empty(t, sleeper.delays)
}

func TestExecuteTransportFailureBackoff(t *testing.T) {
	exec, transport, sleeper := newTestExecutor(StrategyResilient, 2, step{err: errConnRefused})

	_, err := exec.Execute(context.Background(), scoreSpec())

	apiErr := requireAPIError(t, err)
	assert.Equal(t, apierror.CodeNetworkError, apiErr.Code)
	assert.Equal(t, apierror.CodeNetworkError, apiErr.Kind)
	assert.Contains(t, apiErr.Message, errConnRefused.Error())
	assert.True(t, errors.Is(err, errConnRefused))
	assert.Equal(t, 3, transport.attempts())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestExecuteSuccess(t *testing.T) {
	const payload = `{"RRS_SCORE": 71.5, "RRS_CONFIDENT": true}`

	t.Run("first attempt body is returned unmodified", func(t *testing.T) {
		exec, transport, sleeper := newTestExecutor(StrategyResilient, 3, step{status: http.StatusOK, body: payload})

		body, err := exec.Execute(context.Background(), scoreSpec())
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
		assert.Equal(t, 1, transport.attempts())
		assert.Empty(t, sleeper.delays)
	})

	t.Run("recovers after rate limiting and transport failure", func(t *testing.T) {
		exec, transport, sleeper := newTestExecutor(StrategyResilient, 3,
			rateLimited("2"),
			step{err: errConnRefused},
			step{status: http.StatusOK, body: payload},
		)

		body, err := exec.Execute(context.Background(), scoreSpec())
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
		assert.Equal(t, 3, transport.attempts())
		assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.delays)
	})
}

func TestExecutePassthroughStrategy(t *testing.T) {
	t.Run("transport failure is returned raw without retry", func(t *testing.T) {
		exec, transport, sleeper := newTestExecutor(StrategyPassthrough, 3, step{err: errConnRefused})

		_, err := exec.Execute(context.Background(), scoreSpec())
		require.Error(t, err)
		_, isAPIErr := apierror.As(err)
		assert.False(t, isAPIErr)
		assert.True(t, httpclient.IsErrorType(err, httpclient.NetworkError))
		assert.Equal(t, 1, transport.attempts())
		assert.Empty(t, sleeper.delays)

		normalized := NormalizeError(err)
		assert.Equal(t, apierror.CodeNetworkError, normalized.Code)
	})

	t.Run("rate limiting is still retried", func(t *testing.T) {
		exec, transport, sleeper := newTestExecutor(StrategyPassthrough, 2,
			rateLimited("1"),
			step{status: http.StatusOK, body: `{"status":"ok"}`},
		)

		body, err := exec.Execute(context.Background(), RequestSpec{Method: http.MethodGet, Path: "/health"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))
		assert.Equal(t, 2, transport.attempts())
		assert.Equal(t, []time.Duration{time.Second}, sleeper.delays)
	})

	t.Run("http failure keeps raw body", func(t *testing.T) {
		raw := `{"error":"FORBIDDEN","message":"session expired"}`
		exec, _, _ := newTestExecutor(StrategyPassthrough, 2, step{status: http.StatusForbidden, body: raw})

		_, err := exec.Execute(context.Background(), scoreSpec())
		assert.True(t, httpclient.IsHTTPStatusError(err, http.StatusForbidden))

		normalized := NormalizeError(err)
		assert.Equal(t, "FORBIDDEN", normalized.Kind)
		assert.Equal(t, "403", normalized.Code)
		assert.Equal(t, "session expired", normalized.Message)
	})
}

func TestExecuteContextCancellation(t *testing.T) {
	transport := &scriptedTransport{steps: []step{rateLimited("30")}}
	client := httpclient.NewBuilder(logger.Nop()).WithTransport(transport).Build()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := New(client, Config{BaseURL: testBaseURL, MaxRetries: 5}, WithSleeper(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := exec.Execute(ctx, scoreSpec())

	apiErr := requireAPIError(t, err)
	assert.Equal(t, apierror.CodeNetworkError, apiErr.Code)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, transport.attempts())
}

func TestExecuteNegativeMaxRetries(t *testing.T) {
	exec, transport, _ := newTestExecutor(StrategyResilient, -1, step{status: http.StatusOK})

	_, err := exec.Execute(context.Background(), scoreSpec())

	apiErr := requireAPIError(t, err)
	assert.Equal(t, apierror.CodeUnknownError, apiErr.Code)
	assert.Equal(t, 0, transport.attempts())
}

func TestExecuteRequestBuilding(t *testing.T) {
	exec, transport, _ := newTestExecutor(StrategyResilient, 0, step{status: http.StatusOK, body: `{}`})
	exec.config.BaseURL = testBaseURL + "/"

	_, err := exec.Execute(context.Background(), RequestSpec{
		Method: http.MethodPost,
		Path:   "v1/amos/trends",
		Query:  Query("window", "30d", "amos_id", "A&B", "dangling"),
		Body:   map[string]string{"note": "<b>"},
	})
	require.NoError(t, err)

	require.Len(t, transport.urls, 1)
	assert.Equal(t, testBaseURL+"/v1/amos/trends?window=30d&amos_id=A%26B", transport.urls[0])
	assert.Equal(t, `{"note":"<b>"}`, transport.bodies[0])
}

func TestExecuteInvalidRequest(t *testing.T) {
	t.Run("unencodable body", func(t *testing.T) {
		exec, transport, _ := newTestExecutor(StrategyResilient, 3, step{status: http.StatusOK})

		_, err := exec.Execute(context.Background(), RequestSpec{Method: http.MethodPost, Path: testScorePath, Body: make(chan int)})

		apiErr := requireAPIError(t, err)
		assert.Equal(t, apierror.CodeInvalidRequest, apiErr.Code)
		assert.Equal(t, 0, transport.attempts())
	})

	t.Run("malformed base URL", func(t *testing.T) {
		exec, transport, sleeper := newTestExecutor(StrategyResilient, 3, step{status: http.StatusOK})
		exec.config.BaseURL = "http://bad host"

		_, err := exec.Execute(context.Background(), scoreSpec())

		apiErr := requireAPIError(t, err)
		assert.Equal(t, apierror.CodeInvalidRequest, apiErr.Code)
		assert.Equal(t, 0, transport.attempts())
		assert.Empty(t, sleeper.delays)
	})
}

func TestExecuteInterceptorFailure(t *testing.T) {
	errDenied := errors.New("denied")

	newExecutor := func(strategy Strategy, transport *scriptedTransport, configure func(*httpclient.Builder)) (*Executor, *recordingSleeper) {
		b := httpclient.NewBuilder(logger.Nop()).WithTransport(transport)
		configure(b)
		sleeper := &recordingSleeper{}
		return New(b.Build(), Config{BaseURL: testBaseURL, MaxRetries: 3, Strategy: strategy}, WithSleeper(sleeper.sleep)), sleeper
	}

	t.Run("request interceptor is not retried", func(t *testing.T) {
		calls := 0
		transport := &scriptedTransport{steps: []step{{status: http.StatusOK, body: `{}`}}}
		exec, sleeper := newExecutor(StrategyResilient, transport, func(b *httpclient.Builder) {
			b.WithRequestInterceptor(func(context.Context, *http.Request) error {
				calls++
				return errDenied
			})
		})

		_, err := exec.Execute(context.Background(), scoreSpec())

		apiErr := requireAPIError(t, err)
		assert.Equal(t, apierror.CodeInterceptorError, apiErr.Code)
		assert.Zero(t, apiErr.StatusCode)
		assert.True(t, errors.Is(err, errDenied))
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, transport.attempts())
		assert.Empty(t, sleeper.delays)
	})

	t.Run("response interceptor keeps the received status", func(t *testing.T) {
		transport := &scriptedTransport{steps: []step{{status: http.StatusInternalServerError, body: `{"error":"SCORING_FAILED"}`}}}
		var seenBody string
		exec, sleeper := newExecutor(StrategyResilient, transport, func(b *httpclient.Builder) {
			b.WithResponseInterceptor(func(_ context.Context, _ *http.Request, resp *http.Response) error {
				data, _ := io.ReadAll(resp.Body)
				seenBody = string(data)
				return errDenied
			})
		})

		_, err := exec.Execute(context.Background(), scoreSpec())

		apiErr := requireAPIError(t, err)
		assert.Equal(t, apierror.CodeInterceptorError, apiErr.Code)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, `{"error":"SCORING_FAILED"}`, seenBody)
		assert.Equal(t, 1, transport.attempts())
		assert.Empty(t, sleeper.delays)
	})

	t.Run("passthrough returns the raw interceptor error", func(t *testing.T) {
		transport := &scriptedTransport{steps: []step{rateLimited("1")}}
		exec, sleeper := newExecutor(StrategyPassthrough, transport, func(b *httpclient.Builder) {
			b.WithResponseInterceptor(func(context.Context, *http.Request, *http.Response) error {
				return errDenied
			})
		})

		_, err := exec.Execute(context.Background(), scoreSpec())

		assert.True(t, httpclient.IsErrorType(err, httpclient.InterceptorError))
		assert.Equal(t, 1, transport.attempts())
		assert.Empty(t, sleeper.delays)
		assert.Equal(t, apierror.CodeInterceptorError, NormalizeError(err).Code)
	})
}

func TestExecuteRecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	transport := &scriptedTransport{steps: []step{rateLimited("1"), {status: http.StatusOK, body: `{}`}}}
	client := httpclient.NewBuilder(logger.Nop()).WithTransport(transport).Build()
	sleeper := &recordingSleeper{}
	exec := New(client, Config{BaseURL: testBaseURL, MaxRetries: 2},
		WithSleeper(sleeper.sleep), WithTracer(tp.Tracer("test")))

	_, err := exec.Execute(context.Background(), scoreSpec())
	require.NoError(t, err)

	var calls []tracetest.SpanStub
	for _, span := range exporter.GetSpans() {
		if span.Name == "POST "+testScorePath {
			calls = append(calls, span)
		}
	}
	require.Len(t, calls, 1, "one span per logical call")
	span := calls[0]
	assert.Contains(t, span.Attributes, attribute.Int("mvr.attempts", 2))
	assert.Contains(t, span.Attributes, attribute.String("mvr.strategy", "resilient"))
	require.Len(t, span.Events, 1)
	assert.Equal(t, "retry", span.Events[0].Name)
}

func TestNormalizeError(t *testing.T) {
	assert.Nil(t, NormalizeError(nil))

	apiErr := apierror.Unknown()
	assert.Same(t, apiErr, NormalizeError(apiErr))

	httpErr := httpclient.NewHTTPError("failed", http.StatusBadGateway, []byte("not json"))
	normalized := NormalizeError(httpErr)
	assert.Equal(t, apierror.CodeAPIError, normalized.Kind)
	assert.Equal(t, "502", normalized.Code)
	assert.Equal(t, apierror.DefaultMessage, normalized.Message)

	normalized = NormalizeError(httpclient.NewTimeoutError("request timeout", time.Second, context.DeadlineExceeded))
	assert.Equal(t, apierror.CodeNetworkError, normalized.Code)
	assert.Contains(t, normalized.Message, context.DeadlineExceeded.Error())
	assert.True(t, errors.Is(normalized, context.DeadlineExceeded))

	normalized = NormalizeError(errors.New("boom"))
	assert.Equal(t, apierror.CodeNetworkError, normalized.Code)
	assert.Equal(t, "boom", normalized.Message)
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "resilient", StrategyResilient.String())
	assert.Equal(t, "passthrough", StrategyPassthrough.String())
	assert.Equal(t, "unknown", Strategy(9).String())
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
	require.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
