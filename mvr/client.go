// Package mvr is the Go client for the AMOS / MVR scoring API.
//
// NewClient authenticates with a license and buyer e-mail and runs every call
// through the resilient executor: rate limiting and transport failures are
// retried and every failure is an *apierror.Error. NewSessionClient
// authenticates with a session token, retries rate limiting only and returns
// transport failures as reported (see executor.NormalizeError).
package mvr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/africanmarketos/amos-mvr-go/apierror"
	"github.com/africanmarketos/amos-mvr-go/executor"
	"github.com/africanmarketos/amos-mvr-go/httpclient"
	"github.com/africanmarketos/amos-mvr-go/logger"
	"github.com/africanmarketos/amos-mvr-go/retry"
)

const (
	PathScore  = "/v1/amos/score"
	PathHealth = "/health"
)

// Client calls the AMOS / MVR API. It is safe for concurrent use.
type Client struct {
	config   ClientConfig
	strategy executor.Strategy
	exec     *executor.Executor
	log      logger.Logger
}

type options struct {
	logger       logger.Logger
	transport    http.RoundTripper
	sleeper      executor.SleepFunc
	tracer       oteltrace.Tracer
	policy       retry.Policy
	logPayloads  bool
	payloadBytes int
	interceptors []httpclient.RequestInterceptor
}

// Option customizes a Client.
type Option func(*options)

// WithLogger sets the logger for transport and retry events.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport replaces the HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithSleeper replaces the wait between retries.
func WithSleeper(sleep executor.SleepFunc) Option {
	return func(o *options) { o.sleeper = sleep }
}

// WithTracer sets the tracer used for call spans.
func WithTracer(t oteltrace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithRetryPolicy replaces the strategy's retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithPayloadLogging logs masked headers and body previews at debug level.
func WithPayloadLogging(maxBytes int) Option {
	return func(o *options) {
		o.logPayloads = true
		o.payloadBytes = maxBytes
	}
}

// WithRequestInterceptor adds a transport request interceptor.
func WithRequestInterceptor(i httpclient.RequestInterceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, i) }
}

// NewClient creates a license+email authenticated client.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	headers := map[string]string{
		HeaderLicense:    cfg.License,
		HeaderBuyerEmail: cfg.Email,
	}
	return newClient(cfg, executor.StrategyResilient, headers, opts), nil
}

// NewSessionClient creates a session-token authenticated client.
func NewSessionClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.ValidateSession(); err != nil {
		return nil, fmt.Errorf("invalid session client config: %w", err)
	}
	headers := map[string]string{
		HeaderSessionToken: cfg.SessionToken,
	}
	return newClient(cfg, executor.StrategyPassthrough, headers, opts), nil
}

func newClient(cfg ClientConfig, strategy executor.Strategy, credentials map[string]string, opts []Option) *Client {
	o := &options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}

	b := httpclient.NewBuilder(o.logger).
		WithTimeout(cfg.Timeout).
		WithDefaultHeader(HeaderContentType, contentTypeJSON).
		WithDefaultHeader(HeaderUserAgent, cfg.UserAgent).
		WithTraceContext()
	for key, value := range credentials {
		b.WithDefaultHeader(key, value)
	}
	if o.transport != nil {
		b.WithTransport(o.transport)
	}
	if o.logPayloads {
		b.WithPayloadLogging(o.payloadBytes)
	}
	for _, i := range o.interceptors {
		b.WithRequestInterceptor(i)
	}

	exec := executor.New(b.Build(), executor.Config{
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
		Strategy:   strategy,
	},
		executor.WithLogger(o.logger),
		executor.WithSleeper(o.sleeper),
		executor.WithTracer(o.tracer),
		executor.WithPolicy(o.policy),
	)

	return &Client{config: cfg, strategy: strategy, exec: exec, log: o.logger}
}

// Config returns the client's effective configuration.
func (c *Client) Config() ClientConfig {
	return c.config
}

// ScoreAMOS computes the relational risk score, porosity, MVR-I and safe
// credit limit for one entity.
func (c *Client) ScoreAMOS(ctx context.Context, req *AMOSScoreRequest) (*AMOSScoreResponse, error) {
	if req == nil {
		return nil, apierror.Validation(errors.New("score request is nil"))
	}
	if err := requestValidator.Validate(req); err != nil {
		return nil, apierror.Validation(err)
	}

	var resp AMOSScoreResponse
	if err := c.Do(ctx, executor.RequestSpec{Method: http.MethodPost, Path: PathScore, Body: req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes the service.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.Do(ctx, executor.RequestSpec{Method: http.MethodGet, Path: PathHealth}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Do executes spec and decodes a successful JSON body into out. A nil out
// discards the body.
func (c *Client) Do(ctx context.Context, spec executor.RequestSpec, out any) error {
	body, err := c.exec.Execute(ctx, spec)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Error().
			Err(err).
			Str("method", spec.Method).
			Str("path", spec.Path).
			Int("body_size", len(body)).
			Msg("Failed to decode AMOS / MVR API response")
		return apierror.InvalidResponse(0, err)
	}
	return nil
}
