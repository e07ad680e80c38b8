// Package executor runs one logical AMOS / MVR API call across as many
// physical attempts as its retry policy allows and turns every failure into a
// single error value.
package executor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/africanmarketos/amos-mvr-go/httpclient"
	"github.com/africanmarketos/amos-mvr-go/logger"
	"github.com/africanmarketos/amos-mvr-go/retry"
)

const tracerName = "amos-mvr-go/executor"

// Strategy selects how failures are retried and surfaced.
type Strategy int

const (
	// StrategyResilient retries rate limiting and transport failures and
	// returns every failure as *apierror.Error.
	StrategyResilient Strategy = iota
	// StrategyPassthrough retries rate limiting only and returns failures as
	// the transport reported them (httpclient.ClientError).
	StrategyPassthrough
)

func (s Strategy) String() string {
	switch s {
	case StrategyResilient:
		return "resilient"
	case StrategyPassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Config is fixed at construction and shared read-only by all calls.
type Config struct {
	BaseURL    string
	MaxRetries int
	Strategy   Strategy
}

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor executes RequestSpecs against a base URL. It holds no per-call
// state and is safe for concurrent use.
type Executor struct {
	client httpclient.Client
	config Config
	policy retry.Policy
	sleep  SleepFunc
	log    logger.Logger
	tracer oteltrace.Tracer
}

// Option customizes an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for retry and failure events.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSleeper replaces the wait between attempts.
func WithSleeper(sleep SleepFunc) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithPolicy replaces the strategy's default retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(e *Executor) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithTracer sets the tracer used for call spans.
func WithTracer(t oteltrace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an Executor. The retry policy defaults to retry.Resilient for
// StrategyResilient and retry.RateLimitOnly for StrategyPassthrough.
func New(client httpclient.Client, cfg Config, opts ...Option) *Executor {
	e := &Executor{
		client: client,
		config: cfg,
		policy: defaultPolicy(cfg.Strategy),
		sleep:  Sleep,
		log:    logger.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the executor's configuration.
func (e *Executor) Config() Config {
	return e.config
}

func defaultPolicy(s Strategy) retry.Policy {
	if s == StrategyPassthrough {
		return retry.RateLimitOnly{}
	}
	return retry.Resilient{}
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
