package retry

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderRetryAfter carries the server's wait hint in whole seconds.
	HeaderRetryAfter = "Retry-After"

	// DefaultRetryAfter is used when a 429 carries no usable Retry-After header.
	DefaultRetryAfter = 60 * time.Second

	// DefaultBackoffBase is the first transport-failure backoff; it doubles per attempt.
	DefaultBackoffBase = time.Second
)

// Policy decides what to do after a failed attempt. attempt counts from 0 and
// attempts remain while attempt < maxRetries.
type Policy interface {
	Decide(attempt, maxRetries int, outcome Outcome) Decision
}

// Resilient retries rate limiting (honoring Retry-After) and transport
// failures (exponential backoff, no jitter). Any other HTTP status fails
// immediately.
type Resilient struct {
	// DefaultRetryAfter overrides DefaultRetryAfter when positive.
	DefaultRetryAfter time.Duration
	// BackoffBase overrides DefaultBackoffBase when positive.
	BackoffBase time.Duration
}

// Decide implements Policy.
func (p Resilient) Decide(attempt, maxRetries int, outcome Outcome) Decision {
	if attempt >= maxRetries {
		return Fail()
	}

	switch outcome.Kind {
	case OutcomeHTTPFailure:
		if outcome.RateLimited() {
			return RetryAfter(retryAfterDelay(outcome.Header, p.DefaultRetryAfter), ReasonRateLimited)
		}
		return Fail()
	case OutcomeTransportFailure:
		base := p.BackoffBase
		if base <= 0 {
			base = DefaultBackoffBase
		}
		return RetryAfter(Backoff(base, attempt), ReasonTransport)
	default:
		return Fail()
	}
}

// RateLimitOnly retries 429 responses only. Transport failures and every other
// status fail on the first occurrence.
type RateLimitOnly struct {
	// DefaultRetryAfter overrides DefaultRetryAfter when positive.
	DefaultRetryAfter time.Duration
}

// Decide implements Policy.
func (p RateLimitOnly) Decide(attempt, maxRetries int, outcome Outcome) Decision {
	if attempt < maxRetries && outcome.RateLimited() {
		return RetryAfter(retryAfterDelay(outcome.Header, p.DefaultRetryAfter), ReasonRateLimited)
	}
	return Fail()
}

// ParseRetryAfter parses a Retry-After value given in whole seconds.
// Negative, fractional, HTTP-date and empty values are rejected.
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// Backoff returns base * 2^attempt, saturating at the largest time.Duration.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 62 || base > math.MaxInt64>>attempt {
		return time.Duration(math.MaxInt64)
	}
	return base << attempt
}

func retryAfterDelay(header http.Header, fallback time.Duration) time.Duration {
	if fallback <= 0 {
		fallback = DefaultRetryAfter
	}
	if header == nil {
		return fallback
	}
	if d, ok := ParseRetryAfter(header.Get(HeaderRetryAfter)); ok {
		return d
	}
	return fallback
}
