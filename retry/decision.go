package retry

import "time"

// Reason labels why a retry was scheduled.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonRateLimited Reason = "rate_limited"
	ReasonTransport   Reason = "transport"
)

// Decision is either "retry after Delay" or "fail now".
type Decision struct {
	Retry  bool
	Delay  time.Duration
	Reason Reason
}

// RetryAfter schedules another attempt after delay.
func RetryAfter(delay time.Duration, reason Reason) Decision {
	return Decision{Retry: true, Delay: delay, Reason: reason}
}

// Fail ends the call with the current outcome.
func Fail() Decision {
	return Decision{}
}
