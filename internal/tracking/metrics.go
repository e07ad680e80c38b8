// Package tracking records OpenTelemetry metrics for AMOS / MVR API calls.
package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "amos-mvr-go/executor"

	metricCallDuration = "mvr.client.call.duration" // Histogram in seconds
	metricAttempts     = "mvr.client.attempts"      // Counter
	metricRetries      = "mvr.client.retries"       // Counter
	metricInflight     = "mvr.client.inflight"      // UpDownCounter

	attrMethod      = "http.request.method"
	attrRoute       = "url.path"
	attrStatusCode  = "http.response.status_code"
	attrStrategy    = "mvr.strategy"
	attrOutcome     = "mvr.outcome"
	attrRetryReason = "mvr.retry.reason"
	attrErrorCode   = "mvr.error_code"
)

// Call identifies a logical API call for metric attributes.
type Call struct {
	Method   string
	Route    string
	Strategy string
}

func (c Call) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, c.Method),
		attribute.String(attrRoute, c.Route),
	}
	if c.Strategy != "" {
		attrs = append(attrs, attribute.String(attrStrategy, c.Strategy))
	}
	return attrs
}

var (
	meter         metric.Meter
	meterOnce     sync.Once
	meterInitMu   sync.Mutex
	metricsInited bool

	callDuration    metric.Float64Histogram
	attemptCounter  metric.Int64Counter
	retryCounter    metric.Int64Counter
	inflightCounter metric.Int64UpDownCounter
)

func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize client metric %s: %v\n", metricName, err)
	}
}

func initMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if meter != nil {
		return
	}

	meter = otel.Meter(meterName)

	var err error
	callDuration, err = meter.Float64Histogram(
		metricCallDuration,
		metric.WithDescription("Duration of logical API calls including retries and waits"),
		metric.WithUnit("s"),
	)
	logMetricError(metricCallDuration, err)

	attemptCounter, err = meter.Int64Counter(
		metricAttempts,
		metric.WithDescription("Number of physical HTTP attempts"),
		metric.WithUnit("{attempt}"),
	)
	logMetricError(metricAttempts, err)

	retryCounter, err = meter.Int64Counter(
		metricRetries,
		metric.WithDescription("Number of scheduled retries"),
		metric.WithUnit("{retry}"),
	)
	logMetricError(metricRetries, err)

	inflightCounter, err = meter.Int64UpDownCounter(
		metricInflight,
		metric.WithDescription("Number of logical API calls in progress"),
		metric.WithUnit("{call}"),
	)
	logMetricError(metricInflight, err)

	metricsInited = true
}

func ensureMeterInitialized() {
	meterOnce.Do(initMeter)
}

// RecordAttempt counts one physical attempt and how it ended. A zero status
// code (transport failure) is omitted from the attributes.
func RecordAttempt(ctx context.Context, call Call, outcome string, statusCode int) {
	ensureMeterInitialized()
	if attemptCounter == nil {
		return
	}

	attrs := append(call.attributes(), attribute.String(attrOutcome, outcome))
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int(attrStatusCode, statusCode))
	}
	attemptCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRetry counts one scheduled retry.
func RecordRetry(ctx context.Context, call Call, reason string) {
	ensureMeterInitialized()
	if retryCounter == nil {
		return
	}

	attrs := append(call.attributes(), attribute.String(attrRetryReason, reason))
	retryCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCall records the duration of a finished logical call. errorCode is
// empty on success.
func RecordCall(ctx context.Context, call Call, duration time.Duration, errorCode string) {
	ensureMeterInitialized()
	if callDuration == nil {
		return
	}

	attrs := call.attributes()
	if errorCode != "" {
		attrs = append(attrs, attribute.String(attrErrorCode, errorCode))
	}
	callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// TrackInflight increments the in-flight gauge and returns the matching decrement.
func TrackInflight(ctx context.Context, call Call) func() {
	ensureMeterInitialized()
	if inflightCounter == nil {
		return func() { /** no-op **/ }
	}

	opt := metric.WithAttributes(call.attributes()...)
	inflightCounter.Add(ctx, 1, opt)
	return func() {
		inflightCounter.Add(ctx, -1, opt)
	}
}

// IsInitialized returns true if client metrics have been initialized.
func IsInitialized() bool {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()
	return metricsInited
}

// ResetForTesting resets the metric state for testing purposes.
func ResetForTesting() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	meter = nil
	callDuration = nil
	attemptCounter = nil
	retryCounter = nil
	inflightCounter = nil
	metricsInited = false
	meterOnce = sync.Once{}
}
