// Package tracking records OpenTelemetry metrics for transport calls.
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
	meterName = "go-xmlrpc/transport"

	metricAttempts     = "xmlrpc.client.attempts"      // Counter
	metricCallDuration = "xmlrpc.client.call.duration" // Histogram in seconds

	attrOutcome   = "outcome"
	attrMethod    = "http.request.method"
	attrErrorType = "error.type"

	// OutcomeSuccess and OutcomeFailure are the values of the outcome attribute.
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	transportMeter metric.Meter
	meterOnce      sync.Once
	meterInitMu    sync.Mutex

	attemptCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
)

func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize transport metric %s: %v\n", metricName, err)
	}
}

func initMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if transportMeter != nil {
		return
	}

	transportMeter = otel.Meter(meterName)

	var err error
	attemptCounter, err = transportMeter.Int64Counter(
		metricAttempts,
		metric.WithDescription("Number of request attempts sent to the remote endpoint"),
		metric.WithUnit("{attempt}"),
	)
	logMetricError(metricAttempts, err)

	durationHistogram, err = transportMeter.Float64Histogram(
		metricCallDuration,
		metric.WithDescription("Duration of transport calls including retries and backoff"),
		metric.WithUnit("s"),
	)
	logMetricError(metricCallDuration, err)
}

func ensureMeterInitialized() {
	meterOnce.Do(initMeter)
}

// RecordAttempt counts one attempt with its outcome.
func RecordAttempt(ctx context.Context, method string, err error) {
	ensureMeterInitialized()
	if attemptCounter == nil {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	attemptCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordCall records the duration of a finished call. errorType is empty on
// success and names the failure class otherwise.
func RecordCall(ctx context.Context, method string, duration time.Duration, errorType string) {
	ensureMeterInitialized()
	if durationHistogram == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String(attrMethod, method)}
	if errorType != "" {
		attrs = append(attrs, attribute.String(attrErrorType, errorType))
	}
	durationHistogram.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// ResetForTesting resets the metric state for testing purposes.
func ResetForTesting() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	transportMeter = nil
	attemptCounter = nil
	durationHistogram = nil
	meterOnce = sync.Once{}
}
