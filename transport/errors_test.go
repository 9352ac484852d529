package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

var _ net.Error = timeoutNetError{}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "configuration", ConfigurationError.String())
	assert.Equal(t, "timeout", TimeoutFailure.String())
	assert.Equal(t, "transport", TransportFailure.String())
	assert.Equal(t, "unknown", ErrorType(42).String())
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := NewConfigurationError("URL must not be empty")
	assert.Equal(t, "configuration error: URL must not be empty", err.Error())
	assert.Equal(t, ConfigurationError, err.Type())

	_, ok := StatsOf(err)
	assert.False(t, ok)
}

func TestCallErrorMessage(t *testing.T) {
	stats := Stats{AttemptsUsed: 3, Elapsed: 1500 * time.Millisecond}
	cause := errors.New("connection refused")

	err := NewTransportFailure("error sending request", cause, stats)
	assert.Equal(t, "transport error: error sending request (attempts: 3, elapsed: 1.5s): connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	timeout := NewTimeoutFailure("operation has expired", nil, stats)
	assert.Equal(t, "timeout error: operation has expired (attempts: 3, elapsed: 1.5s)", timeout.Error())
}

func TestIsErrorType(t *testing.T) {
	stats := Stats{AttemptsUsed: 1}
	timeout := NewTimeoutFailure("operation has expired", context.DeadlineExceeded, stats)
	wrapped := fmt.Errorf("calling erp: %w", timeout)

	assert.False(t, IsErrorType(nil, TimeoutFailure))
	assert.False(t, IsErrorType(errors.New("plain"), TransportFailure))
	assert.True(t, IsTimeout(wrapped))
	assert.False(t, IsTransport(wrapped))
	assert.False(t, IsConfiguration(wrapped))

	got, ok := StatsOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, stats, got)
}

func TestIsMalformedResponse(t *testing.T) {
	stats := Stats{AttemptsUsed: 1}

	assert.True(t, IsMalformedResponse(NewTransportFailure("error sending request", ErrMalformedResponse, stats)))
	assert.True(t, IsMalformedResponse(NewTransportFailure("error sending request", &parseError{err: errors.New("EOF")}, stats)))
	assert.False(t, IsMalformedResponse(NewTransportFailure("error sending request", &StatusError{Code: 500}, stats)))
	assert.False(t, IsMalformedResponse(nil))
}

func TestClassify(t *testing.T) {
	stats := Stats{AttemptsUsed: 2}

	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{name: "deadline", err: context.DeadlineExceeded, expected: TimeoutFailure},
		{name: "wrapped deadline", err: fmt.Errorf("post: %w", context.DeadlineExceeded), expected: TimeoutFailure},
		{name: "net timeout", err: &net.OpError{Op: "read", Err: timeoutNetError{}}, expected: TimeoutFailure},
		{name: "canceled", err: context.Canceled, expected: TransportFailure},
		{name: "status", err: &StatusError{Code: 502}, expected: TransportFailure},
		{name: "malformed", err: ErrMalformedResponse, expected: TransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, stats)
			assert.Equal(t, tt.expected, got.Type())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Code: 503, Body: []byte("busy")}
	assert.Equal(t, "unexpected HTTP status 503", err.Error())
}
