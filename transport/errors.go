package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorType classifies the errors returned by an Executor.
type ErrorType int

const (
	// ConfigurationError means the call was rejected before any network I/O.
	ConfigurationError ErrorType = iota
	// TimeoutFailure means the last attempt did not finish within the per-attempt timeout.
	TimeoutFailure
	// TransportFailure is any other failure of the last attempt, including
	// non-2xx responses and bodies that are not well-formed XML.
	TransportFailure
)

func (t ErrorType) String() string {
	switch t {
	case ConfigurationError:
		return "configuration"
	case TimeoutFailure:
		return "timeout"
	case TransportFailure:
		return "transport"
	default:
		return "unknown"
	}
}

// ErrMalformedResponse is the cause of a TransportFailure when the response
// body parsed without error but is not a single well-formed document.
var ErrMalformedResponse = errors.New("response is not an XML document")

// ClientError is implemented by every error an Executor returns.
type ClientError interface {
	error
	Type() ErrorType
}

type configurationError struct {
	message string
}

// NewConfigurationError creates the error returned when the endpoint is unusable.
func NewConfigurationError(message string) ClientError {
	return &configurationError{message: message}
}

func (e *configurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.message)
}

func (e *configurationError) Type() ErrorType { return ConfigurationError }

// callError is the failure of a call whose attempts are exhausted.
type callError struct {
	kind    ErrorType
	message string
	err     error
	stats   Stats
}

// NewTimeoutFailure creates a TimeoutFailure wrapping the last attempt's error.
func NewTimeoutFailure(message string, err error, stats Stats) ClientError {
	return &callError{kind: TimeoutFailure, message: message, err: err, stats: stats}
}

// NewTransportFailure creates a TransportFailure wrapping the last attempt's error.
func NewTransportFailure(message string, err error, stats Stats) ClientError {
	return &callError{kind: TransportFailure, message: message, err: err, stats: stats}
}

func (e *callError) Error() string {
	prefix := "transport error"
	if e.kind == TimeoutFailure {
		prefix = "timeout error"
	}
	msg := fmt.Sprintf("%s: %s (attempts: %d, elapsed: %s)", prefix, e.message, e.stats.AttemptsUsed, e.stats.Elapsed)
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

func (e *callError) Type() ErrorType { return e.kind }

func (e *callError) Unwrap() error { return e.err }

// Stats reports the attempts made and time spent before the call failed.
func (e *callError) Stats() Stats { return e.stats }

// StatusError is the cause recorded when the server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}

// IsErrorType reports whether err is a ClientError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var ce ClientError
	if errors.As(err, &ce) {
		return ce.Type() == errorType
	}
	return false
}

// IsTimeout reports whether err is a TimeoutFailure.
func IsTimeout(err error) bool { return IsErrorType(err, TimeoutFailure) }

// IsTransport reports whether err is a TransportFailure.
func IsTransport(err error) bool { return IsErrorType(err, TransportFailure) }

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool { return IsErrorType(err, ConfigurationError) }

// IsMalformedResponse reports whether err was caused by a response body that
// could not be parsed as XML.
func IsMalformedResponse(err error) bool {
	if errors.Is(err, ErrMalformedResponse) {
		return true
	}
	var pe *parseError
	return errors.As(err, &pe)
}

// StatsOf returns the call statistics carried by err, if any.
func StatsOf(err error) (Stats, bool) {
	var ce *callError
	if errors.As(err, &ce) {
		return ce.stats, true
	}
	return Stats{}, false
}

// parseError marks an XML parse failure of the response body.
type parseError struct {
	err error
}

func (e *parseError) Error() string { return "malformed XML response: " + e.err.Error() }

func (e *parseError) Unwrap() error { return e.err }

// isTimeout reports whether an attempt error was caused by a deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classify turns the last attempt's error into the error returned to the caller.
func classify(err error, stats Stats) ClientError {
	if isTimeout(err) {
		return NewTimeoutFailure("operation has expired", err, stats)
	}
	return NewTransportFailure("error sending request", err, stats)
}
