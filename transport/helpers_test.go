package transport

import (
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/gaborage/go-xmlrpc/internal/testutil"
	"github.com/gaborage/go-xmlrpc/logger"
)

const (
	testPayload  = testutil.TestMethodCall
	testResponse = testutil.TestMethodResponse
	testBaseURL  = "http://host/api"
)

// fakeLogEvent implements logger.LogEvent for testing
type fakeLogEvent struct {
	logger *fakeLogger
	level  string
	fields map[string]any
}

func (e *fakeLogEvent) Msg(msg string) {
	e.logger.mu.Lock()
	defer e.logger.mu.Unlock()
	e.logger.events = append(e.logger.events, loggedEvent{
		level:   e.level,
		fields:  maps.Clone(e.fields),
		message: msg,
	})
}

func (e *fakeLogEvent) Msgf(format string, _ ...any) { e.Msg(format) }

func (e *fakeLogEvent) Err(err error) logger.LogEvent {
	e.fields["error"] = err
	return e
}

func (e *fakeLogEvent) Str(key, value string) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Int(key string, value int) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Int64(key string, value int64) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Dur(key string, d time.Duration) logger.LogEvent {
	e.fields[key] = d
	return e
}

func (e *fakeLogEvent) Interface(key string, i any) logger.LogEvent {
	e.fields[key] = i
	return e
}

func (e *fakeLogEvent) Bytes(key string, val []byte) logger.LogEvent {
	e.fields[key] = val
	return e
}

// fakeLogger implements logger.Logger for testing
type fakeLogger struct {
	mu     sync.Mutex
	events []loggedEvent
}

type loggedEvent struct {
	level   string
	fields  map[string]any
	message string
}

func (l *fakeLogger) event(level string) logger.LogEvent {
	return &fakeLogEvent{logger: l, level: level, fields: make(map[string]any)}
}

func (l *fakeLogger) Info() logger.LogEvent  { return l.event("info") }
func (l *fakeLogger) Error() logger.LogEvent { return l.event("error") }
func (l *fakeLogger) Debug() logger.LogEvent { return l.event("debug") }
func (l *fakeLogger) Warn() logger.LogEvent  { return l.event("warn") }

func (l *fakeLogger) WithContext(_ any) logger.Logger              { return l }
func (l *fakeLogger) WithFields(_ map[string]any) logger.Logger { return l }

func (l *fakeLogger) eventsByLevel(level string) []loggedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var events []loggedEvent
	for _, event := range l.events {
		if event.level == level {
			events = append(events, event)
		}
	}
	return events
}

// newTestExecutor builds an executor against url with its own environment,
// no proxy and a short timeout.
func newTestExecutor(t *testing.T, url string, log logger.Logger, mutate func(*Config)) *Executor {
	t.Helper()
	cfg := NewConfig()
	cfg.SetURL(url)
	cfg.SetProxy(nil)
	cfg.SetTimeout(2 * time.Second)
	cfg.SetAttemptBackoff(10 * time.Millisecond)
	if mutate != nil {
		mutate(cfg)
	}

	env := NewEnvironment()
	t.Cleanup(env.Close)

	return NewBuilder(log).WithConfig(cfg).WithEnvironment(env).Build()
}
