package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	dialTimeout         = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// Environment is the connection machinery shared by every Executor that
// holds it: one http.Transport, its connection limit, and the TLS and
// handshake settings applied to all requests.
//
// Every request sent through an Environment skips TLS certificate
// verification. Keep-alive and the "Expect: 100-continue" handshake are
// disabled.
//
// Executors call Apply with their configured connection limit before each
// call. When executors sharing an Environment disagree on the limit, the last
// call wins for everyone. Environment is safe for concurrent use.
type Environment struct {
	mu              sync.Mutex
	connectionLimit int
	transport       *http.Transport
}

var (
	defaultEnv     *Environment
	defaultEnvOnce sync.Once
)

// DefaultEnvironment returns the process-wide Environment used by executors
// that were not given one explicitly.
func DefaultEnvironment() *Environment {
	defaultEnvOnce.Do(func() {
		defaultEnv = NewEnvironment()
	})
	return defaultEnv
}

// NewEnvironment creates an Environment with DefaultConnectionLimit.
func NewEnvironment() *Environment {
	return &Environment{
		connectionLimit: DefaultConnectionLimit,
		transport:       newHTTPTransport(DefaultConnectionLimit),
	}
}

// Apply sets the per-host connection limit. A changed limit replaces the
// transport; requests already in flight finish on the old one.
func (e *Environment) Apply(connectionLimit int) {
	if connectionLimit <= 0 {
		connectionLimit = DefaultConnectionLimit
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if connectionLimit == e.connectionLimit {
		return
	}
	old := e.transport
	e.transport = newHTTPTransport(connectionLimit)
	e.connectionLimit = connectionLimit
	old.CloseIdleConnections()
}

// ConnectionLimit returns the limit currently in force.
func (e *Environment) ConnectionLimit() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectionLimit
}

// RoundTripper returns the transport currently in force.
func (e *Environment) RoundTripper() http.RoundTripper {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transport
}

// Close releases idle connections.
func (e *Environment) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transport.CloseIdleConnections()
}

func newHTTPTransport(connectionLimit int) *http.Transport {
	dialer := &net.Dialer{Timeout: dialTimeout}
	return &http.Transport{
		Proxy:       proxyFromContext,
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // certificate trust is not checked by this transport
		},
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		DisableKeepAlives:     true,
		MaxConnsPerHost:       connectionLimit,
		ExpectContinueTimeout: 0,
	}
}

type proxyKey struct{}

// proxySelection distinguishes "no proxy configured" (nil fn) from "no
// selection in context".
type proxySelection struct {
	fn ProxyFunc
}

func withProxy(ctx context.Context, fn ProxyFunc) context.Context {
	return context.WithValue(ctx, proxyKey{}, proxySelection{fn: fn})
}

// proxyFromContext lets executors sharing one transport use different proxies.
func proxyFromContext(req *http.Request) (*url.URL, error) {
	sel, ok := req.Context().Value(proxyKey{}).(proxySelection)
	if !ok {
		return http.ProxyFromEnvironment(req)
	}
	if sel.fn == nil {
		return nil, nil
	}
	return sel.fn(req)
}
