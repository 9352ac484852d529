package transport

import (
	"net/http"
	"net/url"
	"time"
)

// Defaults applied by NewConfig and by the setters when given an invalid value.
const (
	DefaultContentType     = "text/xml; charset=UTF-8"
	DefaultRequestMethod   = http.MethodPost
	DefaultTimeout         = 5000 * time.Millisecond
	DefaultAttempts        = 1
	DefaultAttemptBackoff  = 500 * time.Millisecond
	DefaultConnectionLimit = 2
)

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// ProxyFunc selects the proxy for a request, as http.Transport.Proxy does.
// A nil ProxyFunc means a direct connection.
type ProxyFunc func(*http.Request) (*url.URL, error)

// Config holds the tunables of an Executor.
//
// Setters never fail: a timeout, attempt count, backoff or connection limit
// that is zero or negative is replaced by its default, and an empty content
// type or method falls back to the default. Misconfiguration is therefore
// absorbed silently and getters always return a usable value.
//
// A Config is not safe for concurrent mutation.
type Config struct {
	timeout         time.Duration
	attempts        int
	attemptBackoff  time.Duration
	connectionLimit int
	appName         string

	url         string
	path        *string
	contentType string
	method      string
	proxy       ProxyFunc
	credentials *BasicAuth

	// LogPayloads enables debug-level logging of request and response bodies
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
}

// NewConfig returns a Config populated with the package defaults, an empty
// URL, no path, no credentials and the proxy taken from the environment.
func NewConfig() *Config {
	c := &Config{
		proxy:              http.ProxyFromEnvironment,
		MaxPayloadLogBytes: defaultMaxPayloadLogBytes,
	}
	c.SetTimeout(DefaultTimeout)
	c.SetAttempts(DefaultAttempts)
	c.SetAttemptBackoff(DefaultAttemptBackoff)
	c.SetConnectionLimit(DefaultConnectionLimit)
	c.SetContentType(DefaultContentType)
	c.SetRequestMethod(DefaultRequestMethod)
	c.SetAppName("")
	return c
}

// Timeout is the per-attempt network timeout.
func (c *Config) Timeout() time.Duration { return c.timeout }

func (c *Config) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.timeout = d
}

// Attempts is the maximum number of attempts per call.
func (c *Config) Attempts() int { return c.attempts }

func (c *Config) SetAttempts(n int) {
	if n <= 0 {
		n = DefaultAttempts
	}
	c.attempts = n
}

// AttemptBackoff is the sleep between a failed attempt and the next one.
func (c *Config) AttemptBackoff() time.Duration { return c.attemptBackoff }

// SetAttemptBackoff sets the inter-attempt sleep. An invalid value resets it
// to DefaultTimeout, not DefaultAttemptBackoff; existing callers rely on that.
func (c *Config) SetAttemptBackoff(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.attemptBackoff = d
}

// ConnectionLimit is the maximum number of simultaneous connections per host
// the shared Environment may open.
func (c *Config) ConnectionLimit() int { return c.connectionLimit }

func (c *Config) SetConnectionLimit(n int) {
	if n <= 0 {
		n = DefaultConnectionLimit
	}
	c.connectionLimit = n
}

// AppName is appended to the User-Agent header.
func (c *Config) AppName() string { return c.appName }

func (c *Config) SetAppName(name string) { c.appName = name }

// URL is the base endpoint.
func (c *Config) URL() string { return c.url }

func (c *Config) SetURL(u string) { c.url = u }

// Path returns the optional sub-path and whether one is set.
func (c *Config) Path() (string, bool) {
	if c.path == nil {
		return "", false
	}
	return *c.path, true
}

// SetPath sets the sub-path joined to URL. An empty string is a valid path
// and still produces a trailing slash; use ClearPath to target URL as is.
func (c *Config) SetPath(p string) { c.path = &p }

func (c *Config) ClearPath() { c.path = nil }

// Endpoint is the resolved request URL.
func (c *Config) Endpoint() string { return Resolve(c.url, c.path) }

func (c *Config) ContentType() string { return c.contentType }

func (c *Config) SetContentType(ct string) {
	if ct == "" {
		ct = DefaultContentType
	}
	c.contentType = ct
}

func (c *Config) RequestMethod() string { return c.method }

func (c *Config) SetRequestMethod(m string) {
	if m == "" {
		m = DefaultRequestMethod
	}
	c.method = m
}

// Proxy returns the proxy selector, nil for direct connections.
func (c *Config) Proxy() ProxyFunc { return c.proxy }

func (c *Config) SetProxy(p ProxyFunc) { c.proxy = p }

// SetProxyURL routes every request through the fixed proxy u.
func (c *Config) SetProxyURL(u *url.URL) {
	if u == nil {
		c.proxy = nil
		return
	}
	c.proxy = http.ProxyURL(u)
}

// Credentials returns the basic auth credentials, nil when none are set.
func (c *Config) Credentials() *BasicAuth { return c.credentials }

func (c *Config) SetCredentials(auth *BasicAuth) { c.credentials = auth }

// Clone returns a copy that can be mutated independently.
func (c *Config) Clone() *Config {
	cp := *c
	if c.path != nil {
		p := *c.path
		cp.path = &p
	}
	if c.credentials != nil {
		auth := *c.credentials
		cp.credentials = &auth
	}
	return &cp
}
