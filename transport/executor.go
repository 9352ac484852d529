package transport

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/go-resty/resty/v2"

	"github.com/gaborage/go-xmlrpc/logger"
	"github.com/gaborage/go-xmlrpc/trace"
	"github.com/gaborage/go-xmlrpc/transport/internal/tracking"
)

const (
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
)

// Stats contains request execution statistics of one call.
type Stats struct {
	// AttemptsUsed is the number of attempts started, never more than Config.Attempts.
	AttemptsUsed int
	// Elapsed runs from the start of the first attempt to success or final
	// failure and includes backoff sleeps.
	Elapsed time.Duration
}

// Executor delivers serialized XML requests to the configured endpoint and
// returns the parsed response document, retrying failed attempts after a
// fixed backoff.
//
// An Executor serves one logical caller. Stats are per instance, so
// overlapping calls on the same Executor corrupt each other's statistics;
// use one Executor per concurrent caller. Executors may share an Environment.
type Executor struct {
	config       *Config
	env          *Environment
	logger       logger.Logger
	newRequestID func() string
	stats        Stats
}

// Builder assembles an Executor.
type Builder struct {
	config       *Config
	env          *Environment
	logger       logger.Logger
	newRequestID func() string
}

// NewBuilder starts an Executor with log as its logger. A nil logger
// disables logging.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{logger: log}
}

// WithConfig sets the configuration. The Executor keeps the pointer, so later
// changes to cfg apply to the next call.
func (b *Builder) WithConfig(cfg *Config) *Builder {
	b.config = cfg
	return b
}

// WithEnvironment sets the shared transport environment.
func (b *Builder) WithEnvironment(env *Environment) *Builder {
	b.env = env
	return b
}

// WithRequestIDGenerator sets the generator used when the call context
// carries no trace ID.
func (b *Builder) WithRequestIDGenerator(fn func() string) *Builder {
	b.newRequestID = fn
	return b
}

// Build creates the Executor, filling unset parts with NewConfig,
// DefaultEnvironment and a discarding logger.
func (b *Builder) Build() *Executor {
	cfg := b.config
	if cfg == nil {
		cfg = NewConfig()
	}
	env := b.env
	if env == nil {
		env = DefaultEnvironment()
	}
	var log logger.Logger = logger.Nop()
	if b.logger != nil {
		log = b.logger
	}
	return &Executor{
		config:       cfg,
		env:          env,
		logger:       log,
		newRequestID: b.newRequestID,
	}
}

// Config returns the configuration used by the next call.
func (e *Executor) Config() *Config { return e.config }

// Stats returns the statistics of the last call.
func (e *Executor) Stats() Stats { return e.stats }

// AttemptsUsed returns the number of attempts made by the last call.
func (e *Executor) AttemptsUsed() int { return e.stats.AttemptsUsed }

// Elapsed returns the duration of the last call.
func (e *Executor) Elapsed() time.Duration { return e.stats.Elapsed }

// SendDocument serializes doc and sends it with SendRequest. A nil doc is a
// ConfigurationError.
func (e *Executor) SendDocument(ctx context.Context, doc *xmlquery.Node) (*xmlquery.Node, error) {
	if doc == nil {
		return nil, NewConfigurationError("document must not be nil")
	}
	return e.SendRequest(ctx, doc.OutputXML(true))
}

// SendRequest posts payload to the configured endpoint and parses the
// response as XML.
//
// An empty base URL fails with a ConfigurationError before any I/O. Each
// attempt is bounded by Config.Timeout; a failed attempt is retried after
// Config.AttemptBackoff until Config.Attempts is reached, and only the last
// failure is returned, as a TimeoutFailure or a TransportFailure. Malformed
// XML and non-2xx statuses are retried like connection errors. Cancelling ctx
// stops the call at the next attempt or backoff.
func (e *Executor) SendRequest(ctx context.Context, payload string) (*xmlquery.Node, error) {
	if e.config.URL() == "" {
		return nil, NewConfigurationError("URL must not be empty")
	}
	endpoint := e.config.Endpoint()

	e.env.Apply(e.config.ConnectionLimit())
	client := e.newRestClient()

	method := e.config.RequestMethod()
	body := []byte(payload)
	requestID := e.requestID(ctx)

	redacted := redactURL(endpoint)
	e.logRequest(method, redacted, body, requestID)

	ctx, span := tracking.StartCall(ctx, method, redacted, len(body))
	doc, err := e.run(ctx, client, method, endpoint, body, requestID)

	errorType := ""
	var cerr ClientError
	if errors.As(err, &cerr) {
		errorType = cerr.Type().String()
	}
	tracking.EndCall(span, e.stats.AttemptsUsed, err, errorType)

	return doc, err
}

// run is the attempt loop of one call.
func (e *Executor) run(
	ctx context.Context,
	client *resty.Client,
	method, endpoint string,
	body []byte,
	requestID string,
) (*xmlquery.Node, error) {
	headers := trace.Headers(ctx, requestID)

	e.stats = Stats{}
	start := time.Now()

	for {
		e.stats.AttemptsUsed++

		doc, respBody, err := e.attempt(ctx, client, method, endpoint, body, headers)
		tracking.RecordAttempt(ctx, method, err)
		if err == nil {
			e.stats.Elapsed = time.Since(start)
			e.finish(ctx, method, "")
			e.logResponse(respBody, requestID)
			return doc, nil
		}

		if ctx.Err() != nil {
			return nil, e.fail(ctx, method, requestID, start, ctx.Err())
		}

		if e.stats.AttemptsUsed >= e.config.Attempts() {
			return nil, e.fail(ctx, method, requestID, start, err)
		}

		e.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Int("attempt", e.stats.AttemptsUsed).
			Int("max_attempts", e.config.Attempts()).
			Dur("backoff", e.config.AttemptBackoff()).
			Msg("XML-RPC attempt failed, backing off")

		if err := sleepContext(ctx, e.config.AttemptBackoff()); err != nil {
			return nil, e.fail(ctx, method, requestID, start, err)
		}
	}
}

// attempt performs one request/response exchange. The response body is
// returned for logging even when it fails to parse.
func (e *Executor) attempt(
	ctx context.Context,
	client *resty.Client,
	method, endpoint string,
	body []byte,
	headers map[string]string,
) (*xmlquery.Node, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(withProxy(ctx, e.config.Proxy()), e.config.Timeout())
	defer cancel()

	req := client.R().
		SetContext(attemptCtx).
		SetHeaders(headers).
		SetHeader(headerContentType, e.config.ContentType()).
		SetHeader(headerUserAgent, UserAgent(e.config.AppName())).
		SetBody(body)

	if auth := e.config.Credentials(); auth != nil {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, nil, err
	}

	respBody := resp.Body()
	if !resp.IsSuccess() {
		return nil, respBody, &StatusError{Code: resp.StatusCode(), Body: respBody}
	}

	doc, err := ParseDocument(respBody)
	if err != nil {
		return nil, respBody, err
	}
	return doc, respBody, nil
}

// fail records the final failure of a call and returns its classified error.
func (e *Executor) fail(ctx context.Context, method, requestID string, start time.Time, cause error) error {
	e.stats.Elapsed = time.Since(start)
	cerr := classify(cause, e.stats)

	e.finish(ctx, method, cerr.Type().String())
	e.logger.Error().
		Err(cause).
		Str("request_id", requestID).
		Str("error_type", cerr.Type().String()).
		Int("attempts", e.stats.AttemptsUsed).
		Dur("elapsed", e.stats.Elapsed).
		Msg("XML-RPC request failed")

	return cerr
}

func (e *Executor) finish(ctx context.Context, method, errorType string) {
	tracking.RecordCall(ctx, method, e.stats.Elapsed, errorType)
	logger.IncrementRPCCounter(ctx)
	logger.AddRPCElapsed(ctx, e.stats.Elapsed.Nanoseconds())
}

func (e *Executor) newRestClient() *resty.Client {
	return resty.NewWithClient(&http.Client{Transport: e.env.RoundTripper()}).
		SetLogger(restyLogger{log: e.logger}).
		SetCloseConnection(true).
		SetContentLength(true).
		SetAllowGetMethodPayload(true).
		SetRetryCount(0)
}

func (e *Executor) requestID(ctx context.Context) string {
	if id, ok := trace.IDFromContext(ctx); ok {
		return id
	}
	if e.newRequestID != nil {
		if id := e.newRequestID(); id != "" {
			return id
		}
	}
	return trace.EnsureTraceID(ctx)
}

// ParseDocument parses body as an XML document. Besides syntax errors it
// rejects, with ErrMalformedResponse, a body without exactly one root element,
// text outside the root element and elements repeating an attribute.
func ParseDocument(body []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &parseError{err: err}
	}
	if err := checkDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkDocument enforces the well-formedness rules xmlquery.Parse lets through.
func checkDocument(doc *xmlquery.Node) error {
	for n := doc.NextSibling; n != nil; n = n.NextSibling {
		if !isBlank(n) {
			return fmt.Errorf("%w: content before the root element", ErrMalformedResponse)
		}
	}

	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		switch {
		case n.Type == xmlquery.ElementNode && root != nil:
			return fmt.Errorf("%w: more than one root element", ErrMalformedResponse)
		case n.Type == xmlquery.ElementNode:
			root = n
		case !isBlank(n):
			return fmt.Errorf("%w: text outside the root element", ErrMalformedResponse)
		}
	}
	if root == nil {
		return ErrMalformedResponse
	}
	return checkAttributes(root)
}

func isBlank(n *xmlquery.Node) bool {
	switch n.Type {
	case xmlquery.TextNode:
		return strings.TrimSpace(n.Data) == ""
	case xmlquery.CharDataNode:
		return false
	default:
		return true
	}
}

func checkAttributes(n *xmlquery.Node) error {
	if len(n.Attr) > 1 {
		seen := make(map[xml.Name]struct{}, len(n.Attr))
		for _, a := range n.Attr {
			if _, dup := seen[a.Name]; dup {
				return fmt.Errorf("%w: attribute %q repeated on <%s>", ErrMalformedResponse, a.Name.Local, n.Data)
			}
			seen[a.Name] = struct{}{}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if err := checkAttributes(c); err != nil {
			return err
		}
	}
	return nil
}

// redactURL hides the password of a URL carrying user info.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// RootElement returns the document element of doc, or nil if there is none.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
