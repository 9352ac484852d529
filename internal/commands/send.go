package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gaborage/go-xmlrpc/config"
	"github.com/gaborage/go-xmlrpc/logger"
	"github.com/gaborage/go-xmlrpc/observability"
	"github.com/gaborage/go-xmlrpc/trace"
	"github.com/gaborage/go-xmlrpc/transport"
)

const shutdownTimeout = 5 * time.Second

// SendOptions holds options for the send command
type SendOptions struct {
	ConfigFile string
	URL        string
	Path       string
	Attempts   int
	Timeout    time.Duration
	Backoff    time.Duration
	AppName    string
	File       string
	Call       string
	Params     []string
	XPath      string
	RequestID  string
}

// NewSendCommand creates the send command
func NewSendCommand() *cobra.Command {
	opts := &SendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an XML-RPC request",
		Long: `Posts an XML-RPC document to the configured endpoint and prints the response.

The request is read from --file (use - for stdin) or built from --call and
--param. Flags override xmlrpc.yaml and XMLRPC_* environment variables.
Set XMLRPC_OBSERVABILITY_ENABLED=true to export the call span and metrics.`,
		Example: `  # Ask an Odoo server for its version
  xmlrpc-send send --url http://erp:8069/xmlrpc/2 --path common --call version

  # Send a prepared document with three attempts
  xmlrpc-send send --file login.xml --attempts 3 --backoff 1s

  # Print only the matching values
  xmlrpc-send send --call version --xpath //member[name='server_version']/value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file (default xmlrpc.yaml if present)")
	cmd.Flags().StringVarP(&opts.URL, "url", "u", "", "Endpoint base URL")
	cmd.Flags().StringVarP(&opts.Path, "path", "p", "", "Path appended to the base URL")
	cmd.Flags().IntVarP(&opts.Attempts, "attempts", "a", 0, "Maximum number of attempts")
	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 0, "Timeout of each attempt")
	cmd.Flags().DurationVarP(&opts.Backoff, "backoff", "b", 0, "Wait between attempts")
	cmd.Flags().StringVar(&opts.AppName, "app-name", "", "Application name appended to the User-Agent")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Request document, - for stdin")
	cmd.Flags().StringVar(&opts.Call, "call", "", "Method name of a generated request")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "String parameter of a generated request (repeatable)")
	cmd.Flags().StringVarP(&opts.XPath, "xpath", "x", "", "Print the text of response nodes matching this XPath")
	cmd.Flags().StringVar(&opts.RequestID, "request-id", "", "X-Request-ID sent with every attempt")

	return cmd
}

func runSend(cmd *cobra.Command, opts *SendOptions) error {
	if err := validateSendOptions(opts); err != nil {
		return err
	}

	cfg, err := config.Load(config.WithFile(opts.ConfigFile))
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, &cfg.Transport)
	if cfg.Transport.URL == "" {
		return config.NewMissingFieldError("transport.url")
	}

	tcfg, err := cfg.Transport.Build()
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr(), cfg.Log)

	obsCfg := cfg.Observability
	obsCfg.Writer = cmd.ErrOrStderr()
	provider, err := observability.NewProvider(&obsCfg)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	defer func() {
		if err := observability.Shutdown(provider, shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	exec := transport.NewBuilder(log).WithConfig(tcfg).Build()

	ctx := cmd.Context()
	if opts.RequestID != "" {
		ctx = trace.WithTraceID(ctx, opts.RequestID)
	}

	var doc *xmlquery.Node
	if opts.Call != "" {
		doc, err = exec.SendDocument(ctx, buildMethodCall(opts.Call, opts.Params))
	} else {
		var payload string
		if payload, err = readPayload(opts.File, cmd.InOrStdin()); err != nil {
			return err
		}
		doc, err = exec.SendRequest(ctx, payload)
	}

	stats := exec.Stats()
	fmt.Fprintf(cmd.ErrOrStderr(), "attempts: %d, elapsed: %s\n", stats.AttemptsUsed, stats.Elapsed.Round(time.Millisecond))
	if err != nil {
		return describeError(err)
	}

	if f, ok := findFault(doc); ok {
		return fmt.Errorf("server returned fault %s: %s", f.Code, f.String)
	}

	return printResponse(cmd.OutOrStdout(), doc, opts.XPath)
}

func validateSendOptions(opts *SendOptions) error {
	switch {
	case opts.File == "" && opts.Call == "":
		return errors.New("either --file or --call is required")
	case opts.File != "" && opts.Call != "":
		return errors.New("--file and --call are mutually exclusive")
	case opts.Call == "" && len(opts.Params) > 0:
		return errors.New("--param requires --call")
	}
	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, opts *SendOptions, t *config.TransportConfig) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		t.URL = opts.URL
	}
	if flags.Changed("path") {
		p := opts.Path
		t.Path = &p
	}
	if flags.Changed("attempts") {
		t.Attempts = opts.Attempts
	}
	if flags.Changed("timeout") {
		t.Timeout = opts.Timeout
	}
	if flags.Changed("backoff") {
		t.Backoff = opts.Backoff
	}
	if flags.Changed("app-name") {
		t.AppName = opts.AppName
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) logger.Logger {
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return logger.NewWithWriter(w, cfg.Level, nil)
}

// describeError prefixes err with a message telling the user what went wrong.
func describeError(err error) error {
	var statusErr *transport.StatusError
	switch {
	case transport.IsConfiguration(err):
		return fmt.Errorf("invalid configuration: %w", err)
	case transport.IsTimeout(err):
		return fmt.Errorf("operation expired: %w", err)
	case transport.IsMalformedResponse(err):
		return fmt.Errorf("malformed response: %w", err)
	case errors.As(err, &statusErr):
		return fmt.Errorf("server answered HTTP %d: %w", statusErr.Code, err)
	default:
		return fmt.Errorf("could not reach server: %w", err)
	}
}

func printResponse(w io.Writer, doc *xmlquery.Node, expr string) error {
	if expr == "" {
		_, err := fmt.Fprintln(w, doc.OutputXML(true))
		return err
	}

	nodes, err := xmlquery.QueryAll(doc, expr)
	if err != nil {
		return fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	for _, n := range nodes {
		if _, err := fmt.Fprintln(w, strings.TrimSpace(n.InnerText())); err != nil {
			return err
		}
	}
	return nil
}
