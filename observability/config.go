package observability

import (
	"io"
	"strings"
	"time"
)

const (
	// EndpointStdout is a special endpoint value that writes telemetry to Config.Writer.
	EndpointStdout = "stdout"

	// ProtocolHTTP selects OTLP over HTTP.
	ProtocolHTTP = "http"

	// ProtocolGRPC selects OTLP over gRPC.
	ProtocolGRPC = "grpc"

	defaultServiceName    = "xmlrpc-send"
	defaultSampleRate     = 1.0
	defaultMetricInterval = 30 * time.Second
)

// Config controls the OpenTelemetry providers installed for transport spans
// and metrics. Traces and metrics share endpoint and protocol.
type Config struct {
	// Enabled turns telemetry export on. When false NewProvider returns a no-op provider.
	Enabled bool `koanf:"enabled" mapstructure:"enabled"`

	Service ServiceConfig `koanf:"service" mapstructure:"service"`

	// Endpoint is "stdout", an OTLP/HTTP URL (http://collector:4318) or an
	// OTLP/gRPC address (collector:4317).
	Endpoint string `koanf:"endpoint" mapstructure:"endpoint"`

	// Protocol is "http" or "grpc". Ignored for the stdout endpoint.
	Protocol string `koanf:"protocol" mapstructure:"protocol"`

	// Insecure disables TLS towards the collector.
	Insecure bool `koanf:"insecure" mapstructure:"insecure"`

	// Headers are sent with every export, e.g. for collector authentication.
	Headers map[string]string `koanf:"headers" mapstructure:"headers"`

	// SampleRate is the fraction of calls traced, 0 selects 1.0.
	SampleRate float64 `koanf:"samplerate" mapstructure:"samplerate"`

	// Interval is the metric export interval.
	Interval time.Duration `koanf:"interval" mapstructure:"interval"`

	// Writer receives stdout telemetry. Defaults to os.Stdout.
	Writer io.Writer `koanf:"-" mapstructure:"-"`
}

// ServiceConfig identifies the process in exported telemetry.
type ServiceConfig struct {
	Name    string `koanf:"name" mapstructure:"name"`
	Version string `koanf:"version" mapstructure:"version"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Endpoint == "" {
		c.Endpoint = EndpointStdout
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolHTTP
	}
	if c.SampleRate == 0 {
		c.SampleRate = defaultSampleRate
	}
	if c.Interval <= 0 {
		c.Interval = defaultMetricInterval
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	if !c.Enabled {
		return nil
	}

	if c.Service.Name == "" {
		return ErrMissingServiceName
	}

	if c.SampleRate < 0 || c.SampleRate > 1 {
		return ErrInvalidSampleRate
	}

	if c.Endpoint == EndpointStdout || c.Endpoint == "" {
		return nil
	}

	switch c.Protocol {
	case ProtocolHTTP, ProtocolGRPC:
	default:
		return ErrInvalidProtocol
	}

	return validateEndpointFormat(c.Endpoint, c.Protocol)
}

// validateEndpointFormat checks that the endpoint format matches the protocol.
func validateEndpointFormat(endpoint, protocol string) error {
	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")

	if protocol == ProtocolGRPC && hasScheme {
		return ErrInvalidEndpointFormat
	}

	if protocol == ProtocolHTTP && !hasScheme {
		return ErrInvalidEndpointFormat
	}

	return nil
}
