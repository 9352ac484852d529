package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-xmlrpc/observability"
	"github.com/gaborage/go-xmlrpc/transport"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "xmlrpc.yaml"
	// EnvPrefix marks the environment variables that override file values,
	// e.g. XMLRPC_TRANSPORT_URL sets transport.url.
	EnvPrefix = "XMLRPC_"
)

type loadOptions struct {
	file     string
	explicit bool
	inline   []byte
	env      bool
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithFile reads path instead of DefaultFile. Unlike the default file, a
// missing path is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path == "" {
			return
		}
		o.file = path
		o.explicit = true
	}
}

// WithYAML layers data over the configuration file, below environment variables.
func WithYAML(data []byte) LoadOption {
	return func(o *loadOptions) {
		o.inline = data
	}
}

// WithoutEnv skips environment variables.
func WithoutEnv() LoadOption {
	return func(o *loadOptions) {
		o.env = false
	}
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Inline YAML given with WithYAML
// 3. YAML configuration file
// 4. Default values (lowest priority)
func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{file: DefaultFile, env: true}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadFile(k, o.file, o.explicit); err != nil {
		return nil, err
	}

	if len(o.inline) > 0 {
		if err := k.Load(rawbytes.Provider(o.inline), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse inline configuration: %w", err)
		}
	}

	if o.env {
		if err := k.Load(envprovider.Provider(".", envprovider.Opt{
			Prefix: EnvPrefix,
			TransformFunc: func(key, value string) (string, any) {
				return envKey(key), value
			},
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"transport.url":         "",
		"transport.timeout":     transport.DefaultTimeout.String(),
		"transport.attempts":    transport.DefaultAttempts,
		"transport.backoff":     transport.DefaultAttemptBackoff.String(),
		"transport.connlimit":   transport.DefaultConnectionLimit,
		"transport.appname":     "",
		"transport.contenttype": transport.DefaultContentType,
		"transport.method":      transport.DefaultRequestMethod,
		"transport.proxy":       "",
		"transport.logpayloads": false,

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":      false,
		"observability.service.name": "xmlrpc-send",
		"observability.endpoint":     observability.EndpointStdout,
		"observability.protocol":     observability.ProtocolHTTP,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	if !required {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envKey converts XMLRPC_TRANSPORT_URL to transport.url.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}
