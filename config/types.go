package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/gaborage/go-xmlrpc/observability"
	"github.com/gaborage/go-xmlrpc/transport"
)

// ProxyDirect disables proxying, including proxies set in the environment.
const ProxyDirect = "direct"

// Config represents the overall configuration structure.
type Config struct {
	Transport TransportConfig `koanf:"transport" json:"transport" yaml:"transport" mapstructure:"transport"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`

	Observability observability.Config `koanf:"observability" json:"-" yaml:"observability" mapstructure:"observability"`

	// k holds the underlying Koanf instance for access to keys outside the struct
	k *koanf.Koanf `json:"-" yaml:"-" mapstructure:"-"`
}

// TransportConfig holds the settings of an XML-RPC executor.
// Zero or negative numbers are not rejected; Build hands them to the
// transport setters, which replace them with defaults.
type TransportConfig struct {
	URL         string        `koanf:"url" json:"url" yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Path        *string       `koanf:"path" json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	Timeout     time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Attempts    int           `koanf:"attempts" json:"attempts" yaml:"attempts" mapstructure:"attempts"`
	Backoff     time.Duration `koanf:"backoff" json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	ConnLimit   int           `koanf:"connlimit" json:"connlimit" yaml:"connlimit" mapstructure:"connlimit"`
	AppName     string        `koanf:"appname" json:"appname" yaml:"appname" mapstructure:"appname"`
	ContentType string        `koanf:"contenttype" json:"contenttype" yaml:"contenttype" mapstructure:"contenttype"`
	Method      string        `koanf:"method" json:"method" yaml:"method" mapstructure:"method" validate:"omitempty,http_method"`

	// Proxy is empty for the environment's proxy, ProxyDirect, or a proxy URL.
	Proxy       string `koanf:"proxy" json:"proxy" yaml:"proxy" mapstructure:"proxy" validate:"omitempty,proxy"`
	Username    string `koanf:"username" json:"username" yaml:"username" mapstructure:"username"`
	Password    string `koanf:"password" json:"-" yaml:"password" mapstructure:"password"`
	LogPayloads bool   `koanf:"logpayloads" json:"logpayloads" yaml:"logpayloads" mapstructure:"logpayloads"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// Build creates a transport.Config from the loaded values.
func (t *TransportConfig) Build() (*transport.Config, error) {
	cfg := transport.NewConfig()
	cfg.SetURL(t.URL)
	if t.Path != nil {
		cfg.SetPath(*t.Path)
	}
	cfg.SetTimeout(t.Timeout)
	cfg.SetAttempts(t.Attempts)
	cfg.SetAttemptBackoff(t.Backoff)
	cfg.SetConnectionLimit(t.ConnLimit)
	cfg.SetAppName(t.AppName)
	cfg.SetContentType(t.ContentType)
	cfg.SetRequestMethod(strings.ToUpper(t.Method))
	cfg.LogPayloads = t.LogPayloads

	switch {
	case t.Proxy == "":
	case strings.EqualFold(t.Proxy, ProxyDirect):
		cfg.SetProxy(nil)
	default:
		u, err := url.Parse(t.Proxy)
		if err != nil {
			return nil, NewInvalidFieldError("transport.proxy", fmt.Sprintf("cannot parse %q", t.Proxy), nil)
		}
		cfg.SetProxyURL(u)
	}

	if t.Username != "" || t.Password != "" {
		cfg.SetCredentials(&transport.BasicAuth{Username: t.Username, Password: t.Password})
	}

	return cfg, nil
}
