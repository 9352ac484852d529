package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Enabled: true}
	cfg.ApplyDefaults()

	assert.Equal(t, "xmlrpc-send", cfg.Service.Name)
	assert.Equal(t, "unknown", cfg.Service.Version)
	assert.Equal(t, EndpointStdout, cfg.Endpoint)
	assert.Equal(t, ProtocolHTTP, cfg.Protocol)
	assert.InDelta(t, 1.0, cfg.SampleRate, 0)
	assert.Equal(t, 30*time.Second, cfg.Interval)
}

func TestApplyDefaultsKeepsValues(t *testing.T) {
	cfg := &Config{
		Service:    ServiceConfig{Name: "scanner", Version: "1.2.0"},
		Endpoint:   "collector:4317",
		Protocol:   ProtocolGRPC,
		SampleRate: 0.25,
		Interval:   time.Second,
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "scanner", cfg.Service.Name)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.InDelta(t, 0.25, cfg.SampleRate, 0)
	assert.Equal(t, time.Second, cfg.Interval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "nil", cfg: nil, wantErr: ErrNilConfig},
		{name: "disabled", cfg: &Config{Protocol: "carrier-pigeon"}},
		{name: "stdout", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, Endpoint: EndpointStdout, SampleRate: 1}},
		{name: "missing_service", cfg: &Config{Enabled: true}, wantErr: ErrMissingServiceName},
		{name: "sample_rate", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, SampleRate: 1.5}, wantErr: ErrInvalidSampleRate},
		{name: "protocol", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, Endpoint: "collector:4317", Protocol: "udp"}, wantErr: ErrInvalidProtocol},
		{name: "grpc_with_scheme", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, Endpoint: "http://collector:4317", Protocol: ProtocolGRPC}, wantErr: ErrInvalidEndpointFormat},
		{name: "http_without_scheme", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, Endpoint: "collector:4318", Protocol: ProtocolHTTP}, wantErr: ErrInvalidEndpointFormat},
		{name: "http", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, Endpoint: "http://collector:4318", Protocol: ProtocolHTTP}},
		{name: "grpc", cfg: &Config{Enabled: true, Service: ServiceConfig{Name: "svc"}, Endpoint: "collector:4317", Protocol: ProtocolGRPC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
