package observability

import (
	"strings"
	"time"
)

const (
	// EndpointStdout prints telemetry to stdout instead of exporting it.
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// EnvironmentDevelopment is the default environment name.
	EnvironmentDevelopment = "development"
)

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Config defines the OpenTelemetry setup of a host process such as mvrctl.
type Config struct {
	// Enabled controls whether observability is active.
	// When false, NewProvider returns no-op providers.
	Enabled bool `koanf:"enabled"`

	Service     ServiceConfig `koanf:"service"`
	Environment string        `koanf:"environment"`
	Trace       TraceConfig   `koanf:"trace"`
	Metrics     MetricsConfig `koanf:"metrics"`
}

// ServiceConfig identifies the service in traces and metrics.
type ServiceConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// TraceConfig configures span export.
type TraceConfig struct {
	// Enabled defaults to true when observability is enabled.
	Enabled *bool `koanf:"enabled"`

	// Endpoint is "stdout" or an OTLP collector address. HTTP endpoints carry
	// a scheme, gRPC endpoints are host:port.
	Endpoint string            `koanf:"endpoint"`
	Protocol string            `koanf:"protocol"`
	Insecure bool              `koanf:"insecure"`
	Headers  map[string]string `koanf:"headers"`

	// SampleRate is the ratio of sampled traces in [0, 1]. Default: 1.0.
	SampleRate *float64 `koanf:"sample_rate"`

	BatchTimeout  time.Duration `koanf:"batch_timeout"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
}

// MetricsConfig configures metric export. Protocol, Insecure and Headers fall
// back to the trace settings when empty.
type MetricsConfig struct {
	Enabled  *bool             `koanf:"enabled"`
	Endpoint string            `koanf:"endpoint"`
	Protocol string            `koanf:"protocol"`
	Insecure *bool             `koanf:"insecure"`
	Headers  map[string]string `koanf:"headers"`

	Interval      time.Duration `koanf:"interval"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Service.Version == "" {
		c.Service.Version = "unknown"
	}
	if c.Environment == "" {
		c.Environment = EnvironmentDevelopment
	}
	c.applyTraceDefaults()
	c.applyMetricsDefaults()
}

func (c *Config) applyTraceDefaults() {
	if c.Trace.Endpoint == "" {
		c.Trace.Endpoint = EndpointStdout
	}
	if c.Enabled && c.Trace.Enabled == nil {
		c.Trace.Enabled = BoolPtr(true)
	}
	if c.Trace.Protocol == "" {
		c.Trace.Protocol = ProtocolHTTP
	}
	if c.Trace.SampleRate == nil {
		c.Trace.SampleRate = Float64Ptr(1.0)
	}

	// Stdout and development favour quick feedback over batching efficiency.
	fast := c.Environment == EnvironmentDevelopment || c.Trace.Endpoint == EndpointStdout
	if c.Trace.BatchTimeout == 0 {
		c.Trace.BatchTimeout = 5 * time.Second
		if fast {
			c.Trace.BatchTimeout = 500 * time.Millisecond
		}
	}
	if c.Trace.ExportTimeout == 0 {
		c.Trace.ExportTimeout = 60 * time.Second
		if fast {
			c.Trace.ExportTimeout = 10 * time.Second
		}
	}
}

func (c *Config) applyMetricsDefaults() {
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = c.Trace.Endpoint
	}
	if c.Enabled && c.Metrics.Enabled == nil {
		c.Metrics.Enabled = BoolPtr(true)
	}
	if c.Metrics.Protocol == "" {
		c.Metrics.Protocol = c.Trace.Protocol
	}
	if c.Metrics.Insecure == nil {
		c.Metrics.Insecure = BoolPtr(c.Trace.Insecure)
	}
	if c.Metrics.Headers == nil {
		c.Metrics.Headers = c.Trace.Headers
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 60 * time.Second
		if c.Environment == EnvironmentDevelopment || c.Metrics.Endpoint == EndpointStdout {
			c.Metrics.Interval = 10 * time.Second
		}
	}
	if c.Metrics.ExportTimeout == 0 {
		c.Metrics.ExportTimeout = 30 * time.Second
	}
}

// Validate checks a defaulted config. A disabled config is always valid.
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
	if rate := c.Trace.SampleRate; rate != nil && (*rate < 0 || *rate > 1) {
		return ErrInvalidSampleRate
	}
	if isEnabled(c.Trace.Enabled) {
		if err := validateEndpoint(c.Trace.Endpoint, c.Trace.Protocol); err != nil {
			return err
		}
	}
	if isEnabled(c.Metrics.Enabled) {
		if err := validateEndpoint(c.Metrics.Endpoint, c.Metrics.Protocol); err != nil {
			return err
		}
	}
	return nil
}

// validateEndpoint requires a scheme for HTTP and forbids one for gRPC.
func validateEndpoint(endpoint, protocol string) error {
	if endpoint == EndpointStdout {
		return nil
	}
	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
	switch protocol {
	case ProtocolHTTP:
		if !hasScheme {
			return ErrInvalidEndpointFormat
		}
	case ProtocolGRPC:
		if hasScheme {
			return ErrInvalidEndpointFormat
		}
	default:
		return ErrInvalidProtocol
	}
	return nil
}

func isEnabled(b *bool) bool {
	return b != nil && *b
}
