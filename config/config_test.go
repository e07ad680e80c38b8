package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/africanmarketos/amos-mvr-go/mvr"
)

const (
	testLicense = "LIC-123"
	testEmail   = "buyer@example.com"
)

func environ(vars ...string) Option {
	return WithEnviron(func() []string { return vars })
}

func credentials() Option {
	return environ("MVR_API_LICENSE="+testLicense, "MVR_API_EMAIL="+testEmail)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(credentials())
	require.NoError(t, err)

	assert.Equal(t, mvr.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, mvr.DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, mvr.DefaultMaxRetries, cfg.API.MaxRetries)
	assert.Equal(t, mvr.DefaultUserAgent, cfg.API.UserAgent)
	assert.False(t, cfg.API.LogPayloads)
	assert.Equal(t, 1024, cfg.API.MaxPayloadLogBytes)
	assert.Equal(t, testLicense, cfg.API.License)
	assert.Equal(t, testEmail, cfg.API.Email)
	assert.False(t, cfg.API.UsesSession())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)

	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, "mvrctl", cfg.Observability.Service.Name)
	assert.Equal(t, mvr.Version, cfg.Observability.Service.Version)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	cfg, err := Load(environ(
		"MVR_API_LICENSE="+testLicense,
		"MVR_API_EMAIL="+testEmail,
		"MVR_API_BASE_URL=https://staging.africanmarketos.com",
		"MVR_API_MAX_RETRIES=5",
		"MVR_API_TIMEOUT=2s",
		"MVR_API_LOG_PAYLOADS=true",
		"MVR_LOG_LEVEL=debug",
		"MVR_OBSERVABILITY_ENABLED=true",
		"MVR_OBSERVABILITY_SERVICE_NAME=scoring-batch",
		"MVR_OBSERVABILITY_TRACE_SAMPLE_RATE=0.25",
		"MVR_OBSERVABILITY_TRACE_ENDPOINT=otel:4317",
		"MVR_OBSERVABILITY_TRACE_PROTOCOL=grpc",
		"OTHER_LOG_LEVEL=error",
	))
	require.NoError(t, err)

	assert.Equal(t, "https://staging.africanmarketos.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.LogPayloads)
	assert.Equal(t, "debug", cfg.Log.Level)

	assert.True(t, cfg.Observability.Enabled)
	assert.Equal(t, "scoring-batch", cfg.Observability.Service.Name)
	require.NotNil(t, cfg.Observability.Trace.SampleRate)
	assert.InDelta(t, 0.25, *cfg.Observability.Trace.SampleRate, 1e-9)
	assert.Equal(t, "otel:4317", cfg.Observability.Trace.Endpoint)
	assert.Equal(t, "grpc", cfg.Observability.Trace.Protocol)
}

func TestLoadYAMLPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mvr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  license: file-license
  email: file@example.com
  max_retries: 1
  timeout: 5s
log:
  level: warn
  pretty: true
`), 0o600))

	overlay := []byte(`
api:
  max_retries: 2
`)

	cfg, err := Load(WithFile(path), WithYAML(overlay), environ("MVR_API_EMAIL=env@example.com"))
	require.NoError(t, err)

	assert.Equal(t, "file-license", cfg.API.License)
	assert.Equal(t, "env@example.com", cfg.API.Email, "environment beats files")
	assert.Equal(t, 2, cfg.API.MaxRetries, "yaml bytes beat files")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, mvr.DefaultBaseURL, cfg.API.BaseURL, "defaults survive")
}

func TestLoadSources(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(WithFile(filepath.Join(t.TempDir(), "absent.yaml")), credentials())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent.yaml")
	})

	t.Run("empty file path is ignored", func(t *testing.T) {
		_, err := Load(WithFile(""), credentials())
		assert.NoError(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(WithYAML([]byte("api: [unclosed")), credentials())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse yaml config")
	})
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     []string
		field   string
		message string
	}{
		{name: "no credentials", env: nil, field: "api.license", message: "MVR_API_SESSION_TOKEN"},
		{name: "license without email", env: []string{"MVR_API_LICENSE=x"}, field: "api.email", message: "MVR_API_EMAIL"},
		{name: "bad base url", env: []string{"MVR_API_LICENSE=x", "MVR_API_EMAIL=e@x.io", "MVR_API_BASE_URL=africanmarketos"}, field: "api.base_url", message: "absolute URL"},
		{name: "zero timeout", env: []string{"MVR_API_LICENSE=x", "MVR_API_EMAIL=e@x.io", "MVR_API_TIMEOUT=0s"}, field: "api.timeout", message: "greater than 0"},
		{name: "negative retries", env: []string{"MVR_API_LICENSE=x", "MVR_API_EMAIL=e@x.io", "MVR_API_MAX_RETRIES=-1"}, field: "api.max_retries", message: "negative"},
		{name: "unknown log level", env: []string{"MVR_API_LICENSE=x", "MVR_API_EMAIL=e@x.io", "MVR_LOG_LEVEL=loud"}, field: "log.level", message: "must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(environ(tt.env...))
			assert.Nil(t, cfg)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSessionCredentials(t *testing.T) {
	cfg, err := Load(environ("MVR_API_SESSION_TOKEN=sess-1"))
	require.NoError(t, err)
	assert.True(t, cfg.API.UsesSession())

	client := cfg.ClientConfig()
	assert.Equal(t, "sess-1", client.SessionToken)
	assert.NoError(t, client.ValidateSession())
}

func TestClientConfig(t *testing.T) {
	cfg, err := Load(environ("MVR_API_LICENSE="+testLicense, "MVR_API_EMAIL="+testEmail, "MVR_API_MAX_RETRIES=0"))
	require.NoError(t, err)

	client := cfg.ClientConfig()
	assert.Equal(t, mvr.ClientConfig{
		BaseURL:    mvr.DefaultBaseURL,
		License:    testLicense,
		Email:      testEmail,
		Timeout:    mvr.DefaultTimeout,
		MaxRetries: 0,
		UserAgent:  mvr.DefaultUserAgent,
	}, client)
	assert.NoError(t, client.Validate())
}

func TestRawAccessors(t *testing.T) {
	cfg, err := Load(credentials(), WithYAML([]byte("custom:\n  region: EA\n")))
	require.NoError(t, err)

	assert.True(t, cfg.Exists("custom.region"))
	assert.Equal(t, "EA", cfg.String("custom.region", "WA"))
	assert.Equal(t, "WA", cfg.String("custom.missing", "WA"))
	assert.False(t, (&Config{}).Exists("api.license"))
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"MVR_API_MAX_RETRIES":                 "api.max_retries",
		"MVR_API_SESSION_TOKEN":               "api.session_token",
		"MVR_OBSERVABILITY_METRICS_INTERVAL":  "observability.metrics.interval",
		"MVR_CUSTOM_SOME_SETTING":             "custom.some_setting",
		"MVR_LOG_LEVEL":                       "log.level",
		"MVR_OBSERVABILITY_TRACE_SAMPLE_RATE": "observability.trace.sample_rate",
	}
	for name, want := range tests {
		key, value := envKey(name, "v")
		assert.Equal(t, want, key, name)
		assert.Equal(t, "v", value)
	}
}

func TestConfigErrorFormatting(t *testing.T) {
	err := NewMissingFieldError("api.license")
	assert.Equal(t, "config_missing: api.license required set MVR_API_LICENSE env var or add api.license to the config file", err.Error())

	err = NewInvalidFieldError("log.level", "unknown level", []string{"info", "debug"})
	assert.Equal(t, "config_invalid: log.level unknown level must be one of: info, debug", err.Error())
}
