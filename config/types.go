package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/africanmarketos/amos-mvr-go/mvr"
	"github.com/africanmarketos/amos-mvr-go/observability"
)

// Config is the configuration of a process hosting the AMOS / MVR client.
type Config struct {
	API           APIConfig            `koanf:"api" json:"api" yaml:"api"`
	Log           LogConfig            `koanf:"log" json:"log" yaml:"log"`
	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability"`

	// k holds the underlying Koanf instance for keys outside the struct
	k *koanf.Koanf `json:"-" yaml:"-"`
}

// APIConfig holds the endpoint, credentials and transport settings.
type APIConfig struct {
	BaseURL      string        `koanf:"base_url" json:"base_url" yaml:"base_url"`
	License      string        `koanf:"license" json:"-" yaml:"license"`
	Email        string        `koanf:"email" json:"email" yaml:"email"`
	SessionToken string        `koanf:"session_token" json:"-" yaml:"session_token"`
	Timeout      time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`
	MaxRetries   int           `koanf:"max_retries" json:"max_retries" yaml:"max_retries"`
	UserAgent    string        `koanf:"user_agent" json:"user_agent" yaml:"user_agent"`

	// LogPayloads logs masked headers and body previews at debug level.
	LogPayloads        bool `koanf:"log_payloads" json:"log_payloads" yaml:"log_payloads"`
	MaxPayloadLogBytes int  `koanf:"max_payload_log_bytes" json:"max_payload_log_bytes" yaml:"max_payload_log_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// UsesSession reports whether the session token, rather than license and
// e-mail, authenticates the client.
func (a APIConfig) UsesSession() bool {
	return a.SessionToken != ""
}

// ClientConfig converts the API section into a client configuration.
func (c *Config) ClientConfig() mvr.ClientConfig {
	return mvr.ClientConfig{
		BaseURL:      c.API.BaseURL,
		License:      c.API.License,
		Email:        c.API.Email,
		SessionToken: c.API.SessionToken,
		Timeout:      c.API.Timeout,
		MaxRetries:   c.API.MaxRetries,
		UserAgent:    c.API.UserAgent,
	}
}

// String returns the raw value of key, or def when unset.
func (c *Config) String(key, def string) string {
	if c.k == nil || !c.k.Exists(key) {
		return def
	}
	return c.k.String(key)
}

// Exists reports whether any source set key.
func (c *Config) Exists(key string) bool {
	return c.k != nil && c.k.Exists(key)
}
