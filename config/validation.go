package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}

// Validate checks the loaded configuration. Credentials are either a session
// token or a license with a buyer e-mail.
func Validate(cfg *Config) error {
	if err := validateAPI(&cfg.API); err != nil {
		return fmt.Errorf("api config: %w", err)
	}
	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

func validateAPI(cfg *APIConfig) error {
	u, err := url.Parse(cfg.BaseURL)
	if cfg.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return NewInvalidFieldError("api.base_url", "must be an absolute URL", nil)
	}
	if cfg.Timeout <= 0 {
		return NewInvalidFieldError("api.timeout", "must be greater than 0", nil)
	}
	if cfg.MaxRetries < 0 {
		return NewInvalidFieldError("api.max_retries", "must not be negative", nil)
	}
	if cfg.MaxPayloadLogBytes < 0 {
		return NewInvalidFieldError("api.max_payload_log_bytes", "must not be negative", nil)
	}

	if cfg.UsesSession() {
		return nil
	}
	if cfg.License == "" {
		err := NewMissingFieldError("api.license")
		err.Details = []string{"or set " + envName("api.session_token") + " for a session client"}
		return err
	}
	if cfg.Email == "" {
		return NewMissingFieldError("api.email")
	}
	return nil
}

func validateLog(cfg *LogConfig) error {
	if !slices.Contains(logLevels, strings.ToLower(cfg.Level)) {
		return NewInvalidFieldError("log.level", fmt.Sprintf("unknown level %q", cfg.Level), logLevels)
	}
	return nil
}
