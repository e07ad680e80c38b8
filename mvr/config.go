package mvr

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/africanmarketos/amos-mvr-go/validation"
)

const (
	// Version is the client library version sent in the User-Agent.
	Version = "1.0.0"

	DefaultBaseURL    = "https://africanmarketos.com"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultUserAgent  = "amos-mvr-go-client/" + Version

	HeaderLicense      = "x-mvr-license"
	HeaderBuyerEmail   = "x-buyer-email"
	HeaderSessionToken = "x-mvr-session-token"
	HeaderContentType  = "Content-Type"
	HeaderUserAgent    = "User-Agent"

	contentTypeJSON = "application/json"
)

// ClientConfig configures a Client. It is copied at construction and never
// changed afterwards.
//
// Zero BaseURL, Timeout and UserAgent fall back to their defaults. MaxRetries
// is taken as given, so start from DefaultClientConfig to get the default
// retry budget.
type ClientConfig struct {
	BaseURL      string        `json:"base_url" validate:"required,url"`
	License      string        `json:"license"`
	Email        string        `json:"email" validate:"omitempty,email"`
	SessionToken string        `json:"session_token"`
	Timeout      time.Duration `json:"timeout" validate:"gt=0"`
	MaxRetries   int           `json:"max_retries" validate:"gte=0"`
	UserAgent    string        `json:"user_agent"`
}

// DefaultClientConfig returns a config with every default filled in and no
// credentials.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		UserAgent:  DefaultUserAgent,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

type licenseCredentials struct {
	License string `json:"license" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type sessionCredentials struct {
	SessionToken string `json:"session_token" validate:"required"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validation.Validator {
	v := validation.NewValidator()
	if err := v.Register("amos_sector", func(fl validator.FieldLevel) bool {
		return Sector(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("mvr: register amos_sector validation: %v", err))
	}
	return v
}

// Validate checks the config for a license+email client.
func (c ClientConfig) Validate() error {
	if err := requestValidator.Validate(c); err != nil {
		return err
	}
	return requestValidator.Validate(licenseCredentials{License: c.License, Email: c.Email})
}

// ValidateSession checks the config for a session-token client.
func (c ClientConfig) ValidateSession() error {
	if err := requestValidator.Validate(c); err != nil {
		return err
	}
	return requestValidator.Validate(sessionCredentials{SessionToken: c.SessionToken})
}
