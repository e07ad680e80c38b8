package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/africanmarketos/amos-mvr-go/mvr"
)

// EnvPrefix is the prefix of every environment variable Load reads.
const EnvPrefix = "MVR_"

type loadOptions struct {
	files   []string
	yaml    [][]byte
	environ func() []string
}

// Option adds a configuration source to Load.
type Option func(*loadOptions)

// WithFile loads a YAML file. The file must exist.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		if path != "" {
			o.files = append(o.files, path)
		}
	}
}

// WithYAML loads YAML from memory, after any files.
func WithYAML(data []byte) Option {
	return func(o *loadOptions) { o.yaml = append(o.yaml, data) }
}

// WithEnviron replaces os.Environ as the environment source.
func WithEnviron(environ func() []string) Option {
	return func(o *loadOptions) { o.environ = environ }
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables with the MVR_ prefix (highest priority)
// 2. YAML files, then YAML bytes, in the order given
// 3. Default values (lowest priority)
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{environ: os.Environ}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range o.files {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	for _, data := range o.yaml {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   o.environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
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

func defaults() map[string]any {
	return map[string]any{
		"api.base_url":              mvr.DefaultBaseURL,
		"api.timeout":               mvr.DefaultTimeout.String(),
		"api.max_retries":           mvr.DefaultMaxRetries,
		"api.user_agent":            mvr.DefaultUserAgent,
		"api.log_payloads":          false,
		"api.max_payload_log_bytes": 1024,

		"log.level":  "info",
		"log.pretty": false,

		"observability.enabled":         false,
		"observability.service.name":    "mvrctl",
		"observability.service.version": mvr.Version,
	}
}

// knownKeys lists the keys settable from the environment. Env names are the
// key with dots replaced by underscores, e.g. MVR_API_MAX_RETRIES.
var knownKeys = []string{
	"api.base_url",
	"api.license",
	"api.email",
	"api.session_token",
	"api.timeout",
	"api.max_retries",
	"api.user_agent",
	"api.log_payloads",
	"api.max_payload_log_bytes",
	"log.level",
	"log.pretty",
	"observability.enabled",
	"observability.environment",
	"observability.service.name",
	"observability.service.version",
	"observability.trace.enabled",
	"observability.trace.endpoint",
	"observability.trace.protocol",
	"observability.trace.insecure",
	"observability.trace.sample_rate",
	"observability.metrics.enabled",
	"observability.metrics.endpoint",
	"observability.metrics.protocol",
	"observability.metrics.interval",
}

var envKeys = func() map[string]string {
	m := make(map[string]string, len(knownKeys))
	for _, key := range knownKeys {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}
	return m
}()

// envKey maps MVR_SECTION_SOME_KEY to its config key. Unknown names split on
// the first underscore only, so MVR_FOO_BAR_BAZ becomes foo.bar_baz.
func envKey(name, value string) (string, any) {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if key, ok := envKeys[name]; ok {
		return key, value
	}
	return strings.Replace(name, "_", ".", 1), value
}
