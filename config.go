package gourdianclaims

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// DefaultHTTPHeaderName is the request header consulted when no other name is configured.
	DefaultHTTPHeaderName = "Jwt"

	// EnvPrefix prefixes every environment variable read by EnvConfig and LoadConfig.
	EnvPrefix = "GOURDIAN_JWT_"
)

// Config holds the settings consumed by the token core.
//
// Fields:
//   - Secret: Base64 encoded HMAC secret (required, operations fail closed without it)
//   - HTTPHeaderName: Request header carrying the token
//   - HTTPParameterKey: Optional query parameter consulted when the header is blank
//   - ValidityPeriod: Token lifetime in milliseconds, 0 means tokens never expire
//
// A Config is treated as immutable once handed to a Manager.
type Config struct {
	Secret           string `env:"SECRET"`
	HTTPHeaderName   string `env:"HTTP_HEADER_NAME" envDefault:"Jwt"`
	HTTPParameterKey string `env:"HTTP_PARAMETER_KEY"`
	ValidityPeriod   int64  `env:"VALIDITY_PERIOD" envDefault:"0"`
}

// DefaultConfig returns a Config using the given secret, the default header name,
// no query parameter fallback and no expiry.
func DefaultConfig(secret string) Config {
	return Config{
		Secret:         secret,
		HTTPHeaderName: DefaultHTTPHeaderName,
	}
}

// NewConfig creates a Config with every setting given explicitly.
//
// Example:
//
//	config := NewConfig(
//	    "c2VjcmV0LXNlY3JldC1zZWNyZXQtc2VjcmV0LXNlY3JldA==",
//	    "Authorization",   // httpHeaderName
//	    "jwt",             // httpParameterKey (empty disables the fallback)
//	    30*time.Minute,    // validity (0 disables expiry)
//	)
func NewConfig(secret, httpHeaderName, httpParameterKey string, validity time.Duration) Config {
	return Config{
		Secret:           secret,
		HTTPHeaderName:   httpHeaderName,
		HTTPParameterKey: httpParameterKey,
		ValidityPeriod:   validity.Milliseconds(),
	}
}

// IsConfigured reports whether the secret is present and decodes to a usable key.
func (c Config) IsConfigured() bool {
	_, err := DeriveKey(c.Secret)
	return err == nil
}

// Validity returns the configured token lifetime. Zero means no expiry.
func (c Config) Validity() time.Duration {
	if c.ValidityPeriod <= 0 {
		return 0
	}
	return time.Duration(c.ValidityPeriod) * time.Millisecond
}

// headerName falls back to DefaultHTTPHeaderName when none is configured.
func (c Config) headerName() string {
	if strings.TrimSpace(c.HTTPHeaderName) == "" {
		return DefaultHTTPHeaderName
	}
	return c.HTTPHeaderName
}

// String returns a representation of the config with the secret redacted.
func (c Config) String() string {
	secret := ""
	if c.Secret != "" {
		secret = "***REDACTED***"
	}
	return fmt.Sprintf("Config{Secret: %s, HTTPHeaderName: %s, HTTPParameterKey: %s, ValidityPeriod: %dms}",
		secret, c.HTTPHeaderName, c.HTTPParameterKey, c.ValidityPeriod)
}

// ConfigProvider supplies the Config consumed by a Manager. Implementations
// must return the same value on every call once the process is running.
type ConfigProvider interface {
	Config() Config
}

type staticConfig struct {
	config Config
}

// StaticConfig wraps a fixed Config as a ConfigProvider.
func StaticConfig(config Config) ConfigProvider {
	return staticConfig{config: config}
}

func (s staticConfig) Config() Config {
	return s.config
}

// LoadConfig reads the configuration from the environment, after loading a
// .env file from the working directory when one exists.
func LoadConfig() (Config, error) {
	return loadConfig(envSettings{files: []string{".env"}})
}

type envSettings struct {
	files       []string
	environment map[string]string
}

// EnvOption customizes EnvConfig.
type EnvOption func(*envSettings)

// WithEnvFiles replaces the dotenv files loaded before parsing.
func WithEnvFiles(files ...string) EnvOption {
	return func(s *envSettings) {
		s.files = files
	}
}

// WithEnvironment parses the given map instead of the process environment.
func WithEnvironment(environment map[string]string) EnvOption {
	return func(s *envSettings) {
		s.environment = environment
	}
}

func loadConfig(settings envSettings) (Config, error) {
	for _, file := range settings.files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	var config Config
	opts := env.Options{Prefix: EnvPrefix}
	if settings.environment != nil {
		opts.Environment = settings.environment
	}
	if err := env.ParseWithOptions(&config, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return config, nil
}

type envConfig struct {
	settings envSettings
	once     sync.Once
	config   Config
}

// EnvConfig returns a ConfigProvider that loads the environment on first use.
// A load failure is logged and yields an unconfigured Config, so only token
// operations fail rather than process start.
func EnvConfig(opts ...EnvOption) ConfigProvider {
	p := &envConfig{settings: envSettings{files: []string{".env"}}}
	for _, opt := range opts {
		opt(&p.settings)
	}
	return p
}

func (p *envConfig) Config() Config {
	p.once.Do(func() {
		config, err := loadConfig(p.settings)
		if err != nil {
			slog.Default().Error("gourdianclaims: failed to load configuration", errorAttr(err))
			return
		}
		p.config = config
	})
	return p.config
}
