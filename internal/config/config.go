// ABOUTME: Configuration loading and parsing for wspoll
// ABOUTME: Supports YAML and TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the complete wspoll configuration
type Config struct {
	Session SessionConfig `yaml:"session" toml:"session"`
	Fetch   FetchConfig   `yaml:"fetch" toml:"fetch"`
	Echo    EchoConfig    `yaml:"echo" toml:"echo"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// SessionConfig holds WebSocket connection timing and limits
type SessionConfig struct {
	HandshakeTimeout  time.Duration `yaml:"-" toml:"-"`
	ReadRetryInterval time.Duration `yaml:"-" toml:"-"`
	CloseTimeout      time.Duration `yaml:"-" toml:"-"`
	WriteTimeout      time.Duration `yaml:"-" toml:"-"`
	PollInterval      time.Duration `yaml:"-" toml:"-"`

	MaxReadErrors int   `yaml:"max_read_errors" toml:"max_read_errors"`
	ReadLimit     int64 `yaml:"read_limit" toml:"read_limit"`

	// Raw string values for unmarshaling
	HandshakeTimeoutRaw  string `yaml:"handshake_timeout" toml:"handshake_timeout"`
	ReadRetryIntervalRaw string `yaml:"read_retry_interval" toml:"read_retry_interval"`
	CloseTimeoutRaw      string `yaml:"close_timeout" toml:"close_timeout"`
	WriteTimeoutRaw      string `yaml:"write_timeout" toml:"write_timeout"`
	PollIntervalRaw      string `yaml:"poll_interval" toml:"poll_interval"`
}

// FetchConfig holds one-shot HTTP request configuration
type FetchConfig struct {
	Timeout    time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw string        `yaml:"timeout" toml:"timeout"`
	UserAgent  string        `yaml:"user_agent" toml:"user_agent"`
}

// EchoConfig holds the local echo endpoint configuration
type EchoConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
	Path string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default values used when a field is left empty.
const (
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultReadRetryInterval = 20 * time.Millisecond
	DefaultMaxReadErrors     = 3
	DefaultCloseTimeout      = 5 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultPollInterval      = 50 * time.Millisecond
	DefaultFetchTimeout      = 30 * time.Second
	DefaultUserAgent         = "wspoll"
	DefaultEchoAddr          = "127.0.0.1:8080"
	DefaultEchoPath          = "/live"

	// MaxReadErrorsLimit caps max_read_errors. gorilla/websocket panics on
	// the 1000th read of a connection that has already failed.
	MaxReadErrorsLimit = 999
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultSession returns the default session settings.
func DefaultSession() SessionConfig {
	return Default().Session
}

// DefaultFetch returns the default fetch settings.
func DefaultFetch() FetchConfig {
	return Default().Fetch
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads the file at path, falling back to Default when the
// file does not exist. Any other error is returned.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration values are usable.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Session.HandshakeTimeout < 0 {
		return fmt.Errorf("session.handshake_timeout must not be negative")
	}
	if c.Session.ReadRetryInterval < 0 {
		return fmt.Errorf("session.read_retry_interval must not be negative")
	}
	if c.Session.CloseTimeout < 0 {
		return fmt.Errorf("session.close_timeout must not be negative")
	}
	if c.Session.WriteTimeout < 0 {
		return fmt.Errorf("session.write_timeout must not be negative")
	}
	if c.Session.PollInterval < 0 {
		return fmt.Errorf("session.poll_interval must not be negative")
	}
	if c.Session.MaxReadErrors < 1 {
		return fmt.Errorf("session.max_read_errors must be at least 1")
	}
	if c.Session.MaxReadErrors > MaxReadErrorsLimit {
		return fmt.Errorf("session.max_read_errors must be at most %d", MaxReadErrorsLimit)
	}
	if c.Session.ReadLimit < 0 {
		return fmt.Errorf("session.read_limit must not be negative")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}
	if !strings.HasPrefix(c.Echo.Path, "/") {
		return fmt.Errorf("echo.path must start with /")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// applyDefaults fills zero values with defaults.
func (c *Config) applyDefaults() {
	c.Session.applyDefaults()
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Echo.Addr == "" {
		c.Echo.Addr = DefaultEchoAddr
	}
	if c.Echo.Path == "" {
		c.Echo.Path = DefaultEchoPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// WithDefaults returns a copy with unset or negative fields replaced by
// defaults and MaxReadErrors capped at MaxReadErrorsLimit.
func (s SessionConfig) WithDefaults() SessionConfig {
	for _, d := range []*time.Duration{
		&s.HandshakeTimeout, &s.ReadRetryInterval, &s.CloseTimeout, &s.WriteTimeout, &s.PollInterval,
	} {
		if *d < 0 {
			*d = 0
		}
	}
	if s.MaxReadErrors < 0 {
		s.MaxReadErrors = 0
	}
	if s.ReadLimit < 0 {
		s.ReadLimit = 0
	}
	s.applyDefaults()
	if s.MaxReadErrors > MaxReadErrorsLimit {
		s.MaxReadErrors = MaxReadErrorsLimit
	}
	return s
}

func (s *SessionConfig) applyDefaults() {
	if s.HandshakeTimeout == 0 {
		s.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if s.ReadRetryInterval == 0 {
		s.ReadRetryInterval = DefaultReadRetryInterval
	}
	if s.MaxReadErrors == 0 {
		s.MaxReadErrors = DefaultMaxReadErrors
	}
	if s.CloseTimeout == 0 {
		s.CloseTimeout = DefaultCloseTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.PollInterval == 0 {
		s.PollInterval = DefaultPollInterval
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"session.handshake_timeout", cfg.Session.HandshakeTimeoutRaw, &cfg.Session.HandshakeTimeout},
		{"session.read_retry_interval", cfg.Session.ReadRetryIntervalRaw, &cfg.Session.ReadRetryInterval},
		{"session.close_timeout", cfg.Session.CloseTimeoutRaw, &cfg.Session.CloseTimeout},
		{"session.write_timeout", cfg.Session.WriteTimeoutRaw, &cfg.Session.WriteTimeout},
		{"session.poll_interval", cfg.Session.PollIntervalRaw, &cfg.Session.PollInterval},
		{"fetch.timeout", cfg.Fetch.TimeoutRaw, &cfg.Fetch.Timeout},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
