// Package config loads and validates the service configuration from file
// and environment. Required settings are checked once at startup; the store
// subsystem degrades rather than crashing when its settings are absent.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/snowch/vast-sp-console/pkg/constants"
)

// Config holds the full application configuration.
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Auth        AuthConfig      `mapstructure:"auth"`
	VastDB      VastDBConfig    `mapstructure:"vastdb"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Log         LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	FrontendURL  string `mapstructure:"frontend_url"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

// AuthConfig configures the session token codec.
type AuthConfig struct {
	// SigningSecret is the symmetric secret used to sign session tokens.
	// Compromise of this secret is equivalent to full session hijack.
	SigningSecret string `mapstructure:"signing_secret"`
	// TokenLifetime uses a compact unit suffix: "8h", "30m", "1d".
	// A bare number means hours.
	TokenLifetime string `mapstructure:"token_lifetime"`
	// SkipTLSVerify disables certificate verification when talking to the
	// VAST cluster management API. Clusters commonly run self-signed certs.
	SkipTLSVerify bool `mapstructure:"skip_tls_verify"`
}

// VastDBConfig configures the tabular store connection. Missing or
// placeholder values leave the store subsystem unavailable without
// affecting the rest of the service.
type VastDBConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	VerifySSL       bool   `mapstructure:"verify_ssl"`
}

type RateLimitConfig struct {
	// Backend selects "memory" (default) or "redis".
	Backend  string `mapstructure:"backend"`
	MaxCalls int    `mapstructure:"max_calls"`
	Window   int    `mapstructure:"window"` // seconds
	// Redis settings, used only when Backend is "redis".
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ErrPlaceholderValue marks a setting still holding a sample value shipped
// in example configs. Callers distinguish it from plain absence with
// errors.Is.
var ErrPlaceholderValue = errors.New("placeholder configuration value")

// placeholderValues are example settings shipped in sample configs. They are
// rejected as if the setting were absent.
var placeholderValues = map[string]struct{}{
	"your-secure-secret-key-change-this": {},
	"changeme":                           {},
	"https://vast.example.com":           {},
	"your-access-key":                    {},
	"your-secret-key":                    {},
}

func isPlaceholder(v string) bool {
	_, ok := placeholderValues[strings.TrimSpace(v)]
	return ok
}

// Validate checks the settings the process cannot run without. Store
// settings are deliberately not checked here; see VastDB.Validate.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Auth.SigningSecret == "" || isPlaceholder(c.Auth.SigningSecret) {
		return fmt.Errorf("auth.signing_secret is missing or still set to a placeholder value")
	}
	if _, err := ParseLifetime(c.Auth.TokenLifetime); err != nil {
		return fmt.Errorf("auth.token_lifetime: %w", err)
	}
	switch c.RateLimit.Backend {
	case "", "memory":
	case "redis":
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("rate_limit.redis_addr is required when rate_limit.backend is redis")
		}
	default:
		return fmt.Errorf("rate_limit.backend %q is not supported", c.RateLimit.Backend)
	}
	return nil
}

// Validate reports why the store configuration is unusable, or nil when all
// required settings are present and real.
func (c *VastDBConfig) Validate() error {
	missing := make([]string, 0, 4)
	for _, item := range []struct{ name, value string }{
		{"vastdb.endpoint", c.Endpoint},
		{"vastdb.access_key_id", c.AccessKeyID},
		{"vastdb.secret_access_key", c.SecretAccessKey},
		{"vastdb.bucket", c.Bucket},
	} {
		if item.value == "" {
			missing = append(missing, item.name)
		} else if isPlaceholder(item.value) {
			return fmt.Errorf("%s: %w", item.name, ErrPlaceholderValue)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Lifetime returns the parsed session token lifetime. Validate has already
// established that the string parses.
func (c *AuthConfig) Lifetime() time.Duration {
	d, err := ParseLifetime(c.TokenLifetime)
	if err != nil {
		d, _ = ParseLifetime(constants.DefaultTokenLifetime)
	}
	return d
}

// MaxCallsOrDefault returns the configured admission limit, falling back to
// the stock policy.
func (c *RateLimitConfig) MaxCallsOrDefault() int {
	if c.MaxCalls > 0 {
		return c.MaxCalls
	}
	return constants.DefaultRateLimitMaxCalls
}

// WindowOrDefault returns the configured window, falling back to the stock
// policy.
func (c *RateLimitConfig) WindowOrDefault() time.Duration {
	if c.Window > 0 {
		return time.Duration(c.Window) * time.Second
	}
	return constants.DefaultRateLimitWindow
}

// ParseLifetime parses a compact lifetime string: "8h" hours, "30m" minutes,
// "1d" days. A bare number defaults to hours.
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = constants.DefaultTokenLifetime
	}

	unit := time.Hour
	digits := s
	switch {
	case strings.HasSuffix(s, "h"):
		digits = s[:len(s)-1]
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
		digits = s[:len(s)-1]
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
		digits = s[:len(s)-1]
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unparseable lifetime %q", s)
	}
	return time.Duration(n) * unit, nil
}
