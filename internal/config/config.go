// Package config defines the server configuration and how it is loaded.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// Env is "development" or "production".
	Env string `koanf:"env"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	// CSRFKey is a hex-encoded 32 byte secret for gorilla/csrf.
	CSRFKey string `koanf:"csrf_key"`

	// TrustedOrigins lists extra hosts allowed to submit forms, e.g. a proxy.
	TrustedOrigins []string `koanf:"trusted_origins"`

	// JWTSecret signs bearer tokens issued by /api/token.
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// CookieTTL bounds browser sessions.
	CookieTTL time.Duration `koanf:"cookie_ttl"`

	// SessionTimeout closes court sessions left open longer than this.
	SessionTimeout time.Duration `koanf:"session_timeout"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`

	SlowQueryMs        int `koanf:"slow_query_ms"`
	SlowRequestMs      int `koanf:"slow_request_ms"`
	RateLimitPerSecond int `koanf:"rate_limit_per_second"`

	ResendKey string `koanf:"resend_key"`
	EmailFrom string `koanf:"email_from"`
	ReplyTo   string `koanf:"reply_to"`

	// Timezone is the IANA zone used for weekday buckets and displayed times.
	Timezone string `koanf:"timezone"`

	// DefaultCourts are created on first start when the court table is empty.
	DefaultCourts        []string `koanf:"default_courts"`
	DefaultCourtCapacity int      `koanf:"default_court_capacity"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:                 ":8080",
		DBPath:               "cutrackit.db",
		Env:                  "development",
		LogLevel:             "info",
		AdminEmail:           "admin@cutrackit.app",
		AdminPassword:        "change-me-please",
		TokenTTL:             24 * time.Hour,
		CookieTTL:            24 * time.Hour,
		SessionTimeout:       2 * time.Hour,
		SweepInterval:        time.Minute,
		SlowQueryMs:          50,
		SlowRequestMs:        200,
		RateLimitPerSecond:   10,
		EmailFrom:            "CUTRACKIT <noreply@cutrackit.app>",
		Timezone:             "UTC",
		DefaultCourts:        []string{"Court 1", "Court 2", "Court 3"},
		DefaultCourtCapacity: 10,
	}
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Level maps LogLevel onto a slog level. Unknown values fall back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CSRFKeyBytes decodes CSRFKey. When no key is configured outside production a
// random key is generated, so form tokens do not survive a restart.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey != "" {
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%w: csrf_key must be 64 hex characters", ErrInvalidConfig)
		}
		return key, nil
	}
	if c.IsProduction() {
		return nil, fmt.Errorf("%w: csrf_key is required in production", ErrInvalidConfig)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// JWTSecretOrRandom returns JWTSecret, or a random secret outside production.
// Bearer tokens then stop verifying after a restart.
func (c *Config) JWTSecretOrRandom() (string, error) {
	if c.JWTSecret != "" {
		return c.JWTSecret, nil
	}
	if c.IsProduction() {
		return "", fmt.Errorf("%w: jwt_secret is required in production", ErrInvalidConfig)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Location loads Timezone. An empty value means UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("%w: jwt_secret is required in production", ErrInvalidConfig)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("%w: session_timeout must be positive", ErrInvalidConfig)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep_interval must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.CSRFKeyBytes(); err != nil {
		return err
	}
	return nil
}
