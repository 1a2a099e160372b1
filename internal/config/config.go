package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Seed     SeedConfig
	Wake     WakeConfig
	Token    TokenConfig
	CORS     CORSConfig
	Logging  LoggingConfig
}

// DatabaseConfig lists the connection string sources in resolution order.
type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL"`
	PooledURL    string `env:"POSTGRES_URL"`
	NonPooledURL string `env:"POSTGRES_URL_NON_POOLING"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int    `env:"PORT" envDefault:"3001"`
	Host        string `env:"HOST" envDefault:"0.0.0.0"`
	BaseURL     string `env:"BASE_URL"`
	NextAuthURL string `env:"NEXTAUTH_URL"`
}

// SeedConfig tunes the seeding retrier and batch size.
type SeedConfig struct {
	MaxAttempts    int           `env:"SEED_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"SEED_RETRY_BASE_DELAY" envDefault:"5s"`
	BatchSize      int           `env:"SEED_BATCH_SIZE" envDefault:"10"`
}

// WakeConfig tunes the standalone wake-up retrier.
type WakeConfig struct {
	MaxAttempts int           `env:"WAKE_MAX_ATTEMPTS" envDefault:"5"`
	RetryDelay  time.Duration `env:"WAKE_RETRY_DELAY" envDefault:"10s"`
}

// TokenConfig protects the seed endpoint when Secret is set.
type TokenConfig struct {
	Secret string        `env:"SEED_TOKEN_SECRET"`
	TTL    time.Duration `env:"SEED_TOKEN_TTL" envDefault:"5m"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigin string `env:"CORS_ALLOWED_ORIGIN"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, text
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting is usable and reports all problems at once.
// Missing database URLs are not an error here; they surface per request.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}
	if c.Seed.MaxAttempts < 1 {
		problems = append(problems, "SEED_MAX_ATTEMPTS must be at least 1")
	}
	if c.Seed.RetryBaseDelay < 0 {
		problems = append(problems, "SEED_RETRY_BASE_DELAY must not be negative")
	}
	if c.Seed.BatchSize < 1 {
		problems = append(problems, "SEED_BATCH_SIZE must be at least 1")
	}
	if c.Wake.MaxAttempts < 1 {
		problems = append(problems, "WAKE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Wake.RetryDelay < 0 {
		problems = append(problems, "WAKE_RETRY_DELAY must not be negative")
	}
	if c.Token.Secret != "" {
		if len(c.Token.Secret) < 16 {
			problems = append(problems, "SEED_TOKEN_SECRET must be at least 16 characters")
		}
		if c.Token.TTL <= 0 {
			problems = append(problems, "SEED_TOKEN_TTL must be positive")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

// Candidates returns the connection string sources, primary first.
func (d DatabaseConfig) Candidates() []string {
	return []string{d.URL, d.PooledURL, d.NonPooledURL}
}

// Source names the variable that url was read from.
func (d DatabaseConfig) Source(url string) string {
	switch {
	case url == "":
		return ""
	case url == strings.TrimSpace(d.URL):
		return "DATABASE_URL"
	case url == strings.TrimSpace(d.PooledURL):
		return "POSTGRES_URL"
	case url == strings.TrimSpace(d.NonPooledURL):
		return "POSTGRES_URL_NON_POOLING"
	default:
		return ""
	}
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SeedBaseURL is where the wake-up flow sends its follow-up seed request.
func (s ServerConfig) SeedBaseURL() string {
	for _, candidate := range []string{s.BaseURL, s.NextAuthURL} {
		if trimmed := strings.TrimRight(strings.TrimSpace(candidate), "/"); trimmed != "" {
			return trimmed
		}
	}
	return "http://localhost:" + strconv.Itoa(s.Port)
}
