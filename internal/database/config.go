package database

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Profile is a named set of connection timeouts.
type Profile struct {
	Name           string
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	MaxLifetime    time.Duration
}

var (
	// SeedProfile is patient enough for a hibernating instance to resume mid-seed.
	SeedProfile = Profile{
		Name:           "seed",
		ConnectTimeout: 180 * time.Second,
		IdleTimeout:    180 * time.Second,
		MaxLifetime:    30 * time.Minute,
	}
	// WakeProfile is used by the standalone wake path.
	WakeProfile = Profile{
		Name:           "wake",
		ConnectTimeout: 120 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxLifetime:    10 * time.Minute,
	}
	// DiagnosticProfile is used for short-lived read connections.
	DiagnosticProfile = Profile{
		Name:           "diagnostic",
		ConnectTimeout: 30 * time.Second,
	}
)

// ConnectionConfig describes how a single-connection client is opened.
type ConnectionConfig struct {
	URL            string
	UseTLS         bool
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	MaxLifetime    time.Duration
	MaxConns       int
}

// NewConnectionConfig applies a profile to url. TLS is required unless the URL points at localhost.
func NewConnectionConfig(rawURL string, p Profile) ConnectionConfig {
	return ConnectionConfig{
		URL:            rawURL,
		UseTLS:         !strings.Contains(rawURL, "localhost"),
		ConnectTimeout: p.ConnectTimeout,
		IdleTimeout:    p.IdleTimeout,
		MaxLifetime:    p.MaxLifetime,
		MaxConns:       1,
	}
}

// SSLMode returns the libpq sslmode matching UseTLS.
func (c ConnectionConfig) SSLMode() string {
	if c.UseTLS {
		return "require"
	}
	return "disable"
}

var (
	sslModeKV        = regexp.MustCompile(`(^|\s)sslmode=\S*`)
	channelBindingKV = regexp.MustCompile(`(^|\s)channel_binding=\S*`)
)

// DSN returns URL with its sslmode forced to SSLMode. channel_binding is dropped: pgx
// would forward it as a runtime parameter and Postgres rejects it.
func (c ConnectionConfig) DSN() string {
	mode := c.SSLMode()

	if strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://") {
		u, err := url.Parse(c.URL)
		if err == nil {
			q := u.Query()
			q.Set("sslmode", mode)
			q.Del("channel_binding")
			u.RawQuery = q.Encode()
			return u.String()
		}
	}

	dsn := strings.TrimSpace(channelBindingKV.ReplaceAllString(c.URL, ""))
	if sslModeKV.MatchString(dsn) {
		return sslModeKV.ReplaceAllString(dsn, "${1}sslmode="+mode)
	}
	return strings.TrimSpace(dsn + " sslmode=" + mode)
}

// ResolveURL returns the first non-empty candidate.
func ResolveURL(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", NewError(KindConfig, "resolve connection string", ErrNoConnectionString)
}
