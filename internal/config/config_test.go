package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Server.Port != 3001 || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Seed.MaxAttempts != 3 || cfg.Seed.RetryBaseDelay != 5*time.Second || cfg.Seed.BatchSize != 10 {
		t.Fatalf("unexpected seed defaults: %+v", cfg.Seed)
	}
	if cfg.Wake.MaxAttempts != 5 || cfg.Wake.RetryDelay != 10*time.Second {
		t.Fatalf("unexpected wake defaults: %+v", cfg.Wake)
	}
	if cfg.Token.Secret != "" || cfg.Token.TTL != 5*time.Minute {
		t.Fatalf("unexpected token defaults: %+v", cfg.Token)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if got := cfg.Server.SeedBaseURL(); got != "http://localhost:3001" {
		t.Fatalf("SeedBaseURL = %q", got)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:3001" {
		t.Fatalf("Addr = %q", got)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DATABASE_URL":             "postgres://primary",
		"POSTGRES_URL":             "postgres://pooled",
		"POSTGRES_URL_NON_POOLING": "postgres://direct",
		"PORT":                     "8080",
		"NEXTAUTH_URL":             "https://dash.example.com/",
		"SEED_MAX_ATTEMPTS":        "6",
		"SEED_RETRY_BASE_DELAY":    "250ms",
		"WAKE_RETRY_DELAY":         "1s",
		"SEED_TOKEN_SECRET":        "0123456789abcdef0123",
		"LOG_FORMAT":               "text",
	})
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.Seed.MaxAttempts != 6 || cfg.Seed.RetryBaseDelay != 250*time.Millisecond {
		t.Fatalf("unexpected seed config: %+v", cfg.Seed)
	}
	if cfg.Wake.RetryDelay != time.Second {
		t.Fatalf("unexpected wake config: %+v", cfg.Wake)
	}
	if got := cfg.Server.SeedBaseURL(); got != "https://dash.example.com" {
		t.Fatalf("SeedBaseURL = %q", got)
	}

	want := []string{"postgres://primary", "postgres://pooled", "postgres://direct"}
	got := cfg.Database.Candidates()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Candidates() = %v, want %v", got, want)
		}
	}
	if src := cfg.Database.Source("postgres://pooled"); src != "POSTGRES_URL" {
		t.Fatalf("Source = %q", src)
	}
}

func TestBaseURLPrecedence(t *testing.T) {
	s := ServerConfig{Port: 3001, BaseURL: "http://internal:3001", NextAuthURL: "https://public"}
	if got := s.SeedBaseURL(); got != "http://internal:3001" {
		t.Fatalf("SeedBaseURL = %q", got)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"PORT":              "70000",
		"SEED_MAX_ATTEMPTS": "0",
		"SEED_TOKEN_SECRET": "short",
		"LOG_LEVEL":         "verbose",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, fragment := range []string{"PORT", "SEED_MAX_ATTEMPTS", "SEED_TOKEN_SECRET", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %s in %q", fragment, err.Error())
		}
	}
}

func TestLoadFromRejectsMalformedDuration(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"WAKE_RETRY_DELAY": "soon"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
