package config

import (
	"errors"
	"testing"

	"github.com/zeflq/getrevio-core/policy"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://go.example" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.CodeLength != 6 || cfg.CodeAttempts != 5 {
		t.Errorf("code settings = %d/%d", cfg.CodeLength, cfg.CodeAttempts)
	}
	if cfg.QueryCache.Capacity == 0 {
		t.Error("query cache defaults missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GETREVIO_BASE_URL", "https://links.example")
	t.Setenv("GETREVIO_REDIS_ADDR", "redis:6380")
	t.Setenv("GETREVIO_CODE_LENGTH", "8")
	t.Setenv("GETREVIO_DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://links.example" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RedisAddr != "redis:6380" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.CodeLength != 8 {
		t.Errorf("CodeLength = %d", cfg.CodeLength)
	}
	if !cfg.Debug {
		t.Error("Debug not set")
	}
}

func TestLoadRejectsMalformedIntegers(t *testing.T) {
	t.Setenv("GETREVIO_CODE_LENGTH", "six")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric GETREVIO_CODE_LENGTH")
	}
}

func TestValidate(t *testing.T) {
	base, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.BaseURL = "" }},
		{"zero code length", func(c *Config) { c.CodeLength = 0 }},
		{"oversized code length", func(c *Config) { c.CodeLength = 64 }},
		{"zero attempts", func(c *Config) { c.CodeAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *policy.ConfigError
			if err == nil || !errors.As(err, &cfgErr) {
				t.Errorf("got %v, want ConfigError", err)
			}
		})
	}
}
