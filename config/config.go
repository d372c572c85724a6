// Package config loads runtime settings from the environment. Every knob has
// a default so a bare process comes up against a local redis.
package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/zeflq/getrevio-core/policy"
	"github.com/zeflq/getrevio-core/querycache"
)

// Config carries process-level settings.
type Config struct {
	// BaseURL is the public origin short links resolve under.
	BaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CodeLength   int
	CodeAttempts int

	QueryCache querycache.Config

	Debug bool
}

// Load reads the environment, applying defaults for anything unset.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:       getEnv("GETREVIO_BASE_URL", "https://go.example"),
		RedisAddr:     getEnv("GETREVIO_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("GETREVIO_REDIS_PASSWORD", ""),
		QueryCache:    querycache.DefaultConfig(),
	}
	var err error
	if cfg.RedisDB, err = getEnvInt("GETREVIO_REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CodeLength, err = getEnvInt("GETREVIO_CODE_LENGTH", 6); err != nil {
		return Config{}, err
	}
	if cfg.CodeAttempts, err = getEnvInt("GETREVIO_CODE_ATTEMPTS", 5); err != nil {
		return Config{}, err
	}
	if cfg.QueryCache.Capacity, err = getEnvInt("GETREVIO_CACHE_CAPACITY", cfg.QueryCache.Capacity); err != nil {
		return Config{}, err
	}
	cfg.Debug = getEnv("GETREVIO_DEBUG", "") != ""

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return &policy.ConfigError{Field: "BaseURL", Message: "is required"}
	}
	if c.CodeLength <= 0 || c.CodeLength > 32 {
		return &policy.ConfigError{Field: "CodeLength", Message: "must be between 1 and 32"}
	}
	if c.CodeAttempts <= 0 {
		return &policy.ConfigError{Field: "CodeAttempts", Message: "must be positive"}
	}
	return c.QueryCache.Validate()
}

// NewLogger builds the process logger: production JSON by default, a
// development console logger when Debug is set.
func (c Config) NewLogger() (*zap.Logger, error) {
	if c.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
