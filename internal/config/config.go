package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP Server
	HTTPPort         string        `env:"HTTP_PORT"          envDefault:"8080"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"30s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPBodyLimitMB  int           `env:"HTTP_BODY_LIMIT_MB" envDefault:"32"`

	// Risk classifier (both empty disables risk scoring)
	ClassifierModelPath  string        `env:"CLASSIFIER_MODEL_PATH"`
	ClassifierURL        string        `env:"CLASSIFIER_URL"`
	ClassifierTimeout    time.Duration `env:"CLASSIFIER_TIMEOUT"     envDefault:"10s"`
	ClassifierMaxRetries int           `env:"CLASSIFIER_MAX_RETRIES" envDefault:"3"`

	// Result cache
	CacheTTL             time.Duration `env:"CACHE_TTL"              envDefault:"15m"`
	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"30m"`
}

// Load reads configuration from the environment. Variables in the given .env
// files are applied first without overriding the environment; missing files
// are ignored.
func Load(dotenv ...string) (*Config, error) {
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.HTTPBodyLimitMB <= 0 {
		return fmt.Errorf("HTTP_BODY_LIMIT_MB must be positive, got %d", c.HTTPBodyLimitMB)
	}
	if c.ClassifierMaxRetries < 0 {
		return fmt.Errorf("CLASSIFIER_MAX_RETRIES must not be negative, got %d", c.ClassifierMaxRetries)
	}
	return nil
}
