package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Worker pool. 1 processes files strictly one at a time; higher
	// values fan out across files (report order is unaffected).
	Workers int

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Suppress per-file progress output.
	Quiet bool
}

func Load() Config {
	cfg := Config{
		Workers:   envInt("PDFTRIAGE_WORKERS", 1),
		LogLevel:  envOr("PDFTRIAGE_LOG_LEVEL", "info"),
		LogFormat: envOr("PDFTRIAGE_LOG_FORMAT", "text"),
		Quiet:     envBool("PDFTRIAGE_QUIET", false),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
