// Package config loads the client configuration from environment variables
// and an optional .env file. Values are resolved once at process start.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is the loopback address the backend listens on by default.
const DefaultAPIURL = "http://localhost:8000"

// Config holds everything the client needs to reach the backend and store
// its local state.
type Config struct {
	APIURL         string        `env:"LOCALWRITER_API_URL" envDefault:"http://localhost:8000"`
	Timeout        time.Duration `env:"LOCALWRITER_TIMEOUT" envDefault:"120s"`
	HealthInterval time.Duration `env:"LOCALWRITER_HEALTH_INTERVAL" envDefault:"30s"`
	HealthTimeout  time.Duration `env:"LOCALWRITER_HEALTH_TIMEOUT" envDefault:"5s"`
	DataDir        string        `env:"LOCALWRITER_DIR"` // empty means the user config dir
	LogLevel       string        `env:"LOCALWRITER_LOG_LEVEL" envDefault:"info"`
}

// Load reads envFile (a missing file is ignored), parses the environment,
// and validates the result.
func Load(envFile string) (Config, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.APIURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIURL), "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are
// ignored; variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("config: api url %q: %w", c.APIURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: api url %q: scheme must be http or https", c.APIURL)
	}

	if u.Host == "" {
		return fmt.Errorf("config: api url %q: host is required", c.APIURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}

	if c.HealthInterval <= 0 {
		return fmt.Errorf("config: health interval must be positive, got %s", c.HealthInterval)
	}

	if c.HealthTimeout <= 0 {
		return fmt.Errorf("config: health timeout must be positive, got %s", c.HealthTimeout)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}

	return nil
}
