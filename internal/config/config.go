// Package config reads the service settings from the environment, with an
// optional .env file layered on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Week start values for TRACE_WEEK_START
const (
	WeekStartMonday = "monday"
	WeekStartSunday = "sunday"
)

// Config holds every setting of the trace binary
type Config struct {
	DataDir  string `env:"TRACE_DATA_DIR"`
	Host     string `env:"TRACE_HOST" envDefault:""`
	Port     int    `env:"TRACE_PORT" envDefault:"8080"`
	AuthFile string `env:"TRACE_AUTH_FILE"`

	Log           string `env:"TRACE_LOG"`
	LogMaxSize    int    `env:"TRACE_LOG_MAX_SIZE" envDefault:"20"`
	LogMaxBackups int    `env:"TRACE_LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAge     int    `env:"TRACE_LOG_MAX_AGE" envDefault:"28"`

	WeekStart string `env:"TRACE_WEEK_START" envDefault:"monday"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"TRACE_GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// Load parses the environment. When envFile exists it is applied first,
// overriding variables already set.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: no TRACE_DATA_DIR and no home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".trace")
	}
	c.DataDir, _ = filepath.Abs(c.DataDir)

	if c.AuthFile == "" {
		c.AuthFile = filepath.Join(c.DataDir, "auth.secret")
	}
	if c.Log != "" && !filepath.IsAbs(c.Log) {
		c.Log = filepath.Join(c.DataDir, c.Log)
	}

	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case WeekStartMonday, WeekStartSunday:
	case "":
		c.WeekStart = WeekStartMonday
	default:
		return fmt.Errorf("config: TRACE_WEEK_START must be %q or %q, got %q", WeekStartMonday, WeekStartSunday, c.WeekStart)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid TRACE_PORT %d", c.Port)
	}
	return nil
}

// MondayStart reports whether weeks begin on Monday
func (c Config) MondayStart() bool {
	return c.WeekStart != WeekStartSunday
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIEnabled reports whether a Gemini key is configured
func (c Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}
