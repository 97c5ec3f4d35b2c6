// Package config reads process settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string        // VULNVIZ_ENV ("dev" enables pretty logs and strict adapting)
	Addr           string        // VULNVIZ_ADDR (default ":8080")
	APIBaseURL     string        // VULNVIZ_API_BASE_URL (default "http://localhost:8000")
	PredictTimeout time.Duration // VULNVIZ_PREDICT_TIMEOUT (default 30s)
	SessionIdle    time.Duration // VULNVIZ_SESSION_IDLE (default 30m; canvases idle longer are closed)
	LogLevel       string        // VULNVIZ_LOG_LEVEL (default "info")
	Theme          string        // VULNVIZ_THEME (optional path to a .toml or .yaml theme)
}

// Dev reports whether the process runs in development mode.
func (c *Config) Dev() bool { return c.Env == "dev" }

// EnvFile returns the dotenv file for the current VULNVIZ_ENV.
func EnvFile() string {
	if os.Getenv("VULNVIZ_ENV") == "dev" {
		return ".env.dev"
	}
	return ".env"
}

// Load reads EnvFile (a missing file is fine) and then the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	envfile := EnvFile()
	if err := godotenv.Load(envfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envfile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	c := &Config{
		Env:        os.Getenv("VULNVIZ_ENV"),
		Addr:       envOrDefault("VULNVIZ_ADDR", ":8080"),
		APIBaseURL: envOrDefault("VULNVIZ_API_BASE_URL", "http://localhost:8000"),
		LogLevel:   envOrDefault("VULNVIZ_LOG_LEVEL", "info"),
		Theme:      os.Getenv("VULNVIZ_THEME"),
	}

	var err error
	if c.PredictTimeout, err = durationEnv("VULNVIZ_PREDICT_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if c.SessionIdle, err = durationEnv("VULNVIZ_SESSION_IDLE", "30m"); err != nil {
		return nil, err
	}
	return c, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", key, d)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
