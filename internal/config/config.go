// Package config loads daemon configuration from the environment and
// resolves default data paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const appDirName = "replay2048"

// Config holds the daemon's runtime settings. Empty paths resolve under
// the user's data directory on first use.
type Config struct {
	Addr       string `env:"REPLAY2048_ADDR" envDefault:"127.0.0.1:8420"`
	DBPath     string `env:"REPLAY2048_DB"`
	ScoresPath string `env:"REPLAY2048_SCORES"`
	Verbose    bool   `env:"REPLAY2048_VERBOSE"`
}

// Load parses configuration from environment variables and fills in
// default paths.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBPath == "" || cfg.ScoresPath == "" {
		base, err := DataDir()
		if err != nil {
			return Config{}, err
		}
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(base, "runs.db")
		}
		if cfg.ScoresPath == "" {
			cfg.ScoresPath = filepath.Join(base, "scores.json")
		}
	}

	return cfg, nil
}

// DataDir returns an OS-appropriate writable directory for the app,
// creating it if necessary. The fallback chain is the user config dir,
// then a dot-directory under the home dir, then the working directory.
func DataDir() (string, error) {
	dir := appDataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return dir, nil
}

func appDataDir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, appDirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+appDirName)
	}
	return "."
}
