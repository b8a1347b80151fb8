package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REPLAY2048_ADDR", "")
	t.Setenv("REPLAY2048_DB", "")
	t.Setenv("REPLAY2048_SCORES", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != "127.0.0.1:8420" {
		t.Errorf("Addr = %q, want default", cfg.Addr)
	}
	if filepath.Base(cfg.DBPath) != "runs.db" {
		t.Errorf("DBPath = %q, want .../runs.db", cfg.DBPath)
	}
	if filepath.Base(cfg.ScoresPath) != "scores.json" {
		t.Errorf("ScoresPath = %q, want .../scores.json", cfg.ScoresPath)
	}
	if cfg.Verbose {
		t.Error("Verbose defaulted to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REPLAY2048_ADDR", "127.0.0.1:9000")
	t.Setenv("REPLAY2048_DB", filepath.Join(dir, "custom.db"))
	t.Setenv("REPLAY2048_SCORES", filepath.Join(dir, "custom.json"))
	t.Setenv("REPLAY2048_VERBOSE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DBPath != filepath.Join(dir, "custom.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ScoresPath != filepath.Join(dir, "custom.json") {
		t.Errorf("ScoresPath = %q", cfg.ScoresPath)
	}
	if !cfg.Verbose {
		t.Error("Verbose override ignored")
	}
}
