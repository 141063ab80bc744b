package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("a missing config file must not be an error: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("expected data dir %s, got %s", dir, cfg.DataDir)
	}
	if cfg.Git.MaxCommits != 50 {
		t.Errorf("expected default maxCommits 50, got %d", cfg.Git.MaxCommits)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()

	content := []byte(`{
		"git": {"maxCommits": 200},
		"scanner": {"binary": "depscan", "args": ["scan", "--json"]},
		"logging": {"format": "json", "level": "debug"}
	}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), content, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Git.MaxCommits != 200 {
		t.Errorf("override not applied, got %d", cfg.Git.MaxCommits)
	}
	if cfg.Scanner.Binary != "depscan" || len(cfg.Scanner.Args) != 2 {
		t.Errorf("scanner config not applied: %+v", cfg.Scanner)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format not applied: %q", cfg.Logging.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Git.TimeoutSeconds != 30 {
		t.Errorf("expected default git timeout, got %d", cfg.Git.TimeoutSeconds)
	}
	if cfg.Detectors.TemporalDays != 30 {
		t.Errorf("expected default temporal window, got %d", cfg.Detectors.TemporalDays)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.Git.MaxCommits = 75

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Git.MaxCommits != 75 {
		t.Errorf("round trip lost maxCommits, got %d", loaded.Git.MaxCommits)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 99 }},
		{"non-positive maxCommits", func(c *Config) { c.Git.MaxCommits = 0 }},
		{"non-positive scanner timeout", func(c *Config) { c.Scanner.TimeoutMinutes = -1 }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tt.name)
		}
	}
}
