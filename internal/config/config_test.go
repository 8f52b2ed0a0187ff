package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StylescopeDir != filepath.Join(home, ".stylescope") {
		t.Errorf("StylescopeDir = %s", cfg.StylescopeDir)
	}
	if _, err := os.Stat(cfg.StylescopeDir); err != nil {
		t.Errorf("Expected stylescope dir to exist: %v", err)
	}
	if _, err := os.Stat(cfg.LogDir); err != nil {
		t.Errorf("Expected log dir to exist: %v", err)
	}
	if cfg.Settings.ServerURL == "" {
		t.Error("Expected a default server URL")
	}
	if cfg.Settings.NodeWidth != 100 || cfg.Settings.VerticalGap != 32 {
		t.Errorf("Unexpected default geometry: %+v", cfg.Settings)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".stylescope")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	yaml := "server_url: http://example.test:9000\nnode_width: 80\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Settings.ServerURL != "http://example.test:9000" {
		t.Errorf("ServerURL = %s", cfg.Settings.ServerURL)
	}
	if cfg.Settings.NodeWidth != 80 {
		t.Errorf("NodeWidth = %v, want 80", cfg.Settings.NodeWidth)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Settings.NodeHeight != 120 {
		t.Errorf("NodeHeight = %v, want default 120", cfg.Settings.NodeHeight)
	}
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings([]byte("horizontal_gap: 24\n"))
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}
	if s.HorizontalGap != 24 {
		t.Errorf("HorizontalGap = %v, want 24", s.HorizontalGap)
	}
	if s.ServerURL == "" {
		t.Error("Expected default server URL to survive")
	}

	if _, err := ParseSettings([]byte(": bad\n  yaml")); err == nil {
		t.Error("ParseSettings() should reject invalid YAML")
	}
}
