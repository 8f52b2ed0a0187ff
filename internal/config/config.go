// internal/config/config.go
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the user-editable options read from config.yaml.
type Settings struct {
	ServerURL      string  `yaml:"server_url"`
	ReferenceImage string  `yaml:"reference_image,omitempty"`
	NodeWidth      float64 `yaml:"node_width"`
	NodeHeight     float64 `yaml:"node_height"`
	HorizontalGap  float64 `yaml:"horizontal_gap"`
	VerticalGap    float64 `yaml:"vertical_gap"`
}

// DefaultSettings returns the settings used when no config.yaml exists.
func DefaultSettings() Settings {
	return Settings{
		ServerURL:     "http://127.0.0.1:8420",
		NodeWidth:     100,
		NodeHeight:    120,
		HorizontalGap: 16,
		VerticalGap:   32,
	}
}

// Config holds resolved application paths plus the loaded settings.
type Config struct {
	HomeDir       string
	StylescopeDir string
	CachePath     string
	LogDir        string
	Settings      Settings
}

// Load resolves paths under ~/.stylescope, ensures they exist, and reads
// config.yaml if present.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stylescopeDir := filepath.Join(home, ".stylescope")
	logDir := filepath.Join(stylescopeDir, "logs")

	for _, dir := range []string{stylescopeDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		HomeDir:       home,
		StylescopeDir: stylescopeDir,
		CachePath:     filepath.Join(stylescopeDir, "trees.db"),
		LogDir:        logDir,
		Settings:      DefaultSettings(),
	}

	settingsPath := filepath.Join(stylescopeDir, "config.yaml")
	if data, err := os.ReadFile(settingsPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg.Settings); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ParseSettings parses settings YAML on top of the defaults. Fields absent
// from the document keep their default values.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
