package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the user's durable preferences, written back whenever the
// user changes one of them in the dashboard. Absent fields mean "never set":
// RefreshSec is a pointer so a stored manual mode (0) is distinguishable
// from an absent value.
type Settings struct {
	APIBase    string `yaml:"api_base,omitempty"`
	RefreshSec *int   `yaml:"refresh_sec,omitempty"`
	Theme      string `yaml:"theme,omitempty"`
}

// SettingsPath returns the durable settings file location, creating no
// directories. Defaults to <user config dir>/finactical-dash/settings.yaml.
func SettingsPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "finactical-dash", "settings.yaml"), nil
}

// LoadSettings reads stored settings from path. A missing file is not an
// error; it returns empty settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// SaveSettings writes settings to path, creating parent directories as
// needed.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Resolve layers stored settings over the config file / environment values.
// Stored user preferences win; anything never set falls back to cfg.
func Resolve(cfg Config, stored Settings) Config {
	if stored.APIBase != "" {
		cfg.APIBase = stored.APIBase
	}
	if stored.RefreshSec != nil && *stored.RefreshSec >= 0 {
		cfg.RefreshSec = *stored.RefreshSec
	}
	// Hand-edited settings files may hold anything; an unknown theme falls
	// back to the configured one.
	if stored.Theme == "dark" || stored.Theme == "light" {
		cfg.Theme = stored.Theme
	}
	return cfg
}
