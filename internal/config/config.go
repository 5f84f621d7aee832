// Package config loads dashboard configuration from YAML and environment
// variables, and persists the user's durable settings between runs.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBase    string `yaml:"api_base"`
	APIKey     string `yaml:"api_key"`
	RefreshSec int    `yaml:"refresh_sec"`
	Theme      string `yaml:"theme"`

	TradesLimit int    `yaml:"trades_limit"`
	ExportDir   string `yaml:"export_dir"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

func Default() Config {
	return Config{
		APIBase:     "https://api.yourdomain.com",
		RefreshSec:  30,
		Theme:       "dark",
		TradesLimit: 500,
		ExportDir:   ".",
		LogLevel:    "info",
		LogFile:     "dash.log",
	}
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("DASH_API_BASE")); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("DASH_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("DASH_REFRESH_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RefreshSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DASH_THEME")); v != "" {
		c.Theme = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DASH_TRADES_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TradesLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DASH_EXPORT_DIR")); v != "" {
		c.ExportDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DASH_LOG_LEVEL")); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DASH_LOG_FILE")); v != "" {
		c.LogFile = v
	}
}
