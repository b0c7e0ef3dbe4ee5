package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultLoader reads the config file from the user config directory and
// then applies environment variable overrides, so a webhook URL or SMTP
// password never has to live on disk.
type DefaultLoader struct {
	path string
}

// NewDefaultLoader returns a loader for ~/.config/opsaudit/config.yaml.
// An explicit non-empty path overrides the default location.
func NewDefaultLoader(path string) *DefaultLoader {
	return &DefaultLoader{path: path}
}

// ConfigPath implements Loader.
func (l *DefaultLoader) ConfigPath() string {
	if l.path != "" {
		return l.path
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "opsaudit", "config.yaml")
}

// Load implements Loader. A missing config file is not an error: the zero
// Config plus environment overrides is a valid configuration.
func (l *DefaultLoader) Load() (*Config, error) {
	cfg := &Config{}

	path := l.ConfigPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// no file; environment-only configuration
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}
	return cfg, nil
}
