package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".gifmask.yml"

// ErrConfigNotFound is returned when no configuration file exists.
// Callers fall back to DefaultConfig when they receive it for an
// unspecified path, and report it when the user named a file explicitly.
var ErrConfigNotFound = errors.New("configuration file not found")

// Load reads the configuration file at path. When path is empty, the
// standard locations are searched (see FindConfigFile).
//
// The file is decoded over DefaultConfig, so keys absent from the file
// keep their defaults. In particular blockInPicker stays on unless the
// file turns it off explicitly.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindConfigFile("")
		if path == "" {
			return nil, ErrConfigNotFound
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .gifmask.yml in the current directory
// 3. Look for gifmask.yml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check XDG config directory
	xdgConfig := filepath.Join(XDGConfigDir(), "gifmask.yml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
