package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout for page capture.
	// 30 seconds covers slow chat front ends without hanging a batch run.
	DefaultTimeout = 30 * time.Second

	// DefaultBlockInPicker controls whether GIF picker results are masked.
	// On by default: an unmasked picker tile defeats the point of blocking
	// a word, because the tile itself animates.
	DefaultBlockInPicker = true

	// DefaultCaseSensitive controls word matching.
	// Off by default: media URLs mix cases freely ("Benjammin-dance.gif").
	DefaultCaseSensitive = false

	// AppName is the application name used for XDG directory paths.
	AppName = "gifmask"
)

// Config holds all configuration options for gifmask.
// This struct is designed to be populated from a YAML file and CLI flags
// and passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Patterns are URL substrings that identify GIF-like media.
	// Empty means the built-in pattern set is used.
	Patterns []string `yaml:"patterns,omitempty"`

	// Words is the blocked word list. A GIF whose URL contains any of
	// these words is masked.
	Words []string `yaml:"words,omitempty"`

	// BlockInPicker controls whether GIF picker results are masked too.
	BlockInPicker bool `yaml:"blockInPicker"`

	// CaseSensitive controls whether word matching respects case.
	CaseSensitive bool `yaml:"caseSensitive"`

	// Proxy is an optional SOCKS5 proxy in "host:port" format used for
	// page capture. Empty means direct connections.
	Proxy string `yaml:"proxy,omitempty"`

	// Timeout is the per-request timeout for page capture.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Database is the path of the settings database. Empty means the
	// default XDG data location.
	Database string `yaml:"database,omitempty"`

	// Hosts maps host names to per-service overrides.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`
}

// DefaultConfig returns a Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because the defaults are not all zero (BlockInPicker is on,
// the timeout is non-zero). This also serves as documentation of what the
// defaults are.
func DefaultConfig() *Config {
	return &Config{
		BlockInPicker: DefaultBlockInPicker,
		CaseSensitive: DefaultCaseSensitive,
		Timeout:       DefaultTimeout,
	}
}

// XDGConfigDir returns the XDG config directory for gifmask.
// On Linux: ~/.config/gifmask
// On macOS: ~/Library/Application Support/gifmask
// On Windows: %APPDATA%\gifmask
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the XDG data directory for gifmask.
// On Linux: ~/.local/share/gifmask
// On macOS: ~/Library/Application Support/gifmask
// On Windows: %LOCALAPPDATA%\gifmask
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// An empty pattern matches every URL, which would mask everything
	for _, p := range c.Patterns {
		if p == "" {
			return ErrEmptyPattern
		}
	}

	// Same hazard for words
	for _, w := range c.Words {
		if w == "" {
			return ErrEmptyWord
		}
	}

	for host, hc := range c.Hosts {
		if host == "" {
			return ErrEmptyHost
		}
		for _, p := range hc.Patterns {
			if p == "" {
				return ErrEmptyPattern
			}
		}
		for _, w := range hc.Words {
			if w == "" {
				return ErrEmptyWord
			}
		}
	}

	return nil
}
