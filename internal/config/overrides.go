package config

// HostConfig holds per-service overrides for a single host.
// This allows customizing filter behavior per chat service, because the
// same word list rarely fits a work chat and a gaming server equally.
type HostConfig struct {
	// Words replaces the global word list for this host when non-empty.
	Words []string `yaml:"words,omitempty"`

	// Patterns replaces the global pattern list for this host when non-empty.
	Patterns []string `yaml:"patterns,omitempty"`

	// BlockInPicker overrides the global picker setting when set.
	// A pointer distinguishes "absent" from an explicit false.
	BlockInPicker *bool `yaml:"blockInPicker,omitempty"`

	// CaseSensitive overrides the global case setting when set.
	CaseSensitive *bool `yaml:"caseSensitive,omitempty"`
}

// ForHost returns the effective configuration for pages from the given
// host. It merges the host-specific overrides over the global values.
// The receiver is not modified.
func (c *Config) ForHost(host string) *Config {
	// Start with the global values
	result := *c
	result.Hosts = nil

	hc, ok := c.Hosts[host]
	if !ok {
		return &result
	}

	if len(hc.Words) > 0 {
		result.Words = hc.Words
	}
	if len(hc.Patterns) > 0 {
		result.Patterns = hc.Patterns
	}
	if hc.BlockInPicker != nil {
		result.BlockInPicker = *hc.BlockInPicker
	}
	if hc.CaseSensitive != nil {
		result.CaseSensitive = *hc.CaseSensitive
	}

	return &result
}
