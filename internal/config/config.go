package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the redline service configuration.
type Config struct {
	Daemon   DaemonConfig   `yaml:"daemon"`
	Learning LearningConfig `yaml:"learning"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Storage  StorageConfig  `yaml:"storage"`
}

// DaemonConfig holds daemon-related settings.
type DaemonConfig struct {
	ListenAddr string `yaml:"listen_addr"` // HTTP listen address
	LogLevel   string `yaml:"log_level"`   // debug, info, warn, error
}

// LearningConfig holds the tunable thresholds of the rule aggregator.
// The dominance threshold and confidence constants were chosen empirically;
// they are exposed here rather than hard-coded so operators can adjust them.
type LearningConfig struct {
	// MinOccurrences is the number of matching signals required before a
	// rule is considered active rather than weak. Default: 2.
	MinOccurrences int `yaml:"min_occurrences"`

	// DominanceThreshold is the minimum share of transitions from a source
	// token that must land on one target before the rule is considered
	// unambiguous. Below it the rule is conflicted. Default: 0.6.
	DominanceThreshold float64 `yaml:"dominance_threshold"`

	// SeedPairs are curated corrections accepted as replacement signals
	// even when the two words share no edit proximity, such as a
	// terminology swap like crust -> rim. Rule status still follows the
	// normal occurrence and dominance rules.
	SeedPairs []SeedPair `yaml:"seed_pairs"`
}

// SeedPair is a curated correction pair loaded from configuration.
type SeedPair struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// OverlayConfig holds prompt-overlay rendering settings.
type OverlayConfig struct {
	// MaxRules caps the number of rules rendered into the overlay text
	// block, highest-occurrence first. Default: 25.
	MaxRules int `yaml:"max_rules"`
}

// StorageConfig holds storage locations.
type StorageConfig struct {
	// DatabasePath overrides the default SQLite database location.
	DatabasePath string `yaml:"database_path"`

	// DocumentsDir is the directory the file extractor resolves text
	// references against.
	DocumentsDir string `yaml:"documents_dir"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			ListenAddr: "127.0.0.1:7433",
			LogLevel:   "info",
		},
		Learning: LearningConfig{
			MinOccurrences:     2,
			DominanceThreshold: 0.6,
		},
		Overlay: OverlayConfig{
			MaxRules: 25,
		},
		Storage: StorageConfig{},
	}
}

// Load reads the configuration from the default location.
// A missing file is not an error; defaults are returned.
func Load() (*Config, error) {
	path := os.Getenv("REDLINE_CONFIG")
	if path == "" {
		path = DefaultPaths().ConfigFile()
	}
	return LoadFromFile(path)
}

// LoadFromFile reads the configuration from the given path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyPathDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.applyPathDefaults()
	return cfg, nil
}

// applyPathDefaults fills empty storage locations from the XDG defaults.
func (c *Config) applyPathDefaults() {
	paths := DefaultPaths()
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = paths.DatabaseFile()
	}
	if c.Storage.DocumentsDir == "" {
		c.Storage.DocumentsDir = paths.DocumentsDir()
	}
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if c.Learning.MinOccurrences < 1 {
		return fmt.Errorf("learning.min_occurrences must be >= 1, got %d", c.Learning.MinOccurrences)
	}
	if c.Learning.DominanceThreshold <= 0 || c.Learning.DominanceThreshold > 1 {
		return fmt.Errorf("learning.dominance_threshold must be in (0, 1], got %g", c.Learning.DominanceThreshold)
	}
	if c.Overlay.MaxRules < 0 {
		return fmt.Errorf("overlay.max_rules must be >= 0, got %d", c.Overlay.MaxRules)
	}
	for i, p := range c.Learning.SeedPairs {
		if p.Source == "" || p.Target == "" {
			return fmt.Errorf("learning.seed_pairs[%d]: source and target are required", i)
		}
	}
	return nil
}

// SaveToFile writes the configuration to the given path.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
