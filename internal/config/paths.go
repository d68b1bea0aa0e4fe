// Package config provides configuration management for the redline service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations used by the service.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/redline)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/redline)
	DataDir string
}

// DefaultPaths returns the default paths based on the XDG Base Directory spec.
func DefaultPaths() *Paths {
	home := homeDir()

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "redline"),
		DataDir:   filepath.Join(dataHome, "redline"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the SQLite database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "learning.db")
}

// DocumentsDir returns the default directory extracted documents are read from.
func (p *Paths) DocumentsDir() string {
	return filepath.Join(p.DataDir, "documents")
}

// EnsureDirectories creates the config and data directories if missing.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to the current directory; callers that need a real
		// home directory will surface the failure on first write.
		return "."
	}
	return home
}
