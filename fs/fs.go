// Package fs locates diffcard files on the local filesystem.
package fs

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the default configuration file path.
// Uses XDG_CONFIG_HOME if set, otherwise falls back to ~/.config/diffcard.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffcard", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "diffcard", "config.yaml")
}

// DefaultLogPath returns the default log file path.
// Uses XDG_STATE_HOME if set, otherwise falls back to ~/.local/state/diffcard.
func DefaultLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffcard", "diffcard.log")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "diffcard", "diffcard.log")
}
