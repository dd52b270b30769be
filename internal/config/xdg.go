// Package config provides XDG path helpers and the TOML config file.
package config

import (
	"os"
	"path/filepath"
)

const appName = "lumina"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	return xdgHome("XDG_STATE_HOME", ".local", "state")
}

func xdgHome(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultDBPath returns the default path for the reading history database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "history.db")
}

// DefaultStateDir returns the directory holding per-document positions.
func DefaultStateDir() string {
	return filepath.Join(XDGStateHome(), appName)
}

// DefaultLogPath returns the default log file.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appName, "lumina.log")
}
