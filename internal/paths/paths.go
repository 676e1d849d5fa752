// Package paths provides a single source of truth for broadcast file paths.
// All path helpers honor the BROADCAST_DIR override for isolated testing.
//
// Path resolution precedence:
//  1. BROADCAST_DIR sets the base directory (derives config/log/history)
//  2. Default behavior (~/.broadcast, ~/.config/broadcast) when unset
package paths

import (
	"os"
	"path/filepath"
)

// EnvDir is the base directory override (e.g., /tmp/broadcast-e2e).
const EnvDir = "BROADCAST_DIR"

// BaseDir returns the broadcast base directory (~/.broadcast by default).
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".broadcast"), nil
}

// ConfigDir returns the config directory (~/.config/broadcast by default).
// When BROADCAST_DIR is set, returns BROADCAST_DIR/config instead.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return filepath.Join(dir, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "broadcast"), nil
}

// ConfigPath returns the path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the default log file path.
// Falls back to the temp dir when no home directory is available.
func LogPath() string {
	base, err := BaseDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "broadcast.log")
	}
	return filepath.Join(base, "broadcast.log")
}

// HistoryPath returns the REPL history file path.
func HistoryPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "repl_history"), nil
}
