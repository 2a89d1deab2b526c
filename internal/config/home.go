package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetHome returns the filefuser home directory
// Priority order:
//  1. FILEFUSER_HOME environment variable (if set, used as-is)
//  2. ~/.filefuser (created if missing)
func GetHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	home := filepath.Join(userHome, ".filefuser")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create filefuser home directory: %w", err)
	}

	return home, nil
}

// HistoryDBPath returns the configured ledger path, or
// $FILEFUSER_HOME/history.db when none is set.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}

	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
