package internal

import (
	"os"
	"path/filepath"
)

// BaseDir returns the application data directory, ~/.gridmatch.
func BaseDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".gridmatch"), nil
}

// DefaultDBPath returns the default SQLite database location.
func DefaultDBPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "data", "gridmatch.db"), nil
}

// DefaultIndexDir returns the default bleve index location.
func DefaultIndexDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "index"), nil
}
