// Package paths provides centralized path resolution for the form builder.
// This package has NO internal imports (only stdlib) to avoid import cycles.
// All functions return errors to allow callers to log appropriately.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the configuration file.
const ConfigFile = "formbuilder.json"

// BaseDir returns the form builder base directory (~/.formbuilder).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".formbuilder"), nil
}

// DataPath returns a path within the data directory (~/.formbuilder/<subpath>).
func DataPath(subpath string) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, subpath), nil
}

// ConfigPath returns the active config file path.
// Priority: ./formbuilder.{json,toml,yaml} (current dir) > ~/.formbuilder/formbuilder.{json,toml,yaml}
// Returns ("", nil) if no config exists - this is a valid state, not an error.
func ConfigPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}

	for _, dir := range []string{".", base} {
		for _, name := range configNames() {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				abs, err := filepath.Abs(candidate)
				if err != nil {
					return "", fmt.Errorf("failed to get absolute path: %w", err)
				}
				return abs, nil
			}
		}
	}

	// No config found - valid state
	return "", nil
}

func configNames() []string {
	return []string{ConfigFile, "formbuilder.toml", "formbuilder.yaml", "formbuilder.yml"}
}

// DefaultFormsPath returns where saved forms live by default (~/.formbuilder/forms.json).
func DefaultFormsPath() (string, error) {
	return DataPath("forms.json")
}

// DefaultDatabasePath returns the default SQLite database path (~/.formbuilder/forms.db).
func DefaultDatabasePath() (string, error) {
	return DataPath("forms.db")
}

// EnsureDir creates a directory if it doesn't exist.
// Uses 0750 permissions (owner: rwx, group: rx, other: none).
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// EnsureParentDir creates the parent directory of a file path if it doesn't exist.
func EnsureParentDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// ExpandTilde expands a path that starts with ~ to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if len(path) == 1 {
		return home, nil
	}
	return filepath.Join(home, path[1:]), nil
}
