package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CleanPath sanitizes a file path to prevent directory traversal
func CleanPath(path string) (string, error) {
	cleaned := filepath.Clean(path)

	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: contains directory traversal")
	}

	if !filepath.IsAbs(cleaned) {
		abs, err := filepath.Abs(cleaned)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		cleaned = abs
	}

	return cleaned, nil
}

// EnsureDir creates a directory (and parents) if it does not exist
func EnsureDir(dir string) error {
	cleaned, err := CleanPath(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(cleaned, 0o755)
}

// TablePath returns the CSV path for a named table under dir
func TablePath(dir, table string) string {
	return filepath.Join(dir, table+".csv")
}
