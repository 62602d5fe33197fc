package repository

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateSubmodulePath checks a path before it is handed to git. Paths are
// always passed after "--", so only values that could escape the working
// tree or that git cannot represent are rejected.
func ValidateSubmodulePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("submodule path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("submodule path contains a NUL byte: %q", path)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return fmt.Errorf("submodule path must be relative: %s", path)
	}
	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("submodule path escapes the repository: %s", path)
	}
	return nil
}
