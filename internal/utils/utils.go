// Package utils contains general helper functions used across the treeforge CLI.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const homeDirectoryPrefix = "~"

// ExpandHomeDirectory replaces a leading "~" with the current user's home directory.
func ExpandHomeDirectory(path string) (string, error) {
	if path != homeDirectoryPrefix && !strings.HasPrefix(path, homeDirectoryPrefix+string(filepath.Separator)) && !strings.HasPrefix(path, homeDirectoryPrefix+"/") {
		return path, nil
	}
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for %s: %w", path, err)
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, homeDirectoryPrefix)), nil
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil || strings.HasPrefix(relativePath, "..") {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}
