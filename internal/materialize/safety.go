package materialize

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateName checks that name is a single path segment: not empty, not "."
// or "..", free of separators and NUL bytes.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%q contains a path separator: %w", name, ErrInvalidName)
	}
	return nil
}

// SafeJoin joins the slash-separated relative path onto root and makes sure
// the result stays inside root.
func SafeJoin(root string, relativePath string) (string, error) {
	cleanRoot := filepath.Clean(root)
	joined := filepath.Join(cleanRoot, filepath.FromSlash(relativePath))
	relative, err := filepath.Rel(cleanRoot, joined)
	if err != nil {
		return "", fmt.Errorf("resolve %s against %s: %w", relativePath, cleanRoot, err)
	}
	relativeSlash := filepath.ToSlash(relative)
	if relativeSlash == ".." || strings.HasPrefix(relativeSlash, "../") || filepath.IsAbs(relative) {
		return "", fmt.Errorf("%s: %w", relativePath, ErrPathEscapes)
	}
	return joined, nil
}
