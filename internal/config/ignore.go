package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	negationPrefix      = "!"
	commentPrefix       = "#"
)

// IgnoreOptions selects the ignore sources used when scanning a directory.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	IncludeGit        bool
}

// LoadIgnoreFilePatterns reads one ignore file. A missing file yields no patterns.
// Negated patterns are not supported and are dropped.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if errors.Is(openFileError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) || strings.HasPrefix(trimmedLine, negationPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates ignore
// patterns. Patterns from a .gitignore in a nested directory are prefixed with
// that directory's path relative to the root. The .git directory is ignored
// unless options.IncludeGit is set, and options.ExclusionPatterns are appended.
func LoadRecursiveIgnorePatterns(rootDirectoryPath string, options IgnoreOptions) ([]string, error) {
	var aggregatedPatterns []string

	if options.UseGitignore {
		walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
			if walkError != nil {
				if currentDirectoryPath == rootDirectoryPath {
					return walkError
				}
				// unreadable subdirectories are reported by the scan itself
				return filepath.SkipDir
			}
			if !directoryEntry.IsDir() {
				return nil
			}
			if !options.IncludeGit && directoryEntry.Name() == utils.GitDirectoryName {
				return filepath.SkipDir
			}

			relativeDirectory := filepath.ToSlash(utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath))
			prefix := ""
			if relativeDirectory != "." {
				prefix = relativeDirectory + "/"
			}

			gitIgnoreFilePath := filepath.Join(currentDirectoryPath, utils.GitIgnoreFileName)
			gitIgnorePatterns, loadError := LoadIgnoreFilePatterns(gitIgnoreFilePath)
			if loadError != nil {
				return fmt.Errorf("loading %s from %s: %w", utils.GitIgnoreFileName, currentDirectoryPath, loadError)
			}
			for _, pattern := range gitIgnorePatterns {
				aggregatedPatterns = append(aggregatedPatterns, prefixPattern(prefix, pattern))
			}
			return nil
		}
		if walkError := filepath.WalkDir(rootDirectoryPath, walkFunction); walkError != nil {
			return nil, walkError
		}
	}

	if !options.IncludeGit {
		aggregatedPatterns = append(aggregatedPatterns, gitDirectoryPattern)
	}

	deduplicatedPatterns := utils.DeduplicatePatterns(aggregatedPatterns)
	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !slices.Contains(deduplicatedPatterns, trimmedPattern) {
			deduplicatedPatterns = append(deduplicatedPatterns, trimmedPattern)
		}
	}
	return deduplicatedPatterns, nil
}

// prefixPattern anchors a nested .gitignore pattern at its directory.
func prefixPattern(prefix string, pattern string) string {
	if prefix == "" {
		return pattern
	}
	return prefix + strings.TrimPrefix(pattern, "/")
}
