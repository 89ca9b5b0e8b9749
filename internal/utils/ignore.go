package utils

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns while preserving order.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ShouldIgnoreByPath reports whether a slash-separated path relative to the
// scan root matches one of the ignore patterns.
//
// A pattern ending with "/" matches that directory and everything below it.
// A single-segment pattern matches the last path segment anywhere in the
// tree; a pattern with several segments, or one starting with "/", is
// anchored at the root. Segments use filepath.Match semantics.
func ShouldIgnoreByPath(relativePath string, ignorePatterns []string) bool {
	normalizedPath := strings.Trim(strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator), pathSegmentSeparator)
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	for _, patternValue := range ignorePatterns {
		normalizedPattern := strings.ReplaceAll(strings.TrimSpace(patternValue), "\\", pathSegmentSeparator)
		anchored := strings.HasPrefix(normalizedPattern, pathSegmentSeparator)
		normalizedPattern = strings.TrimPrefix(normalizedPattern, pathSegmentSeparator)
		if normalizedPattern == "" {
			continue
		}

		isDirectoryPattern := strings.HasSuffix(normalizedPattern, pathSegmentSeparator)
		trimmedPattern := strings.TrimSuffix(normalizedPattern, pathSegmentSeparator)
		patternSegments := strings.Split(trimmedPattern, pathSegmentSeparator)
		anchored = anchored || len(patternSegments) > 1

		if isDirectoryPattern {
			if anchored {
				if len(pathSegments) >= len(patternSegments) && segmentsMatch(pathSegments[:len(patternSegments)], patternSegments) {
					return true
				}
				continue
			}
			for _, segment := range pathSegments {
				if isMatched, matchError := filepath.Match(patternSegments[0], segment); matchError == nil && isMatched {
					return true
				}
			}
			continue
		}

		if !anchored {
			if isMatched, matchError := filepath.Match(patternSegments[0], lastSegment); matchError == nil && isMatched {
				return true
			}
			continue
		}
		if len(pathSegments) == len(patternSegments) && segmentsMatch(pathSegments, patternSegments) {
			return true
		}
	}
	return false
}

// segmentsMatch reports whether each pattern segment matches the
// corresponding path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
