// Package scan builds a forest from a directory that already exists on disk,
// so that it can be rendered as tree text and materialized elsewhere.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/parser"
	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	errorAbsolutePathFormat  = "getting absolute path for %s: %w"
	errorStatRootFormat      = "stat %s: %w"
	errorReadDirectoryFormat = "reading directory %s: %w"
	defaultRootName          = "root"

	logMessageSkippedDirectory = "skipping unreadable subdirectory"
	logMessageSkippedName      = "skipping entry whose name cannot be written as tree text"
	logMessageSkippedSymlink   = "skipping symbolic link"
	logMessageAmbiguousFile    = "file name will parse back as a directory"
)

// ErrNotDirectory reports a scan root that is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options controls a directory scan.
type Options struct {
	// IgnorePatterns are matched against slash-separated paths relative to the root.
	IgnorePatterns []string
	// MaxDepth limits how many levels below the root are listed. Zero means unlimited.
	MaxDepth int
	Logger   *zap.Logger
}

type scanner struct {
	root    string
	options Options
	logger  *zap.Logger
	lines   []forest.LineInfo
}

// Scan lists rootDirectoryPath and everything below it as a single-root forest.
// Entries are listed in directory order, symbolic links are skipped and
// unreadable subdirectories are kept as empty directories.
func Scan(ctx context.Context, rootDirectoryPath string, options Options) (*forest.Forest, error) {
	absoluteRoot, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	info, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, absoluteRoot, statError)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", absoluteRoot, ErrNotDirectory)
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	walker := &scanner{root: absoluteRoot, options: options, logger: logger}
	walker.lines = append(walker.lines, forest.LineInfo{Name: rootName(absoluteRoot), Kind: forest.KindDirectory})

	entries, readError := os.ReadDir(absoluteRoot)
	if readError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, absoluteRoot, readError)
	}
	if walkError := walker.walk(ctx, absoluteRoot, entries, 1); walkError != nil {
		return nil, walkError
	}
	return forest.Build(walker.lines), nil
}

func rootName(absoluteRoot string) string {
	name := filepath.Base(absoluteRoot)
	if name == string(filepath.Separator) || name == "." || strings.ContainsAny(name, `/\`) {
		return defaultRootName
	}
	return name
}

func (walker *scanner) walk(ctx context.Context, directoryPath string, entries []fs.DirEntry, depth int) error {
	if contextError := ctx.Err(); contextError != nil {
		return contextError
	}
	for _, directoryEntry := range entries {
		childPath := filepath.Join(directoryPath, directoryEntry.Name())
		relativeChildPath := filepath.ToSlash(utils.RelativePathOrSelf(childPath, walker.root))
		if utils.ShouldIgnoreByPath(relativeChildPath, walker.options.IgnorePatterns) {
			continue
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			walker.logger.Debug(logMessageSkippedSymlink, zap.String("path", relativeChildPath))
			continue
		}
		if !isWritableName(directoryEntry.Name()) {
			walker.logger.Warn(logMessageSkippedName, zap.String("path", relativeChildPath))
			continue
		}

		if !directoryEntry.IsDir() {
			if parser.InferKind(directoryEntry.Name()) != forest.KindFile {
				walker.logger.Warn(logMessageAmbiguousFile, zap.String("path", relativeChildPath))
			}
			walker.lines = append(walker.lines, forest.LineInfo{Name: directoryEntry.Name(), Kind: forest.KindFile, Depth: depth})
			continue
		}
		walker.lines = append(walker.lines, forest.LineInfo{Name: directoryEntry.Name(), Kind: forest.KindDirectory, Depth: depth})
		if walker.options.MaxDepth > 0 && depth >= walker.options.MaxDepth {
			continue
		}
		childEntries, readError := os.ReadDir(childPath)
		if readError != nil {
			walker.logger.Warn(logMessageSkippedDirectory, zap.String("path", relativeChildPath), zap.Error(readError))
			continue
		}
		if walkError := walker.walk(ctx, childPath, childEntries, depth+1); walkError != nil {
			return walkError
		}
	}
	return nil
}

// isWritableName reports whether name survives a render and parse round trip.
func isWritableName(name string) bool {
	if strings.ContainsAny(name, "\r\n\\") || strings.Contains(name, parser.CommentMarker) || parser.IsHashComment(name) {
		return false
	}
	return strings.TrimSpace(name) == name
}
