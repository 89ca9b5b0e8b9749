// Package materialize creates the directories and files described by a forest.
//
// The walk is not transactional: each node is attempted on its own, existing
// paths are never overwritten, and failures are recorded in the Report rather
// than aborting the walk.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tyemirov/treeforge/internal/forest"
)

const (
	directoryMode fs.FileMode = 0o755
	fileMode      fs.FileMode = 0o644

	errorDestinationFormat       = "destination %s: %w"
	errorDestinationCauseFormat  = "destination %s: %w: %w"
	errorDestinationNotDirectory = "destination %s is not a directory: %w"
	errorStatFormat              = "stat %s: %w"
	errorCreateDirectoryFormat   = "create directory %s: %w"
	errorCreateFileFormat        = "create file %s: %w"
	errorWriteHeaderFormat       = "write header to %s: %w"
	errorExistingFileFormat      = "%s exists as a file: %w"
	errorExistingDirFormat       = "%s exists as a directory: %w"
)

// Options controls a materialization run.
type Options struct {
	// Headers seeds new files with a comment header built from the node comment.
	Headers bool
	// Workers above one materializes sibling subtrees of each root concurrently.
	Workers int
	// DryRun inspects the destination without writing anything.
	DryRun bool
	Logger *zap.Logger
	// Observer is called once per entry as soon as it is decided. Calls are serialized.
	Observer func(Entry)
}

type materializer struct {
	destination   string
	options       Options
	logger        *zap.Logger
	observerMutex sync.Mutex
}

// Materialize creates every node of source under destination in pre-order.
//
// A destination that cannot be prepared aborts the call before any node is
// attempted. Cancelling ctx stops the walk between nodes; the partial report
// is returned together with the context error and nothing is rolled back.
func Materialize(ctx context.Context, source *forest.Forest, destination string, options Options) (Report, error) {
	runner, report, prepareError := newMaterializer(destination, options)
	if prepareError != nil {
		return Report{}, prepareError
	}
	if source == nil || source.IsEmpty() {
		return report, nil
	}
	if options.Workers <= 1 {
		entries, walkError := runner.run(ctx, source.Nodes())
		report.Entries = entries
		return report, walkError
	}
	for _, rootID := range source.Roots() {
		entries, walkError := runner.runRootConcurrently(ctx, source, rootID)
		report.Entries = append(report.Entries, entries...)
		if walkError != nil {
			return report, walkError
		}
	}
	return report, nil
}

// MaterializeNodes creates the nodes of a flat pre-order list under
// destination, one after another.
func MaterializeNodes(ctx context.Context, nodes []forest.Node, destination string, options Options) (Report, error) {
	runner, report, prepareError := newMaterializer(destination, options)
	if prepareError != nil {
		return Report{}, prepareError
	}
	entries, walkError := runner.run(ctx, nodes)
	report.Entries = entries
	return report, walkError
}

func newMaterializer(destination string, options Options) (*materializer, Report, error) {
	if strings.TrimSpace(destination) == "" {
		return nil, Report{}, fmt.Errorf(errorDestinationFormat, "(empty)", ErrDestinationUnavailable)
	}
	absoluteDestination, absoluteError := filepath.Abs(destination)
	if absoluteError != nil {
		return nil, Report{}, fmt.Errorf(errorDestinationCauseFormat, destination, ErrDestinationUnavailable, absoluteError)
	}

	info, statError := os.Stat(absoluteDestination)
	switch {
	case statError == nil && !info.IsDir():
		return nil, Report{}, fmt.Errorf(errorDestinationNotDirectory, absoluteDestination, ErrDestinationUnavailable)
	case statError == nil:
	case errors.Is(statError, fs.ErrNotExist):
		if !options.DryRun {
			if mkdirError := os.MkdirAll(absoluteDestination, directoryMode); mkdirError != nil {
				return nil, Report{}, fmt.Errorf(errorDestinationCauseFormat, absoluteDestination, ErrDestinationUnavailable, mkdirError)
			}
		}
	default:
		return nil, Report{}, fmt.Errorf(errorDestinationCauseFormat, absoluteDestination, ErrDestinationUnavailable, statError)
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := &materializer{
		destination: absoluteDestination,
		options:     options,
		logger:      logger,
	}
	return runner, Report{Destination: absoluteDestination, DryRun: options.DryRun}, nil
}

// runRootConcurrently materializes the root itself, then each child subtree
// in its own worker. Entries are joined in pre-order once all workers finish.
func (runner *materializer) runRootConcurrently(ctx context.Context, source *forest.Forest, rootID forest.NodeID) ([]Entry, error) {
	root, _ := source.Node(rootID)
	entries, rootError := runner.run(ctx, []forest.Node{root})
	if rootError != nil {
		return entries, rootError
	}

	children := source.Children(rootID)
	subtreeEntries := make([][]Entry, len(children))
	var group errgroup.Group
	group.SetLimit(runner.options.Workers)
	for index, childID := range children {
		index, childID := index, childID
		group.Go(func() error {
			collected, walkError := runner.run(ctx, source.Subtree(childID))
			subtreeEntries[index] = collected
			return walkError
		})
	}
	waitError := group.Wait()
	for _, collected := range subtreeEntries {
		entries = append(entries, collected...)
	}
	return entries, waitError
}

func (runner *materializer) run(ctx context.Context, nodes []forest.Node) ([]Entry, error) {
	entries := make([]Entry, 0, len(nodes))
	for _, node := range nodes {
		if contextError := ctx.Err(); contextError != nil {
			return entries, contextError
		}
		entry := runner.materializeNode(node)
		runner.notify(entry)
		entries = append(entries, entry)
	}
	return entries, nil
}

func (runner *materializer) notify(entry Entry) {
	fields := []zap.Field{
		zap.String("path", entry.Path),
		zap.String("status", string(entry.Status)),
	}
	if entry.Err != nil {
		fields = append(fields, zap.Error(entry.Err))
	}
	runner.logger.Debug("materialize", fields...)

	if runner.options.Observer == nil {
		return
	}
	runner.observerMutex.Lock()
	defer runner.observerMutex.Unlock()
	runner.options.Observer(entry)
}

func (runner *materializer) materializeNode(node forest.Node) Entry {
	entry := Entry{Path: node.Path, Kind: node.Kind}
	if nameError := ValidateName(node.Name); nameError != nil {
		entry.Status = StatusFailed
		entry.Err = nameError
		return entry
	}
	target, joinError := SafeJoin(runner.destination, node.Path)
	if joinError != nil {
		entry.Status = StatusFailed
		entry.Err = joinError
		return entry
	}
	entry.Target = target

	if node.IsDirectory() {
		entry.Status, entry.Err = runner.ensureDirectory(target)
	} else {
		entry.Status, entry.Err = runner.ensureFile(target, node)
	}
	return entry
}

func (runner *materializer) ensureDirectory(target string) (Status, error) {
	info, statError := os.Lstat(target)
	switch {
	case statError == nil && info.IsDir():
		return StatusSkipped, nil
	case statError == nil:
		return StatusFailed, fmt.Errorf(errorExistingFileFormat, target, ErrPathConflict)
	case !errors.Is(statError, fs.ErrNotExist):
		return StatusFailed, fmt.Errorf(errorStatFormat, target, statError)
	}
	if runner.options.DryRun {
		return StatusPlanned, nil
	}
	if mkdirError := os.MkdirAll(target, directoryMode); mkdirError != nil {
		return StatusFailed, fmt.Errorf(errorCreateDirectoryFormat, target, mkdirError)
	}
	return StatusCreated, nil
}

func (runner *materializer) ensureFile(target string, node forest.Node) (Status, error) {
	info, statError := os.Lstat(target)
	switch {
	case statError == nil && info.IsDir():
		return StatusFailed, fmt.Errorf(errorExistingDirFormat, target, ErrPathConflict)
	case statError == nil:
		return StatusSkipped, nil
	case !errors.Is(statError, fs.ErrNotExist):
		return StatusFailed, fmt.Errorf(errorStatFormat, target, statError)
	}
	if runner.options.DryRun {
		return StatusPlanned, nil
	}

	parentDirectory := filepath.Dir(target)
	if mkdirError := os.MkdirAll(parentDirectory, directoryMode); mkdirError != nil {
		return StatusFailed, fmt.Errorf(errorCreateDirectoryFormat, parentDirectory, mkdirError)
	}

	// #nosec G304
	fileHandle, openError := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if errors.Is(openError, fs.ErrExist) {
		return StatusSkipped, nil
	}
	if openError != nil {
		return StatusFailed, fmt.Errorf(errorCreateFileFormat, target, openError)
	}

	var header string
	if runner.options.Headers {
		header = CommentHeader(node.Name, node.Comment)
	}
	if header != "" {
		if _, writeError := fileHandle.WriteString(header); writeError != nil {
			_ = fileHandle.Close()
			return StatusFailed, fmt.Errorf(errorWriteHeaderFormat, target, writeError)
		}
	}
	if closeError := fileHandle.Close(); closeError != nil {
		return StatusFailed, fmt.Errorf(errorCreateFileFormat, target, closeError)
	}
	return StatusCreated, nil
}
