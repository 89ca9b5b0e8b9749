package materialize

import (
	"errors"

	"github.com/tyemirov/treeforge/internal/forest"
)

var (
	// ErrDestinationUnavailable reports a destination root that does not exist
	// and cannot be created, or is not a directory.
	ErrDestinationUnavailable = errors.New("destination unavailable")
	// ErrInvalidName reports a node name that cannot be used as a path segment.
	ErrInvalidName = errors.New("invalid name")
	// ErrPathConflict reports a file where a directory is expected or the reverse.
	ErrPathConflict = errors.New("path conflict")
	// ErrPathEscapes reports a node path that resolves outside the destination.
	ErrPathEscapes = errors.New("path escapes destination")
)

// Status is the outcome of materializing one node.
type Status string

const (
	// StatusCreated means the node was written to disk.
	StatusCreated Status = "created"
	// StatusSkipped means the node already existed and was left untouched.
	StatusSkipped Status = "skipped"
	// StatusFailed means the node could not be created.
	StatusFailed Status = "failed"
	// StatusPlanned means a dry run would create the node.
	StatusPlanned Status = "planned"
)

// Entry records what happened to a single node.
type Entry struct {
	Path   string
	Target string
	Kind   forest.Kind
	Status Status
	Err    error
}

// Report lists per-node outcomes in pre-order.
type Report struct {
	Destination string
	DryRun      bool
	Entries     []Entry
}

// Count returns the number of entries with the given status.
func (report Report) Count(status Status) int {
	count := 0
	for _, entry := range report.Entries {
		if entry.Status == status {
			count++
		}
	}
	return count
}

// Created returns the number of created entries.
func (report Report) Created() int {
	return report.Count(StatusCreated)
}

// Skipped returns the number of entries that already existed.
func (report Report) Skipped() int {
	return report.Count(StatusSkipped)
}

// Failed returns the number of failed entries.
func (report Report) Failed() int {
	return report.Count(StatusFailed)
}

// Failures returns the failed entries.
func (report Report) Failures() []Entry {
	var failures []Entry
	for _, entry := range report.Entries {
		if entry.Status == StatusFailed {
			failures = append(failures, entry)
		}
	}
	return failures
}
