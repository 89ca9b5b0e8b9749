package stream

import (
	"encoding/xml"
	"time"

	"github.com/tyemirov/treeforge/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart   EventKind = "start"
	EventKindEntry   EventKind = "entry"
	EventKindSummary EventKind = "summary"
	EventKindError   EventKind = "error"
	EventKindDone    EventKind = "done"
)

type Event struct {
	XMLName     xml.Name  `json:"-" xml:"event"`
	Version     int       `json:"version" xml:"version,attr"`
	Kind        EventKind `json:"kind" xml:"kind,attr"`
	Command     string    `json:"command,omitempty" xml:"command,attr,omitempty"`
	RunID       string    `json:"runId" xml:"runId,attr"`
	Destination string    `json:"destination,omitempty" xml:"destination,attr,omitempty"`
	DryRun      bool      `json:"dryRun,omitempty" xml:"dryRun,attr,omitempty"`
	EmittedAt   time.Time `json:"emittedAt,omitempty" xml:"emittedAt,attr,omitempty"`

	Entry   *types.ReportEntry `json:"entry,omitempty" xml:"entry,omitempty"`
	Summary *SummaryEvent      `json:"summary,omitempty" xml:"summary,omitempty"`
	Err     *ErrorEvent        `json:"error,omitempty" xml:"error,omitempty"`
}

type SummaryEvent struct {
	Created int `json:"created" xml:"created,attr"`
	Skipped int `json:"skipped" xml:"skipped,attr"`
	Planned int `json:"planned" xml:"planned,attr"`
	Failed  int `json:"failed" xml:"failed,attr"`
}

type ErrorEvent struct {
	Message string `json:"message" xml:",chardata"`
}
