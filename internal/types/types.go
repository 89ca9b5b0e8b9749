// Package types defines every cross‑package data structure used by the treeforge CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandPreview = "preview"
	CommandCreate  = "create"
	CommandInit    = "init"
	CommandScan    = "scan"
	CommandServe   = "serve"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// TreeOutputNode represents a node of a parsed tree in structured output.
type TreeOutputNode struct {
	XMLName  xml.Name          `json:"-" xml:"node" yaml:"-"`
	Path     string            `json:"path" xml:"path" yaml:"path"`
	Name     string            `json:"name" xml:"name" yaml:"name"`
	Type     string            `json:"type" xml:"type" yaml:"type"`
	Depth    int               `json:"depth" xml:"depth" yaml:"depth"`
	Comment  string            `json:"comment,omitempty" xml:"comment,omitempty" yaml:"comment,omitempty"`
	Children []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty" yaml:"children,omitempty"`
}

// OutputSummary captures node counts for a parsed tree.
type OutputSummary struct {
	Roots       int `json:"roots" xml:"roots" yaml:"roots"`
	Directories int `json:"directories" xml:"directories" yaml:"directories"`
	Files       int `json:"files" xml:"files" yaml:"files"`
}

// TreeDocument is the structured form of the preview command.
type TreeDocument struct {
	XMLName xml.Name          `json:"-" xml:"tree" yaml:"-"`
	Summary *OutputSummary    `json:"summary,omitempty" xml:"summary,omitempty" yaml:"summary,omitempty"`
	Roots   []*TreeOutputNode `json:"roots" xml:"roots>node" yaml:"roots"`
}

// ReportEntry is one materialized node in structured output.
type ReportEntry struct {
	Path   string `json:"path" xml:"path" yaml:"path"`
	Type   string `json:"type" xml:"type" yaml:"type"`
	Status string `json:"status" xml:"status" yaml:"status"`
	Target string `json:"target,omitempty" xml:"target,omitempty" yaml:"target,omitempty"`
	Error  string `json:"error,omitempty" xml:"error,omitempty" yaml:"error,omitempty"`
}

// ReportDocument is the structured form of the create command.
type ReportDocument struct {
	XMLName     xml.Name      `json:"-" xml:"report" yaml:"-"`
	Destination string        `json:"destination" xml:"destination" yaml:"destination"`
	DryRun      bool          `json:"dryRun" xml:"dryRun" yaml:"dryRun"`
	Created     int           `json:"created" xml:"created" yaml:"created"`
	Skipped     int           `json:"skipped" xml:"skipped" yaml:"skipped"`
	Planned     int           `json:"planned,omitempty" xml:"planned,omitempty" yaml:"planned,omitempty"`
	Failed      int           `json:"failed" xml:"failed" yaml:"failed"`
	Entries     []ReportEntry `json:"entries" xml:"entries>entry" yaml:"entries"`
}
