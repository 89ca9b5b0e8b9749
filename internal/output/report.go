package output

import (
	"fmt"

	"github.com/tyemirov/treeforge/internal/materialize"
	"github.com/tyemirov/treeforge/internal/types"
)

const (
	progressFormat        = "%s %s: %s"
	progressFailureFormat = "%s %s: %s (%v)"
	reportSummaryFormat   = "%d created, %d skipped, %d failed"
	dryRunSummaryFormat   = "%d planned, %d skipped, %d failed (dry run)"
)

var statusLabels = map[materialize.Status]string{
	materialize.StatusCreated: "Created",
	materialize.StatusSkipped: "Skipped",
	materialize.StatusFailed:  "Failed",
	materialize.StatusPlanned: "Would create",
}

// FormatProgressLine formats one report entry as a human-readable line.
func FormatProgressLine(entry materialize.Entry) string {
	label, known := statusLabels[entry.Status]
	if !known {
		label = string(entry.Status)
	}
	if entry.Err != nil {
		return fmt.Sprintf(progressFailureFormat, label, entry.Kind, entry.Path, entry.Err)
	}
	return fmt.Sprintf(progressFormat, label, entry.Kind, entry.Path)
}

// FormatReportSummary returns the closing line of a materialization run.
func FormatReportSummary(report materialize.Report) string {
	if report.DryRun {
		return fmt.Sprintf(dryRunSummaryFormat, report.Count(materialize.StatusPlanned), report.Skipped(), report.Failed())
	}
	return fmt.Sprintf(reportSummaryFormat, report.Created(), report.Skipped(), report.Failed())
}

// BuildReportDocument converts a materialization report into its structured output form.
func BuildReportDocument(report materialize.Report) types.ReportDocument {
	document := types.ReportDocument{
		Destination: report.Destination,
		DryRun:      report.DryRun,
		Created:     report.Created(),
		Skipped:     report.Skipped(),
		Planned:     report.Count(materialize.StatusPlanned),
		Failed:      report.Failed(),
		Entries:     make([]types.ReportEntry, 0, len(report.Entries)),
	}
	for _, entry := range report.Entries {
		document.Entries = append(document.Entries, BuildReportEntry(entry))
	}
	return document
}

// BuildReportEntry converts one materialization entry into its structured output form.
func BuildReportEntry(entry materialize.Entry) types.ReportEntry {
	reportEntry := types.ReportEntry{
		Path:   entry.Path,
		Type:   nodeType(entry.Kind),
		Status: string(entry.Status),
		Target: entry.Target,
	}
	if entry.Err != nil {
		reportEntry.Error = entry.Err.Error()
	}
	return reportEntry
}
