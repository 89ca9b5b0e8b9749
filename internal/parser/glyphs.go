// Package parser turns loosely formatted directory tree text into classified
// lines and forests.
package parser

import (
	"sort"
	"strings"
)

const (
	// BranchConnector marks an entry that has later siblings.
	BranchConnector = "├── "
	// LastConnector marks the final entry among its siblings.
	LastConnector = "└── "
	// ContinuationGlyph keeps an ancestor's lane open on deeper lines.
	ContinuationGlyph = "│"
	// HorizontalGlyph pads connectors.
	HorizontalGlyph = "─"
	// IndentWidth is the number of columns per nesting level.
	IndentWidth = 4
	// CommentMarker separates a name from its trailing comment.
	CommentMarker = " //"

	branchStem = "├─"
	lastStem   = "└─"

	nonBreakingSpace = "\u00a0"
	tabExpansion     = "    "
)

// asciiConnectors maps ASCII tree connectors to box-drawing connectors.
var asciiConnectors = []struct {
	ascii string
	box   string
}{
	{ascii: "|-- ", box: BranchConnector},
	{ascii: "+-- ", box: BranchConnector},
	{ascii: "`-- ", box: LastConnector},
	{ascii: "\\-- ", box: LastConnector},
}

const asciiLane = "|   "

// connectorPositions returns the byte offsets of every connector in line,
// in ascending order.
func connectorPositions(line string) []int {
	var positions []int
	for _, stem := range []string{branchStem, lastStem} {
		offset := 0
		for {
			index := strings.Index(line[offset:], stem)
			if index < 0 {
				break
			}
			positions = append(positions, offset+index)
			offset += index + len(stem)
		}
	}
	sort.Ints(positions)
	return positions
}

// firstConnector returns the byte offset of the first connector in line, or -1.
func firstConnector(line string) int {
	positions := connectorPositions(line)
	if len(positions) == 0 {
		return -1
	}
	return positions[0]
}

// skipConnector returns the text after the connector starting at offset,
// dropping the horizontal padding and the gap that follows it.
func skipConnector(line string, offset int) string {
	rest := line[offset:]
	switch {
	case strings.HasPrefix(rest, branchStem):
		rest = strings.TrimPrefix(rest, "├")
	case strings.HasPrefix(rest, lastStem):
		rest = strings.TrimPrefix(rest, "└")
	}
	rest = strings.TrimLeft(rest, HorizontalGlyph)
	return strings.TrimLeft(rest, " ")
}

// isLaneText reports whether text contains only spaces and continuation glyphs.
func isLaneText(text string) bool {
	return strings.TrimLeft(text, " "+ContinuationGlyph) == ""
}
