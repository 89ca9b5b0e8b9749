package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/parser"
)

const (
	treeBranchPadding = parser.ContinuationGlyph + "   "
	treeLastPadding   = "    "

	directorySuffix = forest.PathSeparator
	// commentGuard ends a comment-less line whose name would otherwise read as
	// a "#" comment when parsed again.
	commentGuard = parser.CommentMarker
	hashComment  = " #"
)

// RenderTree returns the canonical tree text for a forest.
//
// A forest with a single directory root is drawn with that root on a plain
// first line. Any other forest draws every root behind a connector so that
// parsing the text again yields the same roots.
func RenderTree(source *forest.Forest) string {
	var builder strings.Builder
	_ = WriteTree(&builder, source)
	return builder.String()
}

// WriteTree renders a forest to the provided writer.
func WriteTree(writer io.Writer, source *forest.Forest) error {
	if source == nil || source.IsEmpty() {
		return nil
	}
	bufferedWriter := bufio.NewWriter(writer)
	renderer := treeRenderer{source: source, writer: bufferedWriter}

	roots := source.Roots()
	if len(roots) == 1 {
		root, _ := source.Node(roots[0])
		if root.IsDirectory() {
			renderer.writeLine("", root)
			renderer.writeChildren(root.ID, "")
			return bufferedWriter.Flush()
		}
	}
	for index, rootID := range roots {
		renderer.writeBranch(rootID, "", index == len(roots)-1)
	}
	return bufferedWriter.Flush()
}

type treeRenderer struct {
	source *forest.Forest
	writer *bufio.Writer
}

func (renderer treeRenderer) writeChildren(parentID forest.NodeID, prefix string) {
	children := renderer.source.Children(parentID)
	for index, childID := range children {
		renderer.writeBranch(childID, prefix, index == len(children)-1)
	}
}

func (renderer treeRenderer) writeBranch(id forest.NodeID, prefix string, isLast bool) {
	node, ok := renderer.source.Node(id)
	if !ok {
		return
	}
	connector := parser.BranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = parser.LastConnector
		childPrefix = prefix + treeLastPadding
	}
	renderer.writeLine(prefix+connector, node)
	if node.IsDirectory() {
		renderer.writeChildren(node.ID, childPrefix)
	}
}

func (renderer treeRenderer) writeLine(linePrefix string, node forest.Node) {
	renderer.writer.WriteString(linePrefix)
	renderer.writer.WriteString(node.Name)
	if node.IsDirectory() {
		renderer.writer.WriteString(directorySuffix)
	}
	switch {
	case node.Comment != "":
		renderer.writer.WriteString(parser.CommentMarker + " " + node.Comment)
	case strings.Contains(node.Name, hashComment):
		renderer.writer.WriteString(commentGuard)
	}
	renderer.writer.WriteByte('\n')
}

// FormatSummaryLine formats node counts the way the tree utility does.
func FormatSummaryLine(stats forest.Stats) string {
	directoryLabel := "directories"
	if stats.Directories == 1 {
		directoryLabel = "directory"
	}
	fileLabel := "files"
	if stats.Files == 1 {
		fileLabel = "file"
	}
	return fmt.Sprintf("%d %s, %d %s", stats.Directories, directoryLabel, stats.Files, fileLabel)
}
