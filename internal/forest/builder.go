package forest

import "strings"

// LineInfo is one classified source line.
//
// Depth is the nesting level implied by the line's connector position: zero
// for a root line without tree glyphs, one or more for branch lines.
type LineInfo struct {
	Name    string
	Kind    Kind
	Depth   int
	Comment string
}

// IsRootLine reports whether the line carried no connector glyph.
func (line LineInfo) IsRootLine() bool {
	return line.Depth == 0
}

type ancestorEntry struct {
	id        NodeID
	lineDepth int
}

// Build folds classified lines into a forest.
//
// When the first line is a root directory the input is treated as a single
// tree and later root lines nest under it. Otherwise every line that has no
// open ancestor becomes a new root. Depth jumps are tolerated: a node attaches
// to the nearest open directory above its depth. A name holding separators,
// such as "src/components/Button.jsx", becomes one node per segment; the
// leading segments are directories shared with same-named siblings.
func Build(lines []LineInfo) *Forest {
	result := New()
	if len(lines) == 0 {
		return result
	}

	singleRoot := lines[0].IsRootLine() && lines[0].Kind == KindDirectory
	var stack []ancestorEntry

	for index, line := range lines {
		lineDepth := line.Depth
		if singleRoot && index > 0 && lineDepth == 0 {
			lineDepth = 1
		}

		for len(stack) > 0 && stack[len(stack)-1].lineDepth >= lineDepth {
			stack = stack[:len(stack)-1]
		}

		parent := NoParent
		if len(stack) > 0 {
			parent = stack[len(stack)-1].id
		}

		id, err := result.addPath(parent, line)
		if err != nil {
			continue
		}
		if line.Kind == KindDirectory {
			stack = append(stack, ancestorEntry{id: id, lineDepth: lineDepth})
		}
	}
	return result
}

// addPath adds line under parent, creating or reusing a directory for every
// segment of the name but the last.
func (forest *Forest) addPath(parent NodeID, line LineInfo) (NodeID, error) {
	segments := nameSegments(line.Name)
	if len(segments) == 0 {
		return NoParent, errEmptyName
	}
	last := len(segments) - 1
	for _, segment := range segments[:last] {
		if existing, found := forest.childDirectory(parent, segment); found {
			parent = existing
			continue
		}
		created, err := forest.add(parent, segment, KindDirectory, "")
		if err != nil {
			return NoParent, err
		}
		parent = created
	}
	return forest.add(parent, segments[last], line.Kind, line.Comment)
}

// childDirectory finds a directory named name directly under parent, or among
// the roots when parent is NoParent.
func (forest *Forest) childDirectory(parent NodeID, name string) (NodeID, bool) {
	candidates := forest.roots
	if parent != NoParent {
		candidates = forest.Children(parent)
	}
	for _, id := range candidates {
		if node := forest.nodes[id]; node.Name == name && node.directory != nil {
			return id, true
		}
	}
	return NoParent, false
}

func nameSegments(name string) []string {
	var segments []string
	for _, segment := range strings.Split(name, PathSeparator) {
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}
