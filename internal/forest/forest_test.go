package forest_test

import (
	"strings"
	"testing"

	"github.com/tyemirov/treeforge/internal/forest"
)

func directory(name string, depth int) forest.LineInfo {
	return forest.LineInfo{Name: name, Kind: forest.KindDirectory, Depth: depth}
}

func file(name string, depth int) forest.LineInfo {
	return forest.LineInfo{Name: name, Kind: forest.KindFile, Depth: depth}
}

func describe(result *forest.Forest) []string {
	var lines []string
	_ = result.Walk(func(node forest.Node) error {
		lines = append(lines, strings.Repeat("  ", node.Depth)+node.Path+":"+node.Kind.String())
		return nil
	})
	return lines
}

func TestBuildShapes(t *testing.T) {
	testCases := []struct {
		name          string
		lines         []forest.LineInfo
		expectedRoots int
		expected      []string
	}{
		{
			name: "single root with nested directory",
			lines: []forest.LineInfo{
				directory("backend", 0),
				file("Dockerfile", 1),
				directory("src", 1),
				file("index.js", 2),
				file("package.json", 1),
			},
			expectedRoots: 1,
			expected: []string{
				"backend:directory",
				"  backend/Dockerfile:file",
				"  backend/src:directory",
				"    backend/src/index.js:file",
				"  backend/package.json:file",
			},
		},
		{
			name:          "flat root lines starting with a file",
			lines:         []forest.LineInfo{file("a.txt", 0), directory("b", 0)},
			expectedRoots: 2,
			expected:      []string{"a.txt:file", "b:directory"},
		},
		{
			name: "single root absorbs later root lines",
			lines: []forest.LineInfo{
				directory("app", 0),
				file("main.go", 0),
				directory("pkg", 0),
				file("util.go", 2),
			},
			expectedRoots: 1,
			expected: []string{
				"app:directory",
				"  app/main.go:file",
				"  app/pkg:directory",
				"    app/pkg/util.go:file",
			},
		},
		{
			name: "branch lines without a root become roots",
			lines: []forest.LineInfo{
				directory("cmd", 1),
				file("main.go", 2),
				file("go.mod", 1),
			},
			expectedRoots: 2,
			expected: []string{
				"cmd:directory",
				"  cmd/main.go:file",
				"go.mod:file",
			},
		},
		{
			name: "depth jump attaches to nearest open directory",
			lines: []forest.LineInfo{
				directory("root", 0),
				directory("a", 1),
				file("deep.txt", 4),
				file("next.txt", 2),
			},
			expectedRoots: 1,
			expected: []string{
				"root:directory",
				"  root/a:directory",
				"    root/a/deep.txt:file",
				"    root/a/next.txt:file",
			},
		},
		{
			name: "lines below a file attach to the enclosing directory",
			lines: []forest.LineInfo{
				directory("root", 0),
				file("notes.md", 1),
				file("orphan.txt", 2),
			},
			expectedRoots: 1,
			expected: []string{
				"root:directory",
				"  root/notes.md:file",
				"  root/orphan.txt:file",
			},
		},
		{
			name: "empty directory stays a directory",
			lines: []forest.LineInfo{
				directory("root", 0),
				directory("empty", 1),
				file("after.txt", 1),
			},
			expectedRoots: 1,
			expected: []string{
				"root:directory",
				"  root/empty:directory",
				"  root/after.txt:file",
			},
		},
		{
			name: "path names expand into shared directories",
			lines: []forest.LineInfo{
				directory("app", 0),
				file("src/components/Button.jsx", 1),
				file("src/components/Card.jsx", 1),
				directory("src/hooks/", 1),
				file("useTheme.js", 2),
				file("./main.go", 1),
			},
			expectedRoots: 1,
			expected: []string{
				"app:directory",
				"  app/src:directory",
				"    app/src/components:directory",
				"      app/src/components/Button.jsx:file",
				"      app/src/components/Card.jsx:file",
				"    app/src/hooks:directory",
				"      app/src/hooks/useTheme.js:file",
				"  app/main.go:file",
			},
		},
		{
			name: "path names at the top level share roots",
			lines: []forest.LineInfo{
				file("docs/intro.md", 0),
				file("docs/usage.md", 0),
			},
			expectedRoots: 1,
			expected: []string{
				"docs:directory",
				"  docs/intro.md:file",
				"  docs/usage.md:file",
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			result := forest.Build(testCase.lines)
			if len(result.Roots()) != testCase.expectedRoots {
				t.Fatalf("expected %d roots, got %d", testCase.expectedRoots, len(result.Roots()))
			}
			actual := describe(result)
			if strings.Join(actual, "\n") != strings.Join(testCase.expected, "\n") {
				t.Fatalf("unexpected forest:\n%s\nexpected:\n%s", strings.Join(actual, "\n"), strings.Join(testCase.expected, "\n"))
			}
		})
	}
}

func TestBuildEmptyInput(t *testing.T) {
	result := forest.Build(nil)
	if !result.IsEmpty() {
		t.Fatalf("expected empty forest, got %d nodes", result.Len())
	}
	if len(result.Roots()) != 0 {
		t.Fatalf("expected no roots")
	}
}

func TestBuildInvariants(t *testing.T) {
	result := forest.Build([]forest.LineInfo{
		directory("root", 0),
		directory("a", 1),
		directory("b", 2),
		file("c.txt", 3),
		file("d.txt", 1),
		directory("e", 1),
		file("f.txt", 2),
	})

	seenAsChild := map[forest.NodeID]int{}
	for _, node := range result.Nodes() {
		for _, child := range result.Children(node.ID) {
			seenAsChild[child]++
		}
	}

	_ = result.Walk(func(node forest.Node) error {
		parent, hasParent := result.Parent(node.ID)
		if !hasParent {
			if node.Depth != 0 {
				t.Fatalf("root %s has depth %d", node.Path, node.Depth)
			}
			if node.Path != node.Name {
				t.Fatalf("root path %q differs from name %q", node.Path, node.Name)
			}
			return nil
		}
		if node.Depth != parent.Depth+1 {
			t.Fatalf("%s depth %d, parent depth %d", node.Path, node.Depth, parent.Depth)
		}
		if node.Path != parent.Path+forest.PathSeparator+node.Name {
			t.Fatalf("path %q not composed from parent %q", node.Path, parent.Path)
		}
		if seenAsChild[node.ID] != 1 {
			t.Fatalf("%s appears %d times among children", node.Path, seenAsChild[node.ID])
		}
		if !parent.IsDirectory() {
			t.Fatalf("%s has a file parent", node.Path)
		}
		return nil
	})

	for _, node := range result.Nodes() {
		if !node.IsDirectory() && len(result.Children(node.ID)) != 0 {
			t.Fatalf("file %s has children", node.Path)
		}
	}
}

func TestStatsAndSubtree(t *testing.T) {
	result := forest.Build([]forest.LineInfo{
		directory("root", 0),
		directory("src", 1),
		file("a.go", 2),
		file("b.go", 2),
		file("README.md", 1),
	})
	stats := result.Stats()
	if stats.Roots != 1 || stats.Directories != 2 || stats.Files != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	children := result.Children(result.Roots()[0])
	subtree := result.Subtree(children[0])
	var paths []string
	for _, node := range subtree {
		paths = append(paths, node.Path)
	}
	if strings.Join(paths, ",") != "root/src,root/src/a.go,root/src/b.go" {
		t.Fatalf("unexpected subtree: %v", paths)
	}
	if result.Subtree(forest.NodeID(99)) != nil {
		t.Fatalf("expected nil subtree for unknown id")
	}
}
