package parser_test

import (
	"strings"
	"testing"

	"github.com/tyemirov/treeforge/internal/forest"
	"github.com/tyemirov/treeforge/internal/parser"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "drops code fences",
			input:    "```text\nbackend/\n├── a.js\n```",
			expected: "backend/\n├── a.js",
		},
		{
			name:     "drops tilde fences and blank lines",
			input:    "~~~\n\nroot/\n   \n└── b.txt\n~~~\n",
			expected: "root/\n└── b.txt",
		},
		{
			name:     "converts hash comment",
			input:    "├── main.go # entry",
			expected: "├── main.go // entry",
		},
		{
			name:     "keeps hash without preceding whitespace",
			input:    "├── file#1.txt",
			expected: "├── file#1.txt",
		},
		{
			name:     "keeps hash that opens the name",
			input:    "├── #notes.md",
			expected: "├── #notes.md",
		},
		{
			name:     "uses only the last hash",
			input:    "├── a # b # c",
			expected: "├── a # b // c",
		},
		{
			name:     "keeps markdown heading for the classifier",
			input:    "## Project structure\n```\nbackend/\n└── a.js\n```",
			expected: "## Project structure\nbackend/\n└── a.js",
		},
		{
			name:     "leaves lines with canonical marker alone",
			input:    "├── a.js // x # y",
			expected: "├── a.js // x # y",
		},
		{
			name:     "converts backslashes in names only",
			input:    "├── src\\utils\\\n└── a\\b.txt // C:\\tmp",
			expected: "├── src/utils/\n└── a/b.txt // C:\\tmp",
		},
		{
			name:     "unescapes escaped hash",
			input:    "└── issue\\#12.md",
			expected: "└── issue#12.md",
		},
		{
			name:     "splits sibling connectors",
			input:    "├── a.js ├── b.js └── c.js",
			expected: "├── a.js\n├── b.js\n└── c.js",
		},
		{
			name:     "splits siblings keeping lane prefix",
			input:    "│   ├── a.js ├── b.js",
			expected: "│   ├── a.js\n│   ├── b.js",
		},
		{
			name:     "splits leading content into its own line",
			input:    "root/ ├── a.js └── b.js",
			expected: "root/\n├── a.js\n└── b.js",
		},
		{
			name:     "discards empty connector fragments",
			input:    "├── a.js ├──   └── c.js",
			expected: "├── a.js\n└── c.js",
		},
		{
			name:     "converts ascii connectors",
			input:    "|-- src\n|   `-- main.go\n`-- go.mod",
			expected: "├── src\n│   └── main.go\n└── go.mod",
		},
		{
			name:     "converts non-breaking spaces and tabs",
			input:    "│\u00a0\u00a0 └── x.txt\n\t└── y.txt",
			expected: "│   └── x.txt\n    └── y.txt",
		},
		{
			name:     "drops tree summary and carriage returns",
			input:    "root/\r\n└── a.txt\r\n\r\n1 directory, 1 file\r\n",
			expected: "root/\n└── a.txt",
		},
		{
			name:     "empty input",
			input:    "\n\n```\n```\n",
			expected: "",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := parser.Normalize(testCase.input)
			if actual != testCase.expected {
				t.Fatalf("Normalize(%q) = %q, expected %q", testCase.input, actual, testCase.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		ok       bool
		expected forest.LineInfo
	}{
		{name: "root directory", line: "backend/", ok: true, expected: forest.LineInfo{Name: "backend", Kind: forest.KindDirectory}},
		{name: "root file", line: "a.txt", ok: true, expected: forest.LineInfo{Name: "a.txt", Kind: forest.KindFile}},
		{name: "extensionless file", line: "├── Dockerfile", ok: true, expected: forest.LineInfo{Name: "Dockerfile", Kind: forest.KindFile, Depth: 1}},
		{name: "nested with comment", line: "│   └── index.js // entry point", ok: true, expected: forest.LineInfo{Name: "index.js", Kind: forest.KindFile, Depth: 2, Comment: "entry point"}},
		{name: "deep without lanes", line: "        └── deep.txt", ok: true, expected: forest.LineInfo{Name: "deep.txt", Kind: forest.KindFile, Depth: 3}},
		{name: "dotted directory", line: "├── my.config.d/", ok: true, expected: forest.LineInfo{Name: "my.config.d", Kind: forest.KindDirectory, Depth: 1}},
		{name: "connector without gap", line: "├──name.txt", ok: true, expected: forest.LineInfo{Name: "name.txt", Kind: forest.KindFile, Depth: 1}},
		{name: "short connector", line: "└─ short.txt", ok: true, expected: forest.LineInfo{Name: "short.txt", Kind: forest.KindFile, Depth: 1}},
		{name: "directory with comment", line: "├── src/ // sources", ok: true, expected: forest.LineInfo{Name: "src", Kind: forest.KindDirectory, Depth: 1, Comment: "sources"}},
		{name: "url in name keeps slashes", line: "├── http://example", ok: true, expected: forest.LineInfo{Name: "http://example", Kind: forest.KindDirectory, Depth: 1}},
		{name: "lane only", line: "│", ok: false},
		{name: "lane with text", line: "│   stray", ok: false},
		{name: "comment only", line: "├── // nothing here", ok: false},
		{name: "hash comment only", line: "# Layout", ok: false},
		{name: "markdown heading", line: "## Project structure", ok: false},
		{name: "hash comment under connector", line: "├── # generated", ok: false},
		{name: "bare hash", line: "#", ok: false},
		{name: "hash glued to name", line: "#temp", ok: true, expected: forest.LineInfo{Name: "#temp", Kind: forest.KindDirectory}},
		{name: "dot root", line: ".", ok: false},
		{name: "empty connector", line: "└──", ok: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual, ok := parser.Classify(testCase.line)
			if ok != testCase.ok {
				t.Fatalf("Classify(%q) ok = %v, expected %v", testCase.line, ok, testCase.ok)
			}
			if ok && actual != testCase.expected {
				t.Fatalf("Classify(%q) = %+v, expected %+v", testCase.line, actual, testCase.expected)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	testCases := map[string]forest.Kind{
		"server.js":    forest.KindFile,
		"backend/":     forest.KindDirectory,
		"backend":      forest.KindDirectory,
		"my.config.d/": forest.KindDirectory,
		"Makefile":     forest.KindFile,
		".gitignore":   forest.KindFile,
		".github":      forest.KindDirectory,
		".env":         forest.KindFile,
	}
	for name, expected := range testCases {
		if actual := parser.InferKind(name); actual != expected {
			t.Fatalf("InferKind(%q) = %v, expected %v", name, actual, expected)
		}
	}
}

func TestParseExampleTree(t *testing.T) {
	input := strings.Join([]string{
		"backend/",
		"├── Dockerfile",
		"├── src/",
		"│   └── index.js // entry point",
		"└── package.json",
	}, "\n")

	result := parser.Parse(input)
	roots := result.Roots()
	if len(roots) != 1 {
		t.Fatalf("expected one root, got %d", len(roots))
	}
	root, _ := result.Node(roots[0])
	if root.Name != "backend" || !root.IsDirectory() {
		t.Fatalf("unexpected root: %+v", root)
	}

	type expectation struct {
		path    string
		kind    forest.Kind
		depth   int
		comment string
		parent  string
	}
	expected := []expectation{
		{path: "backend", kind: forest.KindDirectory, depth: 0},
		{path: "backend/Dockerfile", kind: forest.KindFile, depth: 1, parent: "backend"},
		{path: "backend/src", kind: forest.KindDirectory, depth: 1, parent: "backend"},
		{path: "backend/src/index.js", kind: forest.KindFile, depth: 2, comment: "entry point", parent: "backend/src"},
		{path: "backend/package.json", kind: forest.KindFile, depth: 1, parent: "backend"},
	}
	nodes := result.Nodes()
	if len(nodes) != len(expected) {
		t.Fatalf("expected %d nodes, got %d", len(expected), len(nodes))
	}
	for index, node := range nodes {
		want := expected[index]
		if node.Path != want.path || node.Kind != want.kind || node.Depth != want.depth || node.Comment != want.comment {
			t.Fatalf("node %d = %+v, expected %+v", index, node, want)
		}
		parent, hasParent := result.Parent(node.ID)
		parentPath := ""
		if hasParent {
			parentPath = parent.Path
		}
		if parentPath != want.parent {
			t.Fatalf("node %s parent %q, expected %q", node.Path, parentPath, want.parent)
		}
	}
}

func TestParseMultiRoot(t *testing.T) {
	result := parser.Parse("a.txt\nb/\n")
	if len(result.Roots()) != 2 {
		t.Fatalf("expected two roots, got %d", len(result.Roots()))
	}
	stats := result.Stats()
	if stats.Files != 1 || stats.Directories != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestParseMessyInput(t *testing.T) {
	input := "```\n.\n|-- cmd\n|   `-- main.go # entry\n`-- go.mod\n\n1 directory, 2 files\n```"
	result := parser.Parse(input)
	var paths []string
	for _, node := range result.Nodes() {
		paths = append(paths, node.Path+"|"+node.Comment)
	}
	expected := "cmd|,cmd/main.go|entry,go.mod|"
	if strings.Join(paths, ",") != expected {
		t.Fatalf("unexpected nodes %v", paths)
	}
}

func TestParseSkipsHeadingAboveTree(t *testing.T) {
	input := "## Project structure\n```\nbackend/\n├── a.js\n└── src/\n    └── b.js # entry\n```"
	result := parser.Parse(input)
	var paths []string
	for _, node := range result.Nodes() {
		paths = append(paths, node.Path)
	}
	expected := "backend,backend/a.js,backend/src,backend/src/b.js"
	if strings.Join(paths, ",") != expected {
		t.Fatalf("unexpected nodes %v", paths)
	}
	if len(result.Roots()) != 1 {
		t.Fatalf("expected one root, got %d", len(result.Roots()))
	}
}

func TestParseSplitsPathNames(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "forward slashes",
			input:    "app/\n├── src/components/Button.jsx\n└── main.go",
			expected: []string{"app:directory", "app/src:directory", "app/src/components:directory", "app/src/components/Button.jsx:file", "app/main.go:file"},
		},
		{
			name:     "backslashes",
			input:    "app/\n├── src\\utils\\helper.js // shared\n└── src\\utils\\format.js",
			expected: []string{"app:directory", "app/src:directory", "app/src/utils:directory", "app/src/utils/helper.js:file", "app/src/utils/format.js:file"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			result := parser.Parse(testCase.input)
			var actual []string
			for _, node := range result.Nodes() {
				if strings.Contains(node.Name, forest.PathSeparator) {
					t.Fatalf("node name %q holds a separator", node.Name)
				}
				actual = append(actual, node.Path+":"+node.Kind.String())
			}
			if strings.Join(actual, ",") != strings.Join(testCase.expected, ",") {
				t.Fatalf("unexpected nodes %v, expected %v", actual, testCase.expected)
			}
		})
	}
}

func TestParseWithoutEntries(t *testing.T) {
	for _, input := range []string{"", "   \n", "```\n```", "│\n│"} {
		if result := parser.Parse(input); !result.IsEmpty() {
			t.Fatalf("expected empty forest for %q, got %d nodes", input, result.Len())
		}
	}
}
