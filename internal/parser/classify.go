package parser

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tyemirov/treeforge/internal/forest"
)

// hashCommentPattern matches a payload opened by one or more # followed by
// whitespace, like a markdown heading above a pasted tree.
var hashCommentPattern = regexp.MustCompile(`^#+(?:\s|$)`)

// extensionlessFileNames lists file names that carry no extension.
var extensionlessFileNames = map[string]struct{}{
	"dockerfile":    {},
	"containerfile": {},
	"makefile":      {},
	"gnumakefile":   {},
	"license":       {},
	"licence":       {},
	"copying":       {},
	"notice":        {},
	"readme":        {},
	"changelog":     {},
	"authors":       {},
	"contributors":  {},
	"codeowners":    {},
	"procfile":      {},
	"gemfile":       {},
	"rakefile":      {},
	"brewfile":      {},
	"vagrantfile":   {},
	"jenkinsfile":   {},
	"caddyfile":     {},
	"justfile":      {},
	"tiltfile":      {},
	"pipfile":       {},
	"podfile":       {},
	"fastfile":      {},
}

// dotDirectoryNames lists leading-dot names that are conventionally directories.
var dotDirectoryNames = map[string]struct{}{
	".git":          {},
	".github":       {},
	".gitlab":       {},
	".circleci":     {},
	".vscode":       {},
	".idea":         {},
	".husky":        {},
	".devcontainer": {},
	".config":       {},
	".cache":        {},
	".next":         {},
	".nuxt":         {},
	".storybook":    {},
	".docker":       {},
	".venv":         {},
	".terraform":    {},
	".changeset":    {},
	".yarn":         {},
	".aws":          {},
	".ssh":          {},
	".cargo":        {},
	".dart_tool":    {},
}

// Classify interprets one normalized line. The boolean result is false for
// lines that carry no entry: lane-only lines, comment-only lines and bare
// "." or ".." roots.
func Classify(line string) (forest.LineInfo, bool) {
	if offset := firstConnector(line); offset >= 0 {
		depth := utf8.RuneCountInString(line[:offset])/IndentWidth + 1
		return classifyPayload(skipConnector(line, offset), depth)
	}
	if strings.Contains(line, ContinuationGlyph) {
		return forest.LineInfo{}, false
	}
	return classifyPayload(line, 0)
}

// ClassifyAll classifies every line of normalized text, skipping lines that
// carry no entry.
func ClassifyAll(normalized string) []forest.LineInfo {
	var classified []forest.LineInfo
	for _, line := range strings.Split(normalized, "\n") {
		if info, ok := Classify(line); ok {
			classified = append(classified, info)
		}
	}
	return classified
}

func classifyPayload(payload string, depth int) (forest.LineInfo, bool) {
	name, comment := splitComment(strings.TrimSpace(payload))
	kind := InferKind(name)
	name = strings.TrimSpace(strings.TrimRight(name, forest.PathSeparator))
	if name == "" || name == "." || name == ".." {
		return forest.LineInfo{}, false
	}
	return forest.LineInfo{
		Name:    name,
		Kind:    kind,
		Depth:   depth,
		Comment: comment,
	}, true
}

func splitComment(payload string) (string, string) {
	if strings.HasPrefix(payload, "//") {
		return "", strings.TrimSpace(strings.TrimPrefix(payload, "//"))
	}
	if IsHashComment(payload) {
		return "", strings.TrimSpace(strings.TrimLeft(payload, "#"))
	}
	name, comment, found := strings.Cut(payload, CommentMarker)
	if !found {
		return payload, ""
	}
	return strings.TrimSpace(name), strings.TrimSpace(comment)
}

// IsHashComment reports whether payload is a comment-only line written with
// #, such as "# Layout" or "## Project structure". A # glued to a name, as in
// "#temp", is not a comment.
func IsHashComment(payload string) bool {
	return hashCommentPattern.MatchString(strings.TrimSpace(payload))
}

// InferKind decides whether a raw name denotes a directory or a file.
// A trailing separator always means a directory. Otherwise a name with an
// extension, or a well-known extensionless file name, is a file; everything
// else is a directory.
func InferKind(rawName string) forest.Kind {
	name := strings.TrimSpace(rawName)
	if strings.HasSuffix(name, forest.PathSeparator) {
		return forest.KindDirectory
	}
	lowered := strings.ToLower(path.Base(name))
	if _, known := extensionlessFileNames[lowered]; known {
		return forest.KindFile
	}
	if !strings.Contains(lowered, ".") {
		return forest.KindDirectory
	}
	if _, known := dotDirectoryNames[lowered]; known {
		return forest.KindDirectory
	}
	return forest.KindFile
}
