package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	fenceLinePattern   = regexp.MustCompile("^\\s*(?:`{3,}|~{3,})\\s*[\\w.+#-]*\\s*$")
	treeSummaryPattern = regexp.MustCompile(`^\d+ director(?:y|ies)(?:, \d+ files?)?$`)

	nameSeparatorReplacer = strings.NewReplacer("\\#", "#", "\\", "/")
	lineEndingReplacer    = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize rewrites pasted tree text into one entry per line using
// box-drawing connectors, forward slashes and the // comment marker.
// Code fences, `tree` summary lines and blank lines are dropped.
func Normalize(raw string) string {
	text := lineEndingReplacer.Replace(norm.NFC.String(raw))

	var normalizedLines []string
	for _, line := range strings.Split(text, "\n") {
		if fenceLinePattern.MatchString(line) {
			continue
		}
		line = strings.ReplaceAll(line, nonBreakingSpace, " ")
		line = strings.ReplaceAll(line, "\t", tabExpansion)
		line = convertASCIIConnectors(line)

		for _, fragment := range splitSiblings(line) {
			fragment = convertHashComment(fragment)
			fragment = convertNameSeparators(fragment)
			fragment = strings.TrimRight(fragment, " ")
			if fragment == "" || treeSummaryPattern.MatchString(strings.TrimSpace(fragment)) {
				continue
			}
			normalizedLines = append(normalizedLines, fragment)
		}
	}
	return strings.Join(normalizedLines, "\n")
}

// convertASCIIConnectors rewrites a leading ASCII lane/connector prefix
// (`|   `, `|-- `, `` `-- ``) into box-drawing glyphs. Text after the connector
// is left untouched.
func convertASCIIConnectors(line string) string {
	var builder strings.Builder
	rest := line
	for rest != "" {
		switch {
		case strings.HasPrefix(rest, " "):
			builder.WriteString(" ")
			rest = rest[1:]
			continue
		case strings.HasPrefix(rest, ContinuationGlyph):
			builder.WriteString(ContinuationGlyph)
			rest = rest[len(ContinuationGlyph):]
			continue
		case strings.HasPrefix(rest, asciiLane) || rest == "|":
			builder.WriteString(ContinuationGlyph)
			rest = rest[1:]
			continue
		}
		for _, connector := range asciiConnectors {
			if strings.HasPrefix(rest, connector.ascii) {
				builder.WriteString(connector.box)
				rest = rest[len(connector.ascii):]
				break
			}
		}
		builder.WriteString(rest)
		break
	}
	return builder.String()
}

// splitSiblings breaks a line holding several connectors into one line per
// connector. Each fragment keeps the lane prefix of the original line so the
// siblings stay at the same depth. Text before the first connector that is
// not lane decoration becomes a fragment of its own.
func splitSiblings(line string) []string {
	positions := connectorPositions(line)
	if len(positions) < 2 {
		return []string{line}
	}

	var fragments []string
	prefix := line[:positions[0]]
	if !isLaneText(prefix) {
		fragments = append(fragments, prefix)
		prefix = ""
	}
	for index, start := range positions {
		end := len(line)
		if index+1 < len(positions) {
			end = positions[index+1]
		}
		body := strings.TrimRight(line[start:end], " ")
		if strings.TrimSpace(skipConnector(body, 0)) == "" {
			continue
		}
		fragments = append(fragments, prefix+body)
	}
	return fragments
}

// convertHashComment rewrites the last whitespace-preceded # into the //
// marker. Lines that already carry the marker are left alone, as is a #
// that opens the name itself.
func convertHashComment(line string) string {
	if strings.Contains(line, CommentMarker) {
		return line
	}
	payloadStart := 0
	if offset := firstConnector(line); offset >= 0 {
		payloadStart = len(line) - len(skipConnector(line, offset))
	}
	for index := len(line) - 1; index > payloadStart; index-- {
		if line[index] != '#' {
			continue
		}
		previous := line[index-1]
		if previous != ' ' {
			continue
		}
		content := strings.TrimRight(line[:index], " ")
		if strings.TrimSpace(line[payloadStart:index]) == "" {
			return line
		}
		comment := strings.TrimSpace(line[index+1:])
		if comment == "" {
			return content
		}
		return content + CommentMarker + " " + comment
	}
	return line
}

// convertNameSeparators turns backslashes in the name part of a line into
// forward slashes and unescapes \#. The comment part is not touched.
func convertNameSeparators(line string) string {
	if !strings.Contains(line, "\\") {
		return line
	}
	name, comment, hasComment := strings.Cut(line, CommentMarker)
	name = nameSeparatorReplacer.Replace(name)
	if !hasComment {
		return name
	}
	return name + CommentMarker + comment
}
