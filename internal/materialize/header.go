package materialize

import (
	"path"
	"strings"
)

type headerStyle int

const (
	headerDefault headerStyle = iota
	headerNone
	headerDocBlock
	headerHash
	headerHTML
	headerCSS
	headerLua
	headerSQL
	headerMarkdown
	headerTeX
)

var headerStylesByExtension = map[string]headerStyle{
	".js":    headerDocBlock,
	".mjs":   headerDocBlock,
	".cjs":   headerDocBlock,
	".ts":    headerDocBlock,
	".jsx":   headerDocBlock,
	".tsx":   headerDocBlock,
	".java":  headerDocBlock,
	".c":     headerDocBlock,
	".h":     headerDocBlock,
	".cpp":   headerDocBlock,
	".hpp":   headerDocBlock,
	".cs":    headerDocBlock,
	".go":    headerDocBlock,
	".php":   headerDocBlock,
	".swift": headerDocBlock,
	".kt":    headerDocBlock,
	".scala": headerDocBlock,
	".rs":    headerDocBlock,
	".dart":  headerDocBlock,

	".py":            headerHash,
	".rb":            headerHash,
	".pl":            headerHash,
	".r":             headerHash,
	".sh":            headerHash,
	".bash":          headerHash,
	".zsh":           headerHash,
	".yml":           headerHash,
	".yaml":          headerHash,
	".toml":          headerHash,
	".env":           headerHash,
	".gitignore":     headerHash,
	".dockerignore":  headerHash,
	".gitattributes": headerHash,
	".conf":          headerHash,
	".cfg":           headerHash,
	".tf":            headerHash,

	".html": headerHTML,
	".htm":  headerHTML,
	".xml":  headerHTML,
	".svg":  headerHTML,
	".vue":  headerHTML,

	".css":  headerCSS,
	".scss": headerCSS,
	".sass": headerCSS,
	".less": headerCSS,

	".lua": headerLua,
	".sql": headerSQL,

	".md":       headerMarkdown,
	".markdown": headerMarkdown,

	".tex": headerTeX,

	".json":  headerNone,
	".lock":  headerNone,
	".csv":   headerNone,
	".png":   headerNone,
	".jpg":   headerNone,
	".jpeg":  headerNone,
	".gif":   headerNone,
	".ico":   headerNone,
	".webp":  headerNone,
	".pdf":   headerNone,
	".zip":   headerNone,
	".gz":    headerNone,
	".tar":   headerNone,
	".woff":  headerNone,
	".woff2": headerNone,
}

var hashCommentedNames = map[string]struct{}{
	"dockerfile":    {},
	"containerfile": {},
	"makefile":      {},
	"gnumakefile":   {},
	"procfile":      {},
	"gemfile":       {},
	"rakefile":      {},
	"brewfile":      {},
	"vagrantfile":   {},
	"caddyfile":     {},
	"justfile":      {},
	"tiltfile":      {},
	"pipfile":       {},
	"podfile":       {},
	"codeowners":    {},
}

// CommentHeader returns the initial content for a new file named fileName
// that carries comment. It is empty when comment is empty or the file format
// has no comment syntax.
func CommentHeader(fileName string, comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ""
	}
	switch styleFor(fileName) {
	case headerNone:
		return ""
	case headerDocBlock:
		return "/**\n * " + comment + "\n */\n\n"
	case headerHash:
		return "# " + comment + "\n\n"
	case headerHTML:
		return "<!--\n  " + comment + "\n-->\n\n"
	case headerCSS:
		return "/*\n * " + comment + "\n */\n\n"
	case headerLua:
		return "--[[\n  " + comment + "\n]]\n\n"
	case headerSQL:
		return "-- " + comment + "\n\n"
	case headerMarkdown:
		return "<!-- " + comment + " -->\n\n"
	case headerTeX:
		return "% " + comment + "\n\n"
	default:
		return "/* " + comment + " */\n\n"
	}
}

func styleFor(fileName string) headerStyle {
	lowered := strings.ToLower(fileName)
	if _, hashed := hashCommentedNames[lowered]; hashed {
		return headerHash
	}
	if style, known := headerStylesByExtension[path.Ext(lowered)]; known {
		return style
	}
	return headerDefault
}
