package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tyemirov/treeforge/internal/utils"
)

const (
	errorReadTreeFileFormat  = "read tree file %s: %w"
	errorReadStandardInput   = "read tree text from standard input: %w"
	errorReadClipboardFormat = "read tree text from clipboard: %w"
	errorSaveTreeFormat      = "save tree text to %s: %w"
	savedTreeFileMode        = 0o644
)

var (
	errNoInputSource        = errors.New("no tree text given: pass a file, '-' for standard input, --text or --clipboard")
	errMultipleInputSources = errors.New("choose only one of a file argument, --text or --clipboard")
	errClipboardUnavailable = errors.New("clipboard is not available")
	errNoTreeEntries        = errors.New("no tree entries found")
)

// readTreeText returns the raw tree text from exactly one of the supported
// sources: a file argument, "-" for standard input, --text or --clipboard.
func (app *application) readTreeText(arguments []string, options inputOptions) (string, error) {
	selectedSources := 0
	if len(arguments) > 0 {
		selectedSources++
	}
	if options.text != "" {
		selectedSources++
	}
	if options.fromClipboard {
		selectedSources++
	}
	switch {
	case selectedSources == 0:
		return "", errNoInputSource
	case selectedSources > 1:
		return "", errMultipleInputSources
	}

	switch {
	case options.text != "":
		return options.text, nil
	case options.fromClipboard:
		if app.dependencies.Clipboard == nil {
			return "", errClipboardUnavailable
		}
		text, readError := app.dependencies.Clipboard.Read()
		if readError != nil {
			return "", fmt.Errorf(errorReadClipboardFormat, readError)
		}
		return text, nil
	case arguments[0] == utils.StandardInputArgument:
		content, readError := io.ReadAll(app.dependencies.Input)
		if readError != nil {
			return "", fmt.Errorf(errorReadStandardInput, readError)
		}
		return string(content), nil
	default:
		return readTreeFile(arguments[0])
	}
}

func readTreeFile(path string) (string, error) {
	expandedPath, expandError := utils.ExpandHomeDirectory(path)
	if expandError != nil {
		return "", expandError
	}
	// #nosec G304
	content, readError := os.ReadFile(expandedPath)
	if readError != nil {
		return "", fmt.Errorf(errorReadTreeFileFormat, path, readError)
	}
	return string(content), nil
}

// saveTreeText writes tree text to path, creating missing parent directories.
func saveTreeText(path string, text string) error {
	expandedPath, expandError := utils.ExpandHomeDirectory(path)
	if expandError != nil {
		return expandError
	}
	if parent := filepath.Dir(expandedPath); parent != "" {
		if mkdirError := os.MkdirAll(parent, 0o755); mkdirError != nil {
			return fmt.Errorf(errorSaveTreeFormat, path, mkdirError)
		}
	}
	if writeError := os.WriteFile(expandedPath, []byte(text), savedTreeFileMode); writeError != nil {
		return fmt.Errorf(errorSaveTreeFormat, path, writeError)
	}
	return nil
}
