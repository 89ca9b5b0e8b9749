package utils_test

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/tyemirov/treeforge/internal/utils"
)

func TestExpandHomeDirectory(t *testing.T) {
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	testCases := map[string]string{
		"~":             homeDirectory,
		"~/projects/x":  filepath.Join(homeDirectory, "projects", "x"),
		"relative/path": "relative/path",
		"/abs/~/path":   "/abs/~/path",
		"~other":        "~other",
	}
	for input, expected := range testCases {
		actual, err := utils.ExpandHomeDirectory(input)
		if err != nil {
			t.Fatalf("ExpandHomeDirectory(%q) error: %v", input, err)
		}
		if actual != expected {
			t.Fatalf("ExpandHomeDirectory(%q) = %q, expected %q", input, actual, expected)
		}
	}
}

func TestRelativePathOrSelf(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "x")
	testCases := map[string]string{
		root:                          ".",
		filepath.Join(root, "a", "b"): "a/b",
		outside:                       outside,
	}
	for input, expected := range testCases {
		if actual := utils.RelativePathOrSelf(input, root); actual != expected {
			t.Fatalf("RelativePathOrSelf(%q) = %q, expected %q", input, actual, expected)
		}
	}
}

func TestNewApplicationLoggerLevels(t *testing.T) {
	testCases := []struct {
		level       string
		debugActive bool
		expectError bool
	}{
		{level: "", debugActive: false},
		{level: "debug", debugActive: true},
		{level: " WARN ", debugActive: false},
		{level: "verbose", expectError: true},
	}
	for _, testCase := range testCases {
		logger, err := utils.NewApplicationLogger(testCase.level)
		if testCase.expectError {
			if err == nil {
				t.Fatalf("expected an error for level %q", testCase.level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewApplicationLogger(%q) error: %v", testCase.level, err)
		}
		if active := logger.Core().Enabled(zapcore.DebugLevel); active != testCase.debugActive {
			t.Fatalf("level %q: debug enabled = %t, expected %t", testCase.level, active, testCase.debugActive)
		}
	}
}

func TestGetApplicationVersionPrefersLinkedVersion(t *testing.T) {
	original := utils.Version
	t.Cleanup(func() { utils.Version = original })

	utils.Version = "v9.9.9"
	if actual := utils.GetApplicationVersion(); actual != "v9.9.9" {
		t.Fatalf("GetApplicationVersion() = %q", actual)
	}
	utils.Version = ""
	if actual := utils.GetApplicationVersion(); actual == "" {
		t.Fatalf("expected a fallback version")
	}
}
