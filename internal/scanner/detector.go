package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// Marker for Python packages
const pythonMarker = "__init__.py"

// skippedDirs are never descended into
var skippedDirs = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
	"build":        true,
	"dist":         true,
}

// SkipDir reports whether a directory name is excluded from discovery
func SkipDir(name string) bool {
	if name == "." {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	if strings.HasSuffix(name, ".egg-info") {
		return true
	}
	return skippedDirs[name]
}

// DetectCodeType determines whether a directory holds an importable package.
// A Python package wins over Go when both markers are present.
func DetectCodeType(dir string) (CodeType, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return TypeUnknown, err
	}

	hasGo := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == pythonMarker {
			return TypePython, nil
		}
		if filepath.Ext(name) == ".go" && !strings.HasSuffix(name, "_test.go") {
			hasGo = true
		}
	}

	if hasGo {
		return TypeGo, nil
	}
	return TypeUnknown, nil
}
