package scanner

import "context"

// CodeType represents the kind of importable code found in a directory
type CodeType int

const (
	TypeUnknown CodeType = iota
	TypePython
	TypeGo
)

// String returns the string representation of CodeType
func (ct CodeType) String() string {
	switch ct {
	case TypePython:
		return "python"
	case TypeGo:
		return "go"
	default:
		return "unknown"
	}
}

// CodeDir represents an importable code directory found during scanning
type CodeDir struct {
	// Path is the directory relative to the scan root, slash separated
	Path string
	Type CodeType
}

// ImportPath returns the name the directory is imported by.
// Python packages use dotted names, Go packages keep slashes.
func (c CodeDir) ImportPath() string {
	if c.Type == TypePython {
		out := []byte(c.Path)
		for i := range out {
			if out[i] == '/' {
				out[i] = '.'
			}
		}
		return string(out)
	}
	return c.Path
}

// Scanner interface for discovering importable code directories
type Scanner interface {
	// Scan recursively scans a directory for code directories
	Scan(ctx context.Context, dir string) ([]CodeDir, error)

	// DetectType determines the code type of a directory
	DetectType(path string) (CodeType, error)
}
