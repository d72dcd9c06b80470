package scanner

import (
	"context"
	"fmt"
	"io/fs"
	pathpkg "path"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan recursively scans a directory for importable code directories.
// Results are sorted by path so repeated scans of the same tree agree.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]CodeDir, error) {
	var dirs []CodeDir
	pythonPkgs := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir && SkipDir(d.Name()) {
			return filepath.SkipDir
		}

		// The root itself is never a package
		if path == dir {
			return nil
		}

		codeType, err := s.DetectType(path)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", path, err)
			return nil
		}

		if codeType == TypeUnknown {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		// Python subpackages are only importable through a package parent
		if codeType == TypePython {
			if parent := pathpkg.Dir(rel); parent != "." && !pythonPkgs[parent] {
				logrus.Debugf("Skipping %s: parent %s is not a package", rel, parent)
				return nil
			}
			pythonPkgs[rel] = true
		}

		logrus.Debugf("Found %s package: %s", codeType, rel)

		dirs = append(dirs, CodeDir{
			Path: rel,
			Type: codeType,
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })

	logrus.Debugf("Found %d packages in %s", len(dirs), dir)
	return dirs, nil
}

// DetectType determines the code type of a directory
func (s *FileSystemScanner) DetectType(path string) (CodeType, error) {
	return DetectCodeType(path)
}
