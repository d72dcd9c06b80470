package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

// WriteFile atomically writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	// renameio handles: temp file creation, fsync, atomic rename
	return renameio.WriteFile(path, data, perm)
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// InstallFile atomically copies src to dst with the given mode.
// A destination already holding identical content is left untouched
// and reported with installed == false.
func InstallFile(src, dst string, perm os.FileMode) (installed bool, err error) {
	needsCopy, err := ShouldInstall(src, dst)
	if err != nil {
		return false, err
	}
	if !needsCopy {
		// Content matches, only fix the mode
		if err := os.Chmod(dst, perm); err != nil {
			return false, fmt.Errorf("chmod %s: %w", dst, err)
		}
		return false, nil
	}

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return false, err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer srcFile.Close()

	pendingFile, err := renameio.NewPendingFile(dst, renameio.WithPermissions(perm))
	if err != nil {
		return false, fmt.Errorf("create pending file for %s: %w", dst, err)
	}
	defer func() {
		// Cleanup is a no-op once the file was committed
		if err := pendingFile.Cleanup(); err != nil {
			logrus.Debugf("cleanup pending file %s: %v", dst, err)
		}
	}()

	if _, err := io.Copy(pendingFile, srcFile); err != nil {
		return false, fmt.Errorf("copy %s: %w", src, err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return false, fmt.Errorf("atomically replace %s: %w", dst, err)
	}

	return true, nil
}

// ShouldInstall determines if src needs to be copied over dst
func ShouldInstall(src, dst string) (bool, error) {
	srcPath := filepath.Clean(src)
	dstPath := filepath.Clean(dst)

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("cannot stat source: %w", err)
	}

	// Same path = no copy needed
	if srcPath == dstPath {
		return false, nil
	}

	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("cannot stat destination: %w", err)
	}

	// Different sizes = need copy
	if srcInfo.Size() != dstInfo.Size() {
		return true, nil
	}

	srcSums, err := CalculateChecksums(srcPath)
	if err != nil {
		return false, err
	}
	dstSums, err := CalculateChecksums(dstPath)
	if err != nil {
		// Can't calculate checksums, copy to be safe
		return true, nil
	}

	return srcSums.SHA256 != dstSums.SHA256, nil
}
