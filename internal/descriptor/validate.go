package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/chrisjsewell/activate-aiida/internal/models"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// Validate checks a descriptor against the project rooted at root.
// All problems are reported together.
func Validate(root string, d *models.Descriptor) error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	} else if !validName.MatchString(d.Name) {
		errs = append(errs, fmt.Errorf("name %q contains invalid characters", d.Name))
	}

	if d.Version == "" {
		errs = append(errs, fmt.Errorf("version is required"))
	} else if _, err := semver.ParseTolerant(d.Version); err != nil {
		errs = append(errs, fmt.Errorf("version %q: %w", d.Version, err))
	}

	if d.AuthorEmail != "" && !strings.Contains(d.AuthorEmail, "@") {
		errs = append(errs, fmt.Errorf("author_email %q is not an address", d.AuthorEmail))
	}

	for _, c := range d.Classifiers {
		if !strings.Contains(c, " :: ") {
			errs = append(errs, fmt.Errorf("classifier %q is not of the form \"A :: B\"", c))
		}
	}

	if d.Readme != "" {
		if _, err := relativePath("readme", d.Readme); err != nil {
			errs = append(errs, err)
		}
	}

	seen := make(map[string]bool)
	installed := make(map[string]string)
	for _, script := range d.Scripts {
		if seen[script] {
			errs = append(errs, fmt.Errorf("script %s declared twice", script))
			continue
		}
		seen[script] = true

		// Scripts install flat into <prefix>/bin
		base := path.Base(filepath.ToSlash(script))
		if other, ok := installed[base]; ok {
			errs = append(errs, fmt.Errorf("scripts %s and %s both install as %s", other, script, base))
		} else {
			installed[base] = script
		}

		if err := checkScript(root, script); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return models.NewError(models.ErrInvalidDescriptor, d.Name, errors.Join(errs...))
	}
	return nil
}

// relativePath cleans a descriptor path that must stay inside the project root
func relativePath(field, p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("%s %s must be relative to the project root", field, p)
	}

	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s %s escapes the project root", field, p)
	}
	return clean, nil
}

// checkScript verifies a declared script resolves to a regular file inside root
func checkScript(root, script string) error {
	clean, err := relativePath("script", script)
	if err != nil {
		return err
	}

	info, err := os.Stat(filepath.Join(root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("script %s does not exist", script)
		}
		return fmt.Errorf("script %s: %w", script, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("script %s is not a regular file", script)
	}
	return nil
}
