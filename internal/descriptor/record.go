package descriptor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/chrisjsewell/activate-aiida/internal/scanner"
	"github.com/chrisjsewell/activate-aiida/internal/utils"
	"github.com/sirupsen/logrus"
)

// Builder turns a descriptor into a record
type Builder struct {
	scanner scanner.Scanner
}

// NewBuilder creates a builder discovering packages with sc
func NewBuilder(sc scanner.Scanner) *Builder {
	return &Builder{scanner: sc}
}

// Build reads the README, discovers packages and fingerprints the result.
// A missing README is returned as an ErrFileOp error.
func (b *Builder) Build(ctx context.Context, root string, d *models.Descriptor) (*models.Record, error) {
	rec := &models.Record{Descriptor: cloneDescriptor(d)}

	readmePath := filepath.Join(root, filepath.FromSlash(rec.Readme))
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, readmePath, fmt.Errorf("read long description: %w", err))
	}
	rec.LongDescription = string(readme)

	if rec.Packages == nil {
		logrus.Debugf("Discovering packages under %s", root)
		dirs, err := b.scanner.Scan(ctx, root)
		if err != nil {
			return nil, models.NewError(models.ErrFileOp, root, err)
		}
		rec.Packages = make([]string, 0, len(dirs))
		for _, dir := range dirs {
			rec.Packages = append(rec.Packages, dir.ImportPath())
		}
	}
	sort.Strings(rec.Packages)

	fingerprint, err := Fingerprint(rec)
	if err != nil {
		return nil, err
	}
	rec.Fingerprint = fingerprint

	logrus.Debugf("Built record %s (%s)", utils.PackageIdentity(rec.Name, rec.Version), rec.Fingerprint)
	return rec, nil
}

// Build is a shortcut using the filesystem scanner
func Build(ctx context.Context, root string, d *models.Descriptor) (*models.Record, error) {
	return NewBuilder(scanner.NewFileSystemScanner()).Build(ctx, root, d)
}

// Fingerprint hashes the canonical JSON encoding of rec, ignoring any
// fingerprint it already carries.
func Fingerprint(rec *models.Record) (string, error) {
	data, err := canonicalJSON(rec)
	if err != nil {
		return "", err
	}
	return utils.CalculateChecksum(data, "sha256"), nil
}

// MarshalRecord encodes a record as indented JSON with a trailing newline
func MarshalRecord(rec *models.Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(data, '\n'), nil
}

func canonicalJSON(rec *models.Record) ([]byte, error) {
	tmp := *rec
	tmp.Fingerprint = ""
	data, err := json.Marshal(&tmp)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

func cloneDescriptor(d *models.Descriptor) models.Descriptor {
	out := *d
	out.Classifiers = cloneStrings(d.Classifiers)
	out.Keywords = models.Keywords(cloneStrings(d.Keywords))
	out.InstallRequires = cloneStrings(d.InstallRequires)
	out.Scripts = cloneStrings(d.Scripts)
	out.Packages = cloneStrings(d.Packages)
	if d.PackageData != nil {
		out.PackageData = make(map[string][]string, len(d.PackageData))
		for k, v := range d.PackageData {
			out.PackageData[k] = cloneStrings(v)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
