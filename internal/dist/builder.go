// Package dist builds reproducible source distributions from a record.
package dist

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/chrisjsewell/activate-aiida/internal/descriptor"
	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/chrisjsewell/activate-aiida/internal/signer"
	"github.com/chrisjsewell/activate-aiida/internal/utils"
	"github.com/sirupsen/logrus"
)

// Fixed header values so identical inputs give identical archives
var epoch = time.Unix(0, 0).UTC()

// RecordFile is the JSON record stored inside the archive
const RecordFile = "package.json"

// Artifact describes the files written by Build
type Artifact struct {
	ArchivePath   string
	ChecksumPath  string
	SHA512Path    string
	SignaturePath string
	PublicKeyPath string
	SHA256        string
	SHA512        string
	Size          int64
}

// Builder writes source distributions
type Builder struct {
	signer signer.Signer
}

// NewBuilder creates a builder; s may be nil for unsigned output
func NewBuilder(s signer.Signer) *Builder {
	return &Builder{signer: s}
}

// entry is a file placed in the archive
type entry struct {
	name string
	mode int64
	data []byte
}

// Build writes <outputDir>/<name>-<version>.tar.<compression> plus its
// checksum files and, when signing, a detached signature and the public key.
func (b *Builder) Build(ctx context.Context, root string, rec *models.Record, outputDir, compression string) (*Artifact, error) {
	if compression == "" {
		compression = utils.CompressionGzip
	}

	base := utils.ArchiveBaseName(rec.Name, rec.Version)
	logrus.Infof("Building %s (%s)", base, compression)

	entries, err := collectEntries(root, base, rec)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeArchive(ctx, &buf, entries, compression); err != nil {
		return nil, models.NewError(models.ErrArchive, base, err)
	}

	archivePath := filepath.Join(outputDir, base+".tar."+compression)
	if err := utils.WriteFile(archivePath, buf.Bytes(), 0644); err != nil {
		return nil, models.NewError(models.ErrFileOp, archivePath, err)
	}

	sums, err := utils.CalculateChecksums(archivePath)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, archivePath, err)
	}

	artifact := &Artifact{
		ArchivePath:  archivePath,
		ChecksumPath: archivePath + ".sha256",
		SHA512Path:   archivePath + ".sha512",
		SHA256:       sums.SHA256,
		SHA512:       sums.SHA512,
		Size:         sums.Size,
	}

	if err := utils.WriteFile(artifact.ChecksumPath, []byte(utils.ChecksumLine(artifact.SHA256, archivePath)), 0644); err != nil {
		return nil, models.NewError(models.ErrFileOp, artifact.ChecksumPath, err)
	}
	if err := utils.WriteFile(artifact.SHA512Path, []byte(utils.ChecksumLine(artifact.SHA512, archivePath)), 0644); err != nil {
		return nil, models.NewError(models.ErrFileOp, artifact.SHA512Path, err)
	}

	if b.signer != nil {
		sig, err := b.signer.SignDetached(buf.Bytes())
		if err != nil {
			return nil, models.NewError(models.ErrSigning, archivePath, err)
		}
		artifact.SignaturePath = archivePath + b.signer.Extension()
		if err := utils.WriteFile(artifact.SignaturePath, sig, 0644); err != nil {
			return nil, models.NewError(models.ErrFileOp, artifact.SignaturePath, err)
		}
		logrus.Infof("Signed %s", filepath.Base(artifact.SignaturePath))

		pub, err := b.signer.GetPublicKey()
		if err != nil {
			return nil, models.NewError(models.ErrSigning, archivePath, fmt.Errorf("export public key: %w", err))
		}
		artifact.PublicKeyPath = archivePath + b.signer.PublicKeyExtension()
		if err := utils.WriteFile(artifact.PublicKeyPath, pub, 0644); err != nil {
			return nil, models.NewError(models.ErrFileOp, artifact.PublicKeyPath, err)
		}
	}

	logrus.Infof("Wrote %s (%d bytes, sha256 %s)", archivePath, artifact.Size, artifact.SHA256)
	return artifact, nil
}

// collectEntries gathers the archive contents in a stable order
func collectEntries(root, base string, rec *models.Record) ([]entry, error) {
	recordJSON, err := descriptor.MarshalRecord(rec)
	if err != nil {
		return nil, models.NewError(models.ErrArchive, base, err)
	}

	entries := []entry{
		{name: path.Join(base, "PKG-INFO"), mode: 0644, data: descriptor.RenderPKGInfo(rec)},
		{name: path.Join(base, RecordFile), mode: 0644, data: recordJSON},
		{name: path.Join(base, path.Clean(rec.Readme)), mode: 0644, data: []byte(rec.LongDescription)},
	}

	for _, script := range rec.Scripts {
		src := filepath.Join(root, filepath.FromSlash(script))
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, models.NewError(models.ErrFileOp, src, fmt.Errorf("read script: %w", err))
		}
		entries = append(entries, entry{name: path.Join(base, path.Clean(script)), mode: 0755, data: data})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

// writeArchive writes a compressed tar with normalized headers
func writeArchive(ctx context.Context, w *bytes.Buffer, entries []entry, compression string) error {
	cw, err := utils.NewCompressor(w, compression)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(cw)
	dirs := make(map[string]bool)

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Parent directories first, once each
		for _, dir := range parents(e.name) {
			if dirs[dir] {
				continue
			}
			dirs[dir] = true
			if err := tw.WriteHeader(header(dir+"/", tar.TypeDir, 0755, 0)); err != nil {
				return err
			}
		}

		if err := tw.WriteHeader(header(e.name, tar.TypeReg, e.mode, int64(len(e.data)))); err != nil {
			return err
		}
		if _, err := tw.Write(e.data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

func header(name string, typ byte, mode, size int64) *tar.Header {
	return &tar.Header{
		Name:     name,
		Typeflag: typ,
		Mode:     mode,
		Size:     size,
		ModTime:  epoch,
		Uid:      0,
		Gid:      0,
		Format:   tar.FormatPAX,
	}
}

// parents returns the ancestor directories of a slash path, outermost first
func parents(name string) []string {
	var out []string
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		out = append([]string{dir}, out...)
	}
	return out
}
