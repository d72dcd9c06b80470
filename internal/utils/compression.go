package utils

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Supported archive compressions
const (
	CompressionGzip = "gz"
	CompressionZstd = "zst"
	CompressionXz   = "xz"
)

// Compressions lists the accepted compression names
var Compressions = []string{CompressionGzip, CompressionZstd, CompressionXz}

// NewCompressor wraps w with the named compression.
// The returned writer must be closed to flush the stream.
func NewCompressor(w io.Writer, compression string) (io.WriteCloser, error) {
	switch compression {
	case CompressionGzip, "":
		gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		// Leave ModTime and Name zero so output is reproducible
		return gz, nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	case CompressionXz:
		return xz.NewWriter(w)
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

// NewDecompressor is the reading counterpart of NewCompressor
func NewDecompressor(r io.Reader, compression string) (io.ReadCloser, error) {
	switch compression {
	case CompressionGzip, "":
		return gzip.NewReader(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}
