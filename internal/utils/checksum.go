package utils

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// Checksum contains the digests published next to a distribution
type Checksum struct {
	SHA256 string
	SHA512 string
	Size   int64
}

// CalculateChecksums calculates all checksums for a file in a single pass
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sha256Hash := sha256.New()
	sha512Hash := sha512.New()

	// Use MultiWriter to calculate all hashes at once
	n, err := io.Copy(io.MultiWriter(sha256Hash, sha512Hash), f)
	if err != nil {
		return nil, err
	}

	return &Checksum{
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
		SHA512: hex.EncodeToString(sha512Hash.Sum(nil)),
		Size:   n,
	}, nil
}

// CalculateChecksum calculates a specific checksum for data
func CalculateChecksum(data []byte, hashType string) string {
	var h hash.Hash

	switch hashType {
	case "sha512":
		h = sha512.New()
	default:
		h = sha256.New()
	}

	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChecksumLine formats a digest the way sha256sum prints it
func ChecksumLine(digest, path string) string {
	return fmt.Sprintf("%s  %s\n", digest, filepath.Base(path))
}
