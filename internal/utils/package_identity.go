package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the canonical form of a distribution name:
// lowercase with runs of "-", "_" and "." collapsed to "-".
func NormalizeName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(name, "-"))
}

// PackageIdentity returns a unique identifier for a name/version pair
func PackageIdentity(name, version string) string {
	return fmt.Sprintf("%s==%s", NormalizeName(name), version)
}

// ArchiveBaseName returns the directory and file stem used inside and for a
// source distribution, e.g. activate_aiida-0.1.0
func ArchiveBaseName(name, version string) string {
	return fmt.Sprintf("%s-%s", strings.ReplaceAll(NormalizeName(name), "-", "_"), version)
}
