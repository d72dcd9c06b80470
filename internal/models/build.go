package models

// BuildConfig contains configuration for the packaging step
type BuildConfig struct {
	// Input/Output
	Root           string
	DescriptorPath string // Relative to Root unless absolute
	OutputDir      string

	// Archive
	Compression string // gz, zst or xz

	// Signing
	GPGKeyPath    string
	GPGPassphrase string
	RSAKeyPath    string
	RSAPassphrase string

	// Install
	Prefix string
}
