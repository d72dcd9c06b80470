package signer

import "fmt"

// Signer interface for signing built distributions
type Signer interface {
	// SignDetached creates a detached signature over data
	SignDetached(data []byte) ([]byte, error)

	// Extension is the suffix appended to the signed file's name
	Extension() string

	// GetPublicKey returns the public key
	GetPublicKey() ([]byte, error)

	// PublicKeyExtension is the suffix of the published public key file
	PublicKeyExtension() string
}

// New picks a signer from the configured key paths.
// It returns nil, nil when no key is configured.
func New(gpgKeyPath, gpgPassphrase, rsaKeyPath, rsaPassphrase string) (Signer, error) {
	switch {
	case gpgKeyPath != "" && rsaKeyPath != "":
		return nil, fmt.Errorf("gpg and rsa keys are mutually exclusive")
	case gpgKeyPath != "":
		s, err := NewGPGSigner(gpgKeyPath, gpgPassphrase)
		if err != nil {
			return nil, err
		}
		return s, nil
	case rsaKeyPath != "":
		s, err := NewRSASigner(rsaKeyPath, rsaPassphrase)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}
