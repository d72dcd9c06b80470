// Package descriptor loads, validates and builds the packaging descriptor.
package descriptor

import (
	"fmt"
	"os"

	"github.com/chrisjsewell/activate-aiida/internal/models"
	"github.com/chrisjsewell/activate-aiida/internal/utils"
)

// DefaultFile is the descriptor file name looked up in the project root
const DefaultFile = "package.yaml"

// Defaults applied to optional fields
const (
	DefaultReadme      = "README.md"
	DefaultContentType = "text/markdown"
)

// Load reads and decodes a descriptor file and applies defaults
func Load(path string) (*models.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, path, fmt.Errorf("read descriptor: %w", err))
	}

	d, err := Parse(data)
	if err != nil {
		return nil, models.NewError(models.ErrDescriptorParse, path, err)
	}
	return d, nil
}

// Parse decodes descriptor YAML and applies defaults
func Parse(data []byte) (*models.Descriptor, error) {
	var d models.Descriptor
	if err := utils.DecodeStrict(data, &d); err != nil {
		return nil, err
	}

	ApplyDefaults(&d)
	return &d, nil
}

// ApplyDefaults fills the optional fields that have a default
func ApplyDefaults(d *models.Descriptor) {
	if d.Readme == "" {
		d.Readme = DefaultReadme
	}
	if d.LongDescriptionContentType == "" {
		d.LongDescriptionContentType = DefaultContentType
	}
	if d.Keywords == nil {
		d.Keywords = models.Keywords{}
	}
}
