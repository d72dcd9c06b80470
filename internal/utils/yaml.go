package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned by DecodeStrict for an empty input
var ErrEmptyDocument = errors.New("empty document")

// DecodeStrict decodes a single YAML document into out, rejecting unknown
// fields and trailing documents.
func DecodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return err
	}

	// Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("file contains multiple documents or trailing content")
	}

	return nil
}
