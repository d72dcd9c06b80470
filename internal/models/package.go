package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor is the packaging descriptor as written in package.yaml
type Descriptor struct {
	// Core metadata
	Name                       string   `yaml:"name" json:"name"`
	Version                    string   `yaml:"version" json:"version"`
	Description                string   `yaml:"description" json:"description"`
	Readme                     string   `yaml:"readme" json:"readme"`
	LongDescriptionContentType string   `yaml:"long_description_content_type" json:"long_description_content_type"`
	License                    string   `yaml:"license" json:"license"`
	Author                     string   `yaml:"author" json:"author"`
	AuthorEmail                string   `yaml:"author_email" json:"author_email"`
	URL                        string   `yaml:"url" json:"url"`
	Classifiers                []string `yaml:"classifiers" json:"classifiers"`
	Keywords                   Keywords `yaml:"keywords" json:"keywords"`

	// Install information
	InstallRequires []string            `yaml:"install_requires" json:"install_requires"`
	Scripts         []string            `yaml:"scripts" json:"scripts"`
	ZipSafe         bool                `yaml:"zip_safe" json:"zip_safe"`
	PackageData     map[string][]string `yaml:"package_data" json:"package_data"`
	Packages        []string            `yaml:"packages" json:"packages"`
}

// Record is a descriptor after the packaging step has read the README
// and discovered the code directories. It is not modified after Build.
type Record struct {
	Descriptor

	LongDescription string `json:"long_description"`
	Fingerprint     string `json:"fingerprint,omitempty"`
}

// Keywords accepts either "a, b, c" or a YAML sequence
type Keywords []string

// UnmarshalYAML implements yaml.Unmarshaler
func (k *Keywords) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*k = SplitKeywords(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		out := make(Keywords, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*k = out
		return nil
	default:
		return fmt.Errorf("line %d: keywords must be a string or a list", node.Line)
	}
}

// SplitKeywords splits a comma separated keyword string
func SplitKeywords(s string) Keywords {
	out := Keywords{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String joins the keywords the way setup metadata expects them
func (k Keywords) String() string {
	return strings.Join(k, ",")
}
