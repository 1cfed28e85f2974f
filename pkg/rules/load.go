package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Parse builds and validates a Bundle from the raw contents of the four
// bundle files. The byte slices come straight from whatever store holds the
// bundle (local directory, S3, GCS); Parse itself does no I/O.
func Parse(features, scoring, actions, mapping []byte) (*Bundle, error) {
	b := &Bundle{}

	if err := yaml.Unmarshal(features, &b.Features); err != nil {
		return nil, &ConfigError{Section: "features", Reason: fmt.Sprintf("parse: %v", err)}
	}
	if err := yaml.Unmarshal(scoring, &b.Scoring); err != nil {
		return nil, &ConfigError{Section: "scoring", Reason: fmt.Sprintf("parse: %v", err)}
	}
	if err := yaml.Unmarshal(actions, &b.Actions); err != nil {
		return nil, &ConfigError{Section: "actions", Reason: fmt.Sprintf("parse: %v", err)}
	}
	if err := yaml.Unmarshal(mapping, &b.Mapping); err != nil {
		return nil, &ConfigError{Section: "mapping", Reason: fmt.Sprintf("parse: %v", err)}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadDir reads a bundle from a local macroarea directory containing
// features.yaml, scoring.yaml, actions.yaml and mapping_form.yaml.
func LoadDir(dir string) (*Bundle, error) {
	read := func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return data, nil
	}

	features, err := read(FileFeatures)
	if err != nil {
		return nil, err
	}
	scoring, err := read(FileScoring)
	if err != nil {
		return nil, err
	}
	actions, err := read(FileActions)
	if err != nil {
		return nil, err
	}
	mapping, err := read(FileMapping)
	if err != nil {
		return nil, err
	}

	return Parse(features, scoring, actions, mapping)
}
