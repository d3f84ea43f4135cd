package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfig       = errors.New("invalid quality config")
	ErrMissingInput = errors.New("input file not found")
)

// QualityConfig selects the one sample a run demultiplexes and the largest
// number of mismatches allowed on each of its tags.
type QualityConfig struct {
	Sample      string
	MaxMismatch int
}

// parseQualityConfig decodes a single-key mapping such as {"FISH": 2}.
// JSON documents are accepted since they are valid YAML.
func parseQualityConfig(data []byte) (QualityConfig, error) {
	var raw map[string]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return QualityConfig{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if len(raw) != 1 {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return QualityConfig{}, fmt.Errorf("%w: should contain exactly one sample, got %v", ErrConfig, keys)
	}
	var qc QualityConfig
	for sample, limit := range raw {
		qc = QualityConfig{Sample: sample, MaxMismatch: limit}
	}
	if qc.MaxMismatch < 0 {
		return QualityConfig{}, fmt.Errorf("%w: negative mismatch limit %d for %q", ErrConfig, qc.MaxMismatch, qc.Sample)
	}
	return qc, nil
}

func loadQualityConfig(path string) (QualityConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QualityConfig{}, err
	}
	qc, err := parseQualityConfig(data)
	if err != nil {
		return QualityConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return qc, nil
}

// checkInputs fails on the first path that does not exist.
func checkInputs(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrMissingInput, p)
			}
			return err
		}
	}
	return nil
}
