package decision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the YAML document overriding rule priorities. Explicit tuning
// always beats insight adjustments: a tuned priority determines evaluation
// order regardless of what history suggests.
//
// Example:
//
//	rules:
//	  - id: error-retry-transient
//	    priority: 150
//	  - id: optimize-batch-size
//	    disabled: true
type Tuning struct {
	Rules []RuleOverride `yaml:"rules"`
}

// RuleOverride adjusts one rule by ID.
type RuleOverride struct {
	// ID names the rule to adjust.
	ID string `yaml:"id"`

	// Priority replaces the rule's registered priority when set.
	Priority *int `yaml:"priority,omitempty"`

	// Disabled removes the rule from evaluation entirely.
	Disabled bool `yaml:"disabled,omitempty"`
}

// LoadTuning reads a tuning document from a YAML file. A missing file is
// not an error: it yields nil tuning, meaning no overrides.
func LoadTuning(path string) (*Tuning, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return &t, nil
}
