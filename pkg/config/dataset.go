package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Case is one data-driven run: an address and the substrings the
// outcome text must contain.
type Case struct {
	// Name labels the case in output; defaults to the address.
	Name string `yaml:"name,omitempty"`

	// Address is the query for this case.
	Address string `yaml:"address"`

	// Expect lists substrings the outcome text must contain.
	Expect []string `yaml:"expect,omitempty"`

	// Match lists glob patterns (e.g. "*provide services*") the
	// outcome text must match.
	Match []string `yaml:"match,omitempty"`

	// FallbackAnchor optionally overrides the config-level anchor for
	// this case.
	FallbackAnchor string `yaml:"fallback_anchor,omitempty"`
}

// Label returns the case's display name.
func (c Case) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Address
}

// Dataset is an externally owned list of address cases.
type Dataset struct {
	Cases []Case `yaml:"cases"`
}

// LoadDataset reads and validates a YAML dataset file.
func LoadDataset(path string) (Dataset, error) {
	var ds Dataset

	data, err := os.ReadFile(path)
	if err != nil {
		return ds, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return ds, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return ds, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Validate checks every case has an address and at least one
// expectation.
func (d Dataset) Validate() error {
	if len(d.Cases) == 0 {
		return fmt.Errorf("no cases defined")
	}
	for i, c := range d.Cases {
		if c.Address == "" {
			return fmt.Errorf("case %d: address is required", i)
		}
		if len(c.Expect) == 0 && len(c.Match) == 0 {
			return fmt.Errorf("case %d (%s): at least one expectation is required", i, c.Label())
		}
	}
	return nil
}
