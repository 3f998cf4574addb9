package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Criteria describes what the operator is looking for. Loaded from a YAML
// file so scoring preferences change without a rebuild.
type Criteria struct {
	Profile    string   `yaml:"profile"`
	MustHave   []string `yaml:"must_have"`
	NiceToHave []string `yaml:"nice_to_have"`
	Avoid      []string `yaml:"avoid"`
}

// LoadCriteria reads and validates a criteria file
func LoadCriteria(path string) (*Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file %s: %w", path, err)
	}

	var criteria Criteria
	if err := yaml.Unmarshal(data, &criteria); err != nil {
		return nil, fmt.Errorf("failed to parse criteria file %s: %w", path, err)
	}

	if criteria.Profile == "" {
		return nil, fmt.Errorf("criteria file %s has no profile", path)
	}

	return &criteria, nil
}
