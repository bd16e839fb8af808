package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/haasonsaas/evalharness/pkg/models"
)

// Dataset is an on-disk benchmark split: an ordered, re-iterable list
// of examples with stable ids.
type Dataset struct {
	// Name identifies the dataset.
	Name string `yaml:"name" json:"name"`

	// Split names which dataset split the examples come from.
	Split string `yaml:"split,omitempty" json:"split,omitempty"`

	// Examples are the benchmark records, in dataset order.
	Examples []models.Example `yaml:"examples" json:"examples"`
}

// LoadDataset reads a YAML or JSON dataset file from disk and validates
// the invariants the pipeline relies on: at least one example, and
// non-empty unique ids.
func LoadDataset(path string) (*Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var ds Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
	}

	if len(ds.Examples) == 0 {
		return nil, fmt.Errorf("dataset has no examples")
	}
	seen := make(map[string]bool, len(ds.Examples))
	for i, ex := range ds.Examples {
		if ex.ID == "" {
			return nil, fmt.Errorf("example %d missing id", i)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("duplicate example id %q", ex.ID)
		}
		seen[ex.ID] = true
	}
	return &ds, nil
}
