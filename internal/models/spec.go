package models

import (
	"fmt"
	"os"

	"github.com/droidworld/droideval/internal/hooks"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the spec's config.backend field.
const (
	BackendADB       = "adb"
	BackendSimulated = "simulated"
)

// EvalSpec represents a complete evaluation specification loaded from YAML.
type EvalSpec struct {
	SpecIdentity `yaml:",inline"`
	Version      string            `yaml:"version,omitempty"`
	Task         string            `yaml:"task"`
	Config       Config            `yaml:"config"`
	Hooks        hooks.HooksConfig `yaml:"hooks,omitempty"`
	Device       map[string]any    `yaml:"device,omitempty"`
}

type SpecIdentity struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Config controls execution behavior.
type Config struct {
	Episodes   int    `yaml:"episodes" json:"episodes"`
	TimeoutSec int    `yaml:"timeout_seconds" json:"timeout_sec"`
	Concurrent bool   `yaml:"parallel,omitempty" json:"concurrent,omitempty"`
	Workers    int    `yaml:"max_workers,omitempty" json:"workers,omitempty"`
	Backend    string `yaml:"backend" json:"backend"`
}

// LoadEvalSpec loads a spec from a YAML file.
func LoadEvalSpec(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// Validate checks that the spec is valid. An empty backend defaults to adb.
func (s *EvalSpec) Validate() error {
	if s.Config.Episodes < 1 {
		return fmt.Errorf("episodes must be at least 1, got %d", s.Config.Episodes)
	}
	if s.Config.TimeoutSec < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", s.Config.TimeoutSec)
	}
	switch s.Config.Backend {
	case BackendADB, BackendSimulated:
	case "":
		s.Config.Backend = BackendADB
	default:
		return fmt.Errorf("unknown backend: %s", s.Config.Backend)
	}
	if s.Config.Workers < 0 {
		return fmt.Errorf("max_workers must not be negative, got %d", s.Config.Workers)
	}
	return nil
}
