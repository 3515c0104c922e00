// Package config loads experiment configuration files and validates them
// before a run is constructed.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/darwinml/darwin-go/pkg/engine"
	"github.com/darwinml/darwin-go/pkg/errors"
)

// Experiment describes one run: a name for bookkeeping, the engine
// parameters and where reporters write their output.
type Experiment struct {
	// Name identifies the run in reporter output. When empty, a
	// timestamp-derived identifier is generated at run time.
	Name string `yaml:"name" json:"name"`

	Engine engine.Config `yaml:"engine" json:"engine" validate:"required"`

	// OutputDir is where file-backed reporters write. Empty disables
	// file output.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// LogLevel is one of DEBUG, INFO, WARN, ERROR, FATAL.
	LogLevel string `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
}

// Default returns an experiment with engine defaults and INFO logging.
func Default() *Experiment {
	return &Experiment{
		Engine:   *engine.DefaultConfig(),
		LogLevel: "INFO",
	}
}

// Load reads a YAML experiment file, fills unset engine fields with defaults
// and validates the result.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfiguration, "reading experiment file")
	}

	exp := Default()
	if err := yaml.Unmarshal(data, exp); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfiguration, "parsing experiment file")
	}

	if err := Validate(exp); err != nil {
		return nil, err
	}
	return exp, nil
}
