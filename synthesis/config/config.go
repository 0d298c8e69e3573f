// Package config defines the project configuration driving a synthesis run and the per-library
// tuning table overriding the strategy budgets.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration of one synthesis project: the library whose catalog
// is searched, the search and selection settings, and logging.
type ProjectConfig struct {
	// Library is the name of the library the catalog describes. It selects the entry in the
	// tuning table and names the sequence store records.
	Library string `json:"library"`

	// Synthesis describes the search configuration.
	Synthesis SynthesisConfig `json:"synthesis"`

	// Selection describes the driver selection configuration.
	Selection SelectionConfig `json:"selection"`

	// Logging describes the logging configuration.
	Logging LoggingConfig `json:"logging"`
}

// SynthesisConfig describes the configuration of the sequence search.
type SynthesisConfig struct {
	// Strategy names the exploration strategy to run. An empty string selects the default
	// strategy (endpoint-stopping breadth-first search followed by coverage repair).
	Strategy string `json:"strategy"`

	// MaxSequenceLength bounds the sequence length explored by bounded breadth-first search.
	MaxSequenceLength int `json:"maxSequenceLength"`

	// RandomWalkSteps is the extension attempt budget of the random walk strategy, overridden by
	// the tuning table when it carries an entry for the configured library.
	RandomWalkSteps int `json:"randomWalkSteps"`

	// RandomWalkMaxDepth caps the length of sequences the random walk extends. Zero disables
	// the cap.
	RandomWalkMaxDepth int `json:"randomWalkMaxDepth"`

	// MaxPoolCoverageProduct bounds the try-deep strategy: the search stops deepening once pool
	// size times visited-function count reaches this product.
	MaxPoolCoverageProduct int `json:"maxPoolCoverageProduct"`

	// RandomSeed seeds every randomized strategy, making runs reproducible.
	RandomSeed int64 `json:"randomSeed"`

	// CoverageRepair enables the merge-based repair pass covering functions the forward search
	// missed.
	CoverageRepair bool `json:"coverageRepair"`

	// DefaultConcreteType is the concrete type substituted for otherwise unconstrained generic
	// parameters when the catalog is materialized.
	DefaultConcreteType string `json:"defaultConcreteType"`

	// TuningTablePath optionally points to a YAML per-library tuning table replacing the
	// built-in one.
	TuningTablePath string `json:"tuningTablePath"`
}

// SelectionConfig describes how driver-worthy sequences are picked from the search pool.
type SelectionConfig struct {
	// Mode names the selection mode: "heuristic", "random" or "first". An empty string selects
	// heuristic selection.
	Mode string `json:"mode"`

	// MaxSequences bounds the number of selected sequences. Zero means unbounded.
	MaxSequences int `json:"maxSequences"`

	// StopAtAllFunctions makes heuristic selection stop once every catalog function is covered
	// rather than continuing until every dependency edge is.
	StopAtAllFunctions bool `json:"stopAtAllFunctions"`

	// StorePath optionally points to a sequence store database persisting the selection across
	// runs. An empty string disables persistence.
	StorePath string `json:"storePath"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty,
	// then no log files are kept
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of the defaults
	projectConfig := GetDefaultProjectConfig("")
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify a library name is set, since tuning and persistence key off of it.
	if p.Library == "" {
		return errors.Errorf("project configuration must name a library")
	}

	// Verify the strategy budgets are positive.
	if p.Synthesis.MaxSequenceLength <= 0 {
		return errors.Errorf("max sequence length must be a positive number")
	}
	if p.Synthesis.RandomWalkSteps <= 0 {
		return errors.Errorf("random walk step budget must be a positive number")
	}
	if p.Synthesis.MaxPoolCoverageProduct <= 0 {
		return errors.Errorf("pool-coverage product bound must be a positive number")
	}
	if p.Synthesis.RandomWalkMaxDepth < 0 {
		return errors.Errorf("random walk depth cap cannot be negative")
	}

	// Verify the strategy and selection mode names are known.
	if !ValidStrategy(p.Synthesis.Strategy) {
		return errors.Errorf("unknown synthesis strategy %q", p.Synthesis.Strategy)
	}
	if !ValidSelectionMode(p.Selection.Mode) {
		return errors.Errorf("unknown selection mode %q", p.Selection.Mode)
	}

	if p.Selection.MaxSequences < 0 {
		return errors.Errorf("max selected sequences cannot be negative")
	}
	if p.Synthesis.DefaultConcreteType == "" {
		return errors.Errorf("default concrete type cannot be empty")
	}
	return nil
}
