package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultConfigValidates verifies the default configuration passes its own validation once a
// library is named.
func TestDefaultConfigValidates(t *testing.T) {
	assert.Error(t, GetDefaultProjectConfig("").Validate())
	assert.NoError(t, GetDefaultProjectConfig("regex").Validate())
}

// TestConfigRoundTrip verifies writing and re-reading a configuration preserves it, with file
// values layered over the defaults.
func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stheno.json")

	written := GetDefaultProjectConfig("url")
	written.Synthesis.Strategy = StrategyRandomWalk
	written.Synthesis.RandomWalkMaxDepth = 5
	written.Selection.Mode = SelectionFirst
	written.Selection.MaxSequences = 10
	assert.NoError(t, written.WriteToFile(path))

	read, err := ReadProjectConfigFromFile(path)
	assert.NoError(t, err)
	assert.EqualValues(t, written, read)
}

// TestReadConfigKeepsDefaults verifies keys absent from the file keep their default values.
func TestReadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stheno.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"library": "clap"}`), 0644))

	read, err := ReadProjectConfigFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "clap", read.Library)
	assert.Equal(t, 3, read.Synthesis.MaxSequenceLength)
	assert.Equal(t, 100000, read.Synthesis.RandomWalkSteps)
	assert.True(t, read.Synthesis.CoverageRepair)
	assert.Equal(t, "i32", read.Synthesis.DefaultConcreteType)
	assert.Equal(t, SelectionHeuristic, read.Selection.Mode)
}

// TestValidateRejections checks each validation rule individually.
func TestValidateRejections(t *testing.T) {
	invalidate := func(mutate func(*ProjectConfig)) error {
		cfg := GetDefaultProjectConfig("regex")
		mutate(cfg)
		return cfg.Validate()
	}

	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Synthesis.MaxSequenceLength = 0 }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Synthesis.RandomWalkSteps = -1 }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Synthesis.MaxPoolCoverageProduct = 0 }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Synthesis.RandomWalkMaxDepth = -1 }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Synthesis.Strategy = "depth-charge" }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Selection.Mode = "psychic" }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Selection.MaxSequences = -1 }))
	assert.Error(t, invalidate(func(c *ProjectConfig) { c.Synthesis.DefaultConcreteType = "" }))
}

// TestValidStrategyNames verifies every documented strategy name is accepted.
func TestValidStrategyNames(t *testing.T) {
	for _, name := range []string{
		StrategyDefault, StrategyBFS, StrategyBFSEndpoint, StrategyFastBFS,
		StrategyFastBFSEndpoint, StrategyTryDeep, StrategyRandomWalk,
		StrategyRandomWalkEndpoint, StrategyBackward,
	} {
		assert.True(t, ValidStrategy(name), "strategy %q should be valid", name)
	}
	assert.False(t, ValidStrategy("dfs"))
}

// TestTuningTable verifies budget resolution against the built-in table and a file-provided one.
func TestTuningTable(t *testing.T) {
	table := DefaultTuningTable()

	assert.Equal(t, 10000, table.WalkSteps("regex", 100000))
	assert.Equal(t, 100000, table.WalkSteps("serde_json", 100000))
	assert.Equal(t, 100000, table.WalkSteps("unknown", 100000))
	assert.Equal(t, 96, table.CoverTarget("regex"))
	assert.Equal(t, 0, table.CoverTarget("url"))
	assert.Equal(t, 0, table.CoverTarget("unknown"))
}

func TestReadTuningTableFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(
		"mylib:\n  randomWalkSteps: 500\n  coverableFunctions: 12\n"), 0644))

	table, err := ReadTuningTableFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 500, table.WalkSteps("mylib", 100000))
	assert.Equal(t, 12, table.CoverTarget("mylib"))

	_, err = ReadTuningTableFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
