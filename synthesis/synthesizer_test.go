package synthesis

import (
	"path/filepath"
	"testing"

	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/config"
	"github.com/stheno-fuzz/stheno/synthesis/corpus"
	"github.com/stretchr/testify/assert"
)

func newWidgetSynthesizer(t *testing.T, cfg *config.ProjectConfig) *Synthesizer {
	cat, err := catalog.NewCatalog("widget", []catalog.FunctionSignature{
		{Name: "widget::new", Return: catalog.NamedType("Builder"), Public: true},
		{Name: "widget::with_size", Params: []catalog.TypeRef{catalog.NamedType("Builder"), catalog.NamedType("u32")}, Return: catalog.NamedType("Builder"), Public: true},
		{Name: "widget::build", Params: []catalog.TypeRef{catalog.NamedType("Builder")}, Return: catalog.NamedType("Widget"), Public: true},
		{Name: "widget::name", Params: []catalog.TypeRef{catalog.NamedType("&Widget")}, Return: catalog.NamedType("Str"), Public: true},
		{Name: "widget::close", Params: []catalog.TypeRef{catalog.NamedType("Widget")}, Public: true},
		{Name: "widget::parse", Params: []catalog.TypeRef{catalog.NamedType("Bytes")}, Return: catalog.NamedType("Widget"), Public: true},
	})
	assert.NoError(t, err)

	oracle := catalog.NewTableOracle()
	oracle.SetEncoding("u32", catalog.FixedEncoding(4))
	oracle.SetEncoding("Bytes", catalog.VariableEncoding())
	oracle.SetClassification("Builder", "Builder", catalog.Classification{Mode: catalog.AccessOwned})
	oracle.SetClassification("Widget", "Widget", catalog.Classification{Mode: catalog.AccessOwned})
	oracle.SetClassification("Widget", "&Widget", catalog.Classification{Mode: catalog.AccessShared})

	conventions := catalog.NewConventionTable([]string{"widget::new"}, []string{"widget::close"})
	synthesizer, err := NewSynthesizer(cfg, cat, oracle, catalog.DefaultSubstitution{}, conventions, nil)
	assert.NoError(t, err)
	return synthesizer
}

// TestSynthesizerRun verifies a full default run: endpoint-stopping search, coverage repair and
// heuristic selection, with every catalog function covered by the pool.
func TestSynthesizerRun(t *testing.T) {
	cfg := config.GetDefaultProjectConfig("widget")
	synthesizer := newWidgetSynthesizer(t, cfg)

	stats, err := synthesizer.Run()
	assert.NoError(t, err)
	assert.True(t, synthesizer.Engine().AllVisited())
	assert.Greater(t, stats.SelectedCount, 0)
	assert.Equal(t, len(synthesizer.Selected()), stats.SelectedCount)

	// Every selected sequence consumes fuzzer input.
	for _, sel := range synthesizer.Selected() {
		assert.False(t, sel.Sequence.HasNoFuzzables())
	}
}

// TestSynthesizerRejectsInvalidConfig verifies construction fails on a configuration that does
// not validate.
func TestSynthesizerRejectsInvalidConfig(t *testing.T) {
	cfg := config.GetDefaultProjectConfig("widget")
	cfg.Synthesis.Strategy = "depth-charge"

	cat, err := catalog.NewCatalog("widget", nil)
	assert.NoError(t, err)
	_, err = NewSynthesizer(cfg, cat, catalog.NewTableOracle(), catalog.DefaultSubstitution{}, catalog.NewConventionTable(nil, nil), nil)
	assert.Error(t, err)
}

// TestSynthesizerPersistsSelection verifies a run with a store path writes the selection to disk.
func TestSynthesizerPersistsSelection(t *testing.T) {
	cfg := config.GetDefaultProjectConfig("widget")
	cfg.Selection.StorePath = filepath.Join(t.TempDir(), "sequences.db")
	synthesizer := newWidgetSynthesizer(t, cfg)

	stats, err := synthesizer.Run()
	assert.NoError(t, err)

	store, err := corpus.OpenStore(cfg.Selection.StorePath, "widget")
	assert.NoError(t, err)
	defer store.Close()
	count, err := store.Count()
	assert.NoError(t, err)
	assert.Equal(t, stats.SelectedCount, count)
}

// TestSynthesizerReplaySeeds verifies replay-driven runs seed the pool from mined chains and
// still finish with a selection.
func TestSynthesizerReplaySeeds(t *testing.T) {
	cfg := config.GetDefaultProjectConfig("widget")
	synthesizer := newWidgetSynthesizer(t, cfg)

	chains := []corpus.SeedChain{
		{Functions: []string{"widget::new", "widget::with_size", "widget::build"}, Frequency: 7},
		{Functions: []string{"widget::parse", "widget::name"}, Frequency: 2},
	}
	replayStats, stats, err := synthesizer.ReplaySeeds(chains, 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, replayStats.ChainsReplayed)
	assert.Equal(t, 0, replayStats.FunctionsUncovered)
	assert.Greater(t, stats.SelectedCount, 0)
}

// TestSynthesizerStrategies verifies every documented strategy name dispatches and selects.
func TestSynthesizerStrategies(t *testing.T) {
	for _, strategy := range []string{
		config.StrategyBFS, config.StrategyFastBFS, config.StrategyTryDeep,
		config.StrategyRandomWalk, config.StrategyBackward,
	} {
		cfg := config.GetDefaultProjectConfig("widget")
		cfg.Synthesis.Strategy = strategy
		cfg.Synthesis.RandomWalkSteps = 2000
		synthesizer := newWidgetSynthesizer(t, cfg)

		stats, err := synthesizer.Run()
		assert.NoError(t, err, "strategy %q failed", strategy)
		assert.Greater(t, stats.SelectedCount, 0, "strategy %q selected nothing", strategy)
	}
}
