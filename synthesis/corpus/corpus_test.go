package corpus

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/generation"
	"github.com/stheno-fuzz/stheno/synthesis/graph"
	"github.com/stheno-fuzz/stheno/synthesis/selection"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
	"github.com/stretchr/testify/assert"
)

func newWidgetEngine(t *testing.T) (*generation.Engine, *catalog.Catalog) {
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
	g := graph.BuildDependencyGraph(cat, oracle, catalog.DefaultSubstitution{}, conventions)
	return generation.NewEngine(g, 1, 0, nil), cat
}

func TestParseSeedLines(t *testing.T) {
	input := strings.Join([]string{
		"a1b2c3|x3|widget::new widget::build",
		"",
		"d4e5f6|x12| widget::parse",
		"g7h8i9|x2|a b widget::name",
	}, "\n")

	chains, err := ParseSeedLines(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, 3, len(chains))

	assert.Equal(t, []string{"widget::new", "widget::build"}, chains[0].Functions)
	assert.Equal(t, int64(3), chains[0].Frequency)
	assert.Equal(t, int64(12), chains[1].Frequency)

	// Single-character fields are separator noise, not function names.
	assert.Equal(t, []string{"widget::name"}, chains[2].Functions)
}

func TestParseSeedLinesMalformed(t *testing.T) {
	_, err := ParseSeedLines(strings.NewReader("no pipes here"))
	assert.Error(t, err)

	_, err = ParseSeedLines(strings.NewReader("a|nodigits|widget::new"))
	assert.Error(t, err)
}

// TestReplayAdmissiblePrefixes verifies every admissible prefix of a replayed chain joins the
// pool and that admission failure abandons the rest of the chain but keeps the prefix.
func TestReplayAdmissiblePrefixes(t *testing.T) {
	engine, cat := newWidgetEngine(t)
	replayer := NewReplayer(engine, nil)

	chains := []SeedChain{
		{Functions: []string{"widget::new", "widget::with_size", "widget::build"}, Frequency: 5},
		// close moves the widget, so the trailing name call cannot be admitted.
		{Functions: []string{"widget::parse", "widget::close", "widget::name"}, Frequency: 2},
	}

	stats, err := replayer.Replay(chains, 0, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.ChainsParsed)
	assert.Equal(t, 0, stats.ChainsDropped)
	assert.Equal(t, 2, stats.ChainsReplayed)
	assert.Equal(t, 6, stats.FunctionsInCorpus)
	assert.Equal(t, 5, stats.FunctionsCovered)
	assert.Equal(t, 1, stats.FunctionsUncovered)

	// Three prefixes of the first chain, two of the second.
	assert.Equal(t, 5, len(engine.Pool()))

	nameFn, _ := cat.Lookup("widget::name")
	assert.False(t, engine.Visited(nameFn))
}

// TestReplayDropsUnknownChains verifies a chain naming a function outside the catalog is dropped
// whole, not truncated.
func TestReplayDropsUnknownChains(t *testing.T) {
	engine, _ := newWidgetEngine(t)
	replayer := NewReplayer(engine, nil)

	chains := []SeedChain{
		{Functions: []string{"widget::new", "widget::destroy"}, Frequency: 9},
		{Functions: []string{"widget::parse"}, Frequency: 1},
	}

	stats, err := replayer.Replay(chains, 0, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.ChainsDropped)
	assert.Equal(t, 1, stats.ChainsReplayed)
	assert.Equal(t, 1, stats.FunctionsInCorpus)
	assert.Equal(t, 1, len(engine.Pool()))
}

// TestReplayChainBudget verifies the maxChains budget caps how many kept chains are replayed.
func TestReplayChainBudget(t *testing.T) {
	engine, _ := newWidgetEngine(t)
	replayer := NewReplayer(engine, nil)

	chains := []SeedChain{
		{Functions: []string{"widget::new"}, Frequency: 100},
		{Functions: []string{"widget::parse"}, Frequency: 1},
		{Functions: []string{"widget::new", "widget::build"}, Frequency: 50},
	}

	stats, err := replayer.Replay(chains, 2, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.ChainsReplayed)
	assert.LessOrEqual(t, len(engine.Pool()), 3)
}

// buildChain admits the named calls one by one, failing the test if any admission is refused.
func buildChain(t *testing.T, engine *generation.Engine, cat *catalog.Catalog, names ...string) *sequences.Sequence {
	seq := sequences.New()
	for _, name := range names {
		function, ok := cat.Lookup(name)
		assert.True(t, ok, "unknown function %s", name)
		extended, ok := engine.TryExtend(seq, function)
		assert.True(t, ok, "admission of %s failed", name)
		seq = extended
	}
	return seq
}

// TestStoreRoundTrip verifies saving, content-addressed deduplication, loading and reopening of
// the on-disk sequence store.
func TestStoreRoundTrip(t *testing.T) {
	engine, cat := newWidgetEngine(t)
	nameOf := func(function int) string { return cat.Function(function).Name }
	path := filepath.Join(t.TempDir(), "sequences.db")

	store, err := OpenStore(path, "widget")
	assert.NoError(t, err)

	builder := buildChain(t, engine, cat, "widget::new", "widget::with_size", "widget::build")
	parser := buildChain(t, engine, cat, "widget::parse", "widget::name")

	saved, err := store.SaveSelected([]selection.SelectedSequence{
		{ID: uuid.New(), Sequence: builder},
		{ID: uuid.New(), Sequence: parser},
	}, nameOf)
	assert.NoError(t, err)
	assert.Equal(t, 2, saved)

	// The same call chain under a fresh ID digests to the same key and is skipped.
	saved, err = store.SaveSelected([]selection.SelectedSequence{
		{ID: uuid.New(), Sequence: builder},
	}, nameOf)
	assert.NoError(t, err)
	assert.Equal(t, 0, saved)

	count, err := store.Count()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, store.Close())

	// Reopening succeeds against the recorded format version and sees the same records.
	reopened, err := OpenStore(path, "widget")
	assert.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Load()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(records))
	for _, record := range records {
		assert.Equal(t, "widget", record.Library)
		assert.NotEmpty(t, record.Calls)
		if record.Calls[len(record.Calls)-1].Function == "widget::build" {
			assert.Equal(t, 4, record.Fixed)
			assert.Equal(t, "owned", record.Calls[2].Params[0].Mode)
		}
	}
}
