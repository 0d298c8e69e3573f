package graph

import (
	"testing"

	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stretchr/testify/assert"
)

// newWidgetCatalog builds a small builder-style catalog with a table oracle and conventions for
// graph tests: a constructor, an owned builder pipeline, shared and exclusive widget accessors
// and an end function.
func newWidgetCatalog(t *testing.T) (*catalog.Catalog, *catalog.TableOracle, *catalog.ConventionTable) {
	cat, err := catalog.NewCatalog("widget", []catalog.FunctionSignature{
		{Name: "widget::new", Return: catalog.NamedType("Builder"), Public: true},
		{Name: "widget::with_size", Params: []catalog.TypeRef{catalog.NamedType("Builder"), catalog.NamedType("u32")}, Return: catalog.NamedType("Builder"), Public: true},
		{Name: "widget::build", Params: []catalog.TypeRef{catalog.NamedType("Builder")}, Return: catalog.NamedType("Widget"), Public: true},
		{Name: "widget::name", Params: []catalog.TypeRef{catalog.NamedType("&Widget")}, Return: catalog.NamedType("Str"), Public: true},
		{Name: "widget::resize", Params: []catalog.TypeRef{catalog.NamedType("&mut Widget"), catalog.NamedType("u32")}, Public: true},
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
	oracle.SetClassification("Widget", "&mut Widget", catalog.Classification{Mode: catalog.AccessExclusive})

	conventions := catalog.NewConventionTable([]string{"widget::new"}, []string{"widget::close"})
	return cat, oracle, conventions
}

// TestBuildDependencyGraphEdges verifies the expected edge set over the widget catalog: every
// compatible (producer return, consumer parameter) pair gets exactly one edge carrying the
// oracle's access mode.
func TestBuildDependencyGraphEdges(t *testing.T) {
	cat, oracle, conventions := newWidgetCatalog(t)
	g := BuildDependencyGraph(cat, oracle, catalog.DefaultSubstitution{}, conventions)

	newIndex, _ := cat.Lookup("widget::new")
	withSize, _ := cat.Lookup("widget::with_size")
	build, _ := cat.Lookup("widget::build")
	name, _ := cat.Lookup("widget::name")
	resize, _ := cat.Lookup("widget::resize")
	closeFn, _ := cat.Lookup("widget::close")
	parse, _ := cat.Lookup("widget::parse")

	// Builder producers feed with_size and build; Widget producers feed name, resize and close.
	// Widget has two producers (build and parse), so the Widget consumers each carry two edges.
	assert.Equal(t, 10, g.EdgeCount())

	edgeID, ok := g.CheckDependency(newIndex, withSize, 0)
	assert.True(t, ok)
	assert.Equal(t, catalog.AccessOwned, g.Edge(edgeID).Mode)

	edgeID, ok = g.CheckDependency(build, name, 0)
	assert.True(t, ok)
	assert.Equal(t, catalog.AccessShared, g.Edge(edgeID).Mode)

	edgeID, ok = g.CheckDependency(parse, resize, 0)
	assert.True(t, ok)
	assert.Equal(t, catalog.AccessExclusive, g.Edge(edgeID).Mode)

	// The fuzzable u32 parameter of with_size never carries a dependency edge.
	_, ok = g.CheckDependency(newIndex, withSize, 1)
	assert.False(t, ok)

	// Incompatible pairs carry no edge.
	_, ok = g.CheckDependency(build, withSize, 0)
	assert.False(t, ok)

	assert.True(t, g.IsStartFunction(newIndex))
	assert.True(t, g.IsEndFunction(closeFn))
	assert.False(t, g.IsEndFunction(build))
}

// TestStartAndEndConventionsExcludeEdges verifies that start functions never appear as
// consumers and end functions never appear as producers, even when the oracle would classify
// their types as compatible.
func TestStartAndEndConventionsExcludeEdges(t *testing.T) {
	cat, err := catalog.NewCatalog("session", []catalog.FunctionSignature{
		{Name: "session::config", Return: catalog.NamedType("Config"), Public: true},
		{Name: "session::init", Params: []catalog.TypeRef{catalog.NamedType("Config")}, Return: catalog.NamedType("Session"), Public: true},
		{Name: "session::finish", Params: []catalog.TypeRef{catalog.NamedType("Session")}, Return: catalog.NamedType("Report"), Public: true},
		{Name: "session::inspect", Params: []catalog.TypeRef{catalog.NamedType("Report")}, Public: true},
	})
	assert.NoError(t, err)

	oracle := catalog.NewTableOracle()
	oracle.SetClassification("Config", "Config", catalog.Classification{Mode: catalog.AccessOwned})
	oracle.SetClassification("Session", "Session", catalog.Classification{Mode: catalog.AccessOwned})
	oracle.SetClassification("Report", "Report", catalog.Classification{Mode: catalog.AccessOwned})

	conventions := catalog.NewConventionTable([]string{"session::init"}, []string{"session::finish"})
	g := BuildDependencyGraph(cat, oracle, catalog.DefaultSubstitution{}, conventions)

	config, _ := cat.Lookup("session::config")
	initFn, _ := cat.Lookup("session::init")
	finish, _ := cat.Lookup("session::finish")
	inspect, _ := cat.Lookup("session::inspect")

	// init is a start function: config's compatible return must not reach it.
	_, ok := g.CheckDependency(config, initFn, 0)
	assert.False(t, ok)

	// finish is an end function: its Report return must not reach inspect.
	_, ok = g.CheckDependency(finish, inspect, 0)
	assert.False(t, ok)

	// The unconstrained pair is still recorded.
	_, ok = g.CheckDependency(initFn, finish, 0)
	assert.True(t, ok)
	assert.Equal(t, 1, g.EdgeCount())
}

// TestBuildDependencyGraphDeterministic verifies rebuilding the graph over the same inputs
// yields an identical edge list.
func TestBuildDependencyGraphDeterministic(t *testing.T) {
	cat, oracle, conventions := newWidgetCatalog(t)
	first := BuildDependencyGraph(cat, oracle, catalog.DefaultSubstitution{}, conventions)
	second := BuildDependencyGraph(cat, oracle, catalog.DefaultSubstitution{}, conventions)
	assert.Equal(t, first.Edges(), second.Edges())
}
