// Package graph computes and indexes the dependency edges between catalog functions: which
// function results can feed which function parameters, and under what access mode. The edge set
// is a pure function of the catalog and the oracle's classifications; it is built once per run
// and read-only afterwards.
package graph

import (
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
)

// DependencyEdge records that the substituted return type of one catalog function can supply a
// specific parameter of another under a given access mode. Edge identities are positions in the
// graph's deterministic edge list.
type DependencyEdge struct {
	// Producer is the catalog index of the function whose result supplies the value.
	Producer int

	// Consumer is the catalog index of the function whose parameter is supplied.
	Consumer int

	// ParamIndex is the position of the supplied parameter in the consumer's parameter list.
	ParamIndex int

	// Mode describes how the producer's result is supplied to the consumer's parameter.
	Mode catalog.AccessMode

	// Unsafe indicates the conversion underlying this edge is unsafe to perform.
	Unsafe bool
}

// edgeKey identifies the (producer, consumer, parameter) triple an edge describes. The oracle
// yields exactly one classification per substituted type pair, so one edge exists per triple.
type edgeKey struct {
	producer   int
	consumer   int
	paramIndex int
}

// DependencyGraph holds the catalog, the collaborator interfaces and the computed edge set,
// providing the exact-match dependency lookups the admission algorithm performs.
type DependencyGraph struct {
	catalog     *catalog.Catalog
	oracle      catalog.TypeOracle
	policy      catalog.SubstitutionPolicy
	conventions catalog.Conventions

	edges []DependencyEdge
	index map[edgeKey]int
}

// BuildDependencyGraph computes the full dependency edge set for the provided catalog. For every
// ordered (producer, consumer) pair where the producer is not an end function and the consumer is
// not a start function, and for every consumer parameter, both sides are substituted through the
// policy using each function's own substitution map and classified by the oracle; every
// non-incompatible classification is recorded as an edge. Construction is deterministic and
// idempotent: the edge list depends only on catalog order and the oracle's answers.
func BuildDependencyGraph(cat *catalog.Catalog, oracle catalog.TypeOracle, policy catalog.SubstitutionPolicy, conventions catalog.Conventions) *DependencyGraph {
	g := &DependencyGraph{
		catalog:     cat,
		oracle:      oracle,
		policy:      policy,
		conventions: conventions,
		index:       make(map[edgeKey]int),
	}

	for producer := 0; producer < cat.Len(); producer++ {
		producerFn := cat.Function(producer)

		// End functions terminate sequences and never feed later calls.
		if conventions.IsEnd(producerFn) || !producerFn.HasReturn() {
			continue
		}
		returnType, ok := policy.Substitute(producerFn.Return, producerFn.Substitutions)
		if !ok {
			continue
		}

		for consumer := 0; consumer < cat.Len(); consumer++ {
			consumerFn := cat.Function(consumer)

			// Start functions begin sequences and never consume earlier results.
			if conventions.IsStart(consumerFn) {
				continue
			}

			for paramIndex := range consumerFn.Params {
				paramType, ok := policy.Substitute(consumerFn.Params[paramIndex], consumerFn.Substitutions)
				if !ok {
					continue
				}

				classification := g.oracle.Classify(returnType, paramType)
				if classification.Mode == catalog.AccessIncompatible {
					continue
				}

				key := edgeKey{producer: producer, consumer: consumer, paramIndex: paramIndex}
				g.index[key] = len(g.edges)
				g.edges = append(g.edges, DependencyEdge{
					Producer:   producer,
					Consumer:   consumer,
					ParamIndex: paramIndex,
					Mode:       classification.Mode,
					Unsafe:     classification.Unsafe,
				})
			}
		}
	}
	return g
}

// Catalog returns the catalog this graph was built over.
func (g *DependencyGraph) Catalog() *catalog.Catalog {
	return g.catalog
}

// Oracle returns the type oracle this graph was built with.
func (g *DependencyGraph) Oracle() catalog.TypeOracle {
	return g.oracle
}

// EdgeCount returns the number of dependency edges in the graph.
func (g *DependencyGraph) EdgeCount() int {
	return len(g.edges)
}

// Edge returns the dependency edge with the given identity.
func (g *DependencyGraph) Edge(id int) DependencyEdge {
	return g.edges[id]
}

// Edges returns the graph's full edge list. The returned slice must not be modified.
func (g *DependencyGraph) Edges() []DependencyEdge {
	return g.edges
}

// CheckDependency resolves whether an edge exists from the producer function's result to the
// given parameter of the consumer function, returning its edge identity if so.
func (g *DependencyGraph) CheckDependency(producer int, consumer int, paramIndex int) (int, bool) {
	id, ok := g.index[edgeKey{producer: producer, consumer: consumer, paramIndex: paramIndex}]
	return id, ok
}

// SubstitutedParam resolves the given parameter of a catalog function through the substitution
// policy. The second return value is false if the parameter cannot be resolved concretely.
func (g *DependencyGraph) SubstitutedParam(function int, paramIndex int) (catalog.TypeRef, bool) {
	fn := g.catalog.Function(function)
	return g.policy.Substitute(fn.Params[paramIndex], fn.Substitutions)
}

// SubstitutedReturn resolves a catalog function's return type through the substitution policy.
// The second return value is false if the function has no return or it cannot be resolved.
func (g *DependencyGraph) SubstitutedReturn(function int) (catalog.TypeRef, bool) {
	fn := g.catalog.Function(function)
	if !fn.HasReturn() {
		return nil, false
	}
	return g.policy.Substitute(fn.Return, fn.Substitutions)
}

// IsStartFunction indicates the function at the given catalog index may only begin a sequence.
func (g *DependencyGraph) IsStartFunction(function int) bool {
	return g.conventions.IsStart(g.catalog.Function(function))
}

// IsEndFunction indicates the function at the given catalog index may only terminate a sequence.
func (g *DependencyGraph) IsEndFunction(function int) bool {
	return g.conventions.IsEnd(g.catalog.Function(function))
}
