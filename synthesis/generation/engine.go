// Package generation implements the sequence search engine: the admission algorithm deciding
// whether one more call can be appended to a sequence, and the exploration strategies (bounded
// and fast exhaustive BFS, unbounded try-deep BFS, randomized walk, backward construction and
// the coverage-repair pass) that grow a pool of candidate sequences over the dependency graph.
package generation

import (
	"math/rand"

	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/graph"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
)

// Engine holds the search state shared by all exploration strategies: the dependency graph, the
// growing pool of admitted sequences, the per-function visited flags driving coverage heuristics
// and a single seeded random source making randomized strategies reproducible.
type Engine struct {
	graph   *graph.DependencyGraph
	pool    []*sequences.Sequence
	visited []bool

	// coverTarget is the number of functions considered full coverage for this library, from the
	// per-library tuning table. Zero means every catalog function must be visited.
	coverTarget int

	random *rand.Rand
	logger *logging.Logger
}

// NewEngine creates a search engine over the provided dependency graph. The engine's random
// source is seeded with the provided seed; coverTarget caps the function coverage considered
// "complete" for early exits (zero meaning the full catalog).
func NewEngine(g *graph.DependencyGraph, seed int64, coverTarget int, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GlobalLogger
	}
	return &Engine{
		graph:       g,
		visited:     make([]bool, g.Catalog().Len()),
		coverTarget: coverTarget,
		random:      rand.New(rand.NewSource(seed)),
		logger:      logger,
	}
}

// Graph returns the dependency graph the engine searches over.
func (e *Engine) Graph() *graph.DependencyGraph {
	return e.graph
}

// Pool returns the engine's current sequence pool. The returned slice must not be modified.
func (e *Engine) Pool() []*sequences.Sequence {
	return e.pool
}

// Push appends an externally admitted sequence (e.g. from seed replay) to the pool.
func (e *Engine) Push(seq *sequences.Sequence) {
	e.pool = append(e.pool, seq)
}

// ClearPool discards all sequences accumulated so far.
func (e *Engine) ClearPool() {
	e.pool = nil
}

// ResetVisited clears every per-function visited flag. Each strategy invocation starts from a
// clean visited set.
func (e *Engine) ResetVisited() {
	e.visited = make([]bool, e.graph.Catalog().Len())
}

// MarkVisited flags a catalog function as covered by some admitted sequence.
func (e *Engine) MarkVisited(function int) {
	e.visited[function] = true
}

// Visited indicates whether a catalog function has been covered by some admitted sequence.
func (e *Engine) Visited(function int) bool {
	return e.visited[function]
}

// VisitedCount returns the number of catalog functions covered so far.
func (e *Engine) VisitedCount() int {
	count := 0
	for _, visited := range e.visited {
		if visited {
			count++
		}
	}
	return count
}

// VisitedFunctions returns the catalog indices of the functions covered so far, in catalog
// order.
func (e *Engine) VisitedFunctions() []int {
	var functions []int
	for function, visited := range e.visited {
		if visited {
			functions = append(functions, function)
		}
	}
	return functions
}

// AllVisited indicates whether function coverage has reached the engine's target: the tuned
// coverable-function count if one is configured, or the whole catalog otherwise.
func (e *Engine) AllVisited() bool {
	visited := e.VisitedCount()
	if e.coverTarget > 0 {
		return visited >= e.coverTarget
	}
	return visited == len(e.visited)
}

// isEnded indicates the sequence terminates at an end function and must not be extended further
// by endpoint-stopping strategies.
func (e *Engine) isEnded(seq *sequences.Sequence) bool {
	function, ok := seq.LastFunction()
	if !ok {
		return false
	}
	return e.graph.IsEndFunction(function)
}

// hasReturn resolves whether a catalog function produces a result, for dead-call analysis.
func (e *Engine) hasReturn(function int) bool {
	return e.graph.Catalog().Function(function).HasReturn()
}
