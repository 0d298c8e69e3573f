package generation

import (
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
)

// BreadthFirst explores sequences exhaustively from the empty sequence up to maxLength calls:
// for each frontier length, every sequence of that length is tested against every catalog
// function through TryExtend, and every success joins the pool. With stopAtEnd set, sequences
// terminating at an end function are not extended further. Fast mode skips candidate functions
// that some sequence already visited, trading pool completeness for speed, and exits early once
// the coverage target is reached.
func (e *Engine) BreadthFirst(maxLength int, stopAtEnd bool, fastMode bool) {
	e.ResetVisited()
	if maxLength < 1 {
		return
	}

	functionCount := e.graph.Catalog().Len()
	e.pool = append(e.pool, sequences.New())

	for length := 0; length < maxLength; length++ {
		// Collect this frontier before extending, as successes append to the pool.
		var frontier []*sequences.Sequence
		for _, seq := range e.pool {
			if stopAtEnd && e.isEnded(seq) {
				continue
			}
			if seq.Len() == length {
				frontier = append(frontier, seq)
			}
		}

		for _, seq := range frontier {
			for function := 0; function < functionCount; function++ {
				if fastMode && e.visited[function] {
					continue
				}
				if extended, ok := e.TryExtend(seq, function); ok {
					e.pool = append(e.pool, extended)
					e.visited[function] = true

					if fastMode && e.AllVisited() {
						e.logger.Debug("breadth-first search reached full coverage early")
						return
					}
				}
			}
		}
	}

	e.logger.Debug("breadth-first search finished", logging.StructuredLogInfo{"sequences": len(e.pool)})
}

// TryDeep explores without a fixed length bound, for large catalogs whose interesting chains are
// deeper than the bounded search reaches. It stops expanding once a full pass over the frontier
// covers no new function and no new edge, and aborts once the pool-size x covered-function
// product exceeds maxProduct, a hard guard against combinatorial blow-up.
func (e *Engine) TryDeep(maxProduct int) {
	e.ClearPool()
	e.ResetVisited()

	functionCount := e.graph.Catalog().Len()
	if functionCount < 1 {
		return
	}
	e.pool = append(e.pool, sequences.New())

	coveredFunctions := make(map[int]struct{})
	coveredEdges := make(map[int]struct{})

	for length := 0; length < functionCount; length++ {
		if length > 2 && len(e.pool)*e.VisitedCount() >= maxProduct {
			e.logger.Debug("try-deep search aborted at its pool-coverage ceiling")
			break
		}

		var frontier []*sequences.Sequence
		for _, seq := range e.pool {
			if e.isEnded(seq) {
				continue
			}
			if seq.Len() == length {
				frontier = append(frontier, seq)
			}
		}

		newCoverage := false
		for _, seq := range frontier {
			for function := 0; function < functionCount; function++ {
				extended, ok := e.TryExtend(seq, function)
				if !ok {
					continue
				}

				for _, covered := range extended.CoveredFunctions() {
					if _, known := coveredFunctions[covered]; !known {
						coveredFunctions[covered] = struct{}{}
						newCoverage = true
					}
				}
				for _, covered := range extended.CoveredEdges() {
					if _, known := coveredEdges[covered]; !known {
						coveredEdges[covered] = struct{}{}
						newCoverage = true
					}
				}

				e.pool = append(e.pool, extended)
				e.visited[function] = true
			}
		}

		if !newCoverage {
			e.logger.Debug("try-deep search found no new coverage in a full pass, stopping")
			break
		}
	}
}

// RandomWalk grows the pool by repeatedly picking a uniformly random existing sequence and a
// uniformly random candidate function and attempting admission, for maxSteps steps. With
// stopAtEnd set, ended sequences are never extended; maxDepth bounds sequence length when
// positive. The walk always runs its full step budget.
func (e *Engine) RandomWalk(maxSteps int, stopAtEnd bool, maxDepth int) {
	e.ClearPool()
	e.ResetVisited()

	functionCount := e.graph.Catalog().Len()
	if functionCount < 1 {
		return
	}
	e.pool = append(e.pool, sequences.New())

	for step := 0; step < maxSteps; step++ {
		seq := e.pool[e.random.Intn(len(e.pool))]
		if stopAtEnd && e.isEnded(seq) {
			continue
		}
		if maxDepth > 0 && seq.Len() >= maxDepth {
			continue
		}

		function := e.random.Intn(functionCount)
		if extended, ok := e.TryExtend(seq, function); ok {
			e.pool = append(e.pool, extended)
			if !e.visited[function] {
				e.visited[function] = true
				if e.AllVisited() {
					e.logger.Debug("random walk reached full coverage", logging.StructuredLogInfo{"steps": step + 1})
				}
			}
		}
	}
}
