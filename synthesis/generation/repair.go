package generation

import (
	"github.com/stheno-fuzz/stheno/logging"
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
)

// mergeCandidates selects the pool sequences usable as building blocks by the coverage-repair
// pass: non-empty, not terminated at an end function, and carrying no dead call before their
// last one (a single-call sequence always qualifies).
func (e *Engine) mergeCandidates() []*sequences.Sequence {
	var candidates []*sequences.Sequence
	for _, seq := range e.pool {
		if seq.Len() == 0 || e.isEnded(seq) {
			continue
		}
		if seq.Len() > 1 && seq.ContainsDeadCallExceptLast(e.hasReturn) {
			continue
		}
		candidates = append(candidates, seq)
	}
	return candidates
}

// CoverUnvisited is the coverage-repair pass run after a forward strategy: for every function no
// sequence has visited, it checks whether each of the function's non-fuzzable parameters can be
// satisfied by the final call of some merge candidate, merges the chosen candidate chains and
// admits the target on the merge. Full passes repeat over the shrinking uncovered set until one
// makes no progress.
func (e *Engine) CoverUnvisited() {
	unvisited := make(map[int]struct{})
	for function := range e.visited {
		if !e.visited[function] {
			unvisited[function] = struct{}{}
		}
	}

	repaired := 0
	for len(unvisited) > 0 {
		coveredThisPass := make(map[int]struct{})
		candidates := e.mergeCandidates()

		// Iterate targets in catalog order for deterministic pool growth.
		for function := 0; function < len(e.visited); function++ {
			if _, ok := unvisited[function]; !ok {
				continue
			}
			if chosen, ok := e.planRepair(function, candidates); ok {
				if extended, ok := e.TryExtend(sequences.Merge(chosen...), function); ok {
					e.Push(extended)
					e.MarkVisited(function)
					coveredThisPass[function] = struct{}{}
					repaired++
				}
			}
		}

		if len(coveredThisPass) == 0 {
			break
		}
		for function := range coveredThisPass {
			delete(unvisited, function)
		}
	}

	e.logger.Debug("coverage repair finished", logging.StructuredLogInfo{
		"repaired":  repaired,
		"uncovered": len(unvisited),
	})
}

// planRepair determines whether every non-fuzzable parameter of the target function can be
// satisfied by the last call of some merge candidate, returning the chosen candidate chains in
// parameter order. Candidates still holding fuzzable slots are preferred, as a driver consuming
// no input bytes is useless to a fuzzer.
func (e *Engine) planRepair(target int, candidates []*sequences.Sequence) ([]*sequences.Sequence, bool) {
	fn := e.graph.Catalog().Function(target)

	var chosen []*sequences.Sequence
	for paramIndex := range fn.Params {
		paramType, ok := e.graph.SubstitutedParam(target, paramIndex)
		if !ok {
			return nil, false
		}
		encoding := e.graph.Oracle().Fuzzable(paramType)
		if encoding.Fuzzable() {
			continue
		}
		if encoding.Kind == catalog.EncodingUnsupported {
			return nil, false
		}

		var match *sequences.Sequence
		for _, candidate := range candidates {
			lastFunction, ok := candidate.LastFunction()
			if !ok {
				continue
			}
			if _, ok := e.graph.CheckDependency(lastFunction, target, paramIndex); !ok {
				continue
			}
			match = candidate
			if !candidate.HasNoFuzzables() {
				break
			}
		}
		if match == nil {
			return nil, false
		}
		chosen = append(chosen, match)
	}
	return chosen, true
}
