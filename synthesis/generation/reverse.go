package generation

import (
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
)

// ReverseConstruct builds a sequence backwards from a target function: each of the target's
// non-fuzzable parameters is resolved by recursively constructing a sequence for some producer
// function holding a matching dependency edge, the per-parameter producer chains are merged with
// shared-slot renumbering, and the target call is admitted last. Returns false if any parameter
// has no resolvable producer.
//
// Recursion over the producer graph carries an explicit currently-resolving set: encountering a
// function already being resolved means "no path" rather than infinite recursion, so cyclic
// producer relationships terminate by rule.
func (e *Engine) ReverseConstruct(target int) (*sequences.Sequence, bool) {
	return e.reverseConstruct(target, make(map[int]struct{}))
}

// Backward runs backward construction as a whole-catalog strategy: the pool and the visited set
// are reset, then every catalog function gets one backward construction attempt, successful ones
// joining the pool. Functions an earlier construction already covered are skipped.
func (e *Engine) Backward() {
	e.ClearPool()
	e.ResetVisited()

	for target := 0; target < e.graph.Catalog().Len(); target++ {
		if e.visited[target] {
			continue
		}
		if seq, ok := e.ReverseConstruct(target); ok {
			e.Push(seq)
			for _, function := range seq.CoveredFunctions() {
				e.MarkVisited(function)
			}
		}
	}
}

// reverseConstruct recursively resolves target's producers, with resolving holding the functions
// currently being resolved on this path.
func (e *Engine) reverseConstruct(target int, resolving map[int]struct{}) (*sequences.Sequence, bool) {
	if _, cyclic := resolving[target]; cyclic {
		return nil, false
	}
	resolving[target] = struct{}{}
	defer delete(resolving, target)

	fn := e.graph.Catalog().Function(target)
	if fn.Kind == catalog.GenericFunction {
		return nil, false
	}

	functionCount := e.graph.Catalog().Len()
	var producerChains []*sequences.Sequence
	for paramIndex := range fn.Params {
		paramType, ok := e.graph.SubstitutedParam(target, paramIndex)
		if !ok {
			return nil, false
		}

		// Fuzzable parameters are satisfied from the byte buffer by the final admission.
		encoding := e.graph.Oracle().Fuzzable(paramType)
		if encoding.Fuzzable() {
			continue
		}
		if encoding.Kind == catalog.EncodingUnsupported {
			return nil, false
		}

		resolved := false
		for producer := 0; producer < functionCount; producer++ {
			// A function never supplies its own parameters; that would be an immediate
			// self-loop.
			if producer == target {
				continue
			}
			if _, ok := e.graph.CheckDependency(producer, target, paramIndex); !ok {
				continue
			}
			if chain, ok := e.reverseConstruct(producer, resolving); ok {
				producerChains = append(producerChains, chain)
				resolved = true
				break
			}
		}
		if !resolved {
			return nil, false
		}
	}

	// Merge the producer chains and let the ordinary admission bind the target's parameters,
	// keeping every reverse-built sequence a validly admitted one.
	return e.TryExtend(sequences.Merge(producerChains...), target)
}
