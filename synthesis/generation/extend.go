package generation

import (
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stheno-fuzz/stheno/synthesis/sequences"
)

// TryExtend is the admission algorithm every search strategy builds on: it decides whether a
// call to the given catalog function can be appended to the provided sequence, resolving each
// parameter in declared order either to a newly allocated fuzzable slot or to the result of an
// earlier call that is still available under the required access mode. On success it returns the
// extended sequence; failure ("not satisfiable") is a normal outcome, not an error.
//
// Admission is monotonic: every prefix of an admitted sequence was itself admitted when it was
// constructed.
func (e *Engine) TryExtend(seq *sequences.Sequence, function int) (*sequences.Sequence, bool) {
	fn := e.graph.Catalog().Function(function)

	// Generic functions have no instantiation enumeration policy yet.
	if fn.Kind == catalog.GenericFunction {
		return nil, false
	}

	extension := seq.NewExtension(function)
	if fn.Unsafe {
		extension.MarkUnsafe()
	}
	if fn.Trait != "" {
		extension.AddTrait(fn.Trait)
	}

	calls := seq.Calls()
	for paramIndex := range fn.Params {
		paramType, ok := e.graph.SubstitutedParam(function, paramIndex)
		if !ok {
			return nil, false
		}

		// Fuzzable parameters allocate a byte-buffer slot. A recognized-but-unencodable shape
		// fails the whole admission rather than falling back to a dependency search.
		encoding := e.graph.Oracle().Fuzzable(paramType)
		if encoding.Fuzzable() {
			extension.BindFuzzable(paramType, encoding)
			continue
		}
		if encoding.Kind == catalog.EncodingUnsupported {
			return nil, false
		}

		// Otherwise, scan the earlier calls in order for a result still available under the mode
		// some dependency edge records for this exact parameter. The first available producer
		// wins; producers conflicting with accesses already taken in this admission are skipped.
		bound := false
		for callIndex, call := range calls {
			edgeID, ok := e.graph.CheckDependency(call.Function, function, paramIndex)
			if !ok {
				continue
			}
			edge := e.graph.Edge(edgeID)
			if !extension.Available(callIndex, edge.Mode) {
				continue
			}

			extension.BindResult(callIndex, edge.Mode, edgeID)
			if edge.Unsafe {
				extension.MarkUnsafe()
			}
			bound = true
			break
		}
		if !bound {
			return nil, false
		}
	}

	// Finalize rejects extensions that would leave the sequence with more than one
	// variable-length fuzzable slot.
	return extension.Finalize()
}
