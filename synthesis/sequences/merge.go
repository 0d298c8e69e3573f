package sequences

// Merge structurally concatenates the provided sequences into a single new sequence, renumbering
// each call's result references and fuzzable slot indices by the offsets of its source sequence.
// Access states carry over unchanged, covered edges and traits are unioned and the unsafe flags
// are combined. Merging is used by the backward construction and coverage-repair passes to
// combine independently built producer chains; the merged result is re-validated by the admission
// that appends the target call.
func Merge(seqs ...*Sequence) *Sequence {
	merged := &Sequence{
		coveredEdges: make(map[int]struct{}),
		traits:       make(map[string]struct{}),
	}

	callOffset := 0
	slotOffset := 0
	for _, seq := range seqs {
		for _, call := range seq.Calls() {
			rebound := Call{
				Function: call.Function,
				Params:   make([]ParamBinding, len(call.Params)),
			}
			for i, param := range call.Params {
				rebound.Params[i] = param
				if param.Source == ParamResult {
					rebound.Params[i].Index += callOffset
				} else {
					rebound.Params[i].Index += slotOffset
				}
			}
			merged.spine = &callNode{
				call:   rebound,
				prev:   merged.spine,
				length: merged.Len() + 1,
			}
		}

		merged.states = append(merged.states, seq.states...)
		merged.fuzzables = append(merged.fuzzables, seq.fuzzables...)
		for id := range seq.coveredEdges {
			merged.coveredEdges[id] = struct{}{}
		}
		for name := range seq.traits {
			merged.traits[name] = struct{}{}
		}
		merged.unsafe = merged.unsafe || seq.unsafe

		callOffset += seq.Len()
		slotOffset += len(seq.fuzzables)
	}
	return merged
}
