package sequences

import (
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
)

// Extension accumulates the effects of admitting one candidate call onto a parent sequence:
// parameter bindings, newly allocated fuzzable slots, newly covered edges, access-state updates
// and the move/borrow conflict tracking scoped to this one admission. The parent sequence is
// never modified; Finalize produces the extended sequence or reports that the result would
// violate the single variable-length slot rule.
type Extension struct {
	parent *Sequence
	call   Call

	slots  []FuzzableSlot
	edges  []int
	unsafe bool
	traits []string

	// Per-admission conflict sets. A value may be bound at most once as moved or exclusively
	// borrowed within a single call's parameter list; shared accesses may repeat. These sets are
	// disjoint by construction of Available.
	pendingMoved     map[int]struct{}
	pendingShared    map[int]int
	pendingExclusive map[int]struct{}
}

// NewExtension starts an extension of the sequence with a call to the given catalog function.
func (s *Sequence) NewExtension(function int) *Extension {
	return &Extension{
		parent:           s,
		call:             Call{Function: function},
		pendingMoved:     make(map[int]struct{}),
		pendingShared:    make(map[int]int),
		pendingExclusive: make(map[int]struct{}),
	}
}

// Available determines whether the result of the parent sequence's call at producerIndex can
// still be consumed under the given access mode, considering both the sequence's persistent
// state (moved values are gone forever) and the accesses already taken within this admission
// (no move of a value borrowed here, no exclusive access alongside any other access here).
func (x *Extension) Available(producerIndex int, mode catalog.AccessMode) bool {
	if x.parent.states[producerIndex].Kind == AccessMoved {
		return false
	}
	if _, moved := x.pendingMoved[producerIndex]; moved {
		return false
	}

	_, exclusive := x.pendingExclusive[producerIndex]
	shared := x.pendingShared[producerIndex] > 0
	switch mode {
	case catalog.AccessOwned:
		return !exclusive && !shared
	case catalog.AccessExclusive:
		return !exclusive && !shared
	case catalog.AccessShared, catalog.AccessCopied:
		return !exclusive
	default:
		return false
	}
}

// BindResult binds the candidate call's next parameter to the result of the parent sequence's
// call at producerIndex under the given access mode, recording the covered dependency edge. The
// caller must have checked Available first.
func (x *Extension) BindResult(producerIndex int, mode catalog.AccessMode, edgeID int) {
	x.call.Params = append(x.call.Params, ParamBinding{
		Source: ParamResult,
		Index:  producerIndex,
		Mode:   mode,
	})
	x.edges = append(x.edges, edgeID)

	switch mode {
	case catalog.AccessOwned:
		x.pendingMoved[producerIndex] = struct{}{}
	case catalog.AccessExclusive:
		x.pendingExclusive[producerIndex] = struct{}{}
	case catalog.AccessShared, catalog.AccessCopied:
		x.pendingShared[producerIndex]++
	}
}

// BindFuzzable allocates a new fuzzable slot of the given type and encoding for the candidate
// call's next parameter, returning the slot's index.
func (x *Extension) BindFuzzable(t catalog.TypeRef, encoding catalog.Encoding) int {
	slotIndex := len(x.parent.fuzzables) + len(x.slots)
	x.slots = append(x.slots, FuzzableSlot{Type: t, Encoding: encoding})
	x.call.Params = append(x.call.Params, ParamBinding{
		Source: ParamFuzzable,
		Index:  slotIndex,
	})
	return slotIndex
}

// MarkUnsafe flags the extended sequence as containing an unsafe call or conversion.
func (x *Extension) MarkUnsafe() {
	x.unsafe = true
}

// AddTrait records a trait name the candidate call relies on.
func (x *Extension) AddTrait(name string) {
	x.traits = append(x.traits, name)
}

// Finalize produces the extended sequence. It returns false if the result would carry more than
// one variable-length fuzzable slot, in which case the admission as a whole fails.
func (x *Extension) Finalize() (*Sequence, bool) {
	dynamicSlots := x.parent.dynamicSlotCount()
	for _, slot := range x.slots {
		if slot.Encoding.Kind == catalog.EncodingVariable {
			dynamicSlots++
		}
	}
	if dynamicSlots > 1 {
		return nil, false
	}

	// Apply this admission's accesses to the copied per-call states. The conflict sets are
	// disjoint, so application order does not matter.
	states := x.parent.cloneStates()
	for producerIndex := range x.pendingMoved {
		states[producerIndex].Kind = AccessMoved
	}
	for producerIndex := range x.pendingExclusive {
		states[producerIndex].Kind = AccessExclusiveBorrowed
	}
	for producerIndex, count := range x.pendingShared {
		states[producerIndex].Kind = AccessSharedBorrowed
		states[producerIndex].SharedCount += count
	}
	states = append(states, AccessState{})

	fuzzables := make([]FuzzableSlot, 0, len(x.parent.fuzzables)+len(x.slots))
	fuzzables = append(fuzzables, x.parent.fuzzables...)
	fuzzables = append(fuzzables, x.slots...)

	coveredEdges := x.parent.cloneEdges()
	for _, id := range x.edges {
		coveredEdges[id] = struct{}{}
	}

	traits := x.parent.cloneTraits()
	for _, name := range x.traits {
		traits[name] = struct{}{}
	}

	return &Sequence{
		spine: &callNode{
			call:   x.call,
			prev:   x.parent.spine,
			length: x.parent.Len() + 1,
		},
		states:       states,
		fuzzables:    fuzzables,
		coveredEdges: coveredEdges,
		unsafe:       x.parent.unsafe || x.unsafe,
		traits:       traits,
	}, true
}
