package sequences

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/stheno-fuzz/stheno/synthesis/catalog"
)

// callNode is one immutable link in a sequence's call spine. Extending a sequence allocates a
// single new node pointing at the parent's spine, so the exhaustive search strategies share
// common prefixes structurally instead of deep-copying call lists on every branch.
type callNode struct {
	call   Call
	prev   *callNode
	length int
}

// Sequence is an ordered chain of calls intended to become one fuzz driver, together with its
// fuzzable slot list, covered dependency edges, per-call access states, unsafe flag and trait
// set. Sequences are immutable: every extension or merge produces a new value and leaves its
// parents untouched.
type Sequence struct {
	spine        *callNode
	states       []AccessState
	fuzzables    []FuzzableSlot
	coveredEdges map[int]struct{}
	unsafe       bool
	traits       map[string]struct{}
}

// New creates an empty sequence.
func New() *Sequence {
	return &Sequence{}
}

// Len returns the number of calls in the sequence.
func (s *Sequence) Len() int {
	if s.spine == nil {
		return 0
	}
	return s.spine.length
}

// Calls materializes the sequence's calls in order.
func (s *Sequence) Calls() []Call {
	calls := make([]Call, s.Len())
	for node := s.spine; node != nil; node = node.prev {
		calls[node.length-1] = node.call
	}
	return calls
}

// LastCall returns the final call of the sequence, or false if the sequence is empty.
func (s *Sequence) LastCall() (Call, bool) {
	if s.spine == nil {
		return Call{}, false
	}
	return s.spine.call, true
}

// LastFunction returns the catalog index of the final call's function, or false if the sequence
// is empty.
func (s *Sequence) LastFunction() (int, bool) {
	call, ok := s.LastCall()
	return call.Function, ok
}

// State returns the access state of the call at the given position.
func (s *Sequence) State(callIndex int) AccessState {
	return s.states[callIndex]
}

// Unsafe indicates the sequence contains an unsafe call or an unsafe conversion.
func (s *Sequence) Unsafe() bool {
	return s.unsafe
}

// Traits returns the sorted set of trait names the sequence's calls rely on.
func (s *Sequence) Traits() []string {
	traits := maps.Keys(s.traits)
	slices.Sort(traits)
	return traits
}

// Fuzzables returns the sequence's fuzzable slots in declaration order. The returned slice must
// not be modified.
func (s *Sequence) Fuzzables() []FuzzableSlot {
	return s.fuzzables
}

// HasNoFuzzables indicates the sequence consumes no fuzz input bytes at all. Such sequences are
// valid chains but useless as fuzz drivers and are skipped by selection.
func (s *Sequence) HasNoFuzzables() bool {
	return len(s.fuzzables) == 0
}

// FixedByteLength returns the sum of the minimum byte sizes of the sequence's fixed-size
// fuzzable slots: the minimum input length required before any variable-length chunk.
func (s *Sequence) FixedByteLength() int {
	total := 0
	for _, slot := range s.fuzzables {
		if slot.Encoding.Kind == catalog.EncodingFixed {
			total += slot.Encoding.MinBytes
		}
	}
	return total
}

// DynamicSlot returns the position (among the fuzzable slots, in declaration order) of the
// sequence's variable-length slot, or false if all slots are fixed-size. Admission guarantees at
// most one such slot exists.
func (s *Sequence) DynamicSlot() (int, bool) {
	for i, slot := range s.fuzzables {
		if slot.Encoding.Kind == catalog.EncodingVariable {
			return i, true
		}
	}
	return 0, false
}

// FuzzablesFixedLength indicates every fuzzable slot of the sequence has a fixed byte size.
func (s *Sequence) FuzzablesFixedLength() bool {
	_, dynamic := s.DynamicSlot()
	return !dynamic
}

// dynamicSlotCount counts the sequence's variable-length fuzzable slots.
func (s *Sequence) dynamicSlotCount() int {
	count := 0
	for _, slot := range s.fuzzables {
		if slot.Encoding.Kind == catalog.EncodingVariable {
			count++
		}
	}
	return count
}

// CoveredEdges returns the sorted identities of the dependency edges the sequence exercises.
func (s *Sequence) CoveredEdges() []int {
	edges := maps.Keys(s.coveredEdges)
	slices.Sort(edges)
	return edges
}

// CoversEdge indicates the sequence exercises the dependency edge with the given identity.
func (s *Sequence) CoversEdge(id int) bool {
	_, ok := s.coveredEdges[id]
	return ok
}

// CoveredFunctions returns the sorted, distinct catalog indices of the functions the sequence
// calls.
func (s *Sequence) CoveredFunctions() []int {
	seen := make(map[int]struct{})
	for node := s.spine; node != nil; node = node.prev {
		seen[node.call.Function] = struct{}{}
	}
	functions := maps.Keys(seen)
	slices.Sort(functions)
	return functions
}

// DeadCalls reports, for each call, whether its result is never consumed by a later call in the
// sequence. The final call is exempt, as its result is the driver's point of interest, and calls
// without a return value are never dead. hasReturn resolves whether a catalog function produces
// a result.
func (s *Sequence) DeadCalls(hasReturn func(function int) bool) []bool {
	length := s.Len()
	dead := make([]bool, length)
	i := length - 1
	for node := s.spine; node != nil; node = node.prev {
		dead[i] = i != length-1 && hasReturn(node.call.Function) && !s.states[i].Consumed()
		i--
	}
	return dead
}

// ContainsDeadCallExceptLast indicates some call before the sequence's final one produces a
// result no later call consumes. Such sequences waste their prefix work and are excluded from
// selection and merge candidacy.
func (s *Sequence) ContainsDeadCallExceptLast(hasReturn func(function int) bool) bool {
	for _, dead := range s.DeadCalls(hasReturn) {
		if dead {
			return true
		}
	}
	return false
}

// Describe renders the sequence's call chain using the provided function name resolver, for
// logging and reporting.
func (s *Sequence) Describe(nameOf func(function int) string) string {
	if s.Len() == 0 {
		return "<empty>"
	}
	var builder strings.Builder
	for i, call := range s.Calls() {
		if i > 0 {
			builder.WriteString(" -> ")
		}
		builder.WriteString(nameOf(call.Function))
	}
	return builder.String()
}

// String returns a short display string for the sequence.
func (s *Sequence) String() string {
	return fmt.Sprintf("sequence(calls=%d, fuzzables=%d, edges=%d)", s.Len(), len(s.fuzzables), len(s.coveredEdges))
}

// cloneStates copies the sequence's access states for use by a new sequence value.
func (s *Sequence) cloneStates() []AccessState {
	states := make([]AccessState, len(s.states))
	copy(states, s.states)
	return states
}

// cloneEdges copies the sequence's covered edge set for use by a new sequence value.
func (s *Sequence) cloneEdges() map[int]struct{} {
	edges := make(map[int]struct{}, len(s.coveredEdges))
	for id := range s.coveredEdges {
		edges[id] = struct{}{}
	}
	return edges
}

// cloneTraits copies the sequence's trait set for use by a new sequence value.
func (s *Sequence) cloneTraits() map[string]struct{} {
	traits := make(map[string]struct{}, len(s.traits))
	for name := range s.traits {
		traits[name] = struct{}{}
	}
	return traits
}
