// Package sequences defines the immutable call sequence representation the synthesis engine
// explores: ordered calls whose parameters are bound either to fuzzable byte-buffer slots or to
// the results of earlier calls, together with the access-state, byte-budget and coverage
// bookkeeping each sequence carries. Sequences are never mutated after creation; extension and
// merge always produce new values, with call spines sharing common prefixes structurally.
package sequences

import (
	"github.com/stheno-fuzz/stheno/synthesis/catalog"
)

// ParamSource identifies where a call parameter's value comes from.
type ParamSource uint8

const (
	// ParamFuzzable indicates the parameter is derived from a slice of the fuzz input bytes,
	// identified by a fuzzable slot index.
	ParamFuzzable ParamSource = iota

	// ParamResult indicates the parameter consumes the result of an earlier call in the
	// sequence, identified by that call's position.
	ParamResult
)

// ParamBinding binds one parameter of a Call to its value source.
type ParamBinding struct {
	// Source identifies whether the parameter is fuzzable or consumes an earlier result.
	Source ParamSource

	// Index is a fuzzable slot index for ParamFuzzable bindings, or the position of the
	// producing call within the sequence for ParamResult bindings.
	Index int

	// Mode is the access mode used to supply the value for ParamResult bindings. It is not
	// meaningful for ParamFuzzable bindings.
	Mode catalog.AccessMode
}

// Call describes one invocation within a sequence: the catalog function called and the bindings
// of each of its parameters, in declared order.
type Call struct {
	// Function is the catalog index of the called function.
	Function int

	// Params binds each parameter of the function, in declared order.
	Params []ParamBinding
}

// FuzzableSlot describes one parameter across the whole sequence whose value is derived from the
// fuzz input byte buffer. Slots are consumed in declaration order when the buffer is split.
type FuzzableSlot struct {
	// Type is the substituted type the slot's bytes are decoded into.
	Type catalog.TypeRef

	// Encoding describes the slot's byte encoding class and minimum size.
	Encoding catalog.Encoding
}
