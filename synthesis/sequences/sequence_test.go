package sequences

import (
	"testing"

	"github.com/stheno-fuzz/stheno/synthesis/catalog"
	"github.com/stretchr/testify/assert"
)

// extend admits a call onto the sequence using pre-resolved bindings, failing the test if the
// extension cannot be finalized.
func extend(t *testing.T, seq *Sequence, function int, bind func(x *Extension)) *Sequence {
	extension := seq.NewExtension(function)
	if bind != nil {
		bind(extension)
	}
	extended, ok := extension.Finalize()
	assert.True(t, ok)
	return extended
}

// TestOwnedBindingConsumesResult verifies a value supplied by move is gone for every later
// admission, while the parent sequence is left untouched.
func TestOwnedBindingConsumesResult(t *testing.T) {
	producer := extend(t, New(), 0, nil)

	consumer := extend(t, producer, 1, func(x *Extension) {
		assert.True(t, x.Available(0, catalog.AccessOwned))
		x.BindResult(0, catalog.AccessOwned, 0)
	})

	// The consuming sequence sees the move; the parent still owns its result.
	assert.Equal(t, AccessMoved, consumer.State(0).Kind)
	assert.Equal(t, AccessUnused, producer.State(0).Kind)

	// No access mode can reach a moved value in later admissions.
	next := consumer.NewExtension(2)
	assert.False(t, next.Available(0, catalog.AccessOwned))
	assert.False(t, next.Available(0, catalog.AccessShared))
	assert.False(t, next.Available(0, catalog.AccessExclusive))
}

// TestBorrowConflictsScopedToOneAdmission verifies shared and exclusive accesses conflict only
// within a single call's parameter list: a value borrowed by one admitted call is available
// again to the next admission.
func TestBorrowConflictsScopedToOneAdmission(t *testing.T) {
	producer := extend(t, New(), 0, nil)

	// Within one admission, a shared access blocks exclusive and owned use of the same value but
	// allows further shared accesses.
	extension := producer.NewExtension(1)
	assert.True(t, extension.Available(0, catalog.AccessShared))
	extension.BindResult(0, catalog.AccessShared, 0)
	assert.True(t, extension.Available(0, catalog.AccessShared))
	assert.True(t, extension.Available(0, catalog.AccessCopied))
	assert.False(t, extension.Available(0, catalog.AccessExclusive))
	assert.False(t, extension.Available(0, catalog.AccessOwned))
	borrowed, ok := extension.Finalize()
	assert.True(t, ok)

	// An exclusive access taken within one admission blocks every other access there.
	exclusiveExt := producer.NewExtension(1)
	exclusiveExt.BindResult(0, catalog.AccessExclusive, 0)
	assert.False(t, exclusiveExt.Available(0, catalog.AccessShared))
	assert.False(t, exclusiveExt.Available(0, catalog.AccessExclusive))

	// The next admission starts with a clean slate: only moves persist across admissions.
	next := borrowed.NewExtension(2)
	assert.True(t, next.Available(0, catalog.AccessExclusive))
	assert.True(t, next.Available(0, catalog.AccessOwned))
}

// TestFinalizeRejectsSecondDynamicSlot verifies the single variable-length slot rule: the byte
// buffer can only be split around one dynamically sized region.
func TestFinalizeRejectsSecondDynamicSlot(t *testing.T) {
	withDynamic := extend(t, New(), 0, func(x *Extension) {
		x.BindFuzzable(catalog.NamedType("Bytes"), catalog.VariableEncoding())
	})

	// A second variable-length slot fails the admission, whether it joins in the same call or a
	// later one.
	sameCall := New().NewExtension(0)
	sameCall.BindFuzzable(catalog.NamedType("Bytes"), catalog.VariableEncoding())
	sameCall.BindFuzzable(catalog.NamedType("Bytes"), catalog.VariableEncoding())
	_, ok := sameCall.Finalize()
	assert.False(t, ok)

	laterCall := withDynamic.NewExtension(1)
	laterCall.BindFuzzable(catalog.NamedType("Bytes"), catalog.VariableEncoding())
	_, ok = laterCall.Finalize()
	assert.False(t, ok)

	// Fixed slots remain admissible alongside the dynamic one.
	mixed := extend(t, withDynamic, 1, func(x *Extension) {
		x.BindFuzzable(catalog.NamedType("u32"), catalog.FixedEncoding(4))
	})
	assert.False(t, mixed.FuzzablesFixedLength())
}

// TestFixedByteLength verifies the byte budget sums the fixed slots only and the dynamic slot is
// reported separately.
func TestFixedByteLength(t *testing.T) {
	seq := extend(t, New(), 0, func(x *Extension) {
		x.BindFuzzable(catalog.NamedType("u32"), catalog.FixedEncoding(4))
		x.BindFuzzable(catalog.NamedType("u64"), catalog.FixedEncoding(8))
	})
	assert.Equal(t, 12, seq.FixedByteLength())
	assert.True(t, seq.FuzzablesFixedLength())
	_, hasDynamic := seq.DynamicSlot()
	assert.False(t, hasDynamic)

	seq = extend(t, seq, 1, func(x *Extension) {
		x.BindFuzzable(catalog.NamedType("Bytes"), catalog.VariableEncoding())
	})
	assert.Equal(t, 12, seq.FixedByteLength())
	assert.False(t, seq.FuzzablesFixedLength())
	slot, hasDynamic := seq.DynamicSlot()
	assert.True(t, hasDynamic)
	assert.Equal(t, 2, slot)
}

// TestDeadCalls verifies a call whose result nothing consumes is dead unless it is the final
// call of the sequence.
func TestDeadCalls(t *testing.T) {
	hasReturn := func(function int) bool { return true }

	// Call 0's result feeds call 2; call 1's result is never consumed.
	seq := extend(t, New(), 0, nil)
	seq = extend(t, seq, 1, nil)
	seq = extend(t, seq, 2, func(x *Extension) {
		x.BindResult(0, catalog.AccessShared, 0)
	})

	dead := seq.DeadCalls(hasReturn)
	assert.Equal(t, []bool{false, true, false}, dead)
	assert.True(t, seq.ContainsDeadCallExceptLast(hasReturn))

	// With only the final call unconsumed, the sequence is clean.
	seq = extend(t, New(), 0, nil)
	seq = extend(t, seq, 2, func(x *Extension) {
		x.BindResult(0, catalog.AccessOwned, 0)
	})
	assert.False(t, seq.ContainsDeadCallExceptLast(hasReturn))

	// Calls without a return value are never dead.
	assert.False(t, extend(t, New(), 0, nil).ContainsDeadCallExceptLast(func(int) bool { return false }))
}

// TestMergeRenumbersBindings verifies merging renumbers result and slot indices by the offsets
// of each source sequence and unions the coverage bookkeeping.
func TestMergeRenumbersBindings(t *testing.T) {
	first := extend(t, New(), 0, func(x *Extension) {
		x.BindFuzzable(catalog.NamedType("u32"), catalog.FixedEncoding(4))
	})
	first = extend(t, first, 1, func(x *Extension) {
		x.BindResult(0, catalog.AccessOwned, 7)
	})

	second := extend(t, New(), 2, func(x *Extension) {
		x.BindFuzzable(catalog.NamedType("u32"), catalog.FixedEncoding(4))
	})
	second = extend(t, second, 3, func(x *Extension) {
		x.BindResult(0, catalog.AccessShared, 9)
		x.AddTrait("Display")
	})

	merged := Merge(first, second)
	assert.Equal(t, 4, merged.Len())
	calls := merged.Calls()

	// The second sequence's bindings shift by the first's call and slot counts.
	assert.Equal(t, ParamFuzzable, calls[2].Params[0].Source)
	assert.Equal(t, 1, calls[2].Params[0].Index)
	assert.Equal(t, ParamResult, calls[3].Params[0].Source)
	assert.Equal(t, 2, calls[3].Params[0].Index)

	// The first sequence's bindings are untouched.
	assert.Equal(t, 0, calls[1].Params[0].Index)

	assert.Equal(t, []int{7, 9}, merged.CoveredEdges())
	assert.Equal(t, []string{"Display"}, merged.Traits())
	assert.Equal(t, 8, merged.FixedByteLength())
	assert.Equal(t, AccessMoved, merged.State(0).Kind)
}
