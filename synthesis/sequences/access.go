package sequences

// AccessKind describes the recorded access state of one call's result within a sequence.
type AccessKind uint8

const (
	// AccessUnused indicates the call's result has not been consumed by any later call.
	AccessUnused AccessKind = iota

	// AccessMoved indicates ownership of the call's result was transferred to a later call. A
	// moved value is never available again.
	AccessMoved

	// AccessSharedBorrowed indicates the call's result was last consumed under shared (or
	// by-value copy) access.
	AccessSharedBorrowed

	// AccessExclusiveBorrowed indicates the call's result was last consumed under exclusive
	// access.
	AccessExclusiveBorrowed
)

// AccessState records how a call's result has been consumed so far. Borrows are scoped to the
// single admission that takes them: only AccessMoved removes a value from circulation for the
// rest of the sequence. The remaining kinds are bookkeeping for dead-call analysis and for the
// harness renderer, which needs to know how each value was accessed.
type AccessState struct {
	// Kind is the most recent access taken on the call's result.
	Kind AccessKind

	// SharedCount counts the shared accesses taken on the call's result over the whole sequence.
	SharedCount int
}

// Consumed indicates the call's result has been used by at least one later call.
func (s AccessState) Consumed() bool {
	return s.Kind != AccessUnused
}
