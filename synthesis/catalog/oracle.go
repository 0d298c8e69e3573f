package catalog

// TypeOracle classifies type relationships on behalf of the synthesis engine. The engine treats
// types as opaque; all structural reasoning lives behind this interface. Implementations must be
// total: a malformed or unrecognized type must classify as incompatible/non-fuzzable rather than
// fail, so dependency graph construction never aborts.
type TypeOracle interface {
	// Classify determines how a producer's return type can supply a consumer's parameter type.
	// Both types are expected to have been substituted already. Classify must return
	// AccessIncompatible for any pair it does not recognize.
	Classify(producer TypeRef, consumer TypeRef) Classification

	// Fuzzable determines whether (and how) a value of the given substituted type can be derived
	// from raw fuzzer-provided bytes. Unrecognized types must report EncodingNone.
	Fuzzable(t TypeRef) Encoding
}

// SubstitutionPolicy resolves generic parameters appearing in a function's parameter and return
// types to concrete types, using the function's own substitution map. The policy is pluggable:
// the default maps each generic parameter name to a single fixed concrete type, and richer
// instantiation enumeration can be installed without touching the engine.
type SubstitutionPolicy interface {
	// Substitute resolves the given type against the provided substitution map. The second
	// return value is false if the type cannot be resolved to a concrete type, in which case no
	// dependency edge is recorded for it.
	Substitute(t TypeRef, substitutions map[string]TypeRef) (TypeRef, bool)
}

// DefaultSubstitution resolves types by direct name lookup: a type whose name matches a generic
// parameter in the substitution map is replaced by its mapped concrete type, and any other type
// is returned unchanged. Combined with FunctionSignature.ApplyDefaultSubstitutions this realizes
// the fixed single-concrete-type policy.
type DefaultSubstitution struct{}

// Substitute resolves the given type against the provided substitution map.
func (DefaultSubstitution) Substitute(t TypeRef, substitutions map[string]TypeRef) (TypeRef, bool) {
	if t == nil {
		return nil, false
	}
	if concrete, ok := substitutions[t.String()]; ok {
		return concrete, true
	}
	return t, true
}

// Conventions supplies the library-convention markers restricting where a function may appear in
// a sequence: a start function may only begin a sequence, an end function may only terminate one.
type Conventions interface {
	// IsStart indicates the function may only appear as the first call of a sequence. Start
	// functions never act as dependency consumers.
	IsStart(function *FunctionSignature) bool

	// IsEnd indicates the function may only appear as the last call of a sequence. End functions
	// never act as dependency producers.
	IsEnd(function *FunctionSignature) bool
}

// ConventionTable implements Conventions through explicit name sets, as exported by the front
// end's convention table.
type ConventionTable struct {
	start map[string]struct{}
	end   map[string]struct{}
}

// NewConventionTable creates a ConventionTable from the provided start and end function names.
func NewConventionTable(startNames []string, endNames []string) *ConventionTable {
	table := &ConventionTable{
		start: make(map[string]struct{}, len(startNames)),
		end:   make(map[string]struct{}, len(endNames)),
	}
	for _, name := range startNames {
		table.start[name] = struct{}{}
	}
	for _, name := range endNames {
		table.end[name] = struct{}{}
	}
	return table
}

// IsStart indicates the function may only appear as the first call of a sequence.
func (t *ConventionTable) IsStart(function *FunctionSignature) bool {
	_, ok := t.start[function.Name]
	return ok
}

// IsEnd indicates the function may only appear as the last call of a sequence.
func (t *ConventionTable) IsEnd(function *FunctionSignature) bool {
	_, ok := t.end[function.Name]
	return ok
}
