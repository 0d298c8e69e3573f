package catalog

import (
	"github.com/pkg/errors"
)

// FunctionKind describes the kind of a catalog function. It is a closed variant: the synthesis
// engine only admits bare functions, while generic functions are tracked but rejected by
// admission until a real instantiation enumeration policy exists.
type FunctionKind uint8

const (
	// BareFunction describes a plain, non-generic function (or a generic function whose type
	// parameters have been fully resolved through its substitution map).
	BareFunction FunctionKind = iota

	// GenericFunction describes a function with unresolved generic parameters. Admission rejects
	// these outright.
	GenericFunction
)

// FunctionSignature describes one callable function of the library under test, as supplied by the
// signature extraction front end. Signatures are immutable once the catalog is constructed.
type FunctionSignature struct {
	// Name is the full, unique name of the function within the catalog.
	Name string

	// Params describes the ordered parameter types of the function.
	Params []TypeRef

	// Return describes the function's return type, or nil if the function returns nothing.
	Return TypeRef

	// Generics lists the names of the function's generic type parameters, if any.
	Generics []string

	// Substitutions maps generic parameter names to the concrete types they are resolved to
	// when building dependency edges and admitting calls.
	Substitutions map[string]TypeRef

	// Kind describes whether this is a bare or generic function.
	Kind FunctionKind

	// Public indicates the function is visible to library consumers. The front end filters
	// catalogs by visibility before export; the flag is retained for reporting.
	Public bool

	// Trait names the trait/interface this function originates from, if any. Sequences record
	// the set of traits their calls rely on so the harness renderer can import them.
	Trait string

	// Unsafe indicates the function itself is unsafe to call. Any sequence containing it is
	// flagged unsafe.
	Unsafe bool
}

// HasReturn indicates whether the function produces a result that later calls could consume.
func (f *FunctionSignature) HasReturn() bool {
	return f.Return != nil
}

// ApplyDefaultSubstitutions populates the signature's substitution map so that every generic
// parameter resolves to the single provided concrete type. This is the deliberately simple
// default policy; callers may install richer substitution maps before catalog construction.
func (f *FunctionSignature) ApplyDefaultSubstitutions(concrete TypeRef) {
	if len(f.Generics) == 0 {
		return
	}
	if f.Substitutions == nil {
		f.Substitutions = make(map[string]TypeRef, len(f.Generics))
	}
	for _, name := range f.Generics {
		if _, ok := f.Substitutions[name]; !ok {
			f.Substitutions[name] = concrete
		}
	}
}

// Catalog holds the ordered, immutable set of function signatures the synthesis engine operates
// over. Function indices within the catalog are the identities used by dependency edges, calls
// and visited tracking.
type Catalog struct {
	// library is the identifier of the library under test, used for per-library tuning lookups.
	library string

	// functions is the ordered signature list. It is never mutated after construction.
	functions []FunctionSignature

	// nameIndex maps function names to their catalog index.
	nameIndex map[string]int
}

// NewCatalog constructs a Catalog from the provided library identifier and ordered signature
// list. Returns an error if two signatures share a name, as names are the identities seed
// corpora refer to.
func NewCatalog(library string, functions []FunctionSignature) (*Catalog, error) {
	nameIndex := make(map[string]int, len(functions))
	for i, function := range functions {
		if _, ok := nameIndex[function.Name]; ok {
			return nil, errors.Errorf("catalog for %q contains duplicate function name %q", library, function.Name)
		}
		nameIndex[function.Name] = i
	}
	return &Catalog{
		library:   library,
		functions: functions,
		nameIndex: nameIndex,
	}, nil
}

// Library returns the identifier of the library under test.
func (c *Catalog) Library() string {
	return c.library
}

// Len returns the number of functions in the catalog.
func (c *Catalog) Len() int {
	return len(c.functions)
}

// Function returns the signature at the given catalog index. The returned signature must not be
// modified.
func (c *Catalog) Function(index int) *FunctionSignature {
	return &c.functions[index]
}

// Lookup resolves a function name to its catalog index.
func (c *Catalog) Lookup(name string) (int, bool) {
	index, ok := c.nameIndex[name]
	return index, ok
}
