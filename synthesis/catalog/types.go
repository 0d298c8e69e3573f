package catalog

import "fmt"

// TypeRef describes an opaque reference to a library type, as extracted by the signature
// extraction front end. The synthesis engine never inspects a type's structure itself:
// compatibility and fuzzability classification are delegated to a TypeOracle, and generic
// parameter resolution to a SubstitutionPolicy.
type TypeRef interface {
	// String returns the canonical display name of the type.
	String() string
}

// NamedType is a TypeRef identified purely by its canonical name. It is the representation used
// by the catalog interchange format, where all structural analysis has already been performed by
// the front end and types are referenced by name in the oracle's tables.
type NamedType string

// String returns the canonical display name of the type.
func (n NamedType) String() string {
	return string(n)
}

// AccessMode describes how a producer function's result is supplied to a consumer function's
// parameter within a call sequence.
type AccessMode uint8

const (
	// AccessIncompatible indicates the producer's result cannot supply the consumer's parameter.
	AccessIncompatible AccessMode = iota

	// AccessOwned indicates the producer's result is moved into the consumer's parameter. The
	// value is no longer available to any later call once supplied this way.
	AccessOwned

	// AccessCopied indicates the producer's result is supplied as a by-value copy. The original
	// value remains available to later calls.
	AccessCopied

	// AccessShared indicates the consumer takes shared (read-only) access to the producer's
	// result. Multiple shared accesses of the same value may coexist.
	AccessShared

	// AccessExclusive indicates the consumer takes exclusive (mutable) access to the producer's
	// result. An exclusive access may not coexist with any other access to the same value within
	// a single call's parameter list.
	AccessExclusive
)

// String returns a display string for the access mode.
func (m AccessMode) String() string {
	switch m {
	case AccessIncompatible:
		return "incompatible"
	case AccessOwned:
		return "owned"
	case AccessCopied:
		return "copied"
	case AccessShared:
		return "shared"
	case AccessExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// MarshalText serializes the access mode into its display string, implementing
// encoding.TextMarshaler for use by the catalog interchange format and the sequence store.
func (m AccessMode) MarshalText() ([]byte, error) {
	if m > AccessExclusive {
		return nil, fmt.Errorf("cannot marshal unknown access mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses an access mode from its display string, implementing
// encoding.TextUnmarshaler.
func (m *AccessMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "incompatible":
		*m = AccessIncompatible
	case "owned":
		*m = AccessOwned
	case "copied":
		*m = AccessCopied
	case "shared":
		*m = AccessShared
	case "exclusive":
		*m = AccessExclusive
	default:
		return fmt.Errorf("cannot unmarshal unknown access mode %q", string(text))
	}
	return nil
}

// Classification is a TypeOracle's answer for a (producer return type, consumer parameter type)
// pair. Unsafe marks conversions which are intrinsically unsafe to perform, causing any sequence
// exercising them to be flagged accordingly.
type Classification struct {
	// Mode describes how the producer's result may be supplied to the consumer's parameter.
	Mode AccessMode

	// Unsafe indicates the conversion underlying this access mode is unsafe to perform.
	Unsafe bool
}

// EncodingKind describes how (and whether) a type's value can be derived from a slice of raw
// fuzzer-provided bytes.
type EncodingKind uint8

const (
	// EncodingNone indicates the type cannot be derived from raw bytes and must be produced by
	// an earlier call in a sequence.
	EncodingNone EncodingKind = iota

	// EncodingFixed indicates the type is derived from a fixed number of bytes.
	EncodingFixed

	// EncodingVariable indicates the type is derived from a variable-length byte chunk, e.g. a
	// string or byte slice. At most one variable-length parameter may exist per sequence.
	EncodingVariable

	// EncodingUnsupported indicates the type is in principle derivable from raw bytes, but its
	// shape is not supported by the byte codec. Admitting a call with such a parameter fails.
	EncodingUnsupported
)

// Encoding describes the byte encoding class of a fuzzable type.
type Encoding struct {
	// Kind describes the encoding class of the type.
	Kind EncodingKind

	// MinBytes describes the minimum number of input bytes required to derive a value. It is
	// only meaningful for EncodingFixed.
	MinBytes int
}

// FixedEncoding returns an Encoding describing a fixed-size type requiring minBytes input bytes.
func FixedEncoding(minBytes int) Encoding {
	return Encoding{Kind: EncodingFixed, MinBytes: minBytes}
}

// VariableEncoding returns an Encoding describing a variable-length type.
func VariableEncoding() Encoding {
	return Encoding{Kind: EncodingVariable}
}

// Fuzzable indicates whether the encoding allows the type's value to be derived from raw bytes.
func (e Encoding) Fuzzable() bool {
	return e.Kind == EncodingFixed || e.Kind == EncodingVariable
}
