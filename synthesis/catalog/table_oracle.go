package catalog

// compatKey identifies a (producer type, consumer type) pair by canonical name.
type compatKey struct {
	producer string
	consumer string
}

// TableOracle is a TypeOracle driven entirely by lookup tables exported from the signature
// extraction front end. It performs no structural reasoning of its own: any pair absent from its
// tables is incompatible, and any type absent from its encoding table is not fuzzable, keeping
// classification total.
type TableOracle struct {
	encodings map[string]Encoding
	compat    map[compatKey]Classification
}

// NewTableOracle creates an empty TableOracle. Entries are installed with SetEncoding and
// SetClassification, typically by the catalog file loader.
func NewTableOracle() *TableOracle {
	return &TableOracle{
		encodings: make(map[string]Encoding),
		compat:    make(map[compatKey]Classification),
	}
}

// SetEncoding records the byte encoding class for a type name.
func (o *TableOracle) SetEncoding(typeName string, encoding Encoding) {
	o.encodings[typeName] = encoding
}

// SetClassification records how a producer type can supply a consumer type.
func (o *TableOracle) SetClassification(producer string, consumer string, classification Classification) {
	o.compat[compatKey{producer: producer, consumer: consumer}] = classification
}

// Classify determines how a producer's return type can supply a consumer's parameter type.
// Unknown or nil types degrade to incompatible rather than failing.
func (o *TableOracle) Classify(producer TypeRef, consumer TypeRef) Classification {
	if producer == nil || consumer == nil {
		return Classification{Mode: AccessIncompatible}
	}
	if classification, ok := o.compat[compatKey{producer: producer.String(), consumer: consumer.String()}]; ok {
		return classification
	}
	return Classification{Mode: AccessIncompatible}
}

// Fuzzable determines whether a value of the given type can be derived from raw bytes. Unknown
// or nil types report EncodingNone.
func (o *TableOracle) Fuzzable(t TypeRef) Encoding {
	if t == nil {
		return Encoding{Kind: EncodingNone}
	}
	if encoding, ok := o.encodings[t.String()]; ok {
		return encoding
	}
	return Encoding{Kind: EncodingNone}
}
