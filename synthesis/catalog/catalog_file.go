package catalog

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// CatalogFile is the JSON interchange format through which a signature extraction front end
// supplies a catalog, its oracle tables and its convention markers in one document. The front
// end performs all structural type analysis; this file only carries its conclusions.
type CatalogFile struct {
	// Library is the identifier of the library under test.
	Library string `json:"library"`

	// DefaultConcreteType names the concrete type every generic parameter is substituted with
	// when a function does not carry its own substitution entries. Empty means "i32".
	DefaultConcreteType string `json:"defaultConcreteType,omitempty"`

	// Functions describes the exported function signatures, in catalog order.
	Functions []CatalogFileFunction `json:"functions"`

	// Encodings maps type names to their byte encoding class.
	Encodings map[string]CatalogFileEncoding `json:"encodings,omitempty"`

	// Compatibility lists the non-incompatible (producer type, consumer type) classifications.
	Compatibility []CatalogFileCompatibility `json:"compatibility,omitempty"`
}

// CatalogFileFunction describes one function signature in a CatalogFile.
type CatalogFileFunction struct {
	Name          string            `json:"name"`
	Params        []string          `json:"params,omitempty"`
	Return        string            `json:"return,omitempty"`
	Generics      []string          `json:"generics,omitempty"`
	Substitutions map[string]string `json:"substitutions,omitempty"`
	Generic       bool              `json:"generic,omitempty"`
	Public        bool              `json:"public"`
	Trait         string            `json:"trait,omitempty"`
	Unsafe        bool              `json:"unsafe,omitempty"`
	Start         bool              `json:"start,omitempty"`
	End           bool              `json:"end,omitempty"`
}

// CatalogFileEncoding describes the byte encoding class of one type in a CatalogFile.
type CatalogFileEncoding struct {
	// Kind is one of "fixed", "variable" or "unsupported".
	Kind string `json:"kind"`

	// MinBytes is the minimum input byte count for "fixed" encodings.
	MinBytes int `json:"minBytes,omitempty"`
}

// CatalogFileCompatibility describes one (producer type, consumer type) classification in a
// CatalogFile.
type CatalogFileCompatibility struct {
	Producer string     `json:"producer"`
	Consumer string     `json:"consumer"`
	Mode     AccessMode `json:"mode"`
	Unsafe   bool       `json:"unsafe,omitempty"`
}

// ReadCatalogFromFile reads a JSON-serialized CatalogFile from the provided path and materializes
// the catalog, the table-driven oracle and the convention table it describes. Returns an error if
// the file cannot be read or parsed, or if the catalog itself is invalid.
func ReadCatalogFromFile(path string) (*Catalog, *TableOracle, *ConventionTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, errors.WithStack(err)
	}

	var file CatalogFile
	if err = json.Unmarshal(b, &file); err != nil {
		return nil, nil, nil, errors.WithStack(err)
	}
	return file.Materialize()
}

// Materialize converts the interchange document into a Catalog, a TableOracle and a
// ConventionTable. Non-public functions are dropped, as the engine only chains calls a library
// consumer could write.
func (f *CatalogFile) Materialize() (*Catalog, *TableOracle, *ConventionTable, error) {
	defaultConcrete := f.DefaultConcreteType
	if defaultConcrete == "" {
		defaultConcrete = "i32"
	}

	var startNames, endNames []string
	functions := make([]FunctionSignature, 0, len(f.Functions))
	for _, entry := range f.Functions {
		if !entry.Public {
			continue
		}

		function := FunctionSignature{
			Name:     entry.Name,
			Generics: entry.Generics,
			Public:   true,
			Trait:    entry.Trait,
			Unsafe:   entry.Unsafe,
		}
		if entry.Generic {
			function.Kind = GenericFunction
		}
		for _, param := range entry.Params {
			function.Params = append(function.Params, NamedType(param))
		}
		if entry.Return != "" {
			function.Return = NamedType(entry.Return)
		}
		if len(entry.Substitutions) > 0 {
			function.Substitutions = make(map[string]TypeRef, len(entry.Substitutions))
			for name, concrete := range entry.Substitutions {
				function.Substitutions[name] = NamedType(concrete)
			}
		}
		function.ApplyDefaultSubstitutions(NamedType(defaultConcrete))

		if entry.Start {
			startNames = append(startNames, entry.Name)
		}
		if entry.End {
			endNames = append(endNames, entry.Name)
		}
		functions = append(functions, function)
	}

	catalog, err := NewCatalog(f.Library, functions)
	if err != nil {
		return nil, nil, nil, err
	}

	oracle := NewTableOracle()
	for name, encoding := range f.Encodings {
		switch encoding.Kind {
		case "fixed":
			oracle.SetEncoding(name, FixedEncoding(encoding.MinBytes))
		case "variable":
			oracle.SetEncoding(name, VariableEncoding())
		case "unsupported":
			oracle.SetEncoding(name, Encoding{Kind: EncodingUnsupported})
		default:
			return nil, nil, nil, errors.Errorf("catalog for %q declares unknown encoding kind %q for type %q", f.Library, encoding.Kind, name)
		}
	}
	for _, compatibility := range f.Compatibility {
		oracle.SetClassification(compatibility.Producer, compatibility.Consumer, Classification{
			Mode:   compatibility.Mode,
			Unsafe: compatibility.Unsafe,
		})
	}

	return catalog, oracle, NewConventionTable(startNames, endNames), nil
}
