package ir

// Kind identifies the variant of a target type.
type Kind int

const (
	KindBasic        Kind = iota // Built-in type name (string, number, boolean, unknown, ...)
	KindLiteral                  // Single string, number or boolean literal
	KindArray                    // Ordered collection (T[])
	KindIndexedMap               // Index signature or mapped type
	KindStructural               // Reference to a named declaration, possibly parameterized
	KindEnum                     // Reference to an enum declaration
	KindUnion                    // Union of types (T1 | T2 | ...)
	KindAlias                    // Reference to an alias declaration
	KindFunction                 // Function signature
	KindFreeVariable             // Unbound generic type parameter
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "Basic"
	case KindLiteral:
		return "Literal"
	case KindArray:
		return "Array"
	case KindIndexedMap:
		return "IndexedMap"
	case KindStructural:
		return "Structural"
	case KindEnum:
		return "Enum"
	case KindUnion:
		return "Union"
	case KindAlias:
		return "Alias"
	case KindFunction:
		return "Function"
	case KindFreeVariable:
		return "FreeVariable"
	default:
		return "Unknown"
	}
}

// Type is the base interface for all target types.
//
// Every instance carries its own optionality. For a property type it means the
// property may be absent or null; for a nested type (array element, map value,
// type argument) it means that position may hold null. How optionality is
// spelled in output is an emitter decision.
type Type interface {
	// Kind returns the variant for type switching.
	Kind() Kind

	// IsOptional reports whether this occurrence is optional/nullable.
	IsOptional() bool

	// Ensure only types in this package can implement Type.
	sealed()
}

// Optionality is embedded by every Type variant.
type Optionality struct {
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// IsOptional reports whether the occurrence is optional.
func (o Optionality) IsOptional() bool { return o.Optional }

func (Optionality) sealed() {}
