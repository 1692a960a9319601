package source

import (
	"fmt"
	"strings"
)

// RefKind classifies a TypeRef. Providers decide the kind; the compiler never
// inspects source-language types itself.
type RefKind int

const (
	KindPrimitive   RefKind = iota // Primitive or value type, named by Identity.Name
	KindBean                       // Class or interface compiled to a structural declaration
	KindEnum                       // Enum compiled by the enum compiler
	KindCollection                 // Single-parameter collection; Args[0] is the element
	KindMap                        // Two-parameter map; Args[0] key, Args[1] value
	KindArray                      // Native array; Args[0] is the element
	KindVariable                   // Type variable named by Identity.Name
	KindFunction                   // Single-abstract-method type; Signature is set
	KindUnsupported                // A shape no built-in strategy models
)

var refKindNames = map[RefKind]string{
	KindPrimitive:   "primitive",
	KindBean:        "bean",
	KindEnum:        "enum",
	KindCollection:  "collection",
	KindMap:         "map",
	KindArray:       "array",
	KindVariable:    "variable",
	KindFunction:    "function",
	KindUnsupported: "unsupported",
}

// String returns the lower-case kind name.
func (k RefKind) String() string {
	if s, ok := refKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k RefKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RefKind) UnmarshalText(text []byte) error {
	for kind, name := range refKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown type reference kind %q", text)
}

// TypeRef references a source type: identity, ordered generic arguments and
// nullability. TypeRefs are values; helpers return modified copies.
type TypeRef struct {
	Kind     RefKind   `json:"kind" yaml:"kind"`
	Identity Identity  `json:"identity" yaml:"identity"`
	Args     []TypeRef `json:"args,omitempty" yaml:"args,omitempty"`
	Nullable bool      `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	// Signature describes a KindFunction reference.
	Signature *Signature `json:"signature,omitempty" yaml:"signature,omitempty"`
}

// Signature is the single abstract method of a function-like type.
type Signature struct {
	Params []Param  `json:"params,omitempty" yaml:"params,omitempty"`
	Result *TypeRef `json:"result,omitempty" yaml:"result,omitempty"`
}

// Param is a named signature parameter.
type Param struct {
	Name string  `json:"name" yaml:"name"`
	Type TypeRef `json:"type" yaml:"type"`
}

// Primitive returns a reference to a primitive type.
func Primitive(name string) TypeRef {
	return TypeRef{Kind: KindPrimitive, Identity: Identity{Name: name}}
}

// Bean returns a reference to an object type with optional type arguments.
func Bean(id Identity, args ...TypeRef) TypeRef {
	return TypeRef{Kind: KindBean, Identity: id, Args: args}
}

// Enum returns a reference to an enum type.
func Enum(id Identity) TypeRef {
	return TypeRef{Kind: KindEnum, Identity: id}
}

// List returns a reference to a single-parameter collection of elem.
func List(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindCollection, Identity: Identity{Name: "List"}, Args: []TypeRef{elem}}
}

// Map returns a reference to a map from key to value.
func Map(key, value TypeRef) TypeRef {
	return TypeRef{Kind: KindMap, Identity: Identity{Name: "Map"}, Args: []TypeRef{key, value}}
}

// ArrayOf returns a reference to a native array of elem.
func ArrayOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindArray, Args: []TypeRef{elem}}
}

// Var returns a reference to a type variable.
func Var(name string) TypeRef {
	return TypeRef{Kind: KindVariable, Identity: Identity{Name: name}}
}

// Func returns a reference to a function-like type.
func Func(id Identity, sig Signature) TypeRef {
	return TypeRef{Kind: KindFunction, Identity: id, Signature: &sig}
}

// Unsupported returns a reference to a type no strategy models.
func Unsupported(name string) TypeRef {
	return TypeRef{Kind: KindUnsupported, Identity: Identity{Name: name}}
}

// AsNullable returns a copy of r with nullability set.
func (r TypeRef) AsNullable(nullable bool) TypeRef {
	r.Nullable = nullable
	return r
}

// Named reports whether r names a declaration the compiler discovers.
func (r TypeRef) Named() bool {
	return r.Kind == KindBean || r.Kind == KindEnum
}

// Equal reports whether two references are identical, including arguments
// and nullability.
func (r TypeRef) Equal(o TypeRef) bool {
	if r.Kind != o.Kind || r.Identity != o.Identity || r.Nullable != o.Nullable || len(r.Args) != len(o.Args) {
		return false
	}
	for i := range r.Args {
		if !r.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	if (r.Signature == nil) != (o.Signature == nil) {
		return false
	}
	if r.Signature != nil {
		a, b := r.Signature, o.Signature
		if len(a.Params) != len(b.Params) || (a.Result == nil) != (b.Result == nil) {
			return false
		}
		for i := range a.Params {
			if a.Params[i].Name != b.Params[i].Name || !a.Params[i].Type.Equal(b.Params[i].Type) {
				return false
			}
		}
		if a.Result != nil && !a.Result.Equal(*b.Result) {
			return false
		}
	}
	return true
}

// HasVariables reports whether r mentions any type variable.
func (r TypeRef) HasVariables() bool {
	if r.Kind == KindVariable {
		return true
	}
	for _, a := range r.Args {
		if a.HasVariables() {
			return true
		}
	}
	if r.Signature != nil {
		for _, p := range r.Signature.Params {
			if p.Type.HasVariables() {
				return true
			}
		}
		if r.Signature.Result != nil && r.Signature.Result.HasVariables() {
			return true
		}
	}
	return false
}

// String renders r for diagnostics: "example.Box<string>", "T", "int[]", "List<User>?".
func (r TypeRef) String() string {
	var b strings.Builder
	switch r.Kind {
	case KindArray:
		if len(r.Args) == 1 {
			b.WriteString(r.Args[0].String())
		}
		b.WriteString("[]")
	case KindFunction:
		b.WriteString(r.Identity.String())
		b.WriteString("(")
		if r.Signature != nil {
			for i, p := range r.Signature.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(p.Type.String())
			}
		}
		b.WriteString(")")
	default:
		b.WriteString(r.Identity.String())
		if len(r.Args) > 0 {
			b.WriteString("<")
			for i, a := range r.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(a.String())
			}
			b.WriteString(">")
		}
	}
	if r.Nullable {
		b.WriteString("?")
	}
	return b.String()
}
