package ir

// Basic names a built-in type of the target language.
type Basic struct {
	Optionality

	// Name is the target spelling: "string", "number", "boolean", "unknown",
	// "any", "void", "Date", "object".
	Name string
}

// Kind returns KindBasic.
func (*Basic) Kind() Kind { return KindBasic }

// Literal is a single literal type ("square", 42, true).
type Literal struct {
	Optionality

	// Value is one of string, int64, float64 or bool.
	Value any
}

// Kind returns KindLiteral.
func (*Literal) Kind() Kind { return KindLiteral }

// Array is an ordered collection of Element.
type Array struct {
	Optionality
	Element Type
}

// Kind returns KindArray.
func (*Array) Kind() Kind { return KindArray }

// IndexedMap is a map keyed by Index.
//
// Index is a Basic ("string" or "number") for plain maps, or an Enum when the
// source map is keyed by an enum; emitters render the latter as a mapped type.
type IndexedMap struct {
	Optionality
	Index Type
	Value Type
}

// Kind returns KindIndexedMap.
func (*IndexedMap) Kind() Kind { return KindIndexedMap }

// Structural references a named declaration by its assigned name.
//
// References are by name, never by pointer to the declaration, so a declaration
// may refer to one that is not yet compiled (or to itself).
type Structural struct {
	Optionality

	// Name is the assigned output symbol, qualified with its namespace
	// ("api.v1.User") when namespaces are enabled.
	Name string

	// Args are the type arguments at this reference site.
	Args []Type

	// Origin is the source identity this reference resolves to.
	// Empty for External references.
	Origin string `json:"origin,omitempty"`

	// External marks a reference to a name not declared in the model,
	// introduced by a custom type mapping.
	External bool `json:"external,omitempty"`
}

// Kind returns KindStructural.
func (*Structural) Kind() Kind { return KindStructural }

// Enum references an enum declaration. Literals are the member values in
// declared order; emitters inlining enums render them as a union.
type Enum struct {
	Optionality
	Name     string
	Origin   string `json:"origin,omitempty"`
	Literals []*Literal
}

// Kind returns KindEnum.
func (*Enum) Kind() Kind { return KindEnum }

// Union is a union of member types. Order is significant.
type Union struct {
	Optionality

	// Members contains the alternatives. Must have at least 1 element.
	Members []Type
}

// Kind returns KindUnion.
func (*Union) Kind() Kind { return KindUnion }

// Alias references an alias declaration by name. Definition is carried for
// consumers that want the aliased shape; emitters render only Name.
type Alias struct {
	Optionality
	Name       string
	Origin     string `json:"origin,omitempty"`
	Definition Type
}

// Kind returns KindAlias.
func (*Alias) Kind() Kind { return KindAlias }

// Param is a named function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a function signature.
type Function struct {
	Optionality
	Params []Param
	Return Type
}

// Kind returns KindFunction.
func (*Function) Kind() Kind { return KindFunction }

// FreeVariable is a generic parameter left unbound in the enclosing declaration.
type FreeVariable struct {
	Optionality
	Name string
}

// Kind returns KindFreeVariable.
func (*FreeVariable) Kind() Kind { return KindFreeVariable }

// NewBasic returns a Basic type.
func NewBasic(name string) *Basic { return &Basic{Name: name} }

// String returns the basic string type.
func String() *Basic { return NewBasic("string") }

// Number returns the basic number type.
func Number() *Basic { return NewBasic("number") }

// Boolean returns the basic boolean type.
func Boolean() *Basic { return NewBasic("boolean") }

// Unknown returns the top type.
func Unknown() *Basic { return NewBasic("unknown") }

// NewLiteral returns a Literal for a string, integer, float or bool value.
// Integers of any width are normalized to int64.
func NewLiteral(value any) *Literal {
	switch v := value.(type) {
	case int:
		return &Literal{Value: int64(v)}
	case int32:
		return &Literal{Value: int64(v)}
	case float32:
		return &Literal{Value: float64(v)}
	}
	return &Literal{Value: value}
}

// NewArray returns an Array of element.
func NewArray(element Type) *Array { return &Array{Element: element} }

// NewIndexedMap returns an IndexedMap.
func NewIndexedMap(index, value Type) *IndexedMap { return &IndexedMap{Index: index, Value: value} }

// Ref returns a Structural reference.
func Ref(name string, args ...Type) *Structural { return &Structural{Name: name, Args: args} }

// NewUnion returns a Union of members.
func NewUnion(members ...Type) *Union { return &Union{Members: members} }

// Var returns a FreeVariable.
func Var(name string) *FreeVariable { return &FreeVariable{Name: name} }

// LiteralUnion returns the union of literal values, or the single literal when
// there is only one value.
func LiteralUnion(values ...any) Type {
	if len(values) == 1 {
		return NewLiteral(values[0])
	}
	members := make([]Type, len(values))
	for i, v := range values {
		members[i] = NewLiteral(v)
	}
	return NewUnion(members...)
}

// WithOptional returns a shallow copy of t with its optionality set.
func WithOptional(t Type, optional bool) Type {
	if t == nil || t.IsOptional() == optional {
		return t
	}
	switch v := t.(type) {
	case *Basic:
		c := *v
		c.Optional = optional
		return &c
	case *Literal:
		c := *v
		c.Optional = optional
		return &c
	case *Array:
		c := *v
		c.Optional = optional
		return &c
	case *IndexedMap:
		c := *v
		c.Optional = optional
		return &c
	case *Structural:
		c := *v
		c.Optional = optional
		return &c
	case *Enum:
		c := *v
		c.Optional = optional
		return &c
	case *Union:
		c := *v
		c.Optional = optional
		return &c
	case *Alias:
		c := *v
		c.Optional = optional
		return &c
	case *Function:
		c := *v
		c.Optional = optional
		return &c
	case *FreeVariable:
		c := *v
		c.Optional = optional
		return &c
	}
	return t
}
