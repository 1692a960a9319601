package source

import "sort"

// BeanDescriptor describes an object type. It is created once per identity by a
// provider and consumed read-only by the compiler.
type BeanDescriptor struct {
	// Origin is the described identity.
	Origin Identity `json:"origin" yaml:"origin"`

	// TypeParams are the formal type parameters in declaration order.
	TypeParams []string `json:"typeParams,omitempty" yaml:"typeParams,omitempty"`

	// Parent is the superclass reference with its actual type arguments,
	// expressed in terms of this bean's TypeParams. Nil for roots.
	Parent *TypeRef `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Interfaces are implemented-interface references, like Parent.
	Interfaces []TypeRef `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`

	// Properties in extraction order.
	Properties []PropertyDescriptor `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Discriminant is set on a polymorphic family root (and on intermediate
	// members that register their own subtypes).
	Discriminant *DiscriminantInfo `json:"discriminant,omitempty" yaml:"discriminant,omitempty"`

	// Tag is the discriminant literal this bean declares for itself, if any.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// Abstract marks a type that cannot be instantiated.
	Abstract bool `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Interface marks an interface type. Interfaces are never constructible.
	Interface bool `json:"interface,omitempty" yaml:"interface,omitempty"`

	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Constructible reports whether instances of the bean can exist.
func (b *BeanDescriptor) Constructible() bool {
	return !b.Abstract && !b.Interface
}

// Supertypes returns Parent followed by Interfaces.
func (b *BeanDescriptor) Supertypes() []TypeRef {
	var out []TypeRef
	if b.Parent != nil {
		out = append(out, *b.Parent)
	}
	return append(out, b.Interfaces...)
}

// Property returns the property with the given name, or nil.
func (b *BeanDescriptor) Property(name string) *PropertyDescriptor {
	for i := range b.Properties {
		if b.Properties[i].Name == name {
			return &b.Properties[i]
		}
	}
	return nil
}

// OrderedProperties returns the properties sorted by declaration-order key,
// keeping extraction order for equal keys.
func (b *BeanDescriptor) OrderedProperties() []PropertyDescriptor {
	out := make([]PropertyDescriptor, len(b.Properties))
	copy(out, b.Properties)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// PropertyDescriptor describes a single bean member.
type PropertyDescriptor struct {
	Name string  `json:"name" yaml:"name"`
	Type TypeRef `json:"type" yaml:"type"`

	// Optional marks a member that may be absent.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`

	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`

	// Order is the declaration-order key.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`
}

// EnumDescriptor describes an enum and its constants in declared order.
type EnumDescriptor struct {
	Origin    Identity       `json:"origin" yaml:"origin"`
	Constants []EnumConstant `json:"constants" yaml:"constants"`
	Comments  []string       `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// EnumConstant is one enum constant and its serialized literal value.
type EnumConstant struct {
	Name string `json:"name" yaml:"name"`

	// Value is the serialized value: string, int64, float64 or bool.
	// Nil means the constant serializes as its name.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Literal returns the serialized value, defaulting to the constant name.
func (c EnumConstant) Literal() any {
	switch v := c.Value.(type) {
	case nil:
		return c.Name
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	}
	return c.Value
}

// DiscriminantInfo is tagged-union metadata of a family root.
type DiscriminantInfo struct {
	// Property is the discriminant property name.
	Property string `json:"property" yaml:"property"`

	// Members are the registered subtypes in registration order.
	Members []DiscriminantMember `json:"members,omitempty" yaml:"members,omitempty"`
}

// DiscriminantMember registers one subtype of a family.
type DiscriminantMember struct {
	// Tag is the explicit literal. Empty means infer it from the member's own
	// declared tag, falling back to its assigned name.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	Identity Identity `json:"identity" yaml:"identity"`

	// Abstract marks a registered subtype that is not concretely constructible
	// even if its descriptor says otherwise.
	Abstract bool `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}
