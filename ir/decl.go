package ir

import "strings"

// DeclKind identifies the category of a declaration.
type DeclKind int

const (
	DeclInterface DeclKind = iota // Object shape with named properties
	DeclEnum                      // Enum construct with named members
	DeclAlias                     // Named alias for a type expression
)

// String returns the string representation of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case DeclInterface:
		return "Interface"
	case DeclEnum:
		return "Enum"
	case DeclAlias:
		return "Alias"
	default:
		return "Unknown"
	}
}

// Declaration is one emitted unit of a compiled model.
type Declaration interface {
	// DeclKind returns the declaration kind for type switching.
	DeclKind() DeclKind

	// DeclName returns the unqualified assigned name.
	DeclName() string

	// DeclNamespace returns the namespace path, empty when namespaces are off.
	DeclNamespace() []string

	// Doc returns associated documentation comments.
	Doc() Documentation

	sealed()
}

// QualifiedName joins a declaration's namespace and name with dots.
func QualifiedName(d Declaration) string {
	name := d.DeclName()
	ns := d.DeclNamespace()
	if len(ns) == 0 {
		return name
	}
	return strings.Join(ns, ".") + "." + name
}

// InterfaceDecl is an object-shaped declaration compiled from a bean.
type InterfaceDecl struct {
	// Name is the assigned output symbol.
	Name string

	// Namespace is the namespace path when namespaces are enabled.
	Namespace []string `json:",omitempty"`

	// Origin is the source identity this declaration was compiled from.
	Origin string

	// TypeParams lists free type variables in declaration order.
	TypeParams []string `json:",omitempty"`

	// Extends contains parent and implemented-interface references with their
	// resolved type arguments.
	Extends []*Structural `json:",omitempty"`

	// Properties in final declaration order.
	Properties []Property

	// Abstract marks a declaration that is not concretely constructible.
	Abstract bool `json:",omitempty"`

	// Documentation for this declaration.
	Documentation Documentation
}

// DeclKind returns DeclInterface.
func (*InterfaceDecl) DeclKind() DeclKind { return DeclInterface }

// DeclName returns the interface's name.
func (d *InterfaceDecl) DeclName() string { return d.Name }

// DeclNamespace returns the interface's namespace.
func (d *InterfaceDecl) DeclNamespace() []string { return d.Namespace }

// Doc returns the interface's documentation.
func (d *InterfaceDecl) Doc() Documentation { return d.Documentation }

func (*InterfaceDecl) sealed() {}

// Property returns the property with the given name, or nil.
func (d *InterfaceDecl) Property(name string) *Property {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return &d.Properties[i]
		}
	}
	return nil
}

// Property is a single member of an InterfaceDecl.
// The property is optional when Type.IsOptional() is true.
type Property struct {
	// Name is the serialized property name.
	Name string

	// Type is the fully resolved member type.
	Type Type

	// Documentation for this property.
	Documentation Documentation
}

// EnumStyle selects how an EnumDecl assigns member values.
type EnumStyle int

const (
	// EnumNative keeps each member's own string or numeric value.
	EnumNative EnumStyle = iota

	// EnumNumeric assigns numeric values; members without one get their ordinal.
	EnumNumeric
)

// EnumDecl is an enum construct. Enums compiled as literal unions are
// AliasDecls instead.
type EnumDecl struct {
	Name      string
	Namespace []string `json:",omitempty"`
	Origin    string
	Style     EnumStyle

	// Members in declared order.
	Members []EnumMember

	Documentation Documentation
}

// DeclKind returns DeclEnum.
func (*EnumDecl) DeclKind() DeclKind { return DeclEnum }

// DeclName returns the enum's name.
func (d *EnumDecl) DeclName() string { return d.Name }

// DeclNamespace returns the enum's namespace.
func (d *EnumDecl) DeclNamespace() []string { return d.Namespace }

// Doc returns the enum's documentation.
func (d *EnumDecl) Doc() Documentation { return d.Documentation }

func (*EnumDecl) sealed() {}

// EnumMember is a single enum member.
type EnumMember struct {
	// Name is the constant name.
	Name string

	// Value is string, int64 or float64.
	Value any

	Documentation Documentation
}

// AliasDecl names a type expression: an enum compiled to a literal union, a
// tagged union of a polymorphic family, or a synthetic helper such as DateAsString.
type AliasDecl struct {
	Name       string
	Namespace  []string `json:",omitempty"`
	Origin     string   `json:",omitempty"`
	TypeParams []string `json:",omitempty"`
	Definition Type

	Documentation Documentation
}

// DeclKind returns DeclAlias.
func (*AliasDecl) DeclKind() DeclKind { return DeclAlias }

// DeclName returns the alias's name.
func (d *AliasDecl) DeclName() string { return d.Name }

// DeclNamespace returns the alias's namespace.
func (d *AliasDecl) DeclNamespace() []string { return d.Namespace }

// Doc returns the alias's documentation.
func (d *AliasDecl) Doc() Documentation { return d.Documentation }

func (*AliasDecl) sealed() {}
