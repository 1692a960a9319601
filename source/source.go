// Package source defines the normalized description of a program's types that
// the model compiler consumes: identities, type references, bean and enum
// descriptors, and the Provider interface implemented by introspection layers.
//
// Key types:
//   - Identity: scope path plus simple name of a class, interface or enum.
//   - TypeRef: an immutable reference to a type with generic arguments and nullability.
//   - BeanDescriptor / PropertyDescriptor: an object type and its members.
//   - EnumDescriptor: an enum and its ordered constants.
//   - DiscriminantInfo: tagged-union metadata of a polymorphic family root.
//   - Provider: describes identities on request.
package source

import (
	"context"
	"strings"
)

// Identity names a class, interface or enum of the source program.
type Identity struct {
	// Scope is the enclosing scope path: a package path, or a package path
	// followed by enclosing type names ("com.example.Outer").
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	// Name is the simple name.
	Name string `json:"name" yaml:"name"`
}

// ID returns an Identity for a scope and simple name.
func ID(scope, name string) Identity {
	return Identity{Scope: scope, Name: name}
}

// ParseIdentity splits a qualified name at its last separator ('.' or '/').
// "example.com/api.User" gives Scope "example.com/api", Name "User".
func ParseIdentity(qualified string) Identity {
	i := strings.LastIndexAny(qualified, "./")
	if i < 0 {
		return Identity{Name: qualified}
	}
	return Identity{Scope: qualified[:i], Name: qualified[i+1:]}
}

// String returns "scope.Name", or Name when the scope is empty.
func (id Identity) String() string {
	if id.Scope == "" {
		return id.Name
	}
	return id.Scope + "." + id.Name
}

// IsZero returns true if the identity is empty.
func (id Identity) IsZero() bool {
	return id.Scope == "" && id.Name == ""
}

// Provider is an introspection layer. Implementations must be pure functions of
// the identity plus fixed configuration: asking twice gives equal descriptors.
type Provider interface {
	// DescribeBean returns the descriptor of an object type.
	DescribeBean(ctx context.Context, id Identity) (*BeanDescriptor, error)

	// DescribeEnum returns the descriptor of an enum type.
	DescribeEnum(ctx context.Context, id Identity) (*EnumDescriptor, error)
}

// Resolver is implemented by providers that can tell whether an identity exists
// without describing it. The compiler uses it to reject custom type mappings
// that name unknown types.
type Resolver interface {
	Exists(id Identity) bool
}
