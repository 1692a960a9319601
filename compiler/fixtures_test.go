package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/provider"
	"github.com/broady/tsmodel/source"
)

func id(name string) source.Identity { return source.ID("example", name) }

func prop(name string, t source.TypeRef) source.PropertyDescriptor {
	return source.PropertyDescriptor{Name: name, Type: t}
}

func optional(p source.PropertyDescriptor) source.PropertyDescriptor {
	p.Optional = true
	return p
}

func bean(name string, props ...source.PropertyDescriptor) *source.BeanDescriptor {
	return &source.BeanDescriptor{Origin: id(name), Properties: props}
}

func extends(b *source.BeanDescriptor, parent source.TypeRef) *source.BeanDescriptor {
	b.Parent = &parent
	return b
}

var (
	str = source.Primitive("string")
	num = source.Primitive("int")
)

func compile(t *testing.T, p source.Provider, s Settings, roots ...source.TypeRef) *ir.Model {
	t.Helper()
	c, err := New(p, s)
	require.NoError(t, err)
	m, err := c.Compile(context.Background(), roots...)
	require.NoError(t, err)
	return m
}

func compileErr(t *testing.T, p source.Provider, s Settings, roots ...source.TypeRef) error {
	t.Helper()
	c, err := New(p, s)
	require.NoError(t, err)
	m, err := c.Compile(context.Background(), roots...)
	require.Error(t, err)
	require.Nil(t, m)
	return err
}

func requireValid(t *testing.T, m *ir.Model) {
	t.Helper()
	require.Empty(t, m.Validate())
}

// shapes is the Shape family: an abstract root tagged by "kind" with three
// registered members, referenced from Drawing.
func shapes() *provider.Static {
	shape := bean("Shape", prop("id", str))
	shape.Abstract = true
	shape.Discriminant = &source.DiscriminantInfo{
		Property: "kind",
		Members: []source.DiscriminantMember{
			{Tag: "square", Identity: id("Square")},
			{Tag: "rectangle", Identity: id("Rectangle")},
			{Tag: "circle", Identity: id("Circle")},
		},
	}
	return provider.NewStatic().
		AddBean(bean("Drawing", prop("shapes", source.List(source.Bean(id("Shape")))))).
		AddBean(shape).
		AddBean(extends(bean("Square", prop("size", source.Primitive("double"))), source.Bean(id("Shape")))).
		AddBean(extends(bean("Rectangle", prop("width", source.Primitive("double")), prop("height", source.Primitive("double"))), source.Bean(id("Shape")))).
		AddBean(extends(bean("Circle", prop("radius", source.Primitive("double"))), source.Bean(id("Shape"))))
}

// animals has a covariant override: Dog.todaysFood narrows Animal.todaysFood.
func animals() *provider.Static {
	return provider.NewStatic().
		AddBean(bean("Animal", prop("name", str), prop("todaysFood", source.Bean(id("Food"))))).
		AddBean(extends(bean("Dog", prop("todaysFood", source.Bean(id("DogFood")))), source.Bean(id("Animal")))).
		AddBean(bean("Food", prop("calories", num))).
		AddBean(extends(bean("DogFood", prop("crunchy", source.Primitive("bool"))), source.Bean(id("Food"))))
}

func direction() *source.EnumDescriptor {
	return &source.EnumDescriptor{
		Origin:    id("Direction"),
		Constants: []source.EnumConstant{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Comments:  []string{"Direction of travel."},
	}
}
