package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tsmodel/source"
)

func TestStaticRegistrationOrder(t *testing.T) {
	p := NewStatic().
		AddBean(&source.BeanDescriptor{Origin: source.ID("example", "B")}).
		AddEnum(&source.EnumDescriptor{Origin: source.ID("example", "E")}).
		AddBean(&source.BeanDescriptor{Origin: source.ID("example", "A")}).
		AddBean(&source.BeanDescriptor{Origin: source.ID("example", "B"), Abstract: true})

	roots, err := p.Roots()
	require.NoError(t, err)
	var got []string
	for _, r := range roots {
		got = append(got, r.Kind.String()+":"+r.Identity.String())
	}
	assert.Equal(t, []string{"bean:example.B", "enum:example.E", "bean:example.A"}, got)

	b, err := p.DescribeBean(context.Background(), source.ID("example", "B"))
	require.NoError(t, err)
	assert.True(t, b.Abstract, "later registrations replace earlier ones")
}

func TestStaticNotFound(t *testing.T) {
	p := NewStatic().AddEnum(&source.EnumDescriptor{Origin: source.ID("example", "E")})

	_, err := p.DescribeBean(context.Background(), source.ID("example", "E"))
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = p.DescribeEnum(context.Background(), source.ID("example", "Missing"))
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, p.Exists(source.ID("example", "E")))
	assert.False(t, p.Exists(source.ID("example", "Missing")))
}

func TestLoadFile(t *testing.T) {
	p, err := LoadFile("testdata/descriptors.yaml")
	require.NoError(t, err)

	roots, err := p.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, source.Bean(source.ID("example", "Drawing")), roots[0])

	drawing, err := p.DescribeBean(context.Background(), source.ID("example", "Drawing"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Drawing is a list of shapes."}, drawing.Comments)
	require.Len(t, drawing.Properties, 2)
	shapes := drawing.Properties[1].Type
	assert.Equal(t, source.KindCollection, shapes.Kind)
	assert.Equal(t, "example.Shape", shapes.Args[0].Identity.String())

	shape, err := p.DescribeBean(context.Background(), source.ID("example", "Shape"))
	require.NoError(t, err)
	require.NotNil(t, shape.Discriminant)
	assert.Equal(t, "kind", shape.Discriminant.Property)
	assert.False(t, shape.Constructible())

	circle, err := p.DescribeBean(context.Background(), source.ID("example", "Circle"))
	require.NoError(t, err)
	require.NotNil(t, circle.Parent)
	assert.True(t, circle.Properties[0].Optional)

	color, err := p.DescribeEnum(context.Background(), source.ID("example", "Color"))
	require.NoError(t, err)
	var literals []any
	for _, c := range color.Constants {
		literals = append(literals, c.Literal())
	}
	assert.Equal(t, []any{"red", int64(2), "Blue"}, literals)
}

func TestLoadFiles(t *testing.T) {
	p, err := LoadFiles("testdata/descriptors.yaml", "testdata/extra.json")
	require.NoError(t, err)

	palette, err := p.DescribeBean(context.Background(), source.ID("example", "Palette"))
	require.NoError(t, err)
	colors := palette.Properties[0].Type
	assert.Equal(t, source.KindArray, colors.Kind)
	assert.Equal(t, source.KindEnum, colors.Args[0].Kind)

	roots, err := p.Roots()
	require.NoError(t, err)
	assert.Len(t, roots, 1, "roots from any file restrict the set")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format string
	}{
		{"unknown field", "beans:\n  - origin: {name: X}\n    propertes: []\n", "yaml"},
		{"missing origin", "beans:\n  - properties: []\n", "yaml"},
		{"bad kind", `{"beans":[{"origin":{"name":"X"},"properties":[{"name":"a","type":{"kind":"widget"}}]}]}`, "json"},
		{"format", "", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}

	_, err := LoadFile("testdata/bad.yaml")
	assert.Error(t, err)
	_, err = LoadFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	p, err := Load(strings.NewReader(""), "yaml")
	require.NoError(t, err)
	roots, err := p.Roots()
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestUnknownRoot(t *testing.T) {
	p, err := Load(strings.NewReader("roots: [example.Nope]\n"), "yaml")
	require.NoError(t, err)
	_, err = p.Roots()
	assert.True(t, errors.Is(err, ErrNotFound))
}
