package ir

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Ref("Box", String()), Ref("Box", String())))
	assert.False(t, Equal(Ref("Box", String()), Ref("Box", Number())))
	assert.False(t, Equal(String(), WithOptional(String(), true)))
	assert.True(t, Equal(LiteralUnion("a", "b"), LiteralUnion("a", "b")))
	assert.False(t, Equal(LiteralUnion("a", "b"), LiteralUnion("b", "a")))
	assert.True(t, Equal(NewLiteral(3), NewLiteral(int64(3))))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(String(), nil))
}

func TestWithOptionalCopies(t *testing.T) {
	orig := Ref("User")
	opt := WithOptional(orig, true)
	assert.True(t, opt.IsOptional())
	assert.False(t, orig.IsOptional(), "original must not be mutated")
	assert.Same(t, orig, WithOptional(orig, false), "no-op returns the same instance")
}

func TestTransform(t *testing.T) {
	in := NewArray(NewIndexedMap(String(), &Enum{Name: "Direction", Literals: []*Literal{NewLiteral("A"), NewLiteral("B")}}))
	out := Transform(in, func(n Type) Type {
		if e, ok := n.(*Enum); ok {
			members := make([]Type, len(e.Literals))
			for i, l := range e.Literals {
				members[i] = l
			}
			return WithOptional(NewUnion(members...), e.Optional)
		}
		return n
	})

	arr, ok := out.(*Array)
	require.True(t, ok)
	m := arr.Element.(*IndexedMap)
	assert.Equal(t, KindUnion, m.Value.Kind())
	assert.Equal(t, KindEnum, in.Element.(*IndexedMap).Value.Kind(), "input must be left intact")
}

func TestWalkCounts(t *testing.T) {
	typ := &Function{
		Params: []Param{{Name: "req", Type: Ref("Request")}},
		Return: NewUnion(Ref("Response"), NewBasic("null")),
	}
	var refs []string
	Walk(typ, func(n Type) bool {
		if s, ok := n.(*Structural); ok {
			refs = append(refs, s.Name)
		}
		return true
	})
	assert.Equal(t, []string{"Request", "Response"}, refs)
}

func TestMarshalJSONKinds(t *testing.T) {
	decl := &InterfaceDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Properties: []Property{{Name: "value", Type: Var("T")}},
	}
	data, err := json.Marshal(decl)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "interface", got["kind"])
	props := got["Properties"].([]any)
	typ := props[0].(map[string]any)["Type"].(map[string]any)
	assert.Equal(t, "freeVariable", typ["kind"])
	assert.Equal(t, "T", typ["name"])
}
