package mapping

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/source"
)

func mustPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func TestDefaultStrategy(t *testing.T) {
	user := source.ID("example", "User")
	color := source.ID("example", "Color")

	tests := []struct {
		name string
		ref  source.TypeRef
		want ir.Type
	}{
		{"string", source.Primitive("string"), ir.String()},
		{"boxed integer", source.Primitive("Integer"), ir.Number()},
		{"bool", source.Primitive("bool"), ir.Boolean()},
		{"any", source.Primitive("any"), ir.Unknown()},
		{"list", source.List(source.Primitive("string")), ir.NewArray(ir.String())},
		{"native array", source.ArrayOf(source.Primitive("int64")), ir.NewArray(ir.Number())},
		{"string map", source.Map(source.Primitive("string"), source.Primitive("bool")), ir.NewIndexedMap(ir.String(), ir.Boolean())},
		{"numeric map", source.Map(source.Primitive("int"), source.Primitive("bool")), ir.NewIndexedMap(ir.Number(), ir.Boolean())},
		{"enum key map", source.Map(source.Enum(color), source.Primitive("int")), ir.NewIndexedMap(&ir.Enum{Origin: "example.Color"}, ir.Number())},
		{"bean", source.Bean(user), &ir.Structural{Origin: "example.User"}},
		{"generic bean", source.Bean(source.ID("example", "Box"), source.Primitive("string")), &ir.Structural{Origin: "example.Box", Args: []ir.Type{ir.String()}}},
		{"variable", source.Var("T"), ir.Var("T")},
		{"nullable", source.Primitive("string").AsNullable(true), ir.WithOptional(ir.String(), true)},
		{"nullable element", source.List(source.Bean(user).AsNullable(true)), ir.NewArray(&ir.Structural{Optionality: ir.Optionality{Optional: true}, Origin: "example.User"})},
		{"date as string", source.Primitive("time.Time"), &ir.Alias{Name: DateAsStringAlias, Definition: ir.String()}},
	}
	p := mustPipeline(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Map(tt.ref)
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.want, res.Type), "got %#v", res.Type)
			assert.Empty(t, res.Unsupported)
		})
	}
}

func TestDiscovered(t *testing.T) {
	p := mustPipeline(t, Options{})
	user := source.Bean(source.ID("example", "User"))
	color := source.Enum(source.ID("example", "Color"))
	res, err := p.Map(source.Map(color, source.List(user)))
	require.NoError(t, err)
	require.Len(t, res.Discovered, 2)
	assert.True(t, res.Discovered[0].Equal(color))
	assert.True(t, res.Discovered[1].Equal(user))
}

func TestUnsupported(t *testing.T) {
	p := mustPipeline(t, Options{})
	ch := source.Unsupported("chan int")
	res, err := p.Map(source.List(ch))
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.NewArray(ir.Unknown()), res.Type))
	require.Len(t, res.Unsupported, 1)
	assert.Equal(t, "chan int", res.Unsupported[0].Identity.Name)
}

func TestTopTypeOverride(t *testing.T) {
	p := mustPipeline(t, Options{TopType: "any"})
	res, err := p.Map(source.Unsupported("complex128"))
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.NewBasic("any"), res.Type))
}

func TestFunctionTypes(t *testing.T) {
	handler := source.Func(source.ID("example", "Handler"), source.Signature{
		Params: []source.Param{{Name: "req", Type: source.Bean(source.ID("example", "Request"))}, {Type: source.Primitive("int")}},
		Result: func() *source.TypeRef { r := source.Primitive("bool"); return &r }(),
	})

	off := mustPipeline(t, Options{})
	res, err := off.Map(handler)
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.Unknown(), res.Type))
	assert.Len(t, res.Unsupported, 1)

	on := mustPipeline(t, Options{MapFunctions: true})
	res, err = on.Map(handler)
	require.NoError(t, err)
	fn, ok := res.Type.(*ir.Function)
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "req", fn.Params[0].Name)
	assert.Equal(t, "arg1", fn.Params[1].Name)
	assert.True(t, ir.Equal(ir.Boolean(), fn.Return))
	assert.Len(t, res.Discovered, 1)
}

func TestDateMappings(t *testing.T) {
	tests := []struct {
		mode DateMapping
		want ir.Type
	}{
		{DateAsDate, ir.NewBasic("Date")},
		{DateAsNumber, &ir.Alias{Name: DateAsNumberAlias, Definition: ir.Number()}},
		{DateAsString, &ir.Alias{Name: DateAsStringAlias, Definition: ir.String()}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			res, err := mustPipeline(t, Options{Dates: tt.mode}).Map(source.Primitive("Instant"))
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.want, res.Type))
		})
	}
}

func TestExclude(t *testing.T) {
	p := mustPipeline(t, Options{Exclude: []string{"example.Secret", "Internal"}})
	for _, id := range []source.Identity{source.ID("example", "Secret"), source.ID("other", "Internal")} {
		res, err := p.Map(source.Bean(id))
		require.NoError(t, err)
		assert.True(t, ir.Equal(ir.Unknown(), res.Type), "%s", id)
		assert.Empty(t, res.Discovered, "excluded types are not discovered")
	}
}

func TestCustomRuleListWrapper(t *testing.T) {
	p := mustPipeline(t, Options{Rules: []string{"ListWrapper<T> -> Wrapper<T>"}})
	list1 := source.Bean(source.ID("example", "ListWrapper"), source.Primitive("String"))
	res, err := p.Map(list1)
	require.NoError(t, err)

	s, ok := res.Type.(*ir.Structural)
	require.True(t, ok)
	assert.Equal(t, "Wrapper", s.Name)
	assert.True(t, s.External)
	require.Len(t, s.Args, 1)
	assert.True(t, ir.Equal(ir.String(), s.Args[0]))
	assert.Empty(t, res.Discovered)
}

func TestCustomRuleTargets(t *testing.T) {
	opt := source.Bean(source.ID("java.util", "Optional"), source.Bean(source.ID("example", "User")))
	matrix := source.Bean(source.ID("example", "Matrix"), source.Primitive("double"))
	instant := source.Primitive("java.time.Instant")

	p := mustPipeline(t, Options{Rules: []string{
		"java.util.Optional<T> -> T | undefined",
		"Matrix<T> -> T[][]",
		"java.time.Instant:number",
	}})

	res, err := p.Map(opt)
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.NewUnion(&ir.Structural{Origin: "example.User"}, ir.NewBasic("undefined")), res.Type))
	assert.Len(t, res.Discovered, 1, "arguments are still mapped and discovered")

	res, err = p.Map(matrix)
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.NewArray(ir.NewArray(ir.Number())), res.Type))

	res, err = p.Map(instant)
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.Number(), res.Type))
}

func TestCustomRuleRawReference(t *testing.T) {
	p := mustPipeline(t, Options{Rules: []string{"Box<T> -> Container<T>"}})
	res, err := p.Map(source.Bean(source.ID("example", "Box")))
	require.NoError(t, err)
	assert.True(t, ir.Equal(&ir.Structural{Name: "Container", External: true, Args: []ir.Type{ir.Unknown()}}, res.Type))
}

func TestCustomRuleArityMismatch(t *testing.T) {
	p := mustPipeline(t, Options{Rules: []string{"Pair<A, B> -> Tuple<A, B>"}})
	_, err := p.Map(source.Bean(source.ID("example", "Pair"), source.Primitive("string")))
	require.Error(t, err)
	var invalid *diag.InvalidCustomMappingError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Reason, "rule declares 2")
}

func TestParseRuleErrors(t *testing.T) {
	tests := []struct {
		rule   string
		reason string
	}{
		{"Foo<T>", `missing "->" or ":"`},
		{"Foo<T> : Bar<U>", `undeclared parameter "U"`},
		{" -> Bar", "empty type expression"},
		{"Foo<T> -> Bar<U>", `undeclared parameter "U"`},
		{"Foo<T, T> -> Bar<T>", `duplicate source parameter "T"`},
		{"Foo<List<T>> -> Bar", "must be a bare name"},
		{"Foo[] -> Bar", "plain type name"},
		{"Foo<T -> Bar", "expected ',' or '>'"},
		{"Foo<T> -> T<string>", "cannot take type arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			_, err := ParseRule(tt.rule)
			require.Error(t, err)
			var invalid *diag.InvalidCustomMappingError
			require.True(t, errors.As(err, &invalid))
			assert.Contains(t, invalid.Reason, tt.reason)
			assert.True(t, diag.IsFatal(err))
		})
	}
}

func TestPipelineDeterministic(t *testing.T) {
	p := mustPipeline(t, Options{Rules: []string{"ListWrapper<T> -> Wrapper<T>"}})
	ref := source.Map(source.Primitive("string"), source.Bean(source.ID("example", "ListWrapper"), source.Bean(source.ID("example", "User"))))
	a, err := p.Map(ref)
	require.NoError(t, err)
	b, err := p.Map(ref)
	require.NoError(t, err)
	assert.True(t, ir.Equal(a.Type, b.Type))
}

func TestCustomStrategyRunsBeforeBuiltins(t *testing.T) {
	money := func(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
		if ref.Identity.Name == "Money" {
			return ir.String(), true
		}
		return nil, false
	}
	p := mustPipeline(t, Options{Strategies: []Strategy{money}})
	res, err := p.Map(source.Bean(source.ID("example", "Money")))
	require.NoError(t, err)
	assert.True(t, ir.Equal(ir.String(), res.Type))
	assert.Empty(t, res.Discovered)
}
