package generics

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/source"
)

func lookupOf(beans ...*source.BeanDescriptor) Lookup {
	m := make(map[source.Identity]*source.BeanDescriptor, len(beans))
	for _, b := range beans {
		m[b.Origin] = b
	}
	return func(id source.Identity) (*source.BeanDescriptor, bool) {
		b, ok := m[id]
		return b, ok
	}
}

func ref(r source.TypeRef) *source.TypeRef { return &r }

var (
	str = source.Primitive("string")
	num = source.Primitive("int")
)

func TestSubstApply(t *testing.T) {
	s := Subst{"T": str, "K": num}
	tests := []struct {
		name string
		in   source.TypeRef
		want source.TypeRef
	}{
		{"variable", source.Var("T"), str},
		{"nullable variable keeps nullability", source.Var("T").AsNullable(true), str.AsNullable(true)},
		{"unbound variable", source.Var("U"), source.Var("U")},
		{"nested", source.Map(source.Var("K"), source.List(source.Var("T"))), source.Map(num, source.List(str))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Apply(tt.in)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCompose(t *testing.T) {
	// Grand<A> <- Parent<B> extends Grand<List<B>> <- Child extends Parent<string>
	step := Bind([]string{"A"}, []source.TypeRef{source.List(source.Var("B"))})
	prior := Bind([]string{"B"}, []source.TypeRef{str})
	got := Compose(step, prior)
	assert.Equal(t, "{A=List<string>}", got.String())
}

func TestBindRawReference(t *testing.T) {
	assert.Empty(t, Bind([]string{"T"}, nil))
}

func TestListWrapperResolvesInheritedMember(t *testing.T) {
	wrapper := &source.BeanDescriptor{
		Origin:     source.ID("example", "Wrapper"),
		TypeParams: []string{"T"},
		Properties: []source.PropertyDescriptor{{Name: "value", Type: source.Var("T")}},
	}
	listWrapper := &source.BeanDescriptor{
		Origin: source.ID("example", "StringWrapper"),
		Parent: ref(source.Bean(wrapper.Origin, str)),
	}
	r := NewResolver(lookupOf(wrapper, listWrapper))

	members, err := r.Members(listWrapper.Origin)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "value", members[0].Name)
	assert.True(t, members[0].Type.Equal(str))
	assert.Equal(t, wrapper.Origin, members[0].Declaring)

	got, err := r.Resolve(listWrapper.Origin, wrapper.Origin, source.Var("T"))
	require.NoError(t, err)
	assert.True(t, got.Equal(str))
}

func TestDeepChainComposes(t *testing.T) {
	grand := &source.BeanDescriptor{
		Origin:     source.ID("example", "Grand"),
		TypeParams: []string{"A"},
		Properties: []source.PropertyDescriptor{{Name: "items", Type: source.Var("A")}},
	}
	parent := &source.BeanDescriptor{
		Origin:     source.ID("example", "Parent"),
		TypeParams: []string{"B"},
		Parent:     ref(source.Bean(grand.Origin, source.List(source.Var("B")))),
	}
	child := &source.BeanDescriptor{
		Origin: source.ID("example", "Child"),
		Parent: ref(source.Bean(parent.Origin, num)),
	}
	r := NewResolver(lookupOf(grand, parent, child))

	members, err := r.Members(child.Origin)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "List<int>", members[0].Type.String())
}

func TestGenericRootKeepsFreeVariable(t *testing.T) {
	box := &source.BeanDescriptor{
		Origin:     source.ID("example", "Box"),
		TypeParams: []string{"T"},
		Properties: []source.PropertyDescriptor{{Name: "value", Type: source.Var("T")}},
	}
	r := NewResolver(lookupOf(box))
	members, err := r.Members(box.Origin)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, source.KindVariable, members[0].Type.Kind)
	assert.Equal(t, "T", members[0].Type.Identity.Name)
}

func TestCovariantOverride(t *testing.T) {
	food := source.Bean(source.ID("example", "Food"))
	dogFood := source.Bean(source.ID("example", "DogFood"))
	animal := &source.BeanDescriptor{
		Origin: source.ID("example", "Animal"),
		Properties: []source.PropertyDescriptor{
			{Name: "name", Type: str},
			{Name: "todaysFood", Type: food},
		},
	}
	dog := &source.BeanDescriptor{
		Origin:     source.ID("example", "Dog"),
		Parent:     ref(source.Bean(animal.Origin)),
		Properties: []source.PropertyDescriptor{{Name: "todaysFood", Type: dogFood}},
	}
	r := NewResolver(lookupOf(animal, dog))

	members, err := r.Members(dog.Origin)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "name", members[0].Name)
	assert.Equal(t, "todaysFood", members[1].Name)
	assert.True(t, members[1].Type.Equal(dogFood), "got %s", members[1].Type)
	assert.Equal(t, dog.Origin, members[1].Declaring)

	inherited, ok, err := r.Inherited(dog.Origin, "todaysFood")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, inherited.Type.Equal(food))
}

// diamond builds Concrete implementing Left and Right, both extending
// Base<T>, with the given bindings for Base's T on each side.
func diamond(left, right *source.TypeRef) []*source.BeanDescriptor {
	base := &source.BeanDescriptor{
		Origin:     source.ID("example", "Base"),
		TypeParams: []string{"T"},
		Interface:  true,
		Properties: []source.PropertyDescriptor{{Name: "value", Type: source.Var("T")}},
	}
	sideRef := func(b *source.TypeRef) source.TypeRef {
		if b == nil {
			return source.Bean(base.Origin)
		}
		return source.Bean(base.Origin, *b)
	}
	l := &source.BeanDescriptor{Origin: source.ID("example", "Left"), Interface: true, Interfaces: []source.TypeRef{sideRef(left)}}
	r := &source.BeanDescriptor{Origin: source.ID("example", "Right"), Interface: true, Interfaces: []source.TypeRef{sideRef(right)}}
	c := &source.BeanDescriptor{
		Origin:     source.ID("example", "Concrete"),
		Interfaces: []source.TypeRef{source.Bean(l.Origin), source.Bean(r.Origin)},
	}
	return []*source.BeanDescriptor{base, l, r, c}
}

func TestDiamondIdenticalBindings(t *testing.T) {
	r := NewResolver(lookupOf(diamond(&str, &str)...))
	s, err := r.Bindings(source.ID("example", "Concrete"), source.ID("example", "Base"))
	require.NoError(t, err)
	assert.Equal(t, "{T=string}", s.String())

	members, err := r.Members(source.ID("example", "Concrete"))
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, members[0].Type.Equal(str))
}

func TestDiamondConflict(t *testing.T) {
	r := NewResolver(lookupOf(diamond(&str, &num)...))
	_, err := r.Members(source.ID("example", "Concrete"))
	require.Error(t, err)

	var conflict *diag.GenericSubstitutionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "T", conflict.Param)
	assert.Equal(t, "example.Base", conflict.Declaring)
	assert.ElementsMatch(t, []string{"string", "int"}, []string{conflict.First, conflict.Second})
	assert.True(t, errors.Is(err, diag.ErrGenericSubstitutionConflict))
	assert.True(t, diag.IsFatal(err))
}

func TestDiamondAmbiguous(t *testing.T) {
	r := NewResolver(lookupOf(diamond(&str, nil)...))
	_, err := r.Bindings(source.ID("example", "Concrete"), source.ID("example", "Base"))
	require.Error(t, err)

	var ambiguous *diag.AmbiguousSubstitutionError
	require.True(t, errors.As(err, &ambiguous))
	assert.Contains(t, []string{ambiguous.First, ambiguous.Second}, "<unbound>")
	assert.Equal(t, []string{"example.Concrete", "example.Left", "example.Base"}, ambiguous.FirstPath)
}

func TestAncestorsOrder(t *testing.T) {
	r := NewResolver(lookupOf(diamond(&str, &str)...))
	got := r.Ancestors(source.ID("example", "Concrete"))
	names := make([]string, len(got))
	for i, id := range got {
		names[i] = id.Name
	}
	assert.Equal(t, []string{"Base", "Left", "Right"}, names)
}

func TestCyclicAncestryTerminates(t *testing.T) {
	a := &source.BeanDescriptor{Origin: source.ID("example", "A")}
	b := &source.BeanDescriptor{Origin: source.ID("example", "B"), Parent: ref(source.Bean(a.Origin))}
	a.Parent = ref(source.Bean(b.Origin))
	r := NewResolver(lookupOf(a, b))
	assert.Len(t, r.Ancestors(a.Origin), 1)
}

// ladder stacks n diamonds: J<k> extends L<k> and R<k>, both extending
// J<k-1>. Every level doubles the number of paths from the top to J0.
func ladder(n int, left, right source.TypeRef) []*source.BeanDescriptor {
	generic := func(name string, parent string) *source.BeanDescriptor {
		return &source.BeanDescriptor{
			Origin:     source.ID("example", name),
			TypeParams: []string{"T"},
			Parent:     ref(source.Bean(source.ID("example", parent), source.Var("T"))),
		}
	}
	beans := []*source.BeanDescriptor{{
		Origin:     source.ID("example", "J0"),
		TypeParams: []string{"T"},
		Properties: []source.PropertyDescriptor{{Name: "value", Type: source.Var("T")}},
	}}
	for k := 1; k <= n; k++ {
		prev := fmt.Sprintf("J%d", k-1)
		l := generic(fmt.Sprintf("L%d", k), prev)
		r := generic(fmt.Sprintf("R%d", k), prev)
		j := &source.BeanDescriptor{Origin: source.ID("example", fmt.Sprintf("J%d", k)), TypeParams: []string{"T"}}
		j.Interfaces = []source.TypeRef{source.Bean(l.Origin, source.Var("T")), source.Bean(r.Origin, source.Var("T"))}
		beans = append(beans, l, r, j)
	}
	top := &source.BeanDescriptor{
		Origin: source.ID("example", "Top"),
		Interfaces: []source.TypeRef{
			source.Bean(source.ID("example", fmt.Sprintf("L%d", n+1)), left),
			source.Bean(source.ID("example", fmt.Sprintf("R%d", n+1)), right),
		},
	}
	last := fmt.Sprintf("J%d", n)
	beans = append(beans, generic(fmt.Sprintf("L%d", n+1), last), generic(fmt.Sprintf("R%d", n+1), last), top)
	return beans
}

func TestDiamondLadder(t *testing.T) {
	r := NewResolver(lookupOf(ladder(64, str, str)...))
	top := source.ID("example", "Top")

	members, err := r.Members(top)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, members[0].Type.Equal(str))
	assert.Len(t, r.Ancestors(top), 64*3+1+2)
}

func TestDiamondLadderConflict(t *testing.T) {
	r := NewResolver(lookupOf(ladder(64, str, num)...))
	top := source.ID("example", "Top")

	_, err := r.Bindings(top, source.ID("example", "J0"))
	var conflict *diag.GenericSubstitutionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "example.J64", conflict.Declaring, "reported where the paths first meet")
	assert.Equal(t, []string{"example.Top", "example.L65", "example.J64"}, conflict.FirstPath)
	assert.Equal(t, []string{"example.Top", "example.R65", "example.J64"}, conflict.SecondPath)

	_, err = r.Members(top)
	assert.True(t, errors.Is(err, diag.ErrGenericSubstitutionConflict))
}
