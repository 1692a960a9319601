package generics

import (
	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/source"
	"github.com/cockroachdb/errors"
)

// Lookup returns the descriptor of a bean, or false when it is unavailable.
type Lookup func(id source.Identity) (*source.BeanDescriptor, bool)

// Path is one inheritance path from a concrete type to an ancestor together
// with the composed substitution for the ancestor's formals.
type Path struct {
	// Steps lists identities from the concrete type to the ancestor, inclusive.
	Steps []source.Identity

	// Subst binds the ancestor's formals in terms of the concrete type's
	// own variables.
	Subst Subst
}

func (p Path) names() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.String()
	}
	return out
}

// ResolvedProperty is a member after substitution.
type ResolvedProperty struct {
	source.PropertyDescriptor

	// Declaring is the most specific type declaring the member.
	Declaring source.Identity
}

// binding is the merged view of every path reaching one ancestor: the first
// path found, or the conflict raised when two paths disagree.
type binding struct {
	path Path
	err  error
}

// edge is a kept supertype reference of one type.
type edge struct {
	to  source.Identity
	ref source.TypeRef
}

// Resolver resolves member types of concrete types against their ancestry.
// It memoizes per concrete type and belongs to one compilation run.
type Resolver struct {
	lookup   Lookup
	bindings map[source.Identity]map[source.Identity]*binding
	order    map[source.Identity][]source.Identity
}

// NewResolver returns a Resolver reading descriptors through lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{
		lookup:   lookup,
		bindings: make(map[source.Identity]map[source.Identity]*binding),
		order:    make(map[source.Identity][]source.Identity),
	}
}

// walk resolves the binding of every ancestor of concrete. Supertype edges
// are visited once each in topological order (children before parents), so
// the cost is linear in the size of the ancestry graph however many paths
// it contains. Paths into an ancestor are merged as they arrive and checked
// for conflicts there.
func (r *Resolver) walk(concrete source.Identity) (map[source.Identity]*binding, []source.Identity) {
	if b, ok := r.bindings[concrete]; ok {
		return b, r.order[concrete]
	}

	order, edges := linearize(concrete, r.lookup)
	indegree := make(map[source.Identity]int, len(order))
	for _, out := range edges {
		for _, e := range out {
			indegree[e.to]++
		}
	}

	all := map[source.Identity]*binding{
		concrete: {path: Path{Steps: []source.Identity{concrete}, Subst: Subst{}}},
	}
	queue := []source.Identity{concrete}
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		from := all[at]

		for _, e := range edges[at] {
			var formals []string
			if sd, ok := r.lookup(e.to); ok {
				formals = sd.TypeParams
			}
			steps := make([]source.Identity, len(from.path.Steps)+1)
			copy(steps, from.path.Steps)
			steps[len(steps)-1] = e.to
			in := &binding{
				path: Path{Steps: steps, Subst: Compose(Bind(formals, e.ref.Args), from.path.Subst)},
				err:  from.err,
			}

			if prev, ok := all[e.to]; !ok {
				all[e.to] = in
			} else if prev.err == nil {
				if in.err != nil {
					prev.err = in.err
				} else {
					prev.err = conflict(concrete, e.to, formals, prev.path, in.path)
				}
			}

			indegree[e.to]--
			if indegree[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}

	r.bindings[concrete] = all
	r.order[concrete] = order
	return all, order
}

// conflict compares two paths into ancestor. Identical bindings are accepted.
// Different concrete bindings yield a *diag.GenericSubstitutionConflictError;
// differently shaped bindings (one path leaves the parameter unbound or bound
// to a type variable) yield a *diag.AmbiguousSubstitutionError.
func conflict(concrete, ancestor source.Identity, formals []string, first, other Path) error {
	for _, f := range formals {
		a, aok := first.Subst[f]
		b, bok := other.Subst[f]
		switch {
		case !aok && !bok:
			continue
		case aok && bok && a.Equal(b):
			continue
		case aok && bok && !a.HasVariables() && !b.HasVariables():
			return errors.WithStack(&diag.GenericSubstitutionConflictError{
				Declaring: ancestor.String(), Param: f, Concrete: concrete.String(),
				First: a.String(), Second: b.String(),
				FirstPath: first.names(), SecondPath: other.names(),
			})
		default:
			return errors.WithStack(&diag.AmbiguousSubstitutionError{
				Declaring: ancestor.String(), Param: f, Concrete: concrete.String(),
				First: bindingString(a, aok), Second: bindingString(b, bok),
				FirstPath: first.names(), SecondPath: other.names(),
			})
		}
	}
	return nil
}

// linearize returns concrete's ancestry root-most first, ending with concrete,
// and the supertype edges of every type in it. Supertypes are visited parent
// first, then interfaces, in post-order. Edges closing an inheritance cycle
// are dropped, so the kept edges form a DAG.
func linearize(concrete source.Identity, lookup Lookup) ([]source.Identity, map[source.Identity][]edge) {
	var out []source.Identity
	edges := make(map[source.Identity][]edge)
	state := make(map[source.Identity]int) // 1 = open, 2 = done

	type frame struct {
		id   source.Identity
		next int
	}
	stack := []frame{{id: concrete}}
	state[concrete] = 1
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		var supers []source.TypeRef
		if d, ok := lookup(top.id); ok {
			supers = d.Supertypes()
		}
		pushed := false
		for top.next < len(supers) {
			sup := supers[top.next]
			top.next++
			if sup.Kind != source.KindBean || state[sup.Identity] == 1 {
				continue
			}
			edges[top.id] = append(edges[top.id], edge{to: sup.Identity, ref: sup})
			if state[sup.Identity] == 2 {
				continue
			}
			state[sup.Identity] = 1
			stack = append(stack, frame{id: sup.Identity})
			pushed = true
			break
		}
		if pushed {
			continue
		}
		state[top.id] = 2
		out = append(out, top.id)
		stack = stack[:len(stack)-1]
	}
	return out, edges
}

// Ancestors returns concrete's ancestry root-most first, excluding concrete.
func (r *Resolver) Ancestors(concrete source.Identity) []source.Identity {
	_, order := r.walk(concrete)
	if len(order) == 0 {
		return nil
	}
	return order[:len(order)-1]
}

// Bindings returns the substitution binding ancestor's formals in terms of
// concrete's variables, merged over every inheritance path. Conflicting
// paths yield the error described on conflict.
func (r *Resolver) Bindings(concrete, ancestor source.Identity) (Subst, error) {
	if concrete == ancestor {
		return Subst{}, nil
	}
	all, _ := r.walk(concrete)
	b, ok := all[ancestor]
	if !ok {
		return nil, errors.Newf("%s is not an ancestor of %s", ancestor, concrete)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.path.Subst, nil
}

func bindingString(r source.TypeRef, ok bool) string {
	if !ok {
		return "<unbound>"
	}
	return r.String()
}

// Resolve returns member type t, declared on declaring, as seen from concrete.
func (r *Resolver) Resolve(concrete, declaring source.Identity, t source.TypeRef) (source.TypeRef, error) {
	s, err := r.Bindings(concrete, declaring)
	if err != nil {
		return source.TypeRef{}, err
	}
	return s.Apply(t), nil
}

// Members returns every property visible on concrete, inherited ones
// included, with types resolved against concrete's ancestry. Members keep the
// position of their first (root-most) declaration; a redeclaration closer to
// concrete replaces the type, so covariant overrides resolve to the most
// specific declared type.
func (r *Resolver) Members(concrete source.Identity) ([]ResolvedProperty, error) {
	_, order := r.walk(concrete)

	var out []ResolvedProperty
	index := make(map[string]int)
	for _, id := range order {
		desc, ok := r.lookup(id)
		if !ok {
			continue
		}
		s, err := r.Bindings(concrete, id)
		if err != nil {
			return nil, err
		}
		for _, p := range desc.OrderedProperties() {
			p.Type = s.Apply(p.Type)
			rp := ResolvedProperty{PropertyDescriptor: p, Declaring: id}
			if i, dup := index[p.Name]; dup {
				out[i] = rp
				continue
			}
			index[p.Name] = len(out)
			out = append(out, rp)
		}
	}
	return out, nil
}

// Inherited returns the most specific inherited declaration of property name
// as seen from concrete, excluding concrete's own declaration.
func (r *Resolver) Inherited(concrete source.Identity, name string) (ResolvedProperty, bool, error) {
	ancestors := r.Ancestors(concrete)
	for i := len(ancestors) - 1; i >= 0; i-- {
		id := ancestors[i]
		desc, ok := r.lookup(id)
		if !ok {
			continue
		}
		p := desc.Property(name)
		if p == nil {
			continue
		}
		s, err := r.Bindings(concrete, id)
		if err != nil {
			return ResolvedProperty{}, false, err
		}
		rp := ResolvedProperty{PropertyDescriptor: *p, Declaring: id}
		rp.Type = s.Apply(p.Type)
		return rp, true, nil
	}
	return ResolvedProperty{}, false, nil
}
