// Package generics resolves member types across generic inheritance chains.
//
// A substitution maps an ancestor's formal type parameters to actual type
// references. Walking from a concrete type up to a declaring ancestor, one
// substitution is built per (child, parent) link and the maps are composed
// along the path. Conflicting bindings reached through different paths are
// detected explicitly rather than left to any host-language machinery.
package generics

import (
	"sort"
	"strings"

	"github.com/broady/tsmodel/source"
)

// Subst maps formal parameter names to actual type references.
type Subst map[string]source.TypeRef

// Bind builds the substitution for one link: formals of the parent mapped to
// the actual arguments the child supplies. A raw reference (no arguments)
// binds nothing; surplus formals stay unbound.
func Bind(formals []string, args []source.TypeRef) Subst {
	s := make(Subst, len(formals))
	for i, f := range formals {
		if i >= len(args) {
			break
		}
		s[f] = args[i]
	}
	return s
}

// Apply replaces every type variable bound by s. The nullability of a variable
// occurrence is kept on the substituted reference.
func (s Subst) Apply(r source.TypeRef) source.TypeRef {
	if len(s) == 0 {
		return r
	}
	if r.Kind == source.KindVariable {
		if b, ok := s[r.Identity.Name]; ok {
			if r.Nullable {
				b = b.AsNullable(true)
			}
			return b
		}
		return r
	}
	if len(r.Args) > 0 {
		args := make([]source.TypeRef, len(r.Args))
		for i, a := range r.Args {
			args[i] = s.Apply(a)
		}
		r.Args = args
	}
	if r.Signature != nil {
		sig := source.Signature{}
		for _, p := range r.Signature.Params {
			sig.Params = append(sig.Params, source.Param{Name: p.Name, Type: s.Apply(p.Type)})
		}
		if r.Signature.Result != nil {
			res := s.Apply(*r.Signature.Result)
			sig.Result = &res
		}
		r.Signature = &sig
	}
	return r
}

// Compose returns the substitution that applies step and then prior:
// every binding of step is rewritten through prior. step binds a parent's
// formals in terms of the child's variables; prior binds the child's variables
// in terms of the concrete type's variables.
func Compose(step, prior Subst) Subst {
	out := make(Subst, len(step))
	for k, v := range step {
		out[k] = prior.Apply(v)
	}
	return out
}

// Equal reports whether two substitutions bind the same names identically.
func (s Subst) Equal(o Subst) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		w, ok := o[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

// String renders s deterministically, for diagnostics.
func (s Subst) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
