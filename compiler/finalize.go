package compiler

import (
	"sort"

	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/mapping"
	"github.com/broady/tsmodel/source"
)

// finalize turns the arena into the ordered model. extra types (from
// CompileType) are bound in place alongside the declarations.
func (r *run) finalize(extra ...*ir.Type) error {
	if !r.settings.DisableTaggedUnions {
		for _, f := range r.families() {
			if err := r.compileFamily(f); err != nil {
				return err
			}
		}
	}

	enums := make(map[*unit]*compiledEnum)
	for _, u := range r.units {
		if u.kind == unitEnum && !u.failed && u.enum != nil {
			enums[u] = r.compileEnum(u)
		}
	}

	b := &binder{r: r, enums: enums, synthetic: make(map[string]bool)}
	for _, u := range r.units {
		if u.decl == nil {
			continue
		}
		b.bindDecl(u.decl)
	}
	for _, t := range extra {
		*t = r.lowerNested(b.bind(*t))
	}
	if b.err != nil {
		return b.err
	}

	for _, u := range r.units {
		switch {
		case u.decl != nil:
			r.model.AddDeclaration(u.decl)
			if u.union != nil {
				r.model.AddDeclaration(u.union)
			}
		case enums[u] != nil && enums[u].decl != nil:
			r.model.AddDeclaration(enums[u].decl)
		}
	}
	for _, d := range b.dates {
		r.model.AddDeclaration(d)
	}

	r.order()
	return nil
}

// binder rewrites mapped types into final reference sites.
type binder struct {
	r         *run
	enums     map[*unit]*compiledEnum
	synthetic map[string]bool
	dates     []*ir.AliasDecl
	err       error
}

func (b *binder) bindDecl(decl *ir.InterfaceDecl) {
	extends := decl.Extends[:0]
	for _, ext := range decl.Extends {
		u := b.r.byOrigin[ext.Origin]
		if u == nil || u.failed || u.decl == nil {
			continue
		}
		c := *ext
		c.Name = u.entry.Qualified()
		c.Args = make([]ir.Type, len(ext.Args))
		for i, a := range ext.Args {
			c.Args[i] = b.r.lowerNested(b.bind(a))
		}
		extends = append(extends, &c)
	}
	decl.Extends = extends

	for i := range decl.Properties {
		p := &decl.Properties[i]
		p.Type = b.r.lowerProperty(b.bind(p.Type))
	}
}

// bind resolves names: structural references get their assigned names or the
// family union alias, enum references their rendering, references to failed
// identities the top type, and date aliases are declared on first use.
func (b *binder) bind(t ir.Type) ir.Type {
	return ir.Transform(t, func(n ir.Type) ir.Type {
		switch v := n.(type) {
		case *ir.Structural:
			if v.External || v.Origin == "" {
				return v
			}
			u := b.r.byOrigin[v.Origin]
			if u == nil || u.failed {
				return b.top(v)
			}
			if len(v.Args) == 0 {
				if alias := b.r.unionAlias(u); alias != nil {
					return ir.WithOptional(alias, v.IsOptional())
				}
			}
			v.Name = u.entry.Qualified()
			return v
		case *ir.Enum:
			u := b.r.byOrigin[v.Origin]
			if u == nil || u.failed || b.enums[u] == nil {
				return b.top(v)
			}
			return b.enums[u].ref(v.IsOptional())
		case *ir.Alias:
			if v.Origin == "" && (v.Name == mapping.DateAsStringAlias || v.Name == mapping.DateAsNumberAlias) {
				b.declareDate(v)
			}
			return v
		}
		return n
	})
}

func (b *binder) top(n ir.Type) ir.Type {
	return ir.WithOptional(ir.NewBasic(b.r.settings.UnknownType), n.IsOptional())
}

func (b *binder) declareDate(v *ir.Alias) {
	if b.synthetic[v.Name] {
		return
	}
	b.synthetic[v.Name] = true
	entry, err := b.r.names.AssignSynthetic(source.Identity{}, v.Name, "date mapping")
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	b.dates = append(b.dates, &ir.AliasDecl{
		Name:       entry.Name,
		Definition: v.Definition,
	})
}

// lowerNested expresses the optionality of nested positions (elements, map
// values, arguments, union members) as unions with null or undefined. The
// optionality of t itself is kept.
func (r *run) lowerNested(t ir.Type) ir.Type {
	if t == nil {
		return nil
	}
	optional := t.IsOptional()
	lowered := ir.Transform(ir.WithOptional(t, false), func(n ir.Type) ir.Type {
		if !n.IsOptional() {
			return n
		}
		return withMissing(ir.WithOptional(n, false), r.nestedMissing()...)
	})
	return ir.WithOptional(lowered, optional)
}

// lowerProperty lowers a property type according to the optional property mode.
func (r *run) lowerProperty(t ir.Type) ir.Type {
	t = r.lowerNested(t)
	if !t.IsOptional() {
		return t
	}
	plain := ir.WithOptional(t, false)
	switch r.settings.OptionalProperties {
	case OptionalNullableType:
		return withMissing(plain, "null")
	case OptionalQuestionMarkAndNullableType:
		return ir.WithOptional(withMissing(plain, "null"), true)
	case OptionalNullableAndUndefinableType:
		return withMissing(plain, "null", "undefined")
	case OptionalUndefinableType:
		return withMissing(plain, "undefined")
	}
	return t
}

func (r *run) nestedMissing() []string {
	if r.settings.OptionalProperties == OptionalUndefinableType {
		return []string{"undefined"}
	}
	return []string{"null"}
}

// withMissing returns t | names..., flattening into an existing union.
func withMissing(t ir.Type, names ...string) ir.Type {
	var members []ir.Type
	if u, ok := t.(*ir.Union); ok {
		members = append(members, u.Members...)
	} else {
		members = append(members, t)
	}
	for _, n := range names {
		members = append(members, ir.NewBasic(n))
	}
	return ir.NewUnion(members...)
}

// order applies the sort options. Union aliases stay adjacent to their roots
// only in discovery order.
func (r *run) order() {
	if !r.settings.sorted() {
		return
	}
	decls := r.model.Declarations
	sort.SliceStable(decls, func(i, j int) bool {
		return ir.QualifiedName(decls[i]) < ir.QualifiedName(decls[j])
	})
	if !r.settings.SortDeclarations {
		return
	}
	for _, d := range decls {
		if i, ok := d.(*ir.InterfaceDecl); ok {
			sort.SliceStable(i.Properties, func(a, b int) bool {
				return i.Properties[a].Name < i.Properties[b].Name
			})
		}
	}
}
