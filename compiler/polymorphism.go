package compiler

import (
	"slices"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/source"
)

// family is one polymorphic family: a root with discriminant metadata and
// every member reachable from it.
type family struct {
	root     *unit
	property string
	members  []*familyMember
}

type familyMember struct {
	unit          *unit
	tag           string
	explicit      bool
	constructible bool

	// via is the member whose discriminant registered this one, nil for the
	// root and for descendants found through inheritance only.
	via *familyMember
}

// families finds family roots among compiled beans. A root carries
// discriminant metadata and has no ancestor that does.
func (r *run) families() []*family {
	var out []*family
	for _, u := range r.units {
		if u.decl == nil || u.bean.Discriminant == nil {
			continue
		}
		if r.inheritsDiscriminant(u.id) {
			continue
		}
		out = append(out, r.buildFamily(u))
	}
	return out
}

func (r *run) inheritsDiscriminant(id source.Identity) bool {
	for _, a := range r.resolver.Ancestors(id) {
		if d, ok := r.lookupBean(a); ok && d.Discriminant != nil {
			return true
		}
	}
	return false
}

// buildFamily collects members in first-discovery order: registered subtypes
// depth-first from the root, then any other compiled descendant.
func (r *run) buildFamily(root *unit) *family {
	f := &family{root: root, property: root.bean.Discriminant.Property}
	seen := make(map[source.Identity]bool)

	var add func(id source.Identity, reg *source.DiscriminantMember, via *familyMember)
	add = func(id source.Identity, reg *source.DiscriminantMember, via *familyMember) {
		if seen[id] {
			return
		}
		seen[id] = true
		u := r.byID[id]
		if u == nil || u.decl == nil {
			return
		}
		m := &familyMember{unit: u, constructible: u.bean.Constructible(), via: via}
		switch {
		case reg != nil && reg.Tag != "":
			m.tag, m.explicit = reg.Tag, true
		case u.bean.Tag != "":
			m.tag, m.explicit = u.bean.Tag, true
		default:
			m.tag = u.entry.Name
		}
		if reg != nil && reg.Abstract {
			m.constructible = false
		}
		f.members = append(f.members, m)

		if d := u.bean.Discriminant; d != nil {
			for i := range d.Members {
				add(d.Members[i].Identity, &d.Members[i], m)
			}
		}
	}
	add(root.id, nil, nil)

	for _, u := range r.units {
		if u.decl == nil || seen[u.id] {
			continue
		}
		if slices.Contains(r.resolver.Ancestors(u.id), root.id) {
			add(u.id, nil, nil)
		}
	}
	return f
}

// within reports whether c belongs to the subtree of m: it is m, inherits
// from m, or was registered through m's discriminant.
func (r *run) within(c, m *familyMember) bool {
	if c.unit == m.unit || slices.Contains(r.resolver.Ancestors(c.unit.id), m.unit.id) {
		return true
	}
	for v := c.via; v != nil; v = v.via {
		if v == m {
			return true
		}
	}
	return false
}

// subRoot reports whether m registers subtypes of its own.
func subRoot(m *familyMember) bool {
	d := m.unit.bean.Discriminant
	return d != nil && len(d.Members) > 0
}

// compileFamily narrows the discriminant property of every member to the tags
// of its constructible subtree and declares a union alias for the root and for
// every member registering subtypes of its own.
func (r *run) compileFamily(f *family) error {
	var concrete []*familyMember
	byTag := make(map[string]*familyMember)
	for _, m := range f.members {
		if !m.constructible && !m.explicit {
			continue
		}
		if prev, dup := byTag[m.tag]; dup {
			return errors.WithStack(&diag.DuplicateDiscriminantLiteralError{
				Family: f.root.id.String(),
				Tag:    m.tag,
				First:  prev.unit.id.String(),
				Second: m.unit.id.String(),
			})
		}
		byTag[m.tag] = m
		if m.constructible {
			concrete = append(concrete, m)
		}
	}
	if r.settings.sorted() {
		sort.SliceStable(concrete, func(i, j int) bool { return concrete[i].tag < concrete[j].tag })
	}

	if len(concrete) == 0 {
		r.model.AddWarning(ir.Warning{
			Code:    diag.CodeEmptyFamily,
			Message: "family " + f.root.id.String() + " has no constructible member",
			Origin:  f.root.id.String(),
		})
		return nil
	}

	for _, m := range f.members {
		var subtree []*familyMember
		for _, c := range concrete {
			if r.within(c, m) {
				subtree = append(subtree, c)
			}
		}
		if len(subtree) == 0 {
			continue
		}
		tags := make([]any, len(subtree))
		for i, c := range subtree {
			tags[i] = c.tag
		}
		setDiscriminant(m.unit.decl, f.property, ir.LiteralUnion(tags...))

		if m.unit == f.root || subRoot(m) {
			if err := r.declareUnion(m.unit, subtree); err != nil {
				return err
			}
		}
	}
	return nil
}

// declareUnion declares the <Name>Union alias of owner over members.
func (r *run) declareUnion(owner *unit, members []*familyMember) error {
	entry, err := r.names.AssignSynthetic(owner.id, owner.entry.Name+"Union", "tagged union of "+owner.id.String())
	if err != nil {
		return err
	}
	refs := make([]ir.Type, len(members))
	for i, c := range members {
		refs[i] = &ir.Structural{Name: c.unit.entry.Qualified(), Origin: c.unit.id.String()}
	}
	owner.union = &ir.AliasDecl{
		Name:       entry.Name,
		Namespace:  entry.Namespace,
		Origin:     owner.id.String(),
		Definition: ir.NewUnion(refs...),
		Documentation: ir.Documentation{
			Summary: "Union of all constructible members of " + owner.entry.Name + ".",
		},
	}
	r.logger.Debug("compiled tagged union",
		zap.String("root", owner.entry.Qualified()),
		zap.String("alias", entry.Qualified()),
		zap.Int("members", len(members)))
	return nil
}

// setDiscriminant replaces the type of the discriminant property, prepending
// the property when the declaration does not have it yet.
func setDiscriminant(decl *ir.InterfaceDecl, name string, t ir.Type) {
	if p := decl.Property(name); p != nil {
		p.Type = t
		return
	}
	decl.Properties = append([]ir.Property{{Name: name, Type: t}}, decl.Properties...)
}

// unionAlias returns the alias reference replacing references to a family
// root or sub-root, or nil.
func (r *run) unionAlias(u *unit) *ir.Alias {
	if u.union == nil || r.settings.DisableTaggedUnionAliases {
		return nil
	}
	return &ir.Alias{Name: ir.QualifiedName(u.union), Origin: u.union.Origin, Definition: u.union.Definition}
}
