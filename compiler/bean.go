package compiler

import (
	"go.uber.org/zap"

	"github.com/broady/tsmodel/generics"
	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/source"
)

// compileBean builds the pending declaration of a bean. Member types are
// mapped but not yet bound to names.
func (r *run) compileBean(u *unit) error {
	desc, ok := r.lookupBean(u.id)
	if !ok {
		r.introspectionFailed(u, r.tried[u.id])
		return nil
	}
	u.bean = desc

	decl := &ir.InterfaceDecl{
		Name:          u.entry.Name,
		Namespace:     u.entry.Namespace,
		Origin:        u.id.String(),
		TypeParams:    append([]string(nil), desc.TypeParams...),
		Abstract:      !desc.Constructible(),
		Documentation: ir.ParseDocumentation(desc.Comments),
	}
	u.decl = decl

	// Resolving every member surfaces substitution conflicts in either mode.
	members, err := r.resolver.Members(u.id)
	if err != nil {
		return err
	}

	if r.settings.Inheritance == InheritanceFlatten {
		for _, m := range members {
			if err := r.addProperty(decl, m.PropertyDescriptor); err != nil {
				return err
			}
		}
	} else {
		if err := r.compileSupertypes(decl, desc); err != nil {
			return err
		}
		for _, p := range desc.OrderedProperties() {
			if r.redundant(u.id, p) {
				continue
			}
			if err := r.addProperty(decl, p); err != nil {
				return err
			}
		}
	}

	if d := desc.Discriminant; d != nil && !r.settings.DisableTaggedUnions {
		for _, m := range d.Members {
			if err := r.enqueue(source.Bean(m.Identity), "subtype of "+u.id.String()); err != nil {
				return err
			}
		}
	}

	r.logger.Debug("compiled bean",
		zap.Stringer("identity", u.id),
		zap.String("name", u.entry.Qualified()),
		zap.Stringer("provenance", u.entry.Provenance),
		zap.Int("properties", len(decl.Properties)))
	return nil
}

func (r *run) compileSupertypes(decl *ir.InterfaceDecl, desc *source.BeanDescriptor) error {
	for _, sup := range desc.Supertypes() {
		if sup.Kind != source.KindBean {
			continue
		}
		t, err := r.mapType(sup, decl.Origin+" supertype")
		if err != nil {
			return err
		}
		// Excluded or rewritten supertypes are dropped.
		if s, ok := t.(*ir.Structural); ok && !s.External {
			decl.Extends = append(decl.Extends, s)
		}
	}
	return nil
}

// redundant reports whether p restates an inherited property with the same
// resolved type and optionality.
func (r *run) redundant(id source.Identity, p source.PropertyDescriptor) bool {
	inherited, ok, err := r.resolver.Inherited(id, p.Name)
	if err != nil || !ok {
		return false
	}
	return sameProperty(inherited, p)
}

func sameProperty(inherited generics.ResolvedProperty, p source.PropertyDescriptor) bool {
	return inherited.Optional == p.Optional && inherited.Type.Equal(p.Type)
}

func (r *run) addProperty(decl *ir.InterfaceDecl, p source.PropertyDescriptor) error {
	t, err := r.mapType(p.Type, decl.Origin+"."+p.Name)
	if err != nil {
		return err
	}
	if p.Optional {
		t = ir.WithOptional(t, true)
	}
	decl.Properties = append(decl.Properties, ir.Property{
		Name:          p.Name,
		Type:          t,
		Documentation: ir.ParseDocumentation(p.Comments),
	})
	return nil
}
