// Package directive parses tsmodel directives from Go doc comments.
//
// Directives are line comments in the form:
//
//	//tsmodel:discriminator <property> <Member>[=<tag>] ...
//	//tsmodel:tag <literal>
//	//tsmodel:abstract
//
// The discriminator directive marks an interface type as the root of a
// polymorphic family tagged by property. Each listed member implements it,
// optionally with an explicit tag literal.
//
// The tag directive sets the literal a family member is tagged with, and the
// abstract directive marks a type that never appears as a concrete value.
package directive

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/cockroachdb/errors"
)

const prefix = "//tsmodel:"

// Kind represents the type of directive.
type Kind string

const (
	KindDiscriminator Kind = "discriminator"
	KindTag           Kind = "tag"
	KindAbstract      Kind = "abstract"
)

// Member is one entry of a discriminator directive.
type Member struct {
	Name string // type name, optionally package-qualified
	Tag  string // explicit tag literal, empty if none
}

// Discriminator is a parsed //tsmodel:discriminator directive.
type Discriminator struct {
	Property string
	Members  []Member
}

// Set holds the directives attached to one declaration.
type Set struct {
	Discriminator *Discriminator
	Tag           string
	Abstract      bool
}

// Empty reports whether no directive was found.
func (s Set) Empty() bool {
	return s.Discriminator == nil && s.Tag == "" && !s.Abstract
}

// Parse extracts the directives of a doc comment. Malformed directives are
// reported together; the well-formed ones are still returned.
func Parse(fset *token.FileSet, cg *ast.CommentGroup) (Set, error) {
	var (
		set  Set
		errs []error
	)
	if cg == nil {
		return set, nil
	}
	for _, c := range cg.List {
		text, ok := strings.CutPrefix(c.Text, prefix)
		if !ok {
			continue
		}
		parts := strings.Fields(text)
		if len(parts) == 0 {
			continue
		}
		pos := position(fset, c.Pos())
		switch Kind(parts[0]) {
		case KindAbstract:
			if len(parts) > 1 {
				errs = append(errs, errors.Newf("%s: %s%s takes no arguments", pos, prefix, parts[0]))
				continue
			}
			set.Abstract = true
		case KindTag:
			if len(parts) != 2 {
				errs = append(errs, errors.Newf("%s: %s%s requires exactly one literal", pos, prefix, parts[0]))
				continue
			}
			set.Tag = parts[1]
		case KindDiscriminator:
			if len(parts) < 2 {
				errs = append(errs, errors.Newf("%s: %s%s requires a property name", pos, prefix, parts[0]))
				continue
			}
			if set.Discriminator != nil {
				errs = append(errs, errors.Newf("%s: multiple %s%s directives", pos, prefix, parts[0]))
				continue
			}
			d := &Discriminator{Property: parts[1]}
			for _, m := range parts[2:] {
				name, tag, hasTag := strings.Cut(m, "=")
				if name == "" || (hasTag && tag == "") {
					errs = append(errs, errors.Newf("%s: malformed member %q", pos, m))
					continue
				}
				d.Members = append(d.Members, Member{Name: name, Tag: tag})
			}
			set.Discriminator = d
		default:
			errs = append(errs, errors.Newf("%s: unknown directive %s%s", pos, prefix, parts[0]))
		}
	}
	return set, errors.Join(errs...)
}

func position(fset *token.FileSet, pos token.Pos) string {
	if fset == nil || !pos.IsValid() {
		return "-"
	}
	return fset.Position(pos).String()
}
