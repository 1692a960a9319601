package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/ir"
)

// compiledEnum is the rendering of one enum identity.
type compiledEnum struct {
	// decl is nil when the enum is inlined.
	decl ir.Declaration

	// name is the qualified reference name.
	name string

	// values are the member literals in declared order.
	values []any
}

// literals returns fresh literal nodes for e's values.
func (e *compiledEnum) literals() []*ir.Literal {
	out := make([]*ir.Literal, len(e.values))
	for i, v := range e.values {
		out[i] = ir.NewLiteral(v)
	}
	return out
}

// union returns the inline representation of e.
func (e *compiledEnum) union() ir.Type {
	if len(e.values) == 0 {
		return ir.NewBasic("never")
	}
	return ir.LiteralUnion(e.values...)
}

// compileEnum compiles an enum descriptor in the configured style. Native
// enums that cannot hold every value fall back to a literal union.
func (r *run) compileEnum(u *unit) *compiledEnum {
	desc := u.enum
	ce := &compiledEnum{name: u.entry.Qualified()}
	doc := ir.ParseDocumentation(desc.Comments)

	style := r.settings.EnumMapping
	for i, c := range desc.Constants {
		v := c.Literal()
		if style == EnumNumeric {
			switch v.(type) {
			case int64, float64:
			default:
				v = int64(i)
			}
		}
		ce.values = append(ce.values, v)
	}

	if style == EnumNative {
		for _, v := range ce.values {
			switch v.(type) {
			case string, int64, float64:
				continue
			}
			r.model.AddWarning(ir.Warning{
				Code:    diag.CodeEnumFallback,
				Message: fmt.Sprintf("enum %s has value %v that a native enum cannot hold; compiled as a literal union", u.id, v),
				Origin:  u.id.String(),
			})
			style = EnumLiteralUnion
			break
		}
	}

	if r.settings.InlineEnums {
		return ce
	}

	switch style {
	case EnumNative, EnumNumeric:
		decl := &ir.EnumDecl{
			Name:          u.entry.Name,
			Namespace:     u.entry.Namespace,
			Origin:        u.id.String(),
			Style:         ir.EnumNative,
			Documentation: doc,
		}
		if style == EnumNumeric {
			decl.Style = ir.EnumNumeric
		}
		for i, c := range desc.Constants {
			decl.Members = append(decl.Members, ir.EnumMember{
				Name:          c.Name,
				Value:         ce.values[i],
				Documentation: ir.ParseDocumentation(c.Comments),
			})
		}
		ce.decl = decl
	default:
		ce.decl = &ir.AliasDecl{
			Name:          u.entry.Name,
			Namespace:     u.entry.Namespace,
			Origin:        u.id.String(),
			Definition:    ce.union(),
			Documentation: doc,
		}
	}
	r.logger.Debug("compiled enum",
		zap.Stringer("identity", u.id),
		zap.String("name", ce.name),
		zap.String("style", style),
		zap.Int("constants", len(ce.values)))
	return ce
}

// ref renders a reference site of e with the given optionality.
func (e *compiledEnum) ref(optional bool) ir.Type {
	if e.decl == nil {
		return ir.WithOptional(e.union(), optional)
	}
	return &ir.Enum{
		Optionality: ir.Optionality{Optional: optional},
		Name:        e.name,
		Origin:      originOf(e.decl),
		Literals:    e.literals(),
	}
}

func originOf(d ir.Declaration) string {
	switch d := d.(type) {
	case *ir.EnumDecl:
		return d.Origin
	case *ir.AliasDecl:
		return d.Origin
	case *ir.InterfaceDecl:
		return d.Origin
	}
	return ""
}
