package mapping

import (
	"context"
	"strings"
	"unicode"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/source"
)

// Rule is a parsed custom mapping rule.
//
//	pkg.ListWrapper<T> -> Wrapper<T>
//	java.util.Optional<T> -> T | undefined
//	Matrix<T> -> T[][]
//	java.time.Instant:number
//
// The source side names a type and its formal parameters. The target side is a
// type expression over target names, the formals, '<...>' arguments, '[]'
// suffixes and '|' unions. Target names that are basic types become basic
// types; other names become external references.
type Rule struct {
	// Text is the rule as written.
	Text string

	// Source is the matched type name: an identity string, or a simple name
	// that matches any scope.
	Source string

	// Params are the source's formal parameters.
	Params []string

	target expr
}

// expr is a parsed target type expression.
type expr struct {
	name  string
	args  []expr
	dims  int
	union []expr // set for unions; other fields unused
}

// ParseRule parses "Source<T...> -> Target<...>". The separator may also be
// written as ':'.
func ParseRule(text string) (Rule, error) {
	lhs, rhs, ok := strings.Cut(text, "->")
	if !ok {
		lhs, rhs, ok = strings.Cut(text, ":")
	}
	if !ok {
		return Rule{}, diag.NewInvalidCustomMapping(text, `missing "->" or ":"`)
	}

	src, err := parseExpr(text, strings.TrimSpace(lhs))
	if err != nil {
		return Rule{}, err
	}
	if src.union != nil || src.dims > 0 {
		return Rule{}, diag.NewInvalidCustomMapping(text, "source must be a plain type name")
	}

	r := Rule{Text: text, Source: src.name}
	declared := make(map[string]bool)
	for _, a := range src.args {
		if a.union != nil || a.dims > 0 || len(a.args) > 0 {
			return Rule{}, diag.NewInvalidCustomMapping(text, "source parameter %q must be a bare name", a.String())
		}
		if declared[a.name] {
			return Rule{}, diag.NewInvalidCustomMapping(text, "duplicate source parameter %q", a.name)
		}
		declared[a.name] = true
		r.Params = append(r.Params, a.name)
	}

	r.target, err = parseExpr(text, strings.TrimSpace(rhs))
	if err != nil {
		return Rule{}, err
	}
	if err := r.checkTarget(r.target, declared); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// checkTarget rejects single-letter target names that look like undeclared
// type parameters.
func (r Rule) checkTarget(e expr, declared map[string]bool) error {
	for _, u := range e.union {
		if err := r.checkTarget(u, declared); err != nil {
			return err
		}
	}
	if e.union != nil {
		return nil
	}
	if declared[e.name] && len(e.args) > 0 {
		return diag.NewInvalidCustomMapping(r.Text, "parameter %q cannot take type arguments", e.name)
	}
	if !declared[e.name] && len(e.name) == 1 && unicode.IsUpper(rune(e.name[0])) {
		return diag.NewInvalidCustomMapping(r.Text, "target uses undeclared parameter %q", e.name)
	}
	for _, a := range e.args {
		if err := r.checkTarget(a, declared); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether r applies to ref.
func (r Rule) Matches(ref source.TypeRef) bool {
	if ref.Kind == source.KindVariable || ref.Kind == source.KindArray || ref.Identity.Name == "" {
		return false
	}
	if ref.Identity.String() == r.Source {
		return true
	}
	return !strings.ContainsAny(r.Source, "./") && ref.Identity.Name == r.Source
}

// Scoped reports whether the rule names a full identity rather than a simple name.
func (r Rule) Scoped() bool {
	return strings.ContainsAny(r.Source, "./")
}

// Validate checks the rule against a provider that can resolve identities: the
// source must exist and declare as many type parameters as the rule.
// Providers that do not implement source.Resolver are not consulted.
func (r Rule) Validate(ctx context.Context, p source.Provider) error {
	res, ok := p.(source.Resolver)
	if !ok || !r.Scoped() {
		return nil
	}
	id := source.ParseIdentity(r.Source)
	if !res.Exists(id) {
		return diag.NewInvalidCustomMapping(r.Text, "unknown type %s", r.Source)
	}
	desc, err := p.DescribeBean(ctx, id)
	if err != nil || desc == nil {
		// Enums and primitives take no parameters.
		if len(r.Params) > 0 {
			return diag.NewInvalidCustomMapping(r.Text, "%s is not generic", r.Source)
		}
		return nil
	}
	if len(desc.TypeParams) != len(r.Params) {
		return diag.NewInvalidCustomMapping(r.Text, "%s declares %d type parameters, rule declares %d",
			r.Source, len(desc.TypeParams), len(r.Params))
	}
	return nil
}

// apply renders the target for ref. A raw reference binds every parameter to
// the top type.
func (r Rule) apply(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
	if len(ref.Args) > 0 && len(ref.Args) != len(r.Params) {
		ctx.Fail(diag.NewInvalidCustomMapping(r.Text, "%s has %d type arguments, rule declares %d",
			ref, len(ref.Args), len(r.Params)))
		return ctx.Top(), true
	}
	bound := make(map[string]ir.Type, len(r.Params))
	for i, p := range r.Params {
		if i < len(ref.Args) {
			bound[p] = ctx.Map(ref.Args[i])
		} else {
			bound[p] = ctx.Top()
		}
	}
	return r.render(r.target, bound), true
}

func (r Rule) render(e expr, bound map[string]ir.Type) ir.Type {
	if e.union != nil {
		members := make([]ir.Type, len(e.union))
		for i, u := range e.union {
			members[i] = r.render(u, bound)
		}
		return ir.NewUnion(members...)
	}

	var t ir.Type
	switch b, isParam := bound[e.name]; {
	case isParam:
		t = b
	case len(e.args) == 0 && IsBasicName(e.name):
		t = ir.NewBasic(e.name)
	default:
		s := &ir.Structural{Name: e.name, External: true}
		for _, a := range e.args {
			s.Args = append(s.Args, r.render(a, bound))
		}
		t = s
	}
	for range e.dims {
		t = ir.NewArray(t)
	}
	return t
}

func ruleStrategy(rules []Rule) Strategy {
	return func(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
		for _, r := range rules {
			if r.Matches(ref) {
				return r.apply(ref, ctx)
			}
		}
		return nil, false
	}
}

// String renders e back to rule syntax.
func (e expr) String() string {
	if e.union != nil {
		parts := make([]string, len(e.union))
		for i, u := range e.union {
			parts[i] = u.String()
		}
		return strings.Join(parts, " | ")
	}
	var b strings.Builder
	b.WriteString(e.name)
	if len(e.args) > 0 {
		b.WriteByte('<')
		for i, a := range e.args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	for range e.dims {
		b.WriteString("[]")
	}
	return b.String()
}

// parser is a recursive-descent parser over one side of a rule.
type parser struct {
	rule string
	s    string
	pos  int
}

func parseExpr(rule, s string) (expr, error) {
	if s == "" {
		return expr{}, diag.NewInvalidCustomMapping(rule, "empty type expression")
	}
	p := &parser{rule: rule, s: s}
	e, err := p.union()
	if err != nil {
		return expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return expr{}, p.errorf("unexpected %q", p.s[p.pos:])
	}
	return e, nil
}

func (p *parser) union() (expr, error) {
	first, err := p.term()
	if err != nil {
		return expr{}, err
	}
	members := []expr{first}
	for p.accept('|') {
		next, err := p.term()
		if err != nil {
			return expr{}, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return first, nil
	}
	return expr{union: members}, nil
}

func (p *parser) term() (expr, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && isNameByte(p.s[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return expr{}, p.errorf("expected a type name at offset %d", start)
	}
	e := expr{name: p.s[start:p.pos]}

	if p.accept('<') {
		for {
			arg, err := p.union()
			if err != nil {
				return expr{}, err
			}
			e.args = append(e.args, arg)
			if p.accept(',') {
				continue
			}
			if !p.accept('>') {
				return expr{}, p.errorf("expected ',' or '>' at offset %d", p.pos)
			}
			break
		}
	}
	for p.accept('[') {
		if !p.accept(']') {
			return expr{}, p.errorf("expected ']' at offset %d", p.pos)
		}
		e.dims++
	}
	return e, nil
}

func (p *parser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return diag.NewInvalidCustomMapping(p.rule, format, args...)
}

func isNameByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' || c == '/' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
