// Package mapping turns source type references into target types.
//
// A Pipeline is an ordered chain of strategies. Each strategy either declines
// a reference or returns its target type; the first match wins. Strategies
// are stateless functions and report the named identities they reference
// through the Context, so the caller can enqueue them. The built-in chain is:
//
//   - exclusions (configured identities become the top type)
//   - custom mapping rules ("pkg.Source<T> -> Target<T>")
//   - caller-supplied strategies
//   - function types (when enabled)
//   - dates
//   - the default strategy for primitives, collections, maps, arrays, enums,
//     type variables and structural references
//
// Named references in the returned types carry an Origin but no Name: names
// are bound by the compiler once the discovered identities are assigned.
package mapping

import (
	"github.com/cockroachdb/errors"

	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/source"
)

// Strategy maps ref or declines it by returning ok=false.
// Strategies recurse into nested references through ctx.Map.
type Strategy func(ref source.TypeRef, ctx *Context) (t ir.Type, ok bool)

// DateMapping selects how date-like primitives are rendered.
type DateMapping string

const (
	DateAsDate   DateMapping = "asDate"
	DateAsNumber DateMapping = "asNumber"
	DateAsString DateMapping = "asString"
)

// Alias names introduced by date mapping.
const (
	DateAsStringAlias = "DateAsString"
	DateAsNumberAlias = "DateAsNumber"
)

// Options configures a Pipeline.
type Options struct {
	// Exclude lists identity strings or simple names mapped to the top type.
	Exclude []string

	// Rules are custom mapping rules in "Source<T> -> Target<T>" form.
	Rules []string

	// Strategies are tried after custom rules and before the built-ins.
	Strategies []Strategy

	// MapFunctions converts function-like references to function types.
	// When false they are unsupported and fall back to the top type.
	MapFunctions bool

	// Dates selects date rendering. Empty means DateAsString.
	Dates DateMapping

	// TopType is the name of the top type. Empty means "unknown".
	TopType string
}

// Result is the outcome of mapping one reference.
type Result struct {
	Type ir.Type

	// Discovered lists named references (beans and enums) in first-encounter
	// order, duplicates included.
	Discovered []source.TypeRef

	// Unsupported lists references no strategy matched. Each was replaced by
	// the top type.
	Unsupported []source.TypeRef
}

// Pipeline is an ordered strategy chain. It is immutable after New and safe
// for concurrent use.
type Pipeline struct {
	strategies []Strategy
	rules      []Rule
	top        string
}

// New builds the pipeline for opts. Malformed rules return an
// *diag.InvalidCustomMappingError.
func New(opts Options) (*Pipeline, error) {
	rules := make([]Rule, 0, len(opts.Rules))
	for _, text := range opts.Rules {
		r, err := ParseRule(text)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	top := opts.TopType
	if top == "" {
		top = "unknown"
	}

	p := &Pipeline{rules: rules, top: top}
	if len(opts.Exclude) > 0 {
		p.strategies = append(p.strategies, excludeStrategy(opts.Exclude))
	}
	if len(rules) > 0 {
		p.strategies = append(p.strategies, ruleStrategy(rules))
	}
	p.strategies = append(p.strategies, opts.Strategies...)
	if opts.MapFunctions {
		p.strategies = append(p.strategies, functionStrategy)
	}
	p.strategies = append(p.strategies, dateStrategy(opts.Dates), defaultStrategy)
	return p, nil
}

// Rules returns the parsed custom mapping rules.
func (p *Pipeline) Rules() []Rule {
	return p.rules
}

// Map maps ref. The only error is an *diag.InvalidCustomMappingError raised
// when a rule is applied to a reference of mismatched arity.
func (p *Pipeline) Map(ref source.TypeRef) (Result, error) {
	ctx := &Context{p: p}
	t := ctx.Map(ref)
	if ctx.err != nil {
		return Result{}, ctx.err
	}
	return Result{Type: t, Discovered: ctx.discovered, Unsupported: ctx.unsupported}, nil
}

// Context carries one Map call's accumulated discoveries.
type Context struct {
	p           *Pipeline
	discovered  []source.TypeRef
	unsupported []source.TypeRef
	err         error
}

// Map runs the chain on ref. Nullability of ref becomes optionality of the
// result. An unmatched reference is recorded and becomes the top type.
func (c *Context) Map(ref source.TypeRef) ir.Type {
	for _, s := range c.p.strategies {
		if t, ok := s(ref, c); ok {
			return ir.WithOptional(t, ref.Nullable)
		}
	}
	c.unsupported = append(c.unsupported, ref)
	return ir.WithOptional(c.Top(), ref.Nullable)
}

// Discover records a named reference for the caller to enqueue.
func (c *Context) Discover(ref source.TypeRef) {
	c.discovered = append(c.discovered, ref)
}

// Top returns a fresh top type.
func (c *Context) Top() ir.Type {
	return ir.NewBasic(c.p.top)
}

// Fail aborts the Map call with err. The first failure wins.
func (c *Context) Fail(err error) {
	if c.err == nil {
		c.err = errors.WithStack(err)
	}
}
