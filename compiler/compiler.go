// Package compiler compiles source descriptors into a structural model.
//
// A compilation run starts from root references and drives a FIFO discovery
// queue: each popped identity is described by the Provider, its members are
// mapped through the mapping pipeline, and every named type they mention is
// enqueued. Names are assigned when an identity is first discovered, so
// references are resolved by name and cyclic graphs never block. After the
// queue drains, a finalize phase synthesizes tagged unions, compiles enums,
// binds names into reference sites and orders the declarations.
//
// Runs are single-threaded and own all of their state; a Compiler may be
// reused for any number of runs.
package compiler

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/generics"
	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/mapping"
	"github.com/broady/tsmodel/naming"
	"github.com/broady/tsmodel/source"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrategies adds mapping strategies tried after custom mapping rules and
// before the built-in strategies.
func WithStrategies(s ...mapping.Strategy) Option {
	return func(c *Compiler) {
		c.strategies = append(c.strategies, s...)
	}
}

// Compiler compiles descriptors obtained from a Provider.
type Compiler struct {
	provider   source.Provider
	settings   Settings
	pipeline   *mapping.Pipeline
	strategies []mapping.Strategy
	logger     *zap.Logger
}

// New returns a Compiler. Invalid settings and malformed custom mapping rules
// are reported here, before any run.
func New(p source.Provider, s Settings, opts ...Option) (*Compiler, error) {
	if p == nil {
		return nil, errors.New("compiler: provider is required")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Compiler{
		provider: p,
		settings: s.withDefaults(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	pipeline, err := mapping.New(c.settings.mappingOptions(c.strategies))
	if err != nil {
		return nil, err
	}
	c.pipeline = pipeline
	return c, nil
}

// Settings returns the effective settings, defaults applied.
func (c *Compiler) Settings() Settings {
	return c.settings
}

// Compile compiles roots and everything they transitively reference.
// Fatal errors (see package diag) abort the run and no model is returned.
func (c *Compiler) Compile(ctx context.Context, roots ...source.TypeRef) (*ir.Model, error) {
	r, err := c.start(ctx)
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := r.enqueueRoot(root); err != nil {
			return nil, err
		}
	}
	if err := r.drain(); err != nil {
		return nil, err
	}
	return r.finish()
}

// CompileType maps a single reference, compiles every declaration it needs and
// returns the reference's final type together with the model.
func (c *Compiler) CompileType(ctx context.Context, ref source.TypeRef) (ir.Type, *ir.Model, error) {
	r, err := c.start(ctx)
	if err != nil {
		return nil, nil, err
	}
	t, err := r.mapType(ref, "root")
	if err != nil {
		return nil, nil, err
	}
	if err := r.drain(); err != nil {
		return nil, nil, err
	}
	model, err := r.finish(&t)
	if err != nil {
		return nil, nil, err
	}
	return t, model, nil
}

func (c *Compiler) start(ctx context.Context) (*run, error) {
	r := newRun(ctx, c)
	for _, rule := range c.pipeline.Rules() {
		if err := rule.Validate(ctx, c.provider); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// unitKind distinguishes arena entries.
type unitKind int

const (
	unitBean unitKind = iota
	unitEnum
)

// unit is one discovered identity in the run's arena.
type unit struct {
	id     source.Identity
	kind   unitKind
	entry  naming.Entry
	failed bool

	bean  *source.BeanDescriptor
	enum  *source.EnumDescriptor
	decl  *ir.InterfaceDecl
	union *ir.AliasDecl
}

type queued struct {
	ref    source.TypeRef
	origin string
}

// run is the state of one compilation. It is owned by a single goroutine.
type run struct {
	ctx      context.Context
	c        *Compiler
	settings *Settings
	logger   *zap.Logger

	names    *naming.Table
	resolver *generics.Resolver

	queue []queued
	units []*unit
	byID  map[source.Identity]*unit

	// byOrigin indexes units by identity string, the Origin carried in
	// mapped types.
	byOrigin map[string]*unit

	beans map[source.Identity]*source.BeanDescriptor
	tried map[source.Identity]error

	model *ir.Model
}

func newRun(ctx context.Context, c *Compiler) *run {
	r := &run{
		ctx:      ctx,
		c:        c,
		settings: &c.settings,
		logger:   c.logger,
		names:    naming.NewTable(c.settings.namingOptions()),
		byID:     make(map[source.Identity]*unit),
		byOrigin: make(map[string]*unit),
		beans:    make(map[source.Identity]*source.BeanDescriptor),
		tried:    make(map[source.Identity]error),
		model:    &ir.Model{},
	}
	r.resolver = generics.NewResolver(r.lookupBean)
	return r
}

// lookupBean describes a bean at most once per run.
func (r *run) lookupBean(id source.Identity) (*source.BeanDescriptor, bool) {
	if b, ok := r.beans[id]; ok {
		return b, true
	}
	if _, ok := r.tried[id]; ok {
		return nil, false
	}
	b, err := r.c.provider.DescribeBean(r.ctx, id)
	if err == nil && b == nil {
		err = errors.Newf("no descriptor for %s", id)
	}
	r.tried[id] = err
	if err != nil {
		return nil, false
	}
	r.beans[id] = b
	return b, true
}

func (r *run) enqueueRoot(ref source.TypeRef) error {
	if !ref.Named() {
		return errors.Newf("root %s is not a bean or enum reference", ref)
	}
	return r.enqueue(ref, "root")
}

// enqueue records a newly discovered named reference and assigns its symbol,
// unless it is an enum that will be inlined.
// Identities already discovered are ignored; the argument list of a generic
// reference does not make it distinct.
func (r *run) enqueue(ref source.TypeRef, origin string) error {
	id := ref.Identity
	if _, seen := r.byID[id]; seen {
		return nil
	}
	u := &unit{id: id}
	if ref.Kind == source.KindEnum {
		u.kind = unitEnum
	}
	if u.kind == unitEnum && r.settings.InlineEnums {
		// Inlined enums never declare a symbol.
		u.entry = r.names.Preview(id, origin)
	} else {
		entry, err := r.names.Assign(id, origin)
		if err != nil {
			return err
		}
		u.entry = entry
	}
	r.byID[id] = u
	r.byOrigin[id.String()] = u
	r.units = append(r.units, u)
	r.queue = append(r.queue, queued{ref: ref, origin: origin})
	return nil
}

// drain pops the queue until it is empty.
func (r *run) drain() error {
	for len(r.queue) > 0 {
		if err := r.ctx.Err(); err != nil {
			return errors.Wrap(err, "compilation interrupted")
		}
		item := r.queue[0]
		r.queue = r.queue[1:]

		u := r.byID[item.ref.Identity]
		var err error
		switch u.kind {
		case unitEnum:
			err = r.describeEnum(u)
		default:
			err = r.compileBean(u)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) describeEnum(u *unit) error {
	e, err := r.c.provider.DescribeEnum(r.ctx, u.id)
	if err == nil && e == nil {
		err = errors.Newf("no descriptor for %s", u.id)
	}
	if err != nil {
		r.introspectionFailed(u, err)
		return nil
	}
	u.enum = e
	r.logger.Debug("described enum",
		zap.Stringer("identity", u.id),
		zap.String("name", u.entry.Qualified()),
		zap.Stringer("provenance", u.entry.Provenance))
	return nil
}

func (r *run) introspectionFailed(u *unit, err error) {
	u.failed = true
	r.model.AddWarning(ir.Warning{
		Code:    diag.CodeIntrospectionFailure,
		Message: "skipped " + u.id.String() + ": " + err.Error(),
		Origin:  u.id.String(),
	})
	r.logger.Warn("introspection failed", zap.Stringer("identity", u.id), zap.Error(err))
}

// mapType runs the pipeline on ref, enqueues what it discovers and records
// unsupported references as warnings. where describes the reference site.
func (r *run) mapType(ref source.TypeRef, where string) (ir.Type, error) {
	res, err := r.c.pipeline.Map(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s", where)
	}
	for _, d := range res.Discovered {
		if err := r.enqueue(d, where); err != nil {
			return nil, err
		}
	}
	for _, u := range res.Unsupported {
		r.model.AddWarning(ir.Warning{
			Code:    diag.CodeUnsupportedType,
			Message: "unsupported type " + u.String() + "; using " + r.settings.UnknownType,
			Origin:  where,
		})
		r.logger.Warn("unsupported type", zap.Stringer("type", u), zap.String("site", where))
	}
	return res.Type, nil
}

func (r *run) finish(extra ...*ir.Type) (*ir.Model, error) {
	if err := r.finalize(extra...); err != nil {
		return nil, err
	}
	r.logger.Info("compilation finished",
		zap.Int("declarations", len(r.model.Declarations)),
		zap.Int("warnings", len(r.model.Warnings)))
	return r.model, nil
}
