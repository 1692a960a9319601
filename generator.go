// Package tsmodel compiles Go types into TypeScript declarations.
//
// A Generator ties the pieces together: an introspection provider describes
// types, the compiler turns them into a structural model, and the TypeScript
// emitter renders the model to a sink.
//
//	res, err := tsmodel.FromPackages("github.com/myorg/myapp/api").
//	    Roots("User", "Order").
//	    Settings(compiler.Settings{MapDate: "asDate"}).
//	    ToFile("./client/src/api/types.ts")
package tsmodel

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/tsmodel/compiler"
	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/mapping"
	"github.com/broady/tsmodel/provider"
	"github.com/broady/tsmodel/sink"
	"github.com/broady/tsmodel/source"
	"github.com/broady/tsmodel/typescript"
)

// Result is the outcome of a generation run.
type Result struct {
	// Model is the compiled model.
	Model *ir.Model

	// Files lists the written files.
	Files []typescript.OutputFile

	// Output is the rendered content when the run wrote to memory.
	Output []byte
}

// Warnings returns the model's non-fatal compilation issues.
func (r *Result) Warnings() []ir.Warning {
	if r == nil || r.Model == nil {
		return nil
	}
	return r.Model.Warnings
}

// Generator provides a fluent API for code generation.
// Create with FromPackages, FromDescriptors, FromTypes, FromProvider or
// FromConfig and configure with method chaining.
type Generator struct {
	cfg        Config
	provider   source.Provider
	roots      []source.TypeRef
	types      []any
	enums      [][]any
	strategies []mapping.Strategy
	logger     *zap.Logger
	validate   bool
}

// FromPackages creates a Generator that loads Go packages from source.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Provider: ProviderSource, Packages: patterns}, validate: true}
}

// FromDescriptors creates a Generator reading descriptor files.
func FromDescriptors(paths ...string) *Generator {
	return &Generator{cfg: Config{Provider: ProviderDescriptors, Descriptors: paths}, validate: true}
}

// FromTypes creates a Generator for runtime types. Pass zero values or typed
// nil pointers; each becomes a root:
//
//	tsmodel.FromTypes(User{}, (*Order)(nil)).Generate(ctx)
//
// Reflection sees no comments and no enum values. Register enums with Enum.
func FromTypes(values ...any) *Generator {
	return &Generator{types: values, validate: true}
}

// FromProvider creates a Generator over an existing provider and roots.
func FromProvider(p source.Provider, roots ...source.TypeRef) *Generator {
	return &Generator{provider: p, roots: roots, validate: true}
}

// FromConfig creates a Generator from a loaded configuration.
func FromConfig(cfg *Config) *Generator {
	return &Generator{cfg: *cfg, validate: true}
}

// Roots restricts compilation to the named types. Every provider accepts full
// identities ("github.com/myorg/myapp/api.User"); the source provider also
// accepts simple names.
func (g *Generator) Roots(names ...string) *Generator {
	g.cfg.Roots = append(g.cfg.Roots, names...)
	return g
}

// Enum registers the constants of one enum type for FromTypes generators.
func (g *Generator) Enum(values ...any) *Generator {
	g.enums = append(g.enums, values)
	return g
}

// Settings replaces the compiler settings.
func (g *Generator) Settings(s compiler.Settings) *Generator {
	g.cfg.Compiler = s
	return g
}

// TypeScript replaces the emitter configuration.
func (g *Generator) TypeScript(c typescript.Config) *Generator {
	g.cfg.TypeScript = c
	return g
}

// WithStrategies adds custom mapping strategies.
func (g *Generator) WithStrategies(s ...mapping.Strategy) *Generator {
	g.strategies = append(g.strategies, s...)
	return g
}

// Logger sets the logger used by the provider, compiler and generator.
func (g *Generator) Logger(l *zap.Logger) *Generator {
	g.logger = l
	return g
}

// SkipValidation emits the model even when Model.Validate reports problems.
func (g *Generator) SkipValidation() *Generator {
	g.validate = false
	return g
}

func (g *Generator) log() *zap.Logger {
	if g.logger == nil {
		return zap.NewNop()
	}
	return g.logger
}

// Compile builds the provider and compiles the roots into a model.
func (g *Generator) Compile(ctx context.Context) (*ir.Model, error) {
	p, roots, err := g.open(ctx)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, errors.WithHint(errors.New("no root types"),
			"name root types or point the provider at packages that declare exported types")
	}

	c, err := compiler.New(p, g.cfg.Compiler,
		compiler.WithLogger(g.log()),
		compiler.WithStrategies(g.strategies...))
	if err != nil {
		return nil, err
	}
	m, err := c.Compile(ctx, roots...)
	if err != nil {
		return nil, err
	}
	if g.validate {
		if errs := m.Validate(); len(errs) > 0 {
			return nil, errors.Wrap(errors.Join(errs...), "invalid model")
		}
	}
	return m, nil
}

// open builds the provider and resolves the roots.
func (g *Generator) open(ctx context.Context) (source.Provider, []source.TypeRef, error) {
	if g.provider != nil {
		return g.provider, g.roots, nil
	}

	if g.types != nil {
		r := provider.NewReflectionProvider()
		for _, values := range g.enums {
			if err := r.AddEnum(values...); err != nil {
				return nil, nil, err
			}
		}
		r.Add(g.types...)
		return r, r.Roots(), nil
	}

	cfg := g.cfg.withDefaults()
	switch cfg.Provider {
	case ProviderDescriptors:
		if len(cfg.Descriptors) == 0 {
			return nil, nil, errors.New("no descriptor files")
		}
		s, err := provider.LoadFiles(cfg.Descriptors...)
		if err != nil {
			return nil, nil, err
		}
		if len(cfg.Roots) == 0 {
			roots, err := s.Roots()
			return s, roots, err
		}
		roots := make([]source.TypeRef, 0, len(cfg.Roots))
		for _, name := range cfg.Roots {
			ref, ok := s.Ref(source.ParseIdentity(name))
			if !ok {
				return nil, nil, errors.Wrapf(provider.ErrNotFound, "root %s", name)
			}
			roots = append(roots, ref)
		}
		return s, roots, nil

	case ProviderSource:
		s, err := provider.LoadPackages(ctx, cfg.Packages, provider.WithSourceLogger(g.log()))
		if err != nil {
			return nil, nil, err
		}
		roots, err := s.Roots(cfg.Roots...)
		if err != nil {
			return nil, nil, err
		}
		return s, roots, nil
	}
	return nil, nil, errors.Newf("unknown provider: %q (expected %q or %q)", cfg.Provider, ProviderSource, ProviderDescriptors)
}

// WriteTo compiles and writes the generated file to out.
func (g *Generator) WriteTo(ctx context.Context, out sink.OutputSink) (*Result, error) {
	if err := g.cfg.TypeScript.Validate(); err != nil {
		return nil, err
	}
	if err := g.cfg.Compiler.Validate(); err != nil {
		return nil, err
	}

	m, err := g.Compile(ctx)
	if err != nil {
		return nil, err
	}
	res, err := typescript.Generate(ctx, m, out, g.cfg.TypeScript)
	if err != nil {
		return nil, err
	}

	logger := g.log()
	for _, w := range m.Warnings {
		logger.Warn(w.Message, zap.String("code", w.Code), zap.String("origin", w.Origin))
	}
	for _, f := range res.Files {
		logger.Info("wrote file", zap.String("path", f.Path), zap.Int64("size", f.Size))
	}
	return &Result{Model: m, Files: res.Files}, nil
}

// Generate returns the generated file in memory without writing to disk.
// Use ToFile or ToDir to write files instead.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	mem := sink.NewMemorySink()
	res, err := g.WriteTo(ctx, mem)
	if err != nil {
		return nil, err
	}
	res.Output = mem.Get(res.Files[0].Path)
	return res, nil
}

// ToDir generates the configured file name into dir.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	return g.WriteTo(context.Background(), sink.NewFilesystemSink(dir))
}

// ToFile generates into path, overriding the configured file name.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToFile(path string) (*Result, error) {
	g.cfg.TypeScript.FileName = filepath.Base(path)
	return g.ToDir(filepath.Dir(path))
}

// Generate runs the pipeline described by cfg and writes the result under
// cfg.OutDir.
func Generate(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return FromConfig(cfg).WriteTo(ctx, sink.NewFilesystemSink(cfg.withDefaults().OutDir))
}
