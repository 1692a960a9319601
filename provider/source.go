// Package provider implements source.Provider introspection layers: one that
// analyzes Go source code with go/packages, one that reflects over runtime
// types, and a static provider serving descriptors loaded from files.
//
// The Go providers describe a program the way encoding/json sees it. Exported
// struct fields become properties named by their json tag, fields tagged
// omitempty or omitzero are optional, pointers are nullable, and embedded
// structs without a json tag become supertypes (the first is the parent, the
// rest are interfaces). A defined type with typed constants is an enum.
//
// Doc comments may carry directives:
//
//	//tsmodel:discriminator <property> <Member>[=<tag>] ...
//	//tsmodel:tag <literal>
//	//tsmodel:abstract
//
// A discriminator on an interface type makes it the root of a polymorphic
// family; the listed members are treated as implementing it.
package provider

import (
	"context"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/broady/tsmodel/internal/directive"
	"github.com/broady/tsmodel/source"
)

// SourceProvider describes types by analyzing Go source code.
type SourceProvider struct {
	pkgs   []*packages.Package
	logger *zap.Logger

	// docs holds the doc comment of each type, field and constant, keyed by
	// the position of its name.
	docs map[token.Pos]*ast.CommentGroup

	mu      sync.Mutex
	objects map[source.Identity]*types.TypeName

	// dirs holds the parsed directives of each type that has any.
	dirs map[*types.TypeName]directive.Set

	// memberOf lists the discriminated interfaces a struct was registered with.
	memberOf map[source.Identity][]source.Identity
}

// SourceOption configures a SourceProvider.
type SourceOption func(*SourceProvider)

// WithSourceLogger sets the logger used while loading packages.
func WithSourceLogger(l *zap.Logger) SourceOption {
	return func(p *SourceProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// LoadPackages loads and type-checks the packages matching patterns.
func LoadPackages(ctx context.Context, patterns []string, opts ...SourceOption) (*SourceProvider, error) {
	if len(patterns) == 0 {
		return nil, errors.New("no packages specified")
	}
	p := &SourceProvider{
		logger:   zap.NewNop(),
		docs:     make(map[token.Pos]*ast.CommentGroup),
		objects:  make(map[source.Identity]*types.TypeName),
		dirs:     make(map[*types.TypeName]directive.Set),
		memberOf: make(map[source.Identity][]source.Identity),
	}
	for _, opt := range opts {
		opt(p)
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "loading packages")
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages match %v", patterns)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Newf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	p.pkgs = pkgs

	for _, pkg := range pkgs {
		p.index(pkg)
	}
	p.logger.Debug("loaded packages", zap.Strings("patterns", patterns), zap.Int("packages", len(pkgs)))
	return p, nil
}

// index records every type name of pkg, the doc comments of its declarations
// and its family registrations.
func (p *SourceProvider) index(pkg *packages.Package) {
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		if tn, ok := scope.Lookup(name).(*types.TypeName); ok && !tn.IsAlias() {
			p.objects[identityOf(tn)] = tn
		}
	}

	for _, file := range pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			gd, ok := n.(*ast.GenDecl)
			if !ok {
				return true
			}
			for _, spec := range gd.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					doc := s.Doc
					if doc == nil && len(gd.Specs) == 1 {
						doc = gd.Doc
					}
					p.docs[s.Name.Pos()] = doc
					if st, ok := s.Type.(*ast.StructType); ok {
						for _, f := range st.Fields.List {
							for _, n := range f.Names {
								p.docs[n.Pos()] = fieldDoc(f)
							}
						}
					}
				case *ast.ValueSpec:
					doc := s.Doc
					if doc == nil {
						doc = s.Comment
					}
					for _, n := range s.Names {
						p.docs[n.Pos()] = doc
					}
				}
			}
			return false
		})
	}

	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		set, err := directive.Parse(pkg.Fset, p.docs[tn.Pos()])
		if err != nil {
			p.logger.Warn("ignoring malformed directives", zap.String("type", name), zap.Error(err))
		}
		if set.Empty() {
			continue
		}
		p.dirs[tn] = set
		d := p.directives(tn).discriminator
		if d == nil {
			continue
		}
		root := identityOf(tn)
		for _, m := range d.Members {
			p.memberOf[m.Identity] = append(p.memberOf[m.Identity], root)
		}
	}
}

func fieldDoc(f *ast.Field) *ast.CommentGroup {
	if f.Doc != nil {
		return f.Doc
	}
	return f.Comment
}

// Roots returns references to the named types, or to every exported struct,
// enum and discriminated interface of the loaded packages when names is empty.
// Names are simple names or qualified "path.Name" identities.
func (p *SourceProvider) Roots(names ...string) ([]source.TypeRef, error) {
	if len(names) > 0 {
		out := make([]source.TypeRef, 0, len(names))
		for _, n := range names {
			tn := p.find(n)
			if tn == nil {
				return nil, errors.Wrapf(ErrNotFound, "type %s", n)
			}
			out = append(out, p.rootRef(tn))
		}
		return out, nil
	}

	var out []source.TypeRef
	for _, pkg := range p.pkgs {
		var tns []*types.TypeName
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			tns = append(tns, tn)
		}
		sort.SliceStable(tns, func(i, j int) bool { return tns[i].Pos() < tns[j].Pos() })
		for _, tn := range tns {
			ref := p.rootRef(tn)
			if ref.Named() {
				out = append(out, ref)
			}
		}
	}
	return out, nil
}

func (p *SourceProvider) find(name string) *types.TypeName {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tn, ok := p.objects[source.ParseIdentity(name)]; ok {
		return tn
	}
	for _, pkg := range p.pkgs {
		if tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName); ok {
			return tn
		}
	}
	return nil
}

// rootRef references a declared type. Generic types are referenced raw, with
// their own parameters as arguments.
func (p *SourceProvider) rootRef(tn *types.TypeName) source.TypeRef {
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return source.TypeRef{}
	}
	ref := p.namedRef(named)
	if tps := named.TypeParams(); tps != nil {
		ref.Args = nil
		for i := 0; i < tps.Len(); i++ {
			ref.Args = append(ref.Args, source.Var(tps.At(i).Obj().Name()))
		}
	}
	return ref
}

// Exists implements source.Resolver.
func (p *SourceProvider) Exists(id source.Identity) bool {
	return p.lookup(id) != nil
}

func (p *SourceProvider) lookup(id source.Identity) *types.TypeName {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.objects[id]
}

func (p *SourceProvider) remember(tn *types.TypeName) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[identityOf(tn)] = tn
}

// DescribeBean implements source.Provider.
func (p *SourceProvider) DescribeBean(_ context.Context, id source.Identity) (*source.BeanDescriptor, error) {
	tn := p.lookup(id)
	if tn == nil {
		return nil, errors.Wrapf(ErrNotFound, "bean %s", id)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, errors.Newf("%s is not a defined type", id)
	}

	dirs := p.directives(tn)
	desc := &source.BeanDescriptor{
		Origin:       id,
		Discriminant: dirs.discriminator,
		Tag:          dirs.tag,
		Abstract:     dirs.abstract,
		Comments:     p.comments(tn.Pos()),
	}
	if tps := named.TypeParams(); tps != nil {
		for i := 0; i < tps.Len(); i++ {
			desc.TypeParams = append(desc.TypeParams, tps.At(i).Obj().Name())
		}
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		if err := p.describeStruct(desc, u); err != nil {
			return nil, errors.Wrapf(err, "describing %s", id)
		}
	case *types.Interface:
		desc.Interface = true
	default:
		return nil, errors.Newf("%s is not a struct or interface", id)
	}

	for _, root := range p.memberOf[id] {
		ref := source.Bean(root)
		if !slices.ContainsFunc(desc.Supertypes(), ref.Equal) {
			desc.Interfaces = append(desc.Interfaces, ref)
		}
	}
	return desc, nil
}

func (p *SourceProvider) describeStruct(desc *source.BeanDescriptor, st *types.Struct) error {
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() && !field.Embedded() {
			continue
		}
		name, opts := jsonTag(st.Tag(i))
		if name == "-" && len(opts) == 0 {
			continue
		}

		if field.Embedded() && name == "" {
			ref := p.convert(field.Type())
			if ref.Kind == source.KindBean {
				ref.Nullable = false
				if desc.Parent == nil {
					desc.Parent = &ref
				} else {
					desc.Interfaces = append(desc.Interfaces, ref)
				}
				continue
			}
			if !field.Exported() {
				continue
			}
		}

		if name == "" {
			name = field.Name()
		}
		desc.Properties = append(desc.Properties, source.PropertyDescriptor{
			Name:     name,
			Type:     p.convert(field.Type()),
			Optional: slices.Contains(opts, "omitempty") || slices.Contains(opts, "omitzero"),
			Comments: p.comments(field.Pos()),
			Order:    i,
		})
	}
	return nil
}

// DescribeEnum implements source.Provider.
func (p *SourceProvider) DescribeEnum(_ context.Context, id source.Identity) (*source.EnumDescriptor, error) {
	tn := p.lookup(id)
	if tn == nil {
		return nil, errors.Wrapf(ErrNotFound, "enum %s", id)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, errors.Newf("%s is not a defined type", id)
	}
	consts := enumConstants(named)
	if len(consts) == 0 {
		return nil, errors.Newf("%s has no constants", id)
	}
	desc := &source.EnumDescriptor{Origin: id, Comments: p.comments(tn.Pos())}
	for _, c := range consts {
		desc.Constants = append(desc.Constants, source.EnumConstant{
			Name:     c.Name(),
			Value:    constantValue(c.Val()),
			Comments: p.comments(c.Pos()),
		})
	}
	return desc, nil
}

// enumConstants returns the constants of type named in declaration order.
func enumConstants(named *types.Named) []*types.Const {
	if _, ok := named.Underlying().(*types.Basic); !ok {
		return nil
	}
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return nil
	}
	var out []*types.Const
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), named) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos() < out[j].Pos() })
	return out
}

// constantValue converts a constant to string, int64, float64 or bool.
func constantValue(v constant.Value) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		i64, _ := constant.Int64Val(v)
		return i64
	case constant.Float:
		f64, _ := constant.Float64Val(v)
		return f64
	case constant.Bool:
		return constant.BoolVal(v)
	default:
		return v.String()
	}
}

// convert maps a Go type to a type reference as encoding/json serializes it.
func (p *SourceProvider) convert(t types.Type) source.TypeRef {
	switch typ := t.(type) {
	case *types.Alias:
		return p.convert(types.Unalias(typ))

	case *types.Basic:
		return basicRef(typ)

	case *types.Pointer:
		return p.convert(typ.Elem()).AsNullable(true)

	case *types.Slice:
		if b, ok := typ.Elem().(*types.Basic); ok && b.Kind() == types.Byte {
			return source.Primitive("bytes")
		}
		return source.List(p.convert(typ.Elem()))

	case *types.Array:
		return source.ArrayOf(p.convert(typ.Elem()))

	case *types.Map:
		return source.Map(p.convert(typ.Key()), p.convert(typ.Elem()))

	case *types.TypeParam:
		return source.Var(typ.Obj().Name())

	case *types.Interface:
		if typ.Empty() {
			return source.Primitive("any")
		}
		return source.Unsupported(typ.String())

	case *types.Signature:
		return source.Func(source.Identity{}, p.signature(typ))

	case *types.Named:
		return p.namedRef(typ)
	}
	return source.Unsupported(t.String())
}

func basicRef(b *types.Basic) source.TypeRef {
	switch {
	case b.Info()&types.IsBoolean != 0:
		return source.Primitive("bool")
	case b.Info()&types.IsString != 0:
		return source.Primitive("string")
	case b.Info()&(types.IsInteger|types.IsFloat) != 0:
		return source.Primitive(b.Name())
	}
	return source.Unsupported(b.String())
}

// namedRef maps a defined type. Well-known types and types with custom
// marshalers are primitives; structs and interfaces are beans.
func (p *SourceProvider) namedRef(named *types.Named) source.TypeRef {
	obj := named.Obj()
	if obj.Pkg() == nil {
		// Universe types: error, comparable.
		return source.Unsupported(obj.Name())
	}
	switch obj.Pkg().Path() + "." + obj.Name() {
	case "time.Time":
		return source.Primitive("time.Time")
	case "time.Duration":
		return source.Primitive("int64")
	}
	if hasMarshaler(named, "MarshalJSON") {
		return source.Primitive("any")
	}
	if hasMarshaler(named, "MarshalText") {
		return source.Primitive("string")
	}

	origin := named.Origin().Obj()
	p.remember(origin)
	id := identityOf(origin)

	switch u := named.Underlying().(type) {
	case *types.Struct:
		ref := source.Bean(id)
		if args := named.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				ref.Args = append(ref.Args, p.convert(args.At(i)))
			}
		}
		return ref
	case *types.Interface:
		if p.directives(origin).discriminator != nil {
			return source.Bean(id)
		}
		if u.Empty() {
			return source.Primitive("any")
		}
		return source.Unsupported(named.String())
	case *types.Basic:
		if len(enumConstants(named)) > 0 {
			return source.Enum(id)
		}
		return basicRef(u)
	case *types.Signature:
		return source.Func(id, p.signature(u))
	}
	return p.convert(named.Underlying())
}

// signature maps a function type. A trailing error result is dropped.
func (p *SourceProvider) signature(sig *types.Signature) source.Signature {
	var out source.Signature
	for i := 0; i < sig.Params().Len(); i++ {
		v := sig.Params().At(i)
		out.Params = append(out.Params, source.Param{Name: v.Name(), Type: p.convert(v.Type())})
	}
	results := sig.Results()
	n := results.Len()
	if n > 0 && types.Identical(results.At(n-1).Type(), types.Universe.Lookup("error").Type()) {
		n--
	}
	if n == 1 {
		r := p.convert(results.At(0).Type())
		out.Result = &r
	}
	return out
}

// hasMarshaler reports whether named or its pointer has a method name() ([]byte, error).
func hasMarshaler(named *types.Named, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(named, true, named.Obj().Pkg(), name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 0 && sig.Results().Len() == 2
}

func identityOf(tn *types.TypeName) source.Identity {
	if tn.Pkg() == nil {
		return source.Identity{Name: tn.Name()}
	}
	return source.ID(tn.Pkg().Path(), tn.Name())
}

// comments returns the doc comment lines at pos, without directives.
func (p *SourceProvider) comments(pos token.Pos) []string {
	cg := p.docs[pos]
	if cg == nil {
		return nil
	}
	text := strings.TrimSpace(cg.Text())
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

type directiveSet struct {
	discriminator *source.DiscriminantInfo
	tag           string
	abstract      bool
}

// directives returns the directives of a type. Member names without a path
// resolve in the type's own package.
func (p *SourceProvider) directives(tn *types.TypeName) directiveSet {
	set := p.dirs[tn]
	d := directiveSet{tag: set.Tag, abstract: set.Abstract}
	if set.Discriminator == nil {
		return d
	}
	info := &source.DiscriminantInfo{Property: set.Discriminator.Property}
	for _, m := range set.Discriminator.Members {
		id := source.ParseIdentity(m.Name)
		if id.Scope == "" && tn.Pkg() != nil {
			id.Scope = tn.Pkg().Path()
		}
		info.Members = append(info.Members, source.DiscriminantMember{Tag: m.Tag, Identity: id})
	}
	d.discriminator = info
	return d
}

// jsonTag splits the json struct tag into its name and options.
func jsonTag(tag string) (string, []string) {
	v, ok := reflect.StructTag(tag).Lookup("json")
	if !ok {
		return "", nil
	}
	parts := strings.Split(v, ",")
	return parts[0], parts[1:]
}
