package provider

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/broady/tsmodel/source"
)

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// ReflectionProvider describes types using runtime reflection. It sees no comments,
// directives or type parameters: instantiated generic types are described
// as independent beans, and enums must be registered with their values.
type ReflectionProvider struct {
	mu    sync.Mutex
	types map[source.Identity]reflect.Type
	enums map[source.Identity]*source.EnumDescriptor
	roots []source.TypeRef
}

// NewReflectionProvider returns an empty ReflectionProvider.
func NewReflectionProvider() *ReflectionProvider {
	return &ReflectionProvider{
		types: make(map[source.Identity]reflect.Type),
		enums: make(map[source.Identity]*source.EnumDescriptor),
	}
}

// Add registers the types of values as roots. Pass zero values or typed nil
// pointers: Add((*User)(nil)).
func (r *ReflectionProvider) Add(values ...any) *ReflectionProvider {
	for _, v := range values {
		r.AddType(reflect.TypeOf(v))
	}
	return r
}

// AddType registers t as a root and returns its reference.
func (r *ReflectionProvider) AddType(t reflect.Type) source.TypeRef {
	ref := r.Ref(t)
	ref.Nullable = false
	if ref.Named() {
		r.mu.Lock()
		r.roots = append(r.roots, ref)
		r.mu.Unlock()
	}
	return ref
}

// AddEnum registers the constants of an enum type. All values must share one
// defined type. Constants are named by their String method when they have one.
func (r *ReflectionProvider) AddEnum(values ...any) error {
	if len(values) == 0 {
		return errors.New("enum without values")
	}
	t := reflect.TypeOf(values[0])
	if t.Name() == "" || t.PkgPath() == "" {
		return errors.Newf("enum values must have a defined type, got %s", t)
	}
	id := reflectIdentity(t)
	desc := &source.EnumDescriptor{Origin: id}
	for _, v := range values {
		if reflect.TypeOf(v) != t {
			return errors.Newf("enum %s: value %v has type %T", id, v, v)
		}
		desc.Constants = append(desc.Constants, source.EnumConstant{
			Name:  constantName(v),
			Value: enumValue(reflect.ValueOf(v)),
		})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[id] = desc
	r.types[id] = t
	return nil
}

func constantName(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func enumValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

// Roots returns the registered roots in registration order.
func (r *ReflectionProvider) Roots() []source.TypeRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]source.TypeRef(nil), r.roots...)
}

// Exists implements source.Resolver.
func (r *ReflectionProvider) Exists(id source.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.types[id]
	return ok
}

// DescribeBean implements source.Provider.
func (r *ReflectionProvider) DescribeBean(ctx context.Context, id source.Identity) (*source.BeanDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	t, ok := r.types[id]
	r.mu.Unlock()
	if !ok || t.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrNotFound, "bean %s", id)
	}

	desc := &source.BeanDescriptor{Origin: id}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, opts := jsonTag(string(field.Tag))
		if name == "-" && len(opts) == 0 {
			continue
		}
		if field.Anonymous && name == "" {
			ref := r.Ref(field.Type)
			if ref.Kind == source.KindBean {
				ref.Nullable = false
				if desc.Parent == nil {
					desc.Parent = &ref
				} else {
					desc.Interfaces = append(desc.Interfaces, ref)
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		desc.Properties = append(desc.Properties, source.PropertyDescriptor{
			Name:     name,
			Type:     r.Ref(field.Type),
			Optional: hasOption(opts, "omitempty") || hasOption(opts, "omitzero"),
			Order:    i,
		})
	}
	return desc, nil
}

func hasOption(opts []string, name string) bool {
	for _, o := range opts {
		if o == name {
			return true
		}
	}
	return false
}

// DescribeEnum implements source.Provider.
func (r *ReflectionProvider) DescribeEnum(_ context.Context, id source.Identity) (*source.EnumDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.enums[id]; ok {
		return e, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "enum %s", id)
}

// Ref maps t to a type reference, registering the named struct types it
// mentions.
func (r *ReflectionProvider) Ref(t reflect.Type) source.TypeRef {
	switch {
	case t.PkgPath() == "time" && t.Name() == "Time":
		return source.Primitive("time.Time")
	case t.PkgPath() == "time" && t.Name() == "Duration":
		return source.Primitive("int64")
	case t.PkgPath() == "encoding/json" && t.Name() == "Number":
		return source.Primitive("string")
	case t.PkgPath() == "encoding/json" && t.Name() == "RawMessage":
		return source.Primitive("any")
	}
	if t.Name() != "" && t.Kind() != reflect.Pointer {
		if t.Implements(jsonMarshalerType) || reflect.PointerTo(t).Implements(jsonMarshalerType) {
			return source.Primitive("any")
		}
		if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
			return source.Primitive("string")
		}
	}

	id := reflectIdentity(t)
	r.mu.Lock()
	_, isEnum := r.enums[id]
	r.mu.Unlock()
	if isEnum {
		return source.Enum(id)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return r.Ref(t.Elem()).AsNullable(true)
	case reflect.Bool:
		return source.Primitive("bool")
	case reflect.String:
		return source.Primitive("string")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return source.Primitive(t.Kind().String())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return source.Primitive("bytes")
		}
		return source.List(r.Ref(t.Elem()))
	case reflect.Array:
		return source.ArrayOf(r.Ref(t.Elem()))
	case reflect.Map:
		return source.Map(r.Ref(t.Key()), r.Ref(t.Elem()))
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return source.Primitive("any")
		}
	case reflect.Func:
		sig := source.Signature{}
		for i := 0; i < t.NumIn(); i++ {
			sig.Params = append(sig.Params, source.Param{Type: r.Ref(t.In(i))})
		}
		n := t.NumOut()
		if n > 0 && t.Out(n-1) == reflect.TypeFor[error]() {
			n--
		}
		if n == 1 {
			res := r.Ref(t.Out(0))
			sig.Result = &res
		}
		if t.Name() == "" {
			return source.Func(source.Identity{}, sig)
		}
		return source.Func(id, sig)
	case reflect.Struct:
		if t.Name() == "" {
			return source.Unsupported(t.String())
		}
		r.mu.Lock()
		r.types[id] = t
		r.mu.Unlock()
		return source.Bean(id)
	}
	return source.Unsupported(t.String())
}

// reflectIdentity names a runtime type. Instantiated generic types get a
// synthetic name built from their arguments: Page[example.User] is PageUser.
func reflectIdentity(t reflect.Type) source.Identity {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		base := name[:i]
		args := strings.FieldsFunc(name[i+1:len(name)-1], func(r rune) bool { return r == ',' || r == ' ' })
		var b strings.Builder
		b.WriteString(base)
		for _, a := range args {
			a = strings.TrimLeft(a, "*[]")
			if j := strings.LastIndexAny(a, "./"); j >= 0 {
				a = a[j+1:]
			}
			if a != "" {
				b.WriteString(strings.ToUpper(a[:1]) + a[1:])
			}
		}
		name = b.String()
	}
	return source.ID(t.PkgPath(), name)
}
