package provider

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/broady/tsmodel/source"
)

// ErrNotFound is returned when a provider has no descriptor for an identity.
var ErrNotFound = errors.New("descriptor not found")

// Descriptors is the file format read by LoadFile.
//
//	roots: [example.Person]
//	beans:
//	  - origin: {scope: example, name: Person}
//	    properties:
//	      - name: name
//	        type: {kind: primitive, identity: {name: string}}
//	enums:
//	  - origin: {scope: example, name: Direction}
//	    constants: [{name: A}, {name: B}]
type Descriptors struct {
	// Roots lists identity strings to compile. Empty means every bean and
	// enum in file order.
	Roots []string                 `json:"roots,omitempty" yaml:"roots,omitempty"`
	Beans []*source.BeanDescriptor `json:"beans,omitempty" yaml:"beans,omitempty"`
	Enums []*source.EnumDescriptor `json:"enums,omitempty" yaml:"enums,omitempty"`
}

// Static serves descriptors held in memory. It is the provider for
// descriptor files and for tests.
type Static struct {
	beans map[source.Identity]*source.BeanDescriptor
	enums map[source.Identity]*source.EnumDescriptor
	order []source.TypeRef
	roots []source.Identity
}

// NewStatic returns an empty Static provider.
func NewStatic() *Static {
	return &Static{
		beans: make(map[source.Identity]*source.BeanDescriptor),
		enums: make(map[source.Identity]*source.EnumDescriptor),
	}
}

// AddBean registers a bean descriptor, replacing any previous one.
func (s *Static) AddBean(b *source.BeanDescriptor) *Static {
	if _, ok := s.beans[b.Origin]; !ok {
		s.order = append(s.order, source.Bean(b.Origin))
	}
	s.beans[b.Origin] = b
	return s
}

// AddEnum registers an enum descriptor, replacing any previous one.
func (s *Static) AddEnum(e *source.EnumDescriptor) *Static {
	if _, ok := s.enums[e.Origin]; !ok {
		s.order = append(s.order, source.Enum(e.Origin))
	}
	s.enums[e.Origin] = e
	return s
}

// DescribeBean implements source.Provider.
func (s *Static) DescribeBean(_ context.Context, id source.Identity) (*source.BeanDescriptor, error) {
	if b, ok := s.beans[id]; ok {
		return b, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "bean %s", id)
}

// DescribeEnum implements source.Provider.
func (s *Static) DescribeEnum(_ context.Context, id source.Identity) (*source.EnumDescriptor, error) {
	if e, ok := s.enums[id]; ok {
		return e, nil
	}
	return nil, errors.Wrapf(ErrNotFound, "enum %s", id)
}

// Exists implements source.Resolver.
func (s *Static) Exists(id source.Identity) bool {
	_, bean := s.beans[id]
	_, enum := s.enums[id]
	return bean || enum
}

// Ref returns the reference kind matching a registered identity.
func (s *Static) Ref(id source.Identity) (source.TypeRef, bool) {
	if _, ok := s.enums[id]; ok {
		return source.Enum(id), true
	}
	if _, ok := s.beans[id]; ok {
		return source.Bean(id), true
	}
	return source.TypeRef{}, false
}

// Roots returns the configured roots, or every registered identity in
// registration order.
func (s *Static) Roots() ([]source.TypeRef, error) {
	if len(s.roots) == 0 {
		return append([]source.TypeRef(nil), s.order...), nil
	}
	out := make([]source.TypeRef, 0, len(s.roots))
	for _, id := range s.roots {
		ref, ok := s.Ref(id)
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "root %s", id)
		}
		out = append(out, ref)
	}
	return out, nil
}

// Add registers every descriptor of d.
func (s *Static) Add(d *Descriptors) *Static {
	for _, b := range d.Beans {
		s.AddBean(b)
	}
	for _, e := range d.Enums {
		s.AddEnum(e)
	}
	for _, r := range d.Roots {
		s.roots = append(s.roots, source.ParseIdentity(r))
	}
	return s
}

// LoadFile reads a descriptor file. The format is chosen by extension:
// .json is JSON, anything else YAML.
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening descriptor file")
	}
	defer f.Close()
	return Load(f, formatOf(path))
}

// LoadFiles merges several descriptor files into one provider.
func LoadFiles(paths ...string) (*Static, error) {
	s := NewStatic()
	for _, p := range paths {
		one, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		for _, ref := range one.order {
			if ref.Kind == source.KindEnum {
				s.AddEnum(one.enums[ref.Identity])
			} else {
				s.AddBean(one.beans[ref.Identity])
			}
		}
		s.roots = append(s.roots, one.roots...)
	}
	return s, nil
}

// Load decodes descriptors in format "json" or "yaml".
func Load(r io.Reader, format string) (*Static, error) {
	var d Descriptors
	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(err, "decoding JSON descriptors")
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "decoding YAML descriptors")
		}
	default:
		return nil, errors.Newf("unknown descriptor format %q", format)
	}
	for _, b := range d.Beans {
		if b == nil || b.Origin.Name == "" {
			return nil, errors.New("bean descriptor without origin")
		}
	}
	for _, e := range d.Enums {
		if e == nil || e.Origin.Name == "" {
			return nil, errors.New("enum descriptor without origin")
		}
	}
	return NewStatic().Add(&d), nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
