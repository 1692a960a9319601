// Package naming assigns collision-free output symbols to source identities.
package naming

import (
	"strings"
	"unicode"

	"github.com/broady/tsmodel/diag"
	"github.com/broady/tsmodel/source"
)

// Func is a user-supplied naming function. Returning ok=false means "no opinion":
// the default rule applies.
type Func func(id source.Identity) (name string, ok bool)

// Options configures symbol assignment.
type Options struct {
	AddPrefix    string
	AddSuffix    string
	RemovePrefix string
	RemoveSuffix string

	// Overrides maps an identity string ("scope.Name") or a bare simple name
	// to an explicit output name. Overrides always win.
	Overrides map[string]string

	// Func is evaluated before the default rule.
	Func Func

	// Namespaces maps each identity's scope path to nested namespace segments.
	Namespaces bool
}

// Provenance records which rule produced a name.
type Provenance int

const (
	ByDefault Provenance = iota
	ByFunc
	ByOverride
	Synthetic
)

// String returns the provenance name.
func (p Provenance) String() string {
	switch p {
	case ByDefault:
		return "default"
	case ByFunc:
		return "function"
	case ByOverride:
		return "override"
	case Synthetic:
		return "synthetic"
	}
	return "unknown"
}

// Entry is one assigned symbol.
type Entry struct {
	Identity   source.Identity
	Name       string
	Namespace  []string
	Provenance Provenance

	// Origin describes where the identity was first requested, for diagnostics.
	Origin string
}

// Qualified returns the namespace-qualified name.
func (e Entry) Qualified() string {
	if len(e.Namespace) == 0 {
		return e.Name
	}
	return strings.Join(e.Namespace, ".") + "." + e.Name
}

// Table is the symbol table of one compilation run. It is not safe for
// concurrent use.
type Table struct {
	opts       Options
	byIdentity map[source.Identity]*Entry
	byName     map[string]*Entry
	order      []*Entry
}

// NewTable returns an empty Table.
func NewTable(opts Options) *Table {
	return &Table{
		opts:       opts,
		byIdentity: make(map[source.Identity]*Entry),
		byName:     make(map[string]*Entry),
	}
}

// Assign returns the symbol of id, assigning it on first request. origin
// describes the requester and is kept for conflict diagnostics. Assigning a
// name already held by a different identity returns a *diag.NameConflictError.
func (t *Table) Assign(id source.Identity, origin string) (Entry, error) {
	if e, ok := t.byIdentity[id]; ok {
		return *e, nil
	}

	name, prov := t.resolve(id)
	e := &Entry{Identity: id, Name: name, Provenance: prov, Origin: origin}
	if t.opts.Namespaces {
		e.Namespace = Namespace(id.Scope)
	}
	if err := t.claim(e); err != nil {
		return Entry{}, err
	}
	t.byIdentity[id] = e
	return *e, nil
}

// Preview returns the symbol id would be assigned without claiming it, for
// identities that never produce a declaration.
func (t *Table) Preview(id source.Identity, origin string) Entry {
	if e, ok := t.byIdentity[id]; ok {
		return *e
	}
	name, prov := t.resolve(id)
	e := Entry{Identity: id, Name: name, Provenance: prov, Origin: origin}
	if t.opts.Namespaces {
		e.Namespace = Namespace(id.Scope)
	}
	return e
}

// AssignSynthetic reserves a generated symbol (such as a tagged-union alias)
// in the namespace of owner. The symbol is keyed by a synthetic identity so it
// participates in conflict detection.
func (t *Table) AssignSynthetic(owner source.Identity, name, origin string) (Entry, error) {
	id := source.Identity{Scope: owner.Scope, Name: name}
	if e, ok := t.byIdentity[id]; ok && e.Provenance == Synthetic {
		return *e, nil
	}
	e := &Entry{Identity: id, Name: name, Provenance: Synthetic, Origin: origin}
	if t.opts.Namespaces {
		e.Namespace = Namespace(owner.Scope)
	}
	if err := t.claim(e); err != nil {
		return Entry{}, err
	}
	t.byIdentity[id] = e
	return *e, nil
}

func (t *Table) claim(e *Entry) error {
	key := e.Qualified()
	if prev, taken := t.byName[key]; taken {
		return diag.NewNameConflict(key, describe(prev), describe(e))
	}
	t.byName[key] = e
	t.order = append(t.order, e)
	return nil
}

func describe(e *Entry) string {
	if e.Origin == "" {
		return e.Identity.String()
	}
	return e.Identity.String() + " (" + e.Origin + ")"
}

// Lookup returns the entry of an already assigned identity.
func (t *Table) Lookup(id source.Identity) (Entry, bool) {
	e, ok := t.byIdentity[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns all assignments in assignment order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	for i, e := range t.order {
		out[i] = *e
	}
	return out
}

// resolve applies override, then function, then the default rule.
func (t *Table) resolve(id source.Identity) (string, Provenance) {
	if name, ok := t.opts.Overrides[id.String()]; ok && name != "" {
		return name, ByOverride
	}
	if name, ok := t.opts.Overrides[id.Name]; ok && name != "" && id.Scope == "" {
		return name, ByOverride
	}
	if t.opts.Func != nil {
		if name, ok := t.opts.Func(id); ok && name != "" {
			return name, ByFunc
		}
	}
	return t.defaultName(id.Name), ByDefault
}

// defaultName strips then adds the configured prefix and suffix.
func (t *Table) defaultName(simple string) string {
	name := simple
	if t.opts.RemovePrefix != "" {
		name = strings.TrimPrefix(name, t.opts.RemovePrefix)
	}
	if t.opts.RemoveSuffix != "" {
		name = strings.TrimSuffix(name, t.opts.RemoveSuffix)
	}
	return t.opts.AddPrefix + name + t.opts.AddSuffix
}

// Namespace splits a scope path into sanitized namespace segments.
// "example.com/api/v1" gives ["example", "com", "api", "v1"].
func Namespace(scope string) []string {
	if scope == "" {
		return nil
	}
	parts := strings.FieldsFunc(scope, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, SanitizeSegment(p))
	}
	return out
}

// SanitizeSegment makes s a valid identifier: invalid characters become '_',
// a leading digit gets a '_' prefix, and reserved words are escaped with a
// leading '_'.
func SanitizeSegment(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range s {
		if i == 0 && unicode.IsDigit(r) {
			b.WriteRune('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()
	if IsReserved(out) {
		return "_" + out
	}
	return out
}
