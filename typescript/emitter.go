// Package typescript renders a compiled ir.Model as TypeScript declarations.
// The emitter performs no type resolution: every name, optionality and union
// comes from the model as compiled.
package typescript

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/tsmodel/ir"
)

// Emitter handles TypeScript code emission for compiled models.
type Emitter struct {
	config Config
}

// NewEmitter returns an Emitter for cfg with defaults applied.
func NewEmitter(cfg Config) *Emitter {
	return &Emitter{config: cfg.WithDefaults()}
}

// Emit writes the header and every declaration of m to buf. Declarations
// that share a namespace are grouped into one namespace block, placed where
// the namespace first appears.
func (e *Emitter) Emit(buf *bytes.Buffer, m *ir.Model) error {
	if !e.config.OmitHeader {
		header := e.config.Header
		if header == "" {
			header = DefaultHeader
		}
		buf.WriteString(strings.TrimRight(header, "\n"))
		buf.WriteString("\n\n")
	}

	for i, g := range groupByNamespace(m.Declarations) {
		if i > 0 {
			buf.WriteString("\n")
		}
		if len(g.namespace) == 0 {
			for j, d := range g.decls {
				if j > 0 {
					buf.WriteString("\n")
				}
				if err := e.EmitDeclaration(buf, d, e.topLevelModifier(), ""); err != nil {
					return err
				}
			}
			continue
		}

		buf.WriteString(e.topLevelModifier())
		buf.WriteString("namespace ")
		buf.WriteString(escapeQualified(strings.Join(g.namespace, ".")))
		buf.WriteString(" {\n")
		for j, d := range g.decls {
			if j > 0 {
				buf.WriteString("\n")
			}
			if err := e.EmitDeclaration(buf, d, "export ", e.config.Indent); err != nil {
				return err
			}
		}
		buf.WriteString("}\n")
	}
	return nil
}

func (e *Emitter) topLevelModifier() string {
	switch e.config.OutputKind {
	case OutputGlobal:
		return ""
	case OutputAmbient:
		return "declare "
	default:
		return "export "
	}
}

type namespaceGroup struct {
	namespace []string
	decls     []ir.Declaration
}

func groupByNamespace(decls []ir.Declaration) []*namespaceGroup {
	var groups []*namespaceGroup
	index := make(map[string]*namespaceGroup)
	for _, d := range decls {
		key := strings.Join(d.DeclNamespace(), ".")
		g, ok := index[key]
		if !ok {
			g = &namespaceGroup{namespace: d.DeclNamespace()}
			index[key] = g
			groups = append(groups, g)
		}
		g.decls = append(g.decls, d)
	}
	return groups
}

// EmitDeclaration writes one declaration, terminated by a newline. modifier
// ("export ", "declare " or "") precedes the declaration keyword and indent
// prefixes every line.
func (e *Emitter) EmitDeclaration(buf *bytes.Buffer, d ir.Declaration, modifier, indent string) error {
	if !e.config.OmitComments {
		e.emitJSDoc(buf, d.Doc(), indent)
	}

	var err error
	switch d := d.(type) {
	case *ir.InterfaceDecl:
		err = e.emitInterface(buf, d, modifier, indent)
	case *ir.EnumDecl:
		err = e.emitEnum(buf, d, modifier, indent)
	case *ir.AliasDecl:
		err = e.emitAlias(buf, d, modifier, indent)
	default:
		err = errors.Newf("unsupported declaration kind: %s", d.DeclKind())
	}
	if err != nil {
		return errors.Wrapf(err, "emitting %s", ir.QualifiedName(d))
	}
	return nil
}

// emitInterface emits an object declaration as an interface or type.
func (e *Emitter) emitInterface(buf *bytes.Buffer, d *ir.InterfaceDecl, modifier, indent string) error {
	buf.WriteString(indent)
	buf.WriteString(modifier)

	var extends []string
	for _, ext := range d.Extends {
		s, err := e.TypeExpr(ext)
		if err != nil {
			return errors.Wrap(err, "extends clause")
		}
		extends = append(extends, s)
	}

	if e.config.UseTypeAliases {
		buf.WriteString("type ")
		buf.WriteString(escapeReservedWord(d.Name))
		buf.WriteString(typeParameters(d.TypeParams))
		buf.WriteString(" = ")
		for _, ext := range extends {
			buf.WriteString(ext)
			buf.WriteString(" & ")
		}
	} else {
		buf.WriteString("interface ")
		buf.WriteString(escapeReservedWord(d.Name))
		buf.WriteString(typeParameters(d.TypeParams))
		buf.WriteString(" ")
		if len(extends) > 0 {
			buf.WriteString("extends ")
			buf.WriteString(strings.Join(extends, ", "))
			buf.WriteString(" ")
		}
	}
	buf.WriteString("{\n")

	inner := indent + e.config.Indent
	for _, p := range d.Properties {
		if !e.config.OmitComments {
			e.emitJSDoc(buf, p.Documentation, inner)
		}
		buf.WriteString(inner)
		buf.WriteString(memberName(p.Name))
		if p.Type != nil && p.Type.IsOptional() {
			buf.WriteString("?")
		}
		buf.WriteString(": ")
		s, err := e.TypeExpr(p.Type)
		if err != nil {
			return errors.Wrapf(err, "property %s", p.Name)
		}
		buf.WriteString(s)
		buf.WriteString(";\n")
	}

	buf.WriteString(indent)
	if e.config.UseTypeAliases {
		buf.WriteString("};\n")
	} else {
		buf.WriteString("}\n")
	}
	return nil
}

// emitAlias emits a type alias.
func (e *Emitter) emitAlias(buf *bytes.Buffer, d *ir.AliasDecl, modifier, indent string) error {
	def, err := e.TypeExpr(d.Definition)
	if err != nil {
		return err
	}
	buf.WriteString(indent)
	buf.WriteString(modifier)
	buf.WriteString("type ")
	buf.WriteString(escapeReservedWord(d.Name))
	buf.WriteString(typeParameters(d.TypeParams))
	buf.WriteString(" = ")
	buf.WriteString(def)
	buf.WriteString(";\n")
	return nil
}

// emitEnum emits an enum declaration. Numeric enums carry the values the
// compiler assigned, so both styles render explicit initializers.
func (e *Emitter) emitEnum(buf *bytes.Buffer, d *ir.EnumDecl, modifier, indent string) error {
	buf.WriteString(indent)
	buf.WriteString(modifier)
	if e.config.ConstEnums {
		buf.WriteString("const ")
	}
	buf.WriteString("enum ")
	buf.WriteString(escapeReservedWord(d.Name))
	buf.WriteString(" {\n")

	inner := indent + e.config.Indent
	for _, m := range d.Members {
		if !e.config.OmitComments {
			e.emitJSDoc(buf, m.Documentation, inner)
		}
		switch m.Value.(type) {
		case string, int64, float64:
		default:
			return errors.Newf("enum member %s has unsupported value %v", m.Name, m.Value)
		}
		buf.WriteString(inner)
		buf.WriteString(memberName(m.Name))
		buf.WriteString(" = ")
		buf.WriteString(formatLiteral(m.Value))
		buf.WriteString(",\n")
	}

	buf.WriteString(indent)
	buf.WriteString("}\n")
	return nil
}

// TypeExpr renders a type expression.
func (e *Emitter) TypeExpr(t ir.Type) (string, error) {
	switch t := t.(type) {
	case nil:
		return "", errors.New("missing type")
	case *ir.Basic:
		return t.Name, nil
	case *ir.Literal:
		return formatLiteral(t.Value), nil
	case *ir.FreeVariable:
		return t.Name, nil
	case *ir.Structural:
		return e.reference(t.Name, t.Args)
	case *ir.Enum:
		if t.Name == "" {
			return e.literalUnion(t.Literals), nil
		}
		return escapeQualified(t.Name), nil
	case *ir.Alias:
		return escapeQualified(t.Name), nil
	case *ir.Array:
		return e.array(t)
	case *ir.IndexedMap:
		return e.indexedMap(t)
	case *ir.Union:
		return e.union(t)
	case *ir.Function:
		return e.function(t)
	default:
		return "", errors.Newf("unsupported type expression: %s", t.Kind())
	}
}

func (e *Emitter) reference(name string, args []ir.Type) (string, error) {
	name = escapeQualified(name)
	if len(args) == 0 {
		return name, nil
	}
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := e.TypeExpr(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return name + "<" + strings.Join(parts, ", ") + ">", nil
}

func (e *Emitter) literalUnion(lits []*ir.Literal) string {
	if len(lits) == 0 {
		return "never"
	}
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = formatLiteral(l.Value)
	}
	return strings.Join(parts, " | ")
}

// array emits T[], parenthesizing element types that would otherwise bind
// looser than the brackets.
func (e *Emitter) array(a *ir.Array) (string, error) {
	elem, err := e.TypeExpr(a.Element)
	if err != nil {
		return "", err
	}
	if needsParens(a.Element) || strings.HasPrefix(elem, "readonly ") {
		elem = "(" + elem + ")"
	}
	if e.config.UseReadonlyArrays {
		return "readonly " + elem + "[]", nil
	}
	return elem + "[]", nil
}

func needsParens(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.Union:
		return len(t.Members) > 1
	case *ir.Function:
		return true
	case *ir.Enum:
		return t.Name == "" && len(t.Literals) > 1
	}
	return false
}

// indexedMap emits a mapped type over enum keys and an index signature
// otherwise.
func (e *Emitter) indexedMap(m *ir.IndexedMap) (string, error) {
	value, err := e.TypeExpr(m.Value)
	if err != nil {
		return "", err
	}
	if b, ok := m.Index.(*ir.Basic); ok || m.Index == nil {
		index := "string"
		if ok && b.Name == "number" {
			index = "number"
		}
		return "{ [index: " + index + "]: " + value + " }", nil
	}
	keys, err := e.TypeExpr(m.Index)
	if err != nil {
		return "", err
	}
	return "{ [P in " + keys + "]?: " + value + " }", nil
}

func (e *Emitter) union(u *ir.Union) (string, error) {
	if len(u.Members) == 0 {
		return "never", nil
	}
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		s, err := e.TypeExpr(m)
		if err != nil {
			return "", err
		}
		if _, fn := m.(*ir.Function); fn {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " | "), nil
}

func (e *Emitter) function(f *ir.Function) (string, error) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		s, err := e.TypeExpr(p.Type)
		if err != nil {
			return "", errors.Wrapf(err, "parameter %d", i)
		}
		name := p.Name
		if name == "" || !isIdentifier(name) {
			name = "arg" + strconv.Itoa(i)
		}
		params[i] = escapeReservedWord(name) + ": " + s
	}
	ret := "void"
	if f.Return != nil {
		s, err := e.TypeExpr(f.Return)
		if err != nil {
			return "", errors.Wrap(err, "return type")
		}
		ret = s
	}
	return "(" + strings.Join(params, ", ") + ") => " + ret, nil
}

func typeParameters(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// emitJSDoc emits JSDoc-style documentation comments.
func (e *Emitter) emitJSDoc(buf *bytes.Buffer, doc ir.Documentation, indent string) {
	if doc.IsZero() {
		return
	}

	var lines []string
	switch {
	case doc.Body != "":
		lines = strings.Split(doc.Body, "\n")
	case doc.Summary != "":
		lines = []string{doc.Summary}
	}
	if len(lines) == 1 && doc.Deprecated == nil {
		buf.WriteString(indent)
		buf.WriteString("/** ")
		buf.WriteString(sanitizeComment(lines[0]))
		buf.WriteString(" */\n")
		return
	}

	buf.WriteString(indent)
	buf.WriteString("/**\n")
	for _, line := range lines {
		buf.WriteString(indent)
		if line = sanitizeComment(line); line == "" {
			buf.WriteString(" *\n")
			continue
		}
		buf.WriteString(" * ")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if doc.Deprecated != nil {
		buf.WriteString(indent)
		buf.WriteString(" * @deprecated")
		if *doc.Deprecated != "" {
			buf.WriteString(" ")
			buf.WriteString(sanitizeComment(*doc.Deprecated))
		}
		buf.WriteString("\n")
	}
	buf.WriteString(indent)
	buf.WriteString(" */\n")
}

// sanitizeComment keeps comment text from closing the JSDoc block early.
func sanitizeComment(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "*/", "*\\/")
}

// formatLiteral formats a literal value for output.
func formatLiteral(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
