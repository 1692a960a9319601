package mapping

import (
	"strconv"

	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/source"
)

// primitives maps primitive and value-type names reported by providers to
// target basic types.
var primitives = map[string]string{
	// Strings
	"string":    "string",
	"String":    "string",
	"char":      "string",
	"Character": "string",
	"rune":      "number",
	"UUID":      "string",
	"uuid.UUID": "string",
	"bytes":     "string", // base64 on the wire
	"URI":       "string",
	"URL":       "string",

	// Numbers
	"int":        "number",
	"int8":       "number",
	"int16":      "number",
	"int32":      "number",
	"int64":      "number",
	"uint":       "number",
	"uint8":      "number",
	"uint16":     "number",
	"uint32":     "number",
	"uint64":     "number",
	"uintptr":    "number",
	"byte":       "number",
	"float32":    "number",
	"float64":    "number",
	"short":      "number",
	"long":       "number",
	"float":      "number",
	"double":     "number",
	"number":     "number",
	"Byte":       "number",
	"Short":      "number",
	"Integer":    "number",
	"Long":       "number",
	"Float":      "number",
	"Double":     "number",
	"BigDecimal": "number",
	"BigInteger": "number",

	// Booleans
	"bool":    "boolean",
	"boolean": "boolean",
	"Boolean": "boolean",

	// Top and unit
	"any":         "",
	"interface{}": "",
	"Object":      "",
	"void":        "void",
	"Void":        "void",
}

// dateNames are primitive names treated as dates.
var dateNames = map[string]bool{
	"date":           true,
	"time.Time":      true,
	"Date":           true,
	"Instant":        true,
	"LocalDate":      true,
	"LocalDateTime":  true,
	"LocalTime":      true,
	"OffsetDateTime": true,
	"ZonedDateTime":  true,
	"Calendar":       true,
}

// IsBasicName reports whether name is a basic type of the target language.
func IsBasicName(name string) bool {
	switch name {
	case "string", "number", "boolean", "bigint", "unknown", "any", "void",
		"never", "null", "undefined", "object", "Date":
		return true
	}
	return false
}

func excludeStrategy(names []string) Strategy {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
		if ref.Identity.Name == "" || ref.Kind == source.KindVariable {
			return nil, false
		}
		if set[ref.Identity.String()] || set[ref.Identity.Name] {
			return ctx.Top(), true
		}
		return nil, false
	}
}

func functionStrategy(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
	if ref.Kind != source.KindFunction || ref.Signature == nil {
		return nil, false
	}
	fn := &ir.Function{Return: ir.NewBasic("void")}
	for i, p := range ref.Signature.Params {
		name := p.Name
		if name == "" {
			name = "arg" + strconv.Itoa(i)
		}
		fn.Params = append(fn.Params, ir.Param{Name: name, Type: ctx.Map(p.Type)})
	}
	if ref.Signature.Result != nil {
		fn.Return = ctx.Map(*ref.Signature.Result)
	}
	return fn, true
}

func dateStrategy(mode DateMapping) Strategy {
	return func(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
		if ref.Kind != source.KindPrimitive || !dateNames[ref.Identity.String()] {
			return nil, false
		}
		switch mode {
		case DateAsDate:
			return ir.NewBasic("Date"), true
		case DateAsNumber:
			return &ir.Alias{Name: DateAsNumberAlias, Definition: ir.Number()}, true
		default:
			return &ir.Alias{Name: DateAsStringAlias, Definition: ir.String()}, true
		}
	}
}

func defaultStrategy(ref source.TypeRef, ctx *Context) (ir.Type, bool) {
	switch ref.Kind {
	case source.KindPrimitive:
		name, ok := primitives[ref.Identity.String()]
		if !ok {
			return nil, false
		}
		if name == "" {
			return ctx.Top(), true
		}
		return ir.NewBasic(name), true

	case source.KindArray, source.KindCollection:
		if len(ref.Args) == 0 {
			return ir.NewArray(ctx.Top()), true
		}
		return ir.NewArray(ctx.Map(ref.Args[0])), true

	case source.KindMap:
		if len(ref.Args) < 2 {
			return ir.NewIndexedMap(ir.String(), ctx.Top()), true
		}
		return ir.NewIndexedMap(mapKey(ref.Args[0], ctx), ctx.Map(ref.Args[1])), true

	case source.KindEnum:
		ctx.Discover(ref)
		return &ir.Enum{Origin: ref.Identity.String()}, true

	case source.KindBean:
		ctx.Discover(ref)
		s := &ir.Structural{Origin: ref.Identity.String()}
		for _, a := range ref.Args {
			s.Args = append(s.Args, ctx.Map(a))
		}
		return s, true

	case source.KindVariable:
		return ir.Var(ref.Identity.Name), true
	}
	return nil, false
}

// mapKey maps a map key. Enum keys keep the enum so emitters can render a
// mapped type; numeric keys stay numeric; anything else is a string index.
func mapKey(key source.TypeRef, ctx *Context) ir.Type {
	if key.Kind == source.KindEnum {
		return ir.WithOptional(ctx.Map(key), false)
	}
	if key.Kind == source.KindPrimitive && primitives[key.Identity.String()] == "number" {
		return ir.Number()
	}
	return ir.String()
}
