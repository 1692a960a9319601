package ir

// Walk calls fn for t and every type nested in it, in pre-order.
// If fn returns false the children of that node are skipped.
func Walk(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch v := t.(type) {
	case *Array:
		Walk(v.Element, fn)
	case *IndexedMap:
		Walk(v.Index, fn)
		Walk(v.Value, fn)
	case *Structural:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	case *Enum:
		for _, l := range v.Literals {
			Walk(l, fn)
		}
	case *Union:
		for _, m := range v.Members {
			Walk(m, fn)
		}
	case *Alias:
		// Definitions are owned by the alias declaration; references do not
		// descend into them.
	case *Function:
		for _, p := range v.Params {
			Walk(p.Type, fn)
		}
		Walk(v.Return, fn)
	}
}

// Transform rebuilds t bottom-up, replacing every node with fn(node) after its
// children have been transformed. Nodes are copied, never mutated in place.
func Transform(t Type, fn func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case *Array:
		c := *v
		c.Element = Transform(v.Element, fn)
		return fn(&c)
	case *IndexedMap:
		c := *v
		c.Index = Transform(v.Index, fn)
		c.Value = Transform(v.Value, fn)
		return fn(&c)
	case *Structural:
		c := *v
		c.Args = transformAll(v.Args, fn)
		return fn(&c)
	case *Union:
		c := *v
		c.Members = transformAll(v.Members, fn)
		return fn(&c)
	case *Function:
		c := *v
		if len(v.Params) > 0 {
			c.Params = make([]Param, len(v.Params))
			for i, p := range v.Params {
				c.Params[i] = Param{Name: p.Name, Type: Transform(p.Type, fn)}
			}
		}
		c.Return = Transform(v.Return, fn)
		return fn(&c)
	default:
		return fn(t)
	}
}

func transformAll(ts []Type, fn func(Type) Type) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Transform(t, fn)
	}
	return out
}

// Equal reports whether a and b are structurally identical, including
// optionality at every level.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.IsOptional() != b.IsOptional() {
		return false
	}
	switch x := a.(type) {
	case *Basic:
		return x.Name == b.(*Basic).Name
	case *Literal:
		return x.Value == b.(*Literal).Value
	case *Array:
		return Equal(x.Element, b.(*Array).Element)
	case *IndexedMap:
		y := b.(*IndexedMap)
		return Equal(x.Index, y.Index) && Equal(x.Value, y.Value)
	case *Structural:
		y := b.(*Structural)
		return x.Name == y.Name && x.Origin == y.Origin && x.External == y.External && equalAll(x.Args, y.Args)
	case *Enum:
		y := b.(*Enum)
		return x.Name == y.Name && x.Origin == y.Origin
	case *Union:
		return equalAll(x.Members, b.(*Union).Members)
	case *Alias:
		y := b.(*Alias)
		return x.Name == y.Name && x.Origin == y.Origin
	case *Function:
		y := b.(*Function)
		if len(x.Params) != len(y.Params) || !Equal(x.Return, y.Return) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name || !Equal(x.Params[i].Type, y.Params[i].Type) {
				return false
			}
		}
		return true
	case *FreeVariable:
		return x.Name == b.(*FreeVariable).Name
	}
	return false
}

func equalAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
