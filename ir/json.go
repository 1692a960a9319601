package ir

import "github.com/goccy/go-json"

// JSON serialization support for IR types.
// All types and declarations include a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for InterfaceDecl.
func (d *InterfaceDecl) MarshalJSON() ([]byte, error) {
	type Plain InterfaceDecl
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*Plain
	}{
		Kind:  "interface",
		Plain: (*Plain)(d),
	})
}

// MarshalJSON implements json.Marshaler for EnumDecl.
func (d *EnumDecl) MarshalJSON() ([]byte, error) {
	type Plain EnumDecl
	style := "native"
	if d.Style == EnumNumeric {
		style = "numeric"
	}
	return json.Marshal(&struct {
		Kind  string `json:"kind"`
		Style string `json:"Style"`
		*Plain
	}{
		Kind:  "enum",
		Style: style,
		Plain: (*Plain)(d),
	})
}

// MarshalJSON implements json.Marshaler for AliasDecl.
func (d *AliasDecl) MarshalJSON() ([]byte, error) {
	type Plain AliasDecl
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*Plain
	}{
		Kind:  "alias",
		Plain: (*Plain)(d),
	})
}

// MarshalJSON implements json.Marshaler for Basic.
func (t *Basic) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		Optional bool   `json:"optional,omitempty"`
	}{"basic", t.Name, t.Optional})
}

// MarshalJSON implements json.Marshaler for Literal.
func (t *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Value    any    `json:"value"`
		Optional bool   `json:"optional,omitempty"`
	}{"literal", t.Value, t.Optional})
}

// MarshalJSON implements json.Marshaler for Array.
func (t *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Element  Type   `json:"element"`
		Optional bool   `json:"optional,omitempty"`
	}{"array", t.Element, t.Optional})
}

// MarshalJSON implements json.Marshaler for IndexedMap.
func (t *IndexedMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Index    Type   `json:"index"`
		Value    Type   `json:"value"`
		Optional bool   `json:"optional,omitempty"`
	}{"indexedMap", t.Index, t.Value, t.Optional})
}

// MarshalJSON implements json.Marshaler for Structural.
func (t *Structural) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		Args     []Type `json:"args,omitempty"`
		Origin   string `json:"origin,omitempty"`
		External bool   `json:"external,omitempty"`
		Optional bool   `json:"optional,omitempty"`
	}{"structural", t.Name, t.Args, t.Origin, t.External, t.Optional})
}

// MarshalJSON implements json.Marshaler for Enum.
func (t *Enum) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string     `json:"kind"`
		Name     string     `json:"name"`
		Origin   string     `json:"origin,omitempty"`
		Literals []*Literal `json:"literals,omitempty"`
		Optional bool       `json:"optional,omitempty"`
	}{"enum", t.Name, t.Origin, t.Literals, t.Optional})
}

// MarshalJSON implements json.Marshaler for Union.
func (t *Union) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Members  []Type `json:"members"`
		Optional bool   `json:"optional,omitempty"`
	}{"union", t.Members, t.Optional})
}

// MarshalJSON implements json.Marshaler for Alias.
func (t *Alias) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		Origin   string `json:"origin,omitempty"`
		Optional bool   `json:"optional,omitempty"`
	}{"alias", t.Name, t.Origin, t.Optional})
}

// MarshalJSON implements json.Marshaler for Function.
func (t *Function) MarshalJSON() ([]byte, error) {
	type param struct {
		Name string `json:"name"`
		Type Type   `json:"type"`
	}
	params := make([]param, len(t.Params))
	for i, p := range t.Params {
		params[i] = param{p.Name, p.Type}
	}
	return json.Marshal(&struct {
		Kind     string  `json:"kind"`
		Params   []param `json:"params"`
		Return   Type    `json:"return"`
		Optional bool    `json:"optional,omitempty"`
	}{"function", params, t.Return, t.Optional})
}

// MarshalJSON implements json.Marshaler for FreeVariable.
func (t *FreeVariable) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		Optional bool   `json:"optional,omitempty"`
	}{"freeVariable", t.Name, t.Optional})
}
