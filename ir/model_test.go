package ir

import (
	"strings"
	"testing"
)

func TestModelValidate(t *testing.T) {
	tests := []struct {
		name     string
		model    *Model
		wantCode []string
	}{
		{
			name: "valid model",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "Node", Properties: []Property{{Name: "next", Type: WithOptional(Ref("Node"), true)}}},
				&AliasDecl{Name: "Direction", Definition: LiteralUnion("A", "B")},
			}},
		},
		{
			name: "duplicate declaration",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "User"},
				&AliasDecl{Name: "User", Definition: String()},
			}},
			wantCode: []string{"duplicate_declaration"},
		},
		{
			name: "missing reference",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "User", Properties: []Property{{Name: "address", Type: Ref("Address")}}},
			}},
			wantCode: []string{"missing_type_reference"},
		},
		{
			name: "external reference is allowed",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "Holder", Properties: []Property{{Name: "list", Type: &Structural{Name: "Wrapper", Args: []Type{String()}, External: true}}}},
			}},
		},
		{
			name: "unbound type variable",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "Box", Properties: []Property{{Name: "value", Type: Var("T")}}},
			}},
			wantCode: []string{"unbound_type_variable"},
		},
		{
			name: "bound type variable",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "Box", TypeParams: []string{"T"}, Properties: []Property{{Name: "value", Type: Var("T")}}},
			}},
		},
		{
			name: "circular inheritance",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "A", Extends: []*Structural{Ref("B")}},
				&InterfaceDecl{Name: "B", Extends: []*Structural{Ref("A")}},
			}},
			wantCode: []string{"circular_inheritance"},
		},
		{
			name: "extends alias",
			model: &Model{Declarations: []Declaration{
				&AliasDecl{Name: "A", Definition: String()},
				&InterfaceDecl{Name: "B", Extends: []*Structural{Ref("A")}},
			}},
			wantCode: []string{"missing_extends_reference"},
		},
		{
			name: "namespaced reference",
			model: &Model{Declarations: []Declaration{
				&InterfaceDecl{Name: "User", Namespace: []string{"api", "v1"}},
				&InterfaceDecl{Name: "Team", Properties: []Property{{Name: "owner", Type: Ref("api.v1.User")}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.model.Validate()
			var codes []string
			for _, err := range errs {
				codes = append(codes, err.(*ValidationError).Code)
			}
			if len(codes) != len(tt.wantCode) {
				t.Fatalf("Validate() codes = %v, want %v", codes, tt.wantCode)
			}
			for i := range codes {
				if codes[i] != tt.wantCode[i] {
					t.Errorf("code[%d] = %q, want %q", i, codes[i], tt.wantCode[i])
				}
			}
		})
	}
}

func TestModelFind(t *testing.T) {
	m := &Model{}
	m.AddDeclaration(&InterfaceDecl{Name: "User", Namespace: []string{"api"}})
	m.AddDeclaration(&AliasDecl{Name: "ShapeUnion", Definition: NewUnion(Ref("Square"))})

	if m.Interface("api.User") == nil {
		t.Error("Interface(api.User) = nil")
	}
	if m.Interface("User") != nil {
		t.Error("Interface(User) should require the namespace")
	}
	if m.Alias("ShapeUnion") == nil {
		t.Error("Alias(ShapeUnion) = nil")
	}
	if got := strings.Join(m.Names(), ","); got != "api.User,ShapeUnion" {
		t.Errorf("Names() = %q", got)
	}
}

func TestParseDocumentation(t *testing.T) {
	doc := ParseDocumentation([]string{"", "User is a person.", "", "More text.", "Deprecated: use Account.", ""})
	if doc.Summary != "User is a person." {
		t.Errorf("Summary = %q", doc.Summary)
	}
	if doc.Body != "User is a person.\n\nMore text." {
		t.Errorf("Body = %q", doc.Body)
	}
	if doc.Deprecated == nil || *doc.Deprecated != "use Account." {
		t.Errorf("Deprecated = %v", doc.Deprecated)
	}
	if !ParseDocumentation(nil).IsZero() {
		t.Error("empty lines should give zero documentation")
	}
}
