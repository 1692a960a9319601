package typescript

import (
	"testing"
)

func TestEscapeReservedWord(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"interface", "interface_"},
		{"class", "class_"},
		{"type", "type_"},
		{"default", "default_"},
		{"MyType", "MyType"},
		{"_private", "_private"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeReservedWord(tt.input)
			if got != tt.want {
				t.Errorf("escapeReservedWord(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeQualified(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"User", "User"},
		{"api.v1.User", "api.v1.User"},
		{"api.package.enum", "api.package_.enum_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeQualified(tt.input)
			if got != tt.want {
				t.Errorf("escapeQualified(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMemberName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"myField", "myField"},
		{"$field", "$field"},
		{"default", "default"},
		{"123abc", `"123abc"`},
		{"content-type", `"content-type"`},
		{"my field", `"my field"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := memberName(tt.input)
			if got != tt.want {
				t.Errorf("memberName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
