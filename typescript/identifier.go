package typescript

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/broady/tsmodel/naming"
)

// escapeReservedWord escapes a reserved word by appending an underscore.
func escapeReservedWord(name string) string {
	if naming.IsReserved(name) {
		return name + "_"
	}
	return name
}

// escapeQualified escapes each dot-separated segment of a qualified name.
func escapeQualified(name string) string {
	if !strings.Contains(name, ".") {
		return escapeReservedWord(name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = escapeReservedWord(p)
	}
	return strings.Join(parts, ".")
}

// isIdentifier reports whether name can be written unquoted as a property or
// enum member name. Reserved words are allowed in those positions.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return false
		}
	}
	return true
}

// memberName renders a property or enum member name, quoting it if needed.
func memberName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}
