// Package ir defines the structural intermediate representation produced by the
// model compiler. These types describe declarations of a structurally-typed target
// language (interfaces, enums, aliases, unions) independent of any textual syntax;
// emitters render them without performing further type resolution.
package ir

import "strings"

// Documentation holds documentation comments attached to a declaration or member.
type Documentation struct {
	// Summary is the first non-empty line, suitable for brief descriptions.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Body is the complete documentation text, including the summary.
	// May contain multiple paragraphs separated by blank lines.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// Deprecated is non-nil if the symbol is marked deprecated.
	// The string value is the deprecation message (may be empty).
	Deprecated *string `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// ParseDocumentation builds Documentation from raw comment lines.
// A line starting with "Deprecated:" (or "@deprecated") is lifted out of the body
// into Deprecated.
func ParseDocumentation(lines []string) Documentation {
	if len(lines) == 0 {
		return Documentation{}
	}

	var body []string
	var deprecated *string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case deprecated == nil && strings.HasPrefix(trimmed, "Deprecated:"):
			msg := strings.TrimSpace(strings.TrimPrefix(trimmed, "Deprecated:"))
			deprecated = &msg
		case deprecated == nil && strings.HasPrefix(trimmed, "@deprecated"):
			msg := strings.TrimSpace(strings.TrimPrefix(trimmed, "@deprecated"))
			deprecated = &msg
		default:
			body = append(body, trimmed)
		}
	}

	// Drop leading and trailing blank lines.
	for len(body) > 0 && body[0] == "" {
		body = body[1:]
	}
	for len(body) > 0 && body[len(body)-1] == "" {
		body = body[:len(body)-1]
	}

	doc := Documentation{Body: strings.Join(body, "\n"), Deprecated: deprecated}
	if len(body) > 0 {
		doc.Summary = body[0]
	}
	return doc
}

// Warning represents a non-fatal issue encountered during compilation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string `json:"code" yaml:"code"`

	// Message is a human-readable description.
	Message string `json:"message" yaml:"message"`

	// Origin is the source identity or member path that triggered the warning,
	// if applicable (e.g. "example.Person.address").
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`
}
