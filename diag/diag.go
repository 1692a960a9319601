// Package diag defines the compiler's error taxonomy.
//
// Fatal conditions are typed errors that abort a run; match them with
// errors.As through any wrapping. Non-fatal conditions are recorded as
// ir.Warning values carrying one of the Code* constants.
package diag

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Warning codes recorded on ir.Model.Warnings.
const (
	// CodeUnsupportedType: a type matched no mapping strategy and was replaced
	// by the top type.
	CodeUnsupportedType = "UNSUPPORTED_TYPE"

	// CodeIntrospectionFailure: a descriptor could not be produced; the
	// identity was skipped.
	CodeIntrospectionFailure = "INTROSPECTION_FAILURE"

	// CodeEnumFallback: an enum could not be represented in the configured
	// style and was compiled as a literal union.
	CodeEnumFallback = "ENUM_FALLBACK"

	// CodeEmptyFamily: a polymorphic family has no constructible member.
	CodeEmptyFamily = "EMPTY_FAMILY"
)

// Sentinels marked on every typed error so callers can use errors.Is.
var (
	ErrNameConflict                 = errors.New("name conflict")
	ErrGenericSubstitutionConflict  = errors.New("generic substitution conflict")
	ErrAmbiguousSubstitution        = errors.New("ambiguous generic substitution")
	ErrInvalidCustomMapping         = errors.New("invalid custom type mapping")
	ErrDuplicateDiscriminantLiteral = errors.New("duplicate discriminant literal")
)

// NameConflictError reports two distinct identities assigned the same symbol.
type NameConflictError struct {
	Name   string
	First  string
	Second string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("name conflict: %q is assigned to both %s and %s", e.Name, e.First, e.Second)
}

// Is matches ErrNameConflict.
func (e *NameConflictError) Is(target error) bool { return target == ErrNameConflict }

// NewNameConflict returns a NameConflictError with a remediation hint.
func NewNameConflict(name, first, second string) error {
	return errors.WithHintf(
		errors.WithStack(&NameConflictError{Name: name, First: first, Second: second}),
		"add a customTypeNaming entry for %s or %s", first, second)
}

// GenericSubstitutionConflictError reports a formal type parameter bound to two
// different concrete arguments via two inheritance paths.
type GenericSubstitutionConflictError struct {
	// Declaring is the ancestor that declares Param.
	Declaring string
	Param     string

	// Concrete is the identity whose ancestry was being resolved.
	Concrete string

	First, Second         string
	FirstPath, SecondPath []string
}

func (e *GenericSubstitutionConflictError) Error() string {
	return fmt.Sprintf("conflicting bindings for %s.%s resolving %s: %s (via %s) vs %s (via %s)",
		e.Declaring, e.Param, e.Concrete,
		e.First, strings.Join(e.FirstPath, " -> "),
		e.Second, strings.Join(e.SecondPath, " -> "))
}

// Is matches ErrGenericSubstitutionConflict.
func (e *GenericSubstitutionConflictError) Is(target error) bool {
	return target == ErrGenericSubstitutionConflict
}

// AmbiguousSubstitutionError reports a formal type parameter reached via two
// paths with differently shaped bindings: one path leaves it unbound or bound
// to a type variable while the other binds it differently.
type AmbiguousSubstitutionError struct {
	Declaring string
	Param     string
	Concrete  string

	First, Second         string
	FirstPath, SecondPath []string
}

func (e *AmbiguousSubstitutionError) Error() string {
	return fmt.Sprintf("ambiguous binding for %s.%s resolving %s: %s (via %s) vs %s (via %s)",
		e.Declaring, e.Param, e.Concrete,
		e.First, strings.Join(e.FirstPath, " -> "),
		e.Second, strings.Join(e.SecondPath, " -> "))
}

// Is matches ErrAmbiguousSubstitution.
func (e *AmbiguousSubstitutionError) Is(target error) bool {
	return target == ErrAmbiguousSubstitution
}

// InvalidCustomMappingError reports a malformed or inapplicable rewrite rule.
type InvalidCustomMappingError struct {
	Rule   string
	Reason string
}

func (e *InvalidCustomMappingError) Error() string {
	return fmt.Sprintf("invalid custom type mapping %q: %s", e.Rule, e.Reason)
}

// Is matches ErrInvalidCustomMapping.
func (e *InvalidCustomMappingError) Is(target error) bool { return target == ErrInvalidCustomMapping }

// NewInvalidCustomMapping returns an InvalidCustomMappingError with a format hint.
func NewInvalidCustomMapping(rule, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return errors.WithHint(
		errors.WithStack(&InvalidCustomMappingError{Rule: rule, Reason: reason}),
		`rules look like "pkg.Source<T> -> Target<T>"`)
}

// DuplicateDiscriminantLiteralError reports two members of one family sharing a tag.
type DuplicateDiscriminantLiteralError struct {
	Family string
	Tag    string
	First  string
	Second string
}

func (e *DuplicateDiscriminantLiteralError) Error() string {
	return fmt.Sprintf("family %s: discriminant literal %q is used by both %s and %s", e.Family, e.Tag, e.First, e.Second)
}

// Is matches ErrDuplicateDiscriminantLiteral.
func (e *DuplicateDiscriminantLiteralError) Is(target error) bool {
	return target == ErrDuplicateDiscriminantLiteral
}

// IsFatal reports whether err is one of the typed fatal errors.
func IsFatal(err error) bool {
	return errors.IsAny(err,
		ErrNameConflict,
		ErrGenericSubstitutionConflict,
		ErrAmbiguousSubstitution,
		ErrInvalidCustomMapping,
		ErrDuplicateDiscriminantLiteral)
}
