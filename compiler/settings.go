package compiler

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/broady/tsmodel/mapping"
	"github.com/broady/tsmodel/naming"
)

// Enum mappings.
const (
	EnumLiteralUnion = "literal-union"
	EnumNative       = "native-enum"
	EnumNumeric      = "numeric-enum"
)

// Optional property modes.
const (
	OptionalQuestionMark                = "questionMark"
	OptionalNullableType                = "nullableType"
	OptionalQuestionMarkAndNullableType = "questionMarkAndNullableType"
	OptionalNullableAndUndefinableType  = "nullableAndUndefinableType"
	OptionalUndefinableType             = "undefinableType"
)

// Inheritance modes.
const (
	InheritanceExtends = "extends"
	InheritanceFlatten = "flatten"
)

// Settings are the options recognized by the compiler. The zero value is
// usable: empty fields take the documented defaults.
type Settings struct {
	// AddNamePrefix is prepended to every default-derived symbol.
	AddNamePrefix string `yaml:"addNamePrefix,omitempty" toml:"addNamePrefix,omitempty" json:"addNamePrefix,omitempty" schema:"addNamePrefix"`

	// AddNameSuffix is appended to every default-derived symbol.
	AddNameSuffix string `yaml:"addNameSuffix,omitempty" toml:"addNameSuffix,omitempty" json:"addNameSuffix,omitempty" schema:"addNameSuffix"`

	// RemoveNamePrefix is stripped from simple names before prefixing.
	RemoveNamePrefix string `yaml:"removeNamePrefix,omitempty" toml:"removeNamePrefix,omitempty" json:"removeNamePrefix,omitempty" schema:"removeNamePrefix"`

	// RemoveNameSuffix is stripped from simple names before suffixing.
	RemoveNameSuffix string `yaml:"removeNameSuffix,omitempty" toml:"removeNameSuffix,omitempty" json:"removeNameSuffix,omitempty" schema:"removeNameSuffix"`

	// CustomTypeNaming maps identity strings (or bare simple names) to
	// explicit symbols. Entries always win.
	CustomTypeNaming map[string]string `yaml:"customTypeNaming,omitempty" toml:"customTypeNaming,omitempty" json:"customTypeNaming,omitempty" schema:"-"`

	// CustomTypeNamingFunction is consulted before the default rule.
	CustomTypeNamingFunction naming.Func `yaml:"-" toml:"-" json:"-" schema:"-"`

	// CustomTypeMappings are rewrite rules: "pkg.Source<T> -> Target<T>".
	CustomTypeMappings []string `yaml:"customTypeMappings,omitempty" toml:"customTypeMappings,omitempty" json:"customTypeMappings,omitempty" schema:"customTypeMappings"`

	// ExcludeTypes lists identity strings or simple names compiled to the top type.
	ExcludeTypes []string `yaml:"excludeTypes,omitempty" toml:"excludeTypes,omitempty" json:"excludeTypes,omitempty" schema:"excludeTypes"`

	// MapDate is "asString" (default), "asNumber" or "asDate".
	MapDate string `yaml:"mapDate,omitempty" toml:"mapDate,omitempty" json:"mapDate,omitempty" schema:"mapDate" validate:"omitempty,oneof=asDate asNumber asString"`

	// MapFunctionalTypes compiles function-like types to function signatures.
	MapFunctionalTypes bool `yaml:"mapFunctionalTypes,omitempty" toml:"mapFunctionalTypes,omitempty" json:"mapFunctionalTypes,omitempty" schema:"mapFunctionalTypes"`

	// UnknownType is the top type: "unknown" (default) or "any".
	UnknownType string `yaml:"unknownType,omitempty" toml:"unknownType,omitempty" json:"unknownType,omitempty" schema:"unknownType" validate:"omitempty,oneof=unknown any"`

	// SortDeclarations sorts declarations and their properties by name.
	SortDeclarations bool `yaml:"sortDeclarations,omitempty" toml:"sortDeclarations,omitempty" json:"sortDeclarations,omitempty" schema:"sortDeclarations"`

	// SortTypeDeclarations sorts declarations but keeps property order.
	SortTypeDeclarations bool `yaml:"sortTypeDeclarations,omitempty" toml:"sortTypeDeclarations,omitempty" json:"sortTypeDeclarations,omitempty" schema:"sortTypeDeclarations"`

	// EnumMapping is "literal-union" (default), "native-enum" or "numeric-enum".
	EnumMapping string `yaml:"enumMapping,omitempty" toml:"enumMapping,omitempty" json:"enumMapping,omitempty" schema:"enumMapping" validate:"omitempty,oneof=literal-union native-enum numeric-enum"`

	// InlineEnums substitutes enum literals at every reference site.
	InlineEnums bool `yaml:"inlineEnums,omitempty" toml:"inlineEnums,omitempty" json:"inlineEnums,omitempty" schema:"inlineEnums"`

	// OptionalProperties selects how optional and nullable values are
	// expressed. Default "questionMark".
	OptionalProperties string `yaml:"optionalProperties,omitempty" toml:"optionalProperties,omitempty" json:"optionalProperties,omitempty" schema:"optionalProperties" validate:"omitempty,oneof=questionMark nullableType questionMarkAndNullableType nullableAndUndefinableType undefinableType"`

	// MapScopesToNamespaces nests declarations in namespaces derived from scopes.
	MapScopesToNamespaces bool `yaml:"mapScopesToNamespaces,omitempty" toml:"mapScopesToNamespaces,omitempty" json:"mapScopesToNamespaces,omitempty" schema:"mapScopesToNamespaces"`

	// Inheritance is "extends" (default) or "flatten".
	Inheritance string `yaml:"inheritance,omitempty" toml:"inheritance,omitempty" json:"inheritance,omitempty" schema:"inheritance" validate:"omitempty,oneof=extends flatten"`

	// DisableTaggedUnions skips discriminant narrowing and union aliases.
	DisableTaggedUnions bool `yaml:"disableTaggedUnions,omitempty" toml:"disableTaggedUnions,omitempty" json:"disableTaggedUnions,omitempty" schema:"disableTaggedUnions"`

	// DisableTaggedUnionAliases keeps family root references instead of
	// rewriting them to the union alias.
	DisableTaggedUnionAliases bool `yaml:"disableTaggedUnionAliases,omitempty" toml:"disableTaggedUnionAliases,omitempty" json:"disableTaggedUnionAliases,omitempty" schema:"disableTaggedUnionAliases"`
}

var validate = validator.New()

// Validate checks enumerated options.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.WithHint(errors.Wrap(err, "invalid compiler settings"),
			"see the option documentation for accepted values")
	}
	return nil
}

// withDefaults returns a copy of s with empty options defaulted.
// The receiver is not modified.
func (s Settings) withDefaults() Settings {
	if s.MapDate == "" {
		s.MapDate = string(mapping.DateAsString)
	}
	if s.UnknownType == "" {
		s.UnknownType = "unknown"
	}
	if s.EnumMapping == "" {
		s.EnumMapping = EnumLiteralUnion
	}
	if s.OptionalProperties == "" {
		s.OptionalProperties = OptionalQuestionMark
	}
	if s.Inheritance == "" {
		s.Inheritance = InheritanceExtends
	}
	return s
}

func (s *Settings) sorted() bool {
	return s.SortDeclarations || s.SortTypeDeclarations
}

func (s *Settings) namingOptions() naming.Options {
	return naming.Options{
		AddPrefix:    s.AddNamePrefix,
		AddSuffix:    s.AddNameSuffix,
		RemovePrefix: s.RemoveNamePrefix,
		RemoveSuffix: s.RemoveNameSuffix,
		Overrides:    s.CustomTypeNaming,
		Func:         s.CustomTypeNamingFunction,
		Namespaces:   s.MapScopesToNamespaces,
	}
}

func (s *Settings) mappingOptions(extra []mapping.Strategy) mapping.Options {
	return mapping.Options{
		Exclude:      s.ExcludeTypes,
		Rules:        s.CustomTypeMappings,
		Strategies:   extra,
		MapFunctions: s.MapFunctionalTypes,
		Dates:        mapping.DateMapping(s.MapDate),
		TopType:      s.UnknownType,
	}
}
