package typescript

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Output kinds.
const (
	// OutputModule exports every top-level declaration.
	OutputModule = "module"

	// OutputGlobal declares everything in the global scope.
	OutputGlobal = "global"

	// OutputAmbient prefixes top-level declarations with declare, for .d.ts files.
	OutputAmbient = "ambient"
)

// DefaultHeader is written at the top of generated files unless Config.Header
// replaces it or Config.OmitHeader is set.
const DefaultHeader = "// Code generated by tsmodel. DO NOT EDIT."

// Config contains TypeScript emitter options.
type Config struct {
	// FileName is the path of the generated file relative to the sink.
	// Default "types.ts".
	FileName string `yaml:"fileName,omitempty" toml:"fileName,omitempty" json:"fileName,omitempty" schema:"fileName" validate:"required"`

	// OutputKind is "module" (default), "global" or "ambient".
	OutputKind string `yaml:"outputKind,omitempty" toml:"outputKind,omitempty" json:"outputKind,omitempty" schema:"outputKind" validate:"omitempty,oneof=module global ambient"`

	// Header replaces DefaultHeader. Lines are written verbatim.
	Header string `yaml:"header,omitempty" toml:"header,omitempty" json:"header,omitempty" schema:"header"`

	// OmitHeader suppresses the header entirely.
	OmitHeader bool `yaml:"omitHeader,omitempty" toml:"omitHeader,omitempty" json:"omitHeader,omitempty" schema:"omitHeader"`

	// Indent is one level of indentation. Default two spaces.
	Indent string `yaml:"indent,omitempty" toml:"indent,omitempty" json:"indent,omitempty" schema:"indent"`

	// UseTypeAliases renders object declarations as type aliases with
	// intersections instead of interfaces.
	UseTypeAliases bool `yaml:"useTypeAliases,omitempty" toml:"useTypeAliases,omitempty" json:"useTypeAliases,omitempty" schema:"useTypeAliases"`

	// UseReadonlyArrays uses 'readonly T[]' instead of 'T[]'.
	UseReadonlyArrays bool `yaml:"useReadonlyArrays,omitempty" toml:"useReadonlyArrays,omitempty" json:"useReadonlyArrays,omitempty" schema:"useReadonlyArrays"`

	// ConstEnums emits enum declarations as 'const enum'.
	ConstEnums bool `yaml:"constEnums,omitempty" toml:"constEnums,omitempty" json:"constEnums,omitempty" schema:"constEnums"`

	// OmitComments drops documentation comments.
	OmitComments bool `yaml:"omitComments,omitempty" toml:"omitComments,omitempty" json:"omitComments,omitempty" schema:"omitComments"`
}

var validate = validator.New()

// WithDefaults returns a copy of c with empty options defaulted.
func (c Config) WithDefaults() Config {
	if c.FileName == "" {
		c.FileName = "types.ts"
	}
	if c.OutputKind == "" {
		c.OutputKind = OutputModule
	}
	if c.Indent == "" {
		c.Indent = "  "
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.WithDefaults()
	if err := validate.Struct(&c); err != nil {
		return errors.Wrap(err, "invalid typescript config")
	}
	return nil
}
