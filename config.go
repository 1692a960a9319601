package tsmodel

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"

	"github.com/broady/tsmodel/compiler"
	"github.com/broady/tsmodel/typescript"
)

// Providers selectable from a Config.
const (
	// ProviderSource loads Go packages with go/packages (default).
	ProviderSource = "source"

	// ProviderDescriptors reads descriptor files in YAML or JSON.
	ProviderDescriptors = "descriptors"
)

// Config holds the configuration for a generation run.
type Config struct {
	// Provider selects the introspection provider: "source" (default) or
	// "descriptors".
	Provider string `yaml:"provider,omitempty" toml:"provider,omitempty" json:"provider,omitempty" schema:"provider" validate:"omitempty,oneof=source descriptors"`

	// Packages are the Go package patterns analyzed by the source provider.
	// e.g. []string{"github.com/myorg/myapp/api"}
	Packages []string `yaml:"packages,omitempty" toml:"packages,omitempty" json:"packages,omitempty" schema:"packages" validate:"required_if=Provider source"`

	// Descriptors are descriptor file paths read by the descriptors provider.
	Descriptors []string `yaml:"descriptors,omitempty" toml:"descriptors,omitempty" json:"descriptors,omitempty" schema:"descriptors" validate:"required_if=Provider descriptors"`

	// Roots are the type names compiled. Empty means every type the provider
	// offers as a root.
	Roots []string `yaml:"roots,omitempty" toml:"roots,omitempty" json:"roots,omitempty" schema:"roots"`

	// OutDir is the directory generated files are written to. Default ".".
	OutDir string `yaml:"outDir,omitempty" toml:"outDir,omitempty" json:"outDir,omitempty" schema:"outDir"`

	// Compiler holds the model compiler options.
	Compiler compiler.Settings `yaml:"compiler,omitempty" toml:"compiler,omitempty" json:"compiler,omitempty" schema:"compiler"`

	// TypeScript holds the emitter options.
	TypeScript typescript.Config `yaml:"typescript,omitempty" toml:"typescript,omitempty" json:"typescript,omitempty" schema:"typescript"`
}

var validate = validator.New()

// LoadConfig reads a configuration file. The format is chosen by extension:
// .yaml/.yml, .toml or .json. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("parsing %s: unknown key %q", path, undecoded[0].String())
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	default:
		return nil, errors.WithHint(errors.Newf("unsupported config format %q", ext),
			"use a .yaml, .yml, .toml or .json file")
	}
	return cfg, nil
}

// ApplyOverrides applies "key=value" assignments to cfg. Keys are the
// configuration names joined by dots, e.g. "compiler.mapDate=asNumber" or
// "typescript.outputKind=ambient". A list key may repeat; its values replace
// the configured list.
func ApplyOverrides(cfg *Config, sets []string) error {
	if len(sets) == 0 {
		return nil
	}
	values := url.Values{}
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return errors.WithHint(errors.Newf("invalid override %q", s), "overrides have the form key=value")
		}
		values.Add(key, value)
	}

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(false)
	if err := dec.Decode(cfg, values); err != nil {
		return errors.Wrap(err, "applying overrides")
	}
	return nil
}

// withDefaults returns a copy of c with empty options defaulted.
// The receiver is not modified.
func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderSource
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	c.TypeScript = c.TypeScript.WithDefaults()
	return c
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	d := c.withDefaults()
	if err := validate.Struct(&d); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
