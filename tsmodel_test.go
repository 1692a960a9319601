package tsmodel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/tsmodel/compiler"
	"github.com/broady/tsmodel/provider"
	"github.com/broady/tsmodel/typescript"
)

const descriptors = "provider/testdata/descriptors.yaml"

var background = context.Background()

func assertContainsAll(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q\ngot:\n%s", w, got)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	want := &Config{
		Provider:    ProviderDescriptors,
		Descriptors: []string{descriptors},
		Roots:       []string{"example.Drawing"},
		OutDir:      "out",
		Compiler: compiler.Settings{
			MapDate:          "asNumber",
			SortDeclarations: true,
			CustomTypeNaming: map[string]string{"example.Circle": "Round"},
		},
		TypeScript: typescript.Config{FileName: "api.d.ts", OutputKind: typescript.OutputAmbient},
	}

	for _, file := range []string{"config.yaml", "config.toml", "config.json"} {
		t.Run(file, func(t *testing.T) {
			cfg, err := LoadConfig(filepath.Join("testdata", file))
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		file    string
		wantErr string
	}{
		{"unknown.yaml", "provder"},
		{"unknown.toml", "mapDates"},
		{"config.ini", "unsupported config format"},
		{"missing.yaml", "reading config"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadConfig(filepath.Join("testdata", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{Packages: []string{"./api"}, Compiler: compiler.Settings{ExcludeTypes: []string{"x.Y"}}}
	err := ApplyOverrides(cfg, []string{
		"compiler.mapDate=asDate",
		"compiler.sortDeclarations=true",
		"compiler.excludeTypes=a.B",
		"compiler.excludeTypes=c.D",
		"typescript.outputKind=global",
		"outDir=gen",
	})
	require.NoError(t, err)

	assert.Equal(t, "asDate", cfg.Compiler.MapDate)
	assert.True(t, cfg.Compiler.SortDeclarations)
	assert.Equal(t, []string{"a.B", "c.D"}, cfg.Compiler.ExcludeTypes)
	assert.Equal(t, typescript.OutputGlobal, cfg.TypeScript.OutputKind)
	assert.Equal(t, "gen", cfg.OutDir)
	assert.Equal(t, []string{"./api"}, cfg.Packages, "untouched keys keep their values")

	assert.NoError(t, ApplyOverrides(cfg, nil))
	assert.Error(t, ApplyOverrides(cfg, []string{"compiler.mapDate"}))
	assert.Error(t, ApplyOverrides(cfg, []string{"=x"}))
	assert.Error(t, ApplyOverrides(cfg, []string{"compiler.bogus=1"}))
	assert.Error(t, ApplyOverrides(cfg, []string{"compiler.sortDeclarations=maybe"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"source", Config{Packages: []string{"."}}, false},
		{"descriptors", Config{Provider: ProviderDescriptors, Descriptors: []string{descriptors}}, false},
		{"missing packages", Config{}, true},
		{"missing descriptors", Config{Provider: ProviderDescriptors}, true},
		{"unknown provider", Config{Provider: "reflection", Packages: []string{"."}}, true},
		{"compiler option", Config{Packages: []string{"."}, Compiler: compiler.Settings{EnumMapping: "bitset"}}, true},
		{"typescript option", Config{Packages: []string{"."}, TypeScript: typescript.Config{OutputKind: "commonjs"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromDescriptors(t *testing.T) {
	res, err := FromDescriptors(descriptors).Generate(background)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "types.ts", res.Files[0].Path)
	assert.Empty(t, res.Warnings())

	assertContainsAll(t, string(res.Output),
		typescript.DefaultHeader,
		"export interface Drawing {",
		"  shapes: ShapeUnion[];",
		"export interface Circle extends Shape {",
		"export type ShapeUnion = Circle;",
	)
}

func TestGenerateFromConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/config.yaml")
	require.NoError(t, err)
	cfg.OutDir = t.TempDir()

	res, err := Generate(background, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drawing", "Round", "Shape", "ShapeUnion"}, res.Model.Names())

	data, err := os.ReadFile(filepath.Join(cfg.OutDir, "api.d.ts"))
	require.NoError(t, err)
	assertContainsAll(t, string(data),
		"declare interface Round extends Shape {",
		"declare type ShapeUnion = Round;",
	)
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shapes.ts")
	res, err := FromDescriptors(descriptors).
		TypeScript(typescript.Config{OutputKind: typescript.OutputGlobal, OmitHeader: true}).
		ToFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shapes.ts", res.Files[0].Path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "/** Drawing is a list of shapes. */\ninterface Drawing {"))
}

type accountStatus string

const (
	statusActive accountStatus = "active"
	statusClosed accountStatus = "closed"
)

type account struct {
	ID     string        `json:"id"`
	Status accountStatus `json:"status"`
	Nick   *string       `json:"nick,omitempty"`
}

func TestFromTypes(t *testing.T) {
	res, err := FromTypes(account{}).
		Enum(statusActive, statusClosed).
		Generate(background)
	require.NoError(t, err)

	assertContainsAll(t, string(res.Output),
		"export interface account {",
		"  id: string;",
		"  status: accountStatus;",
		"  nick?: string;",
		`export type accountStatus = "active" | "closed";`,
	)

	_, err = FromTypes(account{}).Enum(statusActive, 1).Generate(background)
	assert.Error(t, err)
}

func TestFromPackages(t *testing.T) {
	res, err := FromPackages("github.com/broady/tsmodel/provider/testdata/model").
		Roots("Drawing").
		Generate(background)
	require.NoError(t, err)

	assertContainsAll(t, string(res.Output),
		"/** Drawing holds shapes. */",
		"  shapes: ShapeUnion[];",
		`  kind: "Circle" | "sq";`,
		"export interface Circle extends Shape {",
		`  kind: "Circle";`,
		"export type ShapeUnion = Circle | Square;",
	)
}

func TestFromProvider(t *testing.T) {
	p, err := provider.LoadFile(descriptors)
	require.NoError(t, err)
	roots, err := p.Roots()
	require.NoError(t, err)

	m, err := FromProvider(p, roots...).Settings(compiler.Settings{DisableTaggedUnions: true}).Compile(background)
	require.NoError(t, err)
	assert.Nil(t, m.Alias("ShapeUnion"))
}

func TestCompileErrors(t *testing.T) {
	_, err := FromDescriptors().Compile(background)
	assert.Error(t, err)

	_, err = FromDescriptors(descriptors).Roots("example.Nope").Compile(background)
	assert.ErrorIs(t, err, provider.ErrNotFound)

	_, err = FromDescriptors(descriptors).Settings(compiler.Settings{MapDate: "asWeeks"}).Generate(background)
	assert.Error(t, err)

	_, err = FromProvider(provider.NewStatic()).Compile(background)
	assert.Error(t, err, "no roots")
}

func TestDumpModel(t *testing.T) {
	m, err := FromDescriptors(descriptors).Compile(background)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DumpModel(&buf, m, DumpJSON))
	var decoded struct {
		Declarations []map[string]any
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotEmpty(t, decoded.Declarations)
	assert.Equal(t, "interface", decoded.Declarations[0]["kind"])
	assert.Equal(t, "Drawing", decoded.Declarations[0]["Name"])

	buf.Reset()
	require.NoError(t, DumpModel(&buf, m, DumpYAML))
	assertContainsAll(t, buf.String(), "kind: interface", "Name: Drawing")

	buf.Reset()
	require.NoError(t, DumpModel(&buf, m, DumpSpew))
	assertContainsAll(t, buf.String(), "InterfaceDecl", `"Drawing"`)

	assert.Error(t, DumpModel(&buf, m, "xml"))
}
