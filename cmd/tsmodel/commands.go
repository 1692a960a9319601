package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/broady/tsmodel"
	"github.com/broady/tsmodel/internal/logging"
	"github.com/broady/tsmodel/sink"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string   `help:"Configuration file (.yaml, .toml or .json)." short:"c" type:"existingfile"`
	Set     []string `help:"Override a configuration key, e.g. compiler.mapDate=asNumber." placeholder:"KEY=VALUE"`
	JSONLog bool     `help:"Log as JSON." name:"json-log"`
	Verbose bool     `help:"Enable debug logging." short:"v"`
}

// Source selects what to compile. Flags add to the configuration file.
type Source struct {
	Packages    []string `help:"Go package patterns to load." short:"p"`
	Descriptors []string `help:"Descriptor files to read instead of Go packages." short:"d" type:"existingfile"`
	Roots       []string `help:"Root type names (default: every exported type)." short:"r" name:"root"`
}

func (s *Source) load(g *Globals) (*tsmodel.Config, error) {
	cfg := &tsmodel.Config{}
	if g.Config != "" {
		var err error
		if cfg, err = tsmodel.LoadConfig(g.Config); err != nil {
			return nil, err
		}
	}
	if len(s.Descriptors) > 0 {
		cfg.Provider = tsmodel.ProviderDescriptors
		cfg.Descriptors = append(cfg.Descriptors, s.Descriptors...)
	}
	cfg.Packages = append(cfg.Packages, s.Packages...)
	if cfg.Provider == "" && len(cfg.Packages) == 0 && len(cfg.Descriptors) == 0 {
		cfg.Packages = []string{"."}
	}
	cfg.Roots = append(cfg.Roots, s.Roots...)

	if err := tsmodel.ApplyOverrides(cfg, g.Set); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *Globals) logger() (*zap.Logger, error) {
	return logging.New(g.JSONLog, g.Verbose)
}

type GenCmd struct {
	Source

	Out string `arg:"" optional:"" help:"Output file, or - for stdout (default: config outDir and typescript.fileName)."`
}

func (c *GenCmd) Run(g *Globals) error {
	cfg, err := c.load(g)
	if err != nil {
		return err
	}
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen := tsmodel.FromConfig(cfg).Logger(logger)
	ctx := context.Background()
	switch c.Out {
	case "":
		dir := cfg.OutDir
		if dir == "" {
			dir = "."
		}
		_, err = gen.WriteTo(ctx, sink.NewFilesystemSink(dir))
	case "-":
		_, err = gen.WriteTo(ctx, sink.NewWriterSink(os.Stdout))
	default:
		_, err = gen.ToFile(c.Out)
	}
	return err
}

type CheckCmd struct {
	Source
}

func (c *CheckCmd) Run(g *Globals) error {
	cfg, err := c.load(g)
	if err != nil {
		return err
	}
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m, err := tsmodel.FromConfig(cfg).Logger(logger).Compile(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d declarations\n", len(m.Declarations))
	for _, w := range m.Warnings {
		fmt.Printf("! %s: %s\n", w.Code, w.Message)
	}
	return nil
}

type DumpCmd struct {
	Source

	Format string `help:"Output format." enum:"json,yaml,spew" default:"json" short:"f"`
}

func (c *DumpCmd) Run(g *Globals) error {
	return c.dump(g, os.Stdout)
}

func (c *DumpCmd) dump(g *Globals, w io.Writer) error {
	cfg, err := c.load(g)
	if err != nil {
		return err
	}
	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m, err := tsmodel.FromConfig(cfg).Logger(logger).SkipValidation().Compile(context.Background())
	if err != nil {
		return err
	}
	return tsmodel.DumpModel(w, m, c.Format)
}
