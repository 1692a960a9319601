package typescript

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"

	"github.com/broady/tsmodel/ir"
	"github.com/broady/tsmodel/sink"
)

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// Declarations is the number of declarations emitted.
	Declarations int

	// Warnings are the model's non-fatal compilation issues, passed through.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// Generate renders m and writes it to out as cfg.FileName.
func Generate(ctx context.Context, m *ir.Model, out sink.OutputSink, cfg Config) (*GenerateResult, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	if out == nil {
		return nil, errors.New("nil output sink")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	var buf bytes.Buffer
	if err := NewEmitter(cfg).Emit(&buf, m); err != nil {
		return nil, err
	}
	if err := out.WriteFile(ctx, cfg.FileName, buf.Bytes()); err != nil {
		return nil, errors.Wrapf(err, "writing %s", cfg.FileName)
	}

	return &GenerateResult{
		Files:        []OutputFile{{Path: cfg.FileName, Size: int64(buf.Len())}},
		Declarations: len(m.Declarations),
		Warnings:     m.Warnings,
	}, nil
}
