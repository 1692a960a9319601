package tsmodel

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/broady/tsmodel/ir"
)

// Dump formats.
const (
	DumpJSON = "json"
	DumpYAML = "yaml"
	DumpSpew = "spew"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// DumpModel writes m to w as JSON, YAML or a spew debug dump.
func DumpModel(w io.Writer, m *ir.Model, format string) error {
	switch format {
	case DumpJSON, "":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding model")
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err

	case DumpYAML:
		// YAML goes through the JSON encoding so declaration and type kinds
		// are tagged the same way.
		data, err := json.Marshal(m)
		if err != nil {
			return errors.Wrap(err, "encoding model")
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.Wrap(err, "decoding model")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding model")
		}
		return enc.Close()

	case DumpSpew:
		spewConfig.Fdump(w, m)
		return nil
	}
	return errors.WithHint(errors.Newf("unknown dump format %q", format), "use json, yaml or spew")
}
