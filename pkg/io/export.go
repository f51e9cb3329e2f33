package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/doyel/gantt/pkg/gantt"
)

// WriteDataset writes ds to path in the format implied by its extension.
func WriteDataset(ds *gantt.Dataset, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, ds, format); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Encode writes ds to w. The output can be read back with [Decode].
func Encode(w io.Writer, ds *gantt.Dataset, format Format) error {
	if ds.Resources == nil {
		c := *ds
		c.Resources = []gantt.Resource{}
		ds = &c
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(ds); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	default:
		return fmt.Errorf("invalid dataset format: %q", format)
	}
	return nil
}
