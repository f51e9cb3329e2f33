package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/doyel/gantt/pkg/errors"
	"github.com/doyel/gantt/pkg/gantt"
)

// Format is a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid dataset format: %q (must be one of: json, yaml, toml)", s)
	}
}

// ReadDataset reads the dataset file at path, choosing the decoder from the
// file extension.
func ReadDataset(path string) (*gantt.Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Decode reads one dataset document in the given format from r.
// Decode does not close r.
func Decode(r io.Reader, format Format) (*gantt.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var ds gantt.Dataset
	switch format {
	case FormatJSON:
		err = decodeJSON(data, &ds)
	case FormatYAML:
		err = decodeYAML(data, &ds)
	case FormatTOML:
		err = decodeTOML(data, &ds)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid dataset format: %q", format)
	}
	if err != nil {
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// DecodeJSON is Decode for an in-memory JSON document.
func DecodeJSON(data []byte) (*gantt.Dataset, error) {
	return Decode(bytes.NewReader(data), FormatJSON)
}

func decodeJSON(data []byte, ds *gantt.Dataset) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
	}
	if err := validateSchema(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "invalid dataset")
	}
	if err := json.Unmarshal(data, ds); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
	}
	return nil
}

func decodeYAML(data []byte, ds *gantt.Dataset) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(ds); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode yaml")
	}
	return nil
}

func decodeTOML(data []byte, ds *gantt.Dataset) error {
	md, err := toml.Decode(string(data), ds)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidDataset, "unknown toml keys: %s", strings.Join(keys, ", "))
	}
	return nil
}
