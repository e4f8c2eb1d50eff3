// Package dataset loads hierarchical records from JSON, YAML or TOML files
// and exposes them to the weighted tree through configurable field names.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Sentinel errors.
var (
	ErrUnknownFormat = errors.New("dataset: unknown format")
	ErrDecode        = errors.New("dataset: decode failed")
	ErrNotObject     = errors.New("dataset: top-level value is not an object")
)

// Record is one decoded node. Child lists hold Records too.
type Record map[string]any

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Load reads and decodes the file at path. "-" reads JSON from stdin.
func Load(path string) (Record, error) {
	return LoadAs(path, "")
}

// LoadAs is Load with an explicit format. An empty format is derived from
// the extension, or JSON for stdin.
func LoadAs(path string, format Format) (Record, error) {
	if path == "-" {
		if format == "" {
			format = FormatJSON
		}

		return Decode(os.Stdin, format)
	}

	if format == "" {
		var err error

		format, err = FormatFromPath(path)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Decode(f, format)
}

// Decode reads one record tree in the given format.
func Decode(r io.Reader, format Format) (Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var doc any

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(raw, &doc)
	case FormatTOML:
		var table map[string]any
		_, err = toml.Decode(string(raw), &table)
		doc = table
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}

	rec, ok := normalize(doc).(Record)
	if !ok {
		return nil, ErrNotObject
	}

	return rec, nil
}

// normalize turns every decoder's map and list flavors into Record and []any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		rec := make(Record, len(t))
		for k, val := range t {
			rec[k] = normalize(val)
		}

		return rec
	case Record:
		return normalize(map[string]any(t))
	case map[any]any:
		rec := make(Record, len(t))
		for k, val := range t {
			rec[fmt.Sprint(k)] = normalize(val)
		}

		return rec
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = normalize(m)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}

		return out
	default:
		return v
	}
}
