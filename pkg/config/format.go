package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a document syntax.
type Format string

// Supported document formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

var (
	// ErrUnsupportedFormat is returned for extensions no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNotMapping is returned when a document's top level is not a key/value mapping.
	ErrNotMapping = errors.New("document is not a key/value mapping")
)

// DescriptorPattern matches every file name the descriptor loader accepts.
const DescriptorPattern = "*.{yml,yaml,toml,json}"

// FormatFor returns the format implied by a file name.
// Files without an extension (such as ".mph-config") are YAML.
func FormatFor(path string) (Format, error) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || len(ext) == len(base) {
		return FormatYAML, nil
	}
	switch ext {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Decode parses data in the given format into Values.
// An empty document decodes to empty Values.
func Decode(data []byte, format Format) (Values, error) {
	raw := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return Values(raw), nil
	}

	switch format {
	case FormatYAML, FormatJSON:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", format, err)
		}
		if doc == nil {
			return Values(raw), nil
		}
		m, ok := normalize(doc).(map[string]any)
		if !ok {
			return nil, ErrNotMapping
		}
		raw = m
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("invalid toml: %w", err)
		}
		raw, _ = normalize(raw).(map[string]any)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return Values(raw), nil
}

// DecodeFile reads and decodes a document, choosing the decoder by extension.
func DecodeFile(path string) (Values, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// normalize rewrites decoder-specific container types into map[string]any
// and []any so that JSONPath evaluation sees one shape regardless of format.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalize(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}
