package config

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Values is a decoded configuration document.
type Values map[string]any

// Lookup returns the value at path and whether it exists.
// The path is either dotted ("markdown.hidden_files") or a JSONPath
// expression starting with "$".
func (v Values) Lookup(path string) (any, bool) {
	if v == nil || path == "" {
		return nil, false
	}
	x, err := compilePath(path)
	if err != nil {
		return nil, false
	}
	found := x.Get(map[string]any(v))
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// String returns the string at path, or def when it is absent or empty.
// Scalars of other types are formatted with fmt.
func (v Values) String(path, def string) string {
	raw, ok := v.Lookup(path)
	if !ok || raw == nil {
		return def
	}
	var s string
	switch t := raw.(type) {
	case string:
		s = t
	case map[string]any, []any:
		return def
	default:
		s = fmt.Sprint(t)
	}
	if s == "" {
		return def
	}
	return s
}

// Bool returns the boolean at path, or def.
func (v Values) Bool(path string, def bool) bool {
	raw, ok := v.Lookup(path)
	if !ok {
		return def
	}
	if b, isBool := raw.(bool); isBool {
		return b
	}
	return def
}

// Int returns the integer at path, or def.
func (v Values) Int(path string, def int) int {
	raw, ok := v.Lookup(path)
	if !ok {
		return def
	}
	switch n := raw.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Strings returns the list of strings at path. A single string is
// returned as a one-element list; non-string list items are formatted.
func (v Values) Strings(path string) []string {
	raw, ok := v.Lookup(path)
	if !ok || raw == nil {
		return nil
	}
	switch t := raw.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

// Map returns the nested mapping at path, or empty Values.
func (v Values) Map(path string) Values {
	raw, ok := v.Lookup(path)
	if !ok {
		return Values{}
	}
	if m, isMap := raw.(map[string]any); isMap {
		return Values(m)
	}
	return Values{}
}

func compilePath(path string) (jp.Expr, error) {
	if strings.HasPrefix(path, "$") {
		return jp.ParseString(path)
	}
	x := jp.R()
	for _, key := range strings.Split(path, ".") {
		if key == "" {
			return nil, fmt.Errorf("empty segment in %q", path)
		}
		x = x.C(key)
	}
	return x, nil
}
