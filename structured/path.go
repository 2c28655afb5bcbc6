package structured

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Lookup walks a decoded JSON value along a dotted path. Numeric segments
// index into arrays: "imageModule.imagePathList.0".
func Lookup(v any, path string) any {
	if path == "" {
		return v
	}
	current := v
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			current = node[idx]
		default:
			return nil
		}
	}
	return current
}

// String returns the value at path as trimmed text. Numbers are formatted
// without loss, so long numeric ids survive.
func String(v any, path string) string {
	switch s := Lookup(v, path).(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// FirstString returns the first non-empty string among paths
func FirstString(v any, paths ...string) string {
	for _, p := range paths {
		if s := String(v, p); s != "" {
			return s
		}
	}
	return ""
}

// Float returns the numeric value at path. Numeric strings are accepted.
func Float(v any, path string) (float64, bool) {
	switch n := Lookup(v, path).(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Int returns the integer value at path
func Int(v any, path string) (int64, bool) {
	switch n := Lookup(v, path).(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		return int64(f), err == nil
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// Bool returns the boolean value at path. ok is false when the value is
// missing or not a boolean.
func Bool(v any, path string) (value bool, ok bool) {
	switch b := Lookup(v, path).(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	case json.Number:
		return b.String() != "0", true
	}
	return false, false
}

// Map returns the object at path, or nil
func Map(v any, path string) map[string]any {
	m, _ := Lookup(v, path).(map[string]any)
	return m
}

// Slice returns the array at path. A single object is wrapped so callers can
// range over "one or many" shapes uniformly.
func Slice(v any, path string) []any {
	switch node := Lookup(v, path).(type) {
	case []any:
		return node
	case map[string]any:
		return []any{node}
	case string:
		if node != "" {
			return []any{node}
		}
	}
	return nil
}

// Strings collects the string values of the array at path
func Strings(v any, path string) []string {
	var out []string
	for _, item := range Slice(v, path) {
		if s := String(item, ""); s != "" {
			out = append(out, s)
		}
	}
	return out
}
