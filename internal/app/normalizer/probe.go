package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"
)

// lookup walks a dotted path through nested maps. It is the single probing
// primitive: every canonical field is resolved by an ordered list of paths
// handed to one of the typed probe helpers below, so the fallback order per
// field stays auditable in one place.
func lookup(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur any = m
	for _, part := range parts {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringProbe(m map[string]any, paths ...string) string {
	for _, path := range paths {
		if v, ok := lookup(m, path); ok {
			if s, ok := asString(v); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func numberProbe(m map[string]any, paths ...string) (float64, bool) {
	for _, path := range paths {
		if v, ok := lookup(m, path); ok {
			if n, ok := asNumber(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func sliceProbe(m map[string]any, paths ...string) []any {
	for _, path := range paths {
		if v, ok := lookup(m, path); ok {
			if list, ok := v.([]any); ok {
				return list
			}
		}
	}
	return nil
}

func stringSliceProbe(m map[string]any, paths ...string) []string {
	var out []string
	for _, v := range sliceProbe(m, paths...) {
		if s, ok := asString(v); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
