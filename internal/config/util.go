package config

import (
	"fmt"
	"sort"
)

// sortedKeys returns a map's keys in sorted order, so reconciliation and
// logging walk definitions deterministically.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// enumEncoder maps a local enum name to its remote value. Nil passes
// through so optional entries stay unmanaged.
func enumEncoder(values map[string]any) func(any) (any, error) {
	return func(v any) (any, error) {
		s, ok := enumString(v)
		if !ok {
			return nil, fmt.Errorf("expected enum name, got %T", v)
		}
		if s == nil {
			return nil, nil
		}
		remote, ok := values[*s]
		if !ok {
			return nil, fmt.Errorf("invalid value %q", *s)
		}
		return remote, nil
	}
}

// enumDecoder maps a remote value back to its local enum name. Unknown
// remote values decode to their string form so they surface in diffs.
func enumDecoder(values map[string]any) func(any) (any, error) {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		for name, remote := range values {
			if remote == v {
				return name, nil
			}
		}
		return fmt.Sprintf("%v", v), nil
	}
}

func enumString(v any) (*string, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case string:
		return &val, true
	case *string:
		return val, true
	default:
		return nil, false
	}
}
