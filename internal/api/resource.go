package api

// Resource is the untyped attribute representation of a remote entity, as
// decoded from a JSON response. The engine only ever inspects the handful of
// well-known attributes below; everything else passes through opaquely so
// that full-object updates preserve attributes the engine does not manage.
type Resource map[string]any

// ID returns the remote-assigned identifier, or 0 when absent.
// Remote ids are only ever used to address update and delete calls; matching
// between local and remote entries is always done on natural keys.
func (r Resource) ID() int {
	v, _ := IntValue(r["id"])
	return v
}

// Name returns the "name" attribute, or "" when absent.
func (r Resource) Name() string {
	s, _ := r["name"].(string)
	return s
}

// Implementation returns the "implementation" attribute, or "" when absent.
func (r Resource) Implementation() string {
	s, _ := r["implementation"].(string)
	return s
}

// Clone returns a copy of the resource. The top-level map is copied so the
// caller can overlay attributes without mutating the original; attribute
// values are shared.
func (r Resource) Clone() Resource {
	out := make(Resource, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IntValue extracts an integer from a decoded JSON value. JSON numbers
// decode as float64, but values built in-process may already be ints.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	default:
		return 0, false
	}
}
