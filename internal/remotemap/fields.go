package remotemap

// Field is one entry in the {name, value} list used by polymorphic remote
// resources to carry implementation-specific parameters.
type Field struct {
	Name  string `json:"name" koanf:"name"`
	Value any    `json:"value" koanf:"value"`
}

// FieldsFromAttr normalizes a decoded "fields" attribute into a []Field.
// JSON decoding yields []any of map[string]any; values built in-process may
// already be []Field.
func FieldsFromAttr(v any) []Field {
	switch fields := v.(type) {
	case []Field:
		return fields
	case []any:
		out := make([]Field, 0, len(fields))
		for _, f := range fields {
			m, ok := f.(map[string]any)
			if !ok {
				continue
			}
			name, ok := m["name"].(string)
			if !ok {
				continue
			}
			out = append(out, Field{Name: name, Value: m["value"]})
		}
		return out
	default:
		return nil
	}
}

// FieldValues returns the field list as a name-to-value lookup map.
// Only presence matters for absent-field handling, so a field explicitly
// carrying a nil value still counts as present.
func FieldValues(fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

// MergeFields overlays computed field values onto a base field list,
// producing a new slice. The base list defines the result's members and
// order: base entries not named in overrides pass through unchanged,
// preserving schema-mandated fields supplied by the remote side, and
// override entries with no base counterpart are dropped. Neither input is
// mutated.
func MergeFields(base, overrides []Field) []Field {
	values := FieldValues(overrides)
	names := make(map[string]bool, len(overrides))
	for _, f := range overrides {
		names[f.Name] = true
	}

	out := make([]Field, 0, len(base))
	for _, f := range base {
		if names[f.Name] {
			out = append(out, Field{Name: f.Name, Value: values[f.Name]})
		} else {
			out = append(out, f)
		}
	}
	return out
}
