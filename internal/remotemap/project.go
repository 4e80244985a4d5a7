package remotemap

import "fmt"

// ToLocal projects a remote attribute set into local attribute form using
// the given mapping table. Entries marked IsField are looked up in the
// resource's {name, value} field list; all others read the top-level
// attribute directly. A required attribute that is absent with neither a
// default nor a decoder to handle it is a ConfigError.
func ToLocal(entries []Entry, remote map[string]any) (map[string]any, error) {
	fields := FieldValues(FieldsFromAttr(remote["fields"]))

	local := make(map[string]any, len(entries))
	for _, e := range entries {
		var raw any
		var present bool
		if e.IsField {
			raw, present = fields[e.Remote]
		} else {
			raw, present = remote[e.Remote]
		}

		if !present {
			if e.HasDefault {
				raw = e.Default
			} else if e.Decoder == nil {
				return nil, &ConfigError{
					Path:    e.Local,
					Message: fmt.Sprintf("required remote attribute %q is absent", e.Remote),
				}
			}
		}

		value, err := e.decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q from remote attribute %q: %w", e.Local, e.Remote, err)
		}
		local[e.Local] = value
	}
	return local, nil
}

// ToRemote projects a local attribute set into remote attribute form.
// Entries marked IsField accumulate into a "fields" attribute holding the
// computed {name, value} pairs; the caller merges those over the resource's
// existing field list with MergeFields so unrelated entries pass through.
func ToRemote(entries []Entry, local map[string]any) (map[string]any, error) {
	remote := make(map[string]any, len(entries))
	var fields []Field

	for _, e := range entries {
		value, err := e.EncodeValue(local[e.Local])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q for remote attribute %q: %w", e.Local, e.Remote, err)
		}
		if e.IsField {
			fields = append(fields, Field{Name: e.Remote, Value: value})
		} else {
			remote[e.Remote] = value
		}
	}

	if fields != nil {
		remote["fields"] = fields
	}
	return remote, nil
}
