package reconcile

import (
	"github.com/go-logr/logr"

	"github.com/declarr/declarr/internal/remotemap"
)

// DiffOptions controls a single change detection pass.
type DiffOptions struct {
	// SetUnchanged includes unchanged fields in the returned attribute set.
	// Required for endpoints that demand the full object on every update.
	SetUnchanged bool

	// CheckUnmanaged also compares optional fields the local config leaves
	// unset. By default such fields are unmanaged and the remote value is
	// left alone.
	CheckUnmanaged bool
}

// Diff compares a local config object against its remote-derived counterpart
// field by field, in the mapping table's declaration order. Both inputs are
// local-shaped attribute maps; the returned attribute set is remote-shaped
// (post-encoder), with IsField entries accumulated under "fields".
//
// The boolean result reports whether any field differs. Every entry is
// always evaluated so the diagnostic sink sees the full comparison; there is
// no short-circuit on the first difference.
func Diff(
	log logr.Logger,
	tree string,
	entries []remotemap.Entry,
	local, remote map[string]any,
	opts DiffOptions,
) (bool, map[string]any, error) {
	changed := false
	attrs := map[string]any{}
	var fields []remotemap.Field

	set := func(e remotemap.Entry, v any) error {
		encoded, err := e.EncodeValue(v)
		if err != nil {
			return err
		}
		if e.IsField {
			fields = append(fields, remotemap.Field{Name: e.Remote, Value: encoded})
		} else {
			attrs[e.Remote] = encoded
		}
		return nil
	}

	for _, e := range entries {
		lv := local[e.Local]
		rv := remote[e.Local]

		if e.Optional && remotemap.IsUnset(lv) && !opts.CheckUnmanaged {
			log.V(1).Info("field unmanaged", "field", fieldPath(tree, e.Local))
			continue
		}

		if e.Equal(lv, rv) {
			log.V(1).Info("field unchanged", "field", fieldPath(tree, e.Local), "value", lv)
			if opts.SetUnchanged {
				if err := set(e, lv); err != nil {
					return false, nil, err
				}
			}
			continue
		}

		log.Info("field changed",
			"field", fieldPath(tree, e.Local),
			"from", rv,
			"to", lv,
		)
		if err := set(e, lv); err != nil {
			return false, nil, err
		}
		changed = true
	}

	if fields != nil {
		attrs["fields"] = fields
	}
	return changed, attrs, nil
}

func fieldPath(tree, field string) string {
	if tree == "" {
		return field
	}
	return tree + "." + field
}
