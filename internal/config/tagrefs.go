package config

import (
	"fmt"
	"sort"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/remotemap"
)

// tagsEntry maps a local tag label list onto the remote tag id list.
// Encoding resolves labels through the given id map and sorts the result;
// decoding maps ids back to labels. Comparison is order independent.
func tagsEntry(tagIDs map[string]int) remotemap.Entry {
	labels := make(map[int]string, len(tagIDs))
	for label, id := range tagIDs {
		labels[id] = label
	}

	return remotemap.Entry{
		Local:  "tags",
		Remote: "tags",
		Set:    true,
		Encoder: func(v any) (any, error) {
			names, err := toStringSlice(v)
			if err != nil {
				return nil, err
			}
			ids := make([]int, 0, len(names))
			for _, name := range names {
				id, ok := tagIDs[name]
				if !ok {
					return nil, fmt.Errorf("tag %q does not exist on the instance", name)
				}
				ids = append(ids, id)
			}
			sort.Ints(ids)
			return ids, nil
		},
		Decoder: func(v any) (any, error) {
			ids, err := toIntSlice(v)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(ids))
			for _, id := range ids {
				label, ok := labels[id]
				if !ok {
					label = fmt.Sprintf("%d", id)
				}
				names = append(names, label)
			}
			sort.Strings(names)
			return names, nil
		},
	}
}

func toStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", v)
	}
}

func toIntSlice(v any) ([]int, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []int:
		return val, nil
	case []any:
		out := make([]int, 0, len(val))
		for _, item := range val {
			n, ok := api.IntValue(item)
			if !ok {
				return nil, fmt.Errorf("expected integer, got %T", item)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected integer list, got %T", v)
	}
}
