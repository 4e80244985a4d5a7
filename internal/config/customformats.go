package config

import (
	"context"
	"fmt"
	"reflect"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// CustomFormatsSettings declares the custom formats on the instance, keyed
// by format name.
type CustomFormatsSettings struct {
	// DeleteUnmanaged removes remote custom formats with no declaration.
	DeleteUnmanaged bool `koanf:"delete_unmanaged"`

	Definitions map[string]CustomFormat `koanf:"definitions"`
}

// CustomFormat is one custom format: a named set of match conditions.
type CustomFormat struct {
	IncludeWhenRenaming bool `koanf:"include_custom_format_when_renaming"`

	// Conditions is keyed by condition name. A release matches the format
	// when it satisfies all required conditions and at least one of the
	// rest.
	Conditions map[string]FormatCondition `koanf:"conditions"`
}

// FormatCondition is one match condition of a custom format.
type FormatCondition struct {
	// Implementation names the condition type, e.g.
	// ReleaseTitleSpecification or SizeSpecification.
	Implementation string `koanf:"implementation" validate:"required"`

	Negate   bool `koanf:"negate"`
	Required bool `koanf:"required"`

	// Fields holds the implementation-specific settings.
	Fields map[string]any `koanf:"fields"`
}

type namedFormat struct {
	Name   string
	Format CustomFormat
}

func (f namedFormat) Key() string { return f.Name }

func customFormatEntries() []remotemap.Entry {
	return []remotemap.Entry{
		{Local: "include_custom_format_when_renaming", Remote: "includeCustomFormatWhenRenaming"},
		{
			Local:   "conditions",
			Remote:  "specifications",
			Encoder: encodeConditions,
			Compare: func(a, b any) bool {
				return reflect.DeepEqual(normalizeValue(a), normalizeValue(b))
			},
		},
	}
}

func (s CustomFormatsSettings) collection(run *Run) *reconcile.Collection[namedFormat] {
	return &reconcile.Collection[namedFormat]{
		Resource:        "custom_format",
		Tree:            "custom_formats.definitions",
		Client:          run.API.CustomFormats(),
		RemoteKey:       api.Resource.Name,
		RemoteMap:       func(namedFormat) []remotemap.Entry { return customFormatEntries() },
		LocalAttrs:      formatAttrs,
		Name:            func(f namedFormat) string { return f.Name },
		SetUnchanged:    true,
		DeleteUnmanaged: s.DeleteUnmanaged,
	}
}

func (s CustomFormatsSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return s.collection(run).Update(ctx, run.Log, s.items(), remote.CustomFormats.items())
}

func (s CustomFormatsSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return s.collection(run).Delete(ctx, run.Log, s.items())
}

func (s CustomFormatsSettings) items() []namedFormat {
	items := make([]namedFormat, 0, len(s.Definitions))
	for _, name := range sortedKeys(s.Definitions) {
		items = append(items, namedFormat{Name: name, Format: s.Definitions[name]})
	}
	return items
}

func (s *CustomFormatsSettings) fetch(ctx context.Context, run *Run) error {
	resources, err := run.API.CustomFormats().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list custom formats: %w", err)
	}

	s.Definitions = make(map[string]CustomFormat, len(resources))
	for _, r := range resources {
		format := CustomFormat{Conditions: map[string]FormatCondition{}}
		if v, ok := r["includeCustomFormatWhenRenaming"].(bool); ok {
			format.IncludeWhenRenaming = v
		}
		specs, _ := r["specifications"].([]any)
		for _, raw := range specs {
			spec, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := spec["name"].(string)
			cond := FormatCondition{
				Fields: remotemap.FieldValues(remotemap.FieldsFromAttr(spec["fields"])),
			}
			cond.Implementation, _ = spec["implementation"].(string)
			cond.Negate, _ = spec["negate"].(bool)
			cond.Required, _ = spec["required"].(bool)
			format.Conditions[name] = cond
		}
		s.Definitions[r.Name()] = format
	}
	return nil
}

// formatAttrs converts a format into diffable attribute form. Conditions
// become a list sorted by name so comparison is order independent.
func formatAttrs(f namedFormat) (map[string]any, error) {
	conditions := make([]any, 0, len(f.Format.Conditions))
	for _, name := range sortedKeys(f.Format.Conditions) {
		cond := f.Format.Conditions[name]
		conditions = append(conditions, map[string]any{
			"name":           name,
			"implementation": cond.Implementation,
			"negate":         cond.Negate,
			"required":       cond.Required,
			"fields":         cond.Fields,
		})
	}
	return map[string]any{
		"include_custom_format_when_renaming": f.Format.IncludeWhenRenaming,
		"conditions":                          conditions,
	}, nil
}

// encodeConditions turns the sorted condition list into the wire shape, with
// per-condition settings as {name, value} field lists.
func encodeConditions(v any) (any, error) {
	conditions, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected condition list, got %T", v)
	}

	specs := make([]any, 0, len(conditions))
	for _, raw := range conditions {
		cond, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected condition object, got %T", raw)
		}
		fieldValues, _ := cond["fields"].(map[string]any)
		fields := make([]remotemap.Field, 0, len(fieldValues))
		for _, name := range sortedKeys(fieldValues) {
			fields = append(fields, remotemap.Field{Name: name, Value: fieldValues[name]})
		}
		specs = append(specs, map[string]any{
			"name":           cond["name"],
			"implementation": cond["implementation"],
			"negate":         cond["negate"],
			"required":       cond["required"],
			"fields":         fields,
		})
	}
	return specs, nil
}

// normalizeValue maps all numeric types to float64 and rebuilds containers,
// so locally parsed values compare equal to their JSON round-tripped form.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}
