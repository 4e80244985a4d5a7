package config

import (
	"context"
	"fmt"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// QualitySettings declares per-quality file size limits. The set of quality
// definitions is fixed by the instance; entries are matched by quality name
// and only ever updated, never created or deleted.
type QualitySettings struct {
	Definitions map[string]QualityDefinition `koanf:"definitions"`
}

// QualityDefinition is the size window for one quality.
type QualityDefinition struct {
	// Title overrides the display title. Empty means the quality name.
	Title string `koanf:"title"`

	// Min is the minimum size in MB per minute.
	Min float64 `koanf:"min" validate:"min=0"`

	// Max is the maximum size in MB per minute. Unset means unlimited.
	Max *float64 `koanf:"max"`
}

// Size limits compare at one decimal place, the precision the instance
// stores them at.
const qualitySizePrecision = 1

func qualityEntries(qualityName string) []remotemap.Entry {
	normalizeTitle := func(v any) any {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
		return qualityName
	}
	return []remotemap.Entry{
		{
			Local:   "title",
			Remote:  "title",
			Encoder: func(v any) (any, error) { return normalizeTitle(v), nil },
			Compare: func(a, b any) bool { return normalizeTitle(a) == normalizeTitle(b) },
		},
		{Local: "min", Remote: "minSize", Precision: qualitySizePrecision},
		{
			Local:     "max",
			Remote:    "maxSize",
			Precision: qualitySizePrecision,
			// maxSize is absent when unlimited; nil maps to nil.
			Decoder: func(v any) (any, error) { return v, nil },
		},
	}
}

func (s QualitySettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	if len(s.Definitions) == 0 {
		return false, nil
	}

	resources, err := run.API.QualityDefs().List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list quality definitions: %w", err)
	}
	byName := make(map[string]api.Resource, len(resources))
	for _, r := range resources {
		byName[qualityDefName(r)] = r
	}

	changed := false
	for _, name := range sortedKeys(s.Definitions) {
		def := s.Definitions[name]
		resource, ok := byName[name]
		if !ok {
			return changed, &remotemap.ConfigError{
				Path:    fmt.Sprintf("quality.definitions[%q]", name),
				Message: "no such quality definition on the instance",
			}
		}

		entries := qualityEntries(name)
		remoteAttrs, err := remotemap.ToLocal(entries, resource)
		if err != nil {
			return changed, err
		}
		localAttrs := map[string]any{"title": def.Title, "min": def.Min, "max": def.Max}

		defChanged, setAttrs, err := reconcile.Diff(
			run.Log, fmt.Sprintf("quality.definitions[%q]", name),
			entries, localAttrs, remoteAttrs,
			reconcile.DiffOptions{SetUnchanged: true},
		)
		if err != nil {
			return changed, err
		}
		if !defChanged {
			continue
		}

		payload := resource.Clone()
		for k, v := range setAttrs {
			payload[k] = v
		}
		if _, err := run.API.QualityDefs().Update(ctx, resource.ID(), payload); err != nil {
			return changed, fmt.Errorf("failed to update quality definition %q: %w", name, err)
		}
		run.Log.Info("updated", "resource", "quality_definition", "name", name)
		metrics.RecordChange("quality_definition", "update")
		changed = true
	}
	return changed, nil
}

// delete is a no-op; the quality definition set is fixed by the instance.
func (s QualitySettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return false, nil
}

func (s *QualitySettings) fetch(ctx context.Context, run *Run) error {
	resources, err := run.API.QualityDefs().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list quality definitions: %w", err)
	}

	s.Definitions = make(map[string]QualityDefinition, len(resources))
	for _, r := range resources {
		name := qualityDefName(r)
		attrs, err := remotemap.ToLocal(qualityEntries(name), r)
		if err != nil {
			return err
		}
		var def QualityDefinition
		if err := remotemap.ToStruct(attrs, &def); err != nil {
			return err
		}
		s.Definitions[name] = def
	}
	return nil
}

func qualityDefName(r api.Resource) string {
	if q, ok := r["quality"].(map[string]any); ok {
		if name, ok := q["name"].(string); ok {
			return name
		}
	}
	return r.Name()
}
