package reconcile

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/remotemap"
)

// Singleton reconciles one singleton configuration resource (a settings
// object the remote exposes as a single GET/PUT endpoint rather than a
// collection).
type Singleton struct {
	Resource string
	Tree     string
	Client   SingletonClient

	// CheckUnmanaged treats unset optional local values as managed, diffing
	// them against the remote defaults instead of skipping them.
	CheckUnmanaged bool
}

// Update diffs local against the previously fetched remote attributes and,
// when they differ, pushes the full object back with the changed values
// overlaid. Returns true if a write was issued.
func (s *Singleton) Update(
	ctx context.Context,
	log logr.Logger,
	entries []remotemap.Entry,
	localAttrs, remoteAttrs map[string]any,
) (bool, error) {
	changed, setAttrs, err := Diff(log, s.Tree, entries, localAttrs, remoteAttrs, DiffOptions{
		SetUnchanged:   true,
		CheckUnmanaged: s.CheckUnmanaged,
	})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	resource, err := s.Client.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch %s: %w", s.Resource, err)
	}

	payload := resource.Clone()
	computed := remotemap.FieldsFromAttr(setAttrs["fields"])
	for k, v := range setAttrs {
		if k == "fields" {
			continue
		}
		payload[k] = v
	}
	if computed != nil {
		payload["fields"] = remotemap.MergeFields(remotemap.FieldsFromAttr(resource["fields"]), computed)
	}

	if _, err := s.Client.Update(ctx, payload); err != nil {
		return false, fmt.Errorf("failed to update %s: %w", s.Resource, err)
	}
	log.Info("updated", "resource", s.Resource)
	metrics.RecordChange(s.Resource, "update")
	return true, nil
}
