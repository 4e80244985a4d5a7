package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/metrics"
)

// TagsSettings declares the tags that should exist on the instance.
type TagsSettings struct {
	// Definitions lists the tag labels to create.
	Definitions []string `koanf:"definitions"`
}

// update creates any declared tag that does not exist remotely. Existing
// tags are never modified; a tag is just its label.
func (s TagsSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	existing := make(map[string]bool, len(remote.Tags.Definitions))
	for _, label := range remote.Tags.Definitions {
		existing[label] = true
	}

	changed := false
	for _, label := range s.Definitions {
		if existing[label] {
			continue
		}
		if _, err := run.API.Tags().Create(ctx, api.Resource{"label": label}); err != nil {
			return changed, fmt.Errorf("failed to create tag %q: %w", label, err)
		}
		run.Log.Info("created", "resource", "tag", "label", label)
		metrics.RecordChange("tag", "create")
		existing[label] = true
		changed = true
	}
	return changed, nil
}

// delete is a no-op. Tags are referenced by id from download clients,
// indexers and ad-hoc UI state, so unmanaged tags are never removed.
func (s TagsSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return false, nil
}

func (s *TagsSettings) fetch(ctx context.Context, run *Run) error {
	ids, err := run.API.TagIDs(ctx)
	if err != nil {
		return err
	}
	labels := make([]string, 0, len(ids))
	for label := range ids {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	s.Definitions = labels
	return nil
}
