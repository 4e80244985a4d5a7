package config

import (
	"context"
	"fmt"
	"strconv"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// ImportListsSettings declares the import list exclusions on the instance.
// Exclusions are keyed by TVDB id, the natural identity of the excluded
// series.
type ImportListsSettings struct {
	// DeleteUnmanagedExclusions removes remote exclusions with no
	// declaration.
	DeleteUnmanagedExclusions bool `koanf:"delete_unmanaged_exclusions"`

	Exclusions []ListExclusion `koanf:"exclusions"`
}

// ListExclusion stops import lists from ever adding one series.
type ListExclusion struct {
	TVDBID int    `koanf:"tvdb_id" validate:"required,min=1"`
	Title  string `koanf:"title" validate:"required"`
}

func (e ListExclusion) Key() string { return strconv.Itoa(e.TVDBID) }

func exclusionEntries() []remotemap.Entry {
	return []remotemap.Entry{
		{Local: "tvdb_id", Remote: "tvdbId"},
		{Local: "title", Remote: "title"},
	}
}

func (s ImportListsSettings) collection(run *Run) *reconcile.Collection[ListExclusion] {
	return &reconcile.Collection[ListExclusion]{
		Resource: "import_list_exclusion",
		Tree:     "import_lists.exclusions",
		Client:   run.API.Exclusions(),
		RemoteKey: func(r api.Resource) string {
			if id, ok := api.IntValue(r["tvdbId"]); ok {
				return strconv.Itoa(id)
			}
			return ""
		},
		RemoteMap: func(ListExclusion) []remotemap.Entry { return exclusionEntries() },
		LocalAttrs: func(e ListExclusion) (map[string]any, error) {
			return remotemap.FromStruct(e)
		},
		SetUnchanged:    true,
		DeleteUnmanaged: s.DeleteUnmanagedExclusions,
	}
}

func (s ImportListsSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return s.collection(run).Update(ctx, run.Log, s.Exclusions, remote.ImportLists.Exclusions)
}

func (s ImportListsSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return s.collection(run).Delete(ctx, run.Log, s.Exclusions)
}

func (s *ImportListsSettings) fetch(ctx context.Context, run *Run) error {
	resources, err := run.API.Exclusions().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list import list exclusions: %w", err)
	}

	s.Exclusions = make([]ListExclusion, 0, len(resources))
	for _, r := range resources {
		attrs, err := remotemap.ToLocal(exclusionEntries(), r)
		if err != nil {
			return err
		}
		var exclusion ListExclusion
		if err := remotemap.ToStruct(attrs, &exclusion); err != nil {
			return err
		}
		s.Exclusions = append(s.Exclusions, exclusion)
	}
	return nil
}
