package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// IndexersSettings declares the indexers on the instance, keyed by indexer
// name.
type IndexersSettings struct {
	// DeleteUnmanaged removes remote indexers with no declaration.
	DeleteUnmanaged bool `koanf:"delete_unmanaged"`

	Definitions map[string]Indexer `koanf:"definitions"`
}

// Indexer is one indexer definition. Type selects the remote
// implementation.
type Indexer struct {
	// Type is one of newznab, fanzub or broadcasthenet.
	Type string `koanf:"type" validate:"required"`

	EnableRSS               bool `koanf:"enable_rss"`
	EnableAutomaticSearch   bool `koanf:"enable_automatic_search"`
	EnableInteractiveSearch bool `koanf:"enable_interactive_search"`

	Priority int      `koanf:"priority"`
	Tags     []string `koanf:"tags"`

	// BaseURL is the indexer endpoint.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// APIPath is the API endpoint path under the base URL.
	APIPath *string `koanf:"api_path"`

	APIKey *string `koanf:"api_key"`

	// Categories are the Newznab TV categories to search, by name.
	Categories []string `koanf:"categories"`

	// AnimeCategories are the categories used for anime series.
	AnimeCategories []string `koanf:"anime_categories"`
}

type indexerType struct {
	implementation string
	configContract string
	fields         func() []remotemap.Entry
}

var indexerTypes = map[string]indexerType{
	"newznab": {
		implementation: "Newznab",
		configContract: "NewznabSettings",
		fields: func() []remotemap.Entry {
			return []remotemap.Entry{
				{Local: "base_url", Remote: "baseUrl", IsField: true},
				optionalField("api_path", "apiPath"),
				optionalField("api_key", "apiKey"),
				categoriesField("categories", "categories"),
				categoriesField("anime_categories", "animeCategories"),
			}
		},
	},
	"fanzub": {
		implementation: "Fanzub",
		configContract: "FanzubSettings",
		fields: func() []remotemap.Entry {
			return []remotemap.Entry{
				{Local: "base_url", Remote: "baseUrl", IsField: true},
			}
		},
	},
	"broadcasthenet": {
		implementation: "BroadcastheNet",
		configContract: "BroadcastheNetSettings",
		fields: func() []remotemap.Entry {
			return []remotemap.Entry{
				{Local: "base_url", Remote: "baseUrl", IsField: true},
				optionalField("api_key", "apiKey"),
			}
		},
	},
}

func indexerTypeByImpl(implementation string) (string, indexerType, bool) {
	for name, t := range indexerTypes {
		if strings.EqualFold(t.implementation, implementation) {
			return name, t, true
		}
	}
	return "", indexerType{}, false
}

func indexerEntries(t indexerType, tagIDs map[string]int) []remotemap.Entry {
	entries := []remotemap.Entry{
		{Local: "enable_rss", Remote: "enableRss"},
		{Local: "enable_automatic_search", Remote: "enableAutomaticSearch"},
		{Local: "enable_interactive_search", Remote: "enableInteractiveSearch"},
		{Local: "priority", Remote: "priority"},
		tagsEntry(tagIDs),
	}
	return append(entries, t.fields()...)
}

type namedIndexer struct {
	Name string
	Spec Indexer
}

func (i namedIndexer) Key() string { return i.Name }

func (s IndexersSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	collection, err := s.collection(ctx, run)
	if err != nil {
		return false, err
	}
	return collection.Update(ctx, run.Log, s.items(), remote.Indexers.items())
}

func (s IndexersSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	collection, err := s.collection(ctx, run)
	if err != nil {
		return false, err
	}
	return collection.Delete(ctx, run.Log, s.items())
}

func (s IndexersSettings) collection(ctx context.Context, run *Run) (*reconcile.Collection[namedIndexer], error) {
	for _, name := range sortedKeys(s.Definitions) {
		if _, ok := indexerTypes[s.Definitions[name].Type]; !ok {
			return nil, &remotemap.ConfigUnsupportedError{
				Path:           fmt.Sprintf("indexers.definitions[%q].type", name),
				Implementation: s.Definitions[name].Type,
			}
		}
	}

	tagIDs, err := run.API.TagIDs(ctx)
	if err != nil {
		return nil, err
	}

	return &reconcile.Collection[namedIndexer]{
		Resource:  "indexer",
		Tree:      "indexers.definitions",
		Client:    run.API.Indexers(),
		Schemas:   run.API.IndexerSchemas(),
		RemoteKey: api.Resource.Name,
		Implementation: func(i namedIndexer) string {
			return indexerTypes[i.Spec.Type].implementation
		},
		RemoteMap: func(i namedIndexer) []remotemap.Entry {
			return indexerEntries(indexerTypes[i.Spec.Type], tagIDs)
		},
		LocalAttrs: func(i namedIndexer) (map[string]any, error) {
			return remotemap.FromStruct(i.Spec)
		},
		Name:            func(i namedIndexer) string { return i.Name },
		SetUnchanged:    true,
		DeleteUnmanaged: s.DeleteUnmanaged,
	}, nil
}

func (s IndexersSettings) items() []namedIndexer {
	items := make([]namedIndexer, 0, len(s.Definitions))
	for _, name := range sortedKeys(s.Definitions) {
		items = append(items, namedIndexer{Name: name, Spec: s.Definitions[name]})
	}
	return items
}

func (s *IndexersSettings) fetch(ctx context.Context, run *Run) error {
	tagIDs, err := run.API.TagIDs(ctx)
	if err != nil {
		return err
	}
	resources, err := run.API.Indexers().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexers: %w", err)
	}

	s.Definitions = make(map[string]Indexer, len(resources))
	for _, r := range resources {
		typeName, t, ok := indexerTypeByImpl(r.Implementation())
		if !ok {
			run.Log.V(1).Info("skipping indexer with unsupported implementation",
				"name", r.Name(), "implementation", r.Implementation())
			continue
		}
		attrs, err := remotemap.ToLocal(indexerEntries(t, tagIDs), r)
		if err != nil {
			return err
		}
		var indexer Indexer
		if err := remotemap.ToStruct(attrs, &indexer); err != nil {
			return err
		}
		indexer.Type = typeName
		s.Definitions[r.Name()] = indexer
	}
	return nil
}
