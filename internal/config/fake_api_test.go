package config

import (
	"context"
	"fmt"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
)

// fakeAPI is an in-memory stand-in for a Sonarr instance. Write calls are
// recorded in order so specs can assert on sequencing across sections.
type fakeAPI struct {
	calls []string

	tags            *fakeCollection
	qualityDefs     *fakeCollection
	customFormats   *fakeCollection
	downloadClients *fakeCollection
	indexers        *fakeCollection
	exclusions      *fakeCollection
	profiles        *fakeCollection
	metadata        *fakeCollection

	downloadClientSchemas []api.Resource
	indexerSchemas        []api.Resource
	profileSchema         api.Resource

	mediaManagement *fakeSingleton
	hostConfig      *fakeSingleton
	uiConfig        *fakeSingleton
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{
		profileSchema:   api.Resource{"items": []any{}},
		mediaManagement: &fakeSingleton{resource: api.Resource{"id": float64(1)}},
		hostConfig:      &fakeSingleton{resource: api.Resource{"id": float64(1)}},
		uiConfig:        &fakeSingleton{resource: api.Resource{"id": float64(1)}},
	}
	f.tags = &fakeCollection{api: f, name: "tag"}
	f.qualityDefs = &fakeCollection{api: f, name: "quality_definition"}
	f.customFormats = &fakeCollection{api: f, name: "custom_format"}
	f.downloadClients = &fakeCollection{api: f, name: "download_client"}
	f.indexers = &fakeCollection{api: f, name: "indexer"}
	f.exclusions = &fakeCollection{api: f, name: "import_list_exclusion"}
	f.profiles = &fakeCollection{api: f, name: "quality_profile"}
	f.metadata = &fakeCollection{api: f, name: "metadata"}
	f.mediaManagement.api, f.mediaManagement.name = f, "media_management"
	f.hostConfig.api, f.hostConfig.name = f, "general"
	f.uiConfig.api, f.uiConfig.name = f, "ui"
	return f
}

func (f *fakeAPI) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeAPI) Tags() reconcile.CollectionClient            { return f.tags }
func (f *fakeAPI) QualityDefs() reconcile.CollectionClient     { return f.qualityDefs }
func (f *fakeAPI) CustomFormats() reconcile.CollectionClient   { return f.customFormats }
func (f *fakeAPI) DownloadClients() reconcile.CollectionClient { return f.downloadClients }
func (f *fakeAPI) Indexers() reconcile.CollectionClient        { return f.indexers }
func (f *fakeAPI) Exclusions() reconcile.CollectionClient      { return f.exclusions }
func (f *fakeAPI) QualityProfiles() reconcile.CollectionClient { return f.profiles }
func (f *fakeAPI) Metadata() reconcile.CollectionClient        { return f.metadata }

func (f *fakeAPI) DownloadClientSchemas() reconcile.SchemaCatalog {
	return fakeSchemas(f.downloadClientSchemas)
}

func (f *fakeAPI) IndexerSchemas() reconcile.SchemaCatalog {
	return fakeSchemas(f.indexerSchemas)
}

func (f *fakeAPI) QualityProfileSchema(ctx context.Context) (api.Resource, error) {
	return f.profileSchema, nil
}

func (f *fakeAPI) MediaManagement() reconcile.SingletonClient { return f.mediaManagement }
func (f *fakeAPI) HostConfig() reconcile.SingletonClient      { return f.hostConfig }
func (f *fakeAPI) UIConfig() reconcile.SingletonClient        { return f.uiConfig }

func (f *fakeAPI) TagIDs(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, r := range f.tags.resources {
		label, _ := r["label"].(string)
		out[label] = r.ID()
	}
	return out, nil
}

type fakeCollection struct {
	api    *fakeAPI
	name   string
	nextID int

	resources []api.Resource
}

func (c *fakeCollection) List(ctx context.Context) ([]api.Resource, error) {
	out := make([]api.Resource, len(c.resources))
	copy(out, c.resources)
	return out, nil
}

func (c *fakeCollection) Create(ctx context.Context, res api.Resource) (api.Resource, error) {
	c.nextID++
	stored := res.Clone()
	stored["id"] = c.nextID
	c.resources = append(c.resources, stored)
	c.api.record(c.name + ".create")
	return stored, nil
}

func (c *fakeCollection) Update(ctx context.Context, id int, res api.Resource) (api.Resource, error) {
	for i, existing := range c.resources {
		if existing.ID() == id {
			stored := res.Clone()
			stored["id"] = id
			c.resources[i] = stored
			c.api.record(c.name + ".update")
			return stored, nil
		}
	}
	return nil, fmt.Errorf("no %s with id %d", c.name, id)
}

func (c *fakeCollection) Delete(ctx context.Context, id int) error {
	for i, existing := range c.resources {
		if existing.ID() == id {
			c.resources = append(c.resources[:i], c.resources[i+1:]...)
			c.api.record(c.name + ".delete")
			return nil
		}
	}
	return fmt.Errorf("no %s with id %d", c.name, id)
}

func (c *fakeCollection) byName(name string) api.Resource {
	for _, r := range c.resources {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

type fakeSingleton struct {
	api  *fakeAPI
	name string

	resource api.Resource
}

func (s *fakeSingleton) Get(ctx context.Context) (api.Resource, error) {
	return s.resource.Clone(), nil
}

func (s *fakeSingleton) Update(ctx context.Context, res api.Resource) (api.Resource, error) {
	s.resource = res.Clone()
	s.api.record(s.name + ".update")
	return s.resource, nil
}

type fakeSchemas []api.Resource

func (s fakeSchemas) Schemas(ctx context.Context) ([]api.Resource, error) {
	return s, nil
}
