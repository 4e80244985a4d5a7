// Package sonarr binds the generic reconcile engine to the Sonarr v3 HTTP
// API: per-resource collection clients, singleton config endpoints, schema
// catalogs and the tag id resolver.
package sonarr

import (
	"context"
	"fmt"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
)

// Client bundles the per-resource API clients for one Sonarr instance.
type Client struct {
	c *api.Client

	tags            *rest
	qualityDefs     *rest
	customFormats   *rest
	downloadClients *rest
	indexers        *rest
	exclusions      *rest
	qualityProfiles *rest
	metadata        *rest

	mediaManagement *singleton
	hostConfig      *singleton
	uiConfig        *singleton
}

// New builds a Client from an already configured HTTP client.
func New(c *api.Client) *Client {
	return &Client{
		c:               c,
		tags:            &rest{c: c, path: "/api/v3/tag"},
		qualityDefs:     &rest{c: c, path: "/api/v3/qualitydefinition"},
		customFormats:   &rest{c: c, path: "/api/v3/customformat"},
		downloadClients: &rest{c: c, path: "/api/v3/downloadclient"},
		indexers:        &rest{c: c, path: "/api/v3/indexer"},
		exclusions:      &rest{c: c, path: "/api/v3/importlistexclusion"},
		qualityProfiles: &rest{c: c, path: "/api/v3/qualityprofile"},
		metadata:        &rest{c: c, path: "/api/v3/metadata"},
		mediaManagement: &singleton{c: c, path: "/api/v3/config/mediamanagement"},
		hostConfig:      &singleton{c: c, path: "/api/v3/config/host"},
		uiConfig:        &singleton{c: c, path: "/api/v3/config/ui"},
	}
}

func (c *Client) Tags() reconcile.CollectionClient            { return c.tags }
func (c *Client) QualityDefs() reconcile.CollectionClient     { return c.qualityDefs }
func (c *Client) CustomFormats() reconcile.CollectionClient   { return c.customFormats }
func (c *Client) DownloadClients() reconcile.CollectionClient { return c.downloadClients }
func (c *Client) Indexers() reconcile.CollectionClient        { return c.indexers }
func (c *Client) Exclusions() reconcile.CollectionClient      { return c.exclusions }
func (c *Client) QualityProfiles() reconcile.CollectionClient { return c.qualityProfiles }
func (c *Client) Metadata() reconcile.CollectionClient        { return c.metadata }

func (c *Client) MediaManagement() reconcile.SingletonClient { return c.mediaManagement }
func (c *Client) HostConfig() reconcile.SingletonClient      { return c.hostConfig }
func (c *Client) UIConfig() reconcile.SingletonClient        { return c.uiConfig }

// DownloadClientSchemas lists the implementation templates for download
// clients.
func (c *Client) DownloadClientSchemas() reconcile.SchemaCatalog {
	return &schemaList{c: c.c, path: "/api/v3/downloadclient/schema"}
}

// IndexerSchemas lists the implementation templates for indexers.
func (c *Client) IndexerSchemas() reconcile.SchemaCatalog {
	return &schemaList{c: c.c, path: "/api/v3/indexer/schema"}
}

// QualityProfileSchema fetches the quality profile template. Unlike the
// other schema endpoints this returns a single object, not a list.
func (c *Client) QualityProfileSchema(ctx context.Context) (api.Resource, error) {
	var res api.Resource
	if err := c.c.Get(ctx, "/api/v3/qualityprofile/schema", &res); err != nil {
		return nil, fmt.Errorf("failed to fetch quality profile schema: %w", err)
	}
	return res, nil
}

// TagIDs resolves tag labels to their remote ids. Resolved fresh on every
// call, since the tag section may have created tags earlier in the same
// pass.
func (c *Client) TagIDs(ctx context.Context) (map[string]int, error) {
	resources, err := c.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(resources))
	for _, r := range resources {
		label, _ := r["label"].(string)
		out[label] = r.ID()
	}
	return out, nil
}

// rest is a CollectionClient over one Sonarr collection endpoint.
type rest struct {
	c    *api.Client
	path string
}

func (r *rest) List(ctx context.Context) ([]api.Resource, error) {
	var out []api.Resource
	if err := r.c.Get(ctx, r.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rest) Create(ctx context.Context, res api.Resource) (api.Resource, error) {
	var out api.Resource
	if err := r.c.Post(ctx, r.path, res, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rest) Update(ctx context.Context, id int, res api.Resource) (api.Resource, error) {
	var out api.Resource
	if err := r.c.Put(ctx, fmt.Sprintf("%s/%d", r.path, id), res, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *rest) Delete(ctx context.Context, id int) error {
	return r.c.Delete(ctx, fmt.Sprintf("%s/%d", r.path, id))
}

// singleton is a SingletonClient over one Sonarr config endpoint. Updates go
// to <path>/<id> with the object's own id, which Sonarr requires even for
// single-object resources.
type singleton struct {
	c    *api.Client
	path string
}

func (s *singleton) Get(ctx context.Context) (api.Resource, error) {
	var out api.Resource
	if err := s.c.Get(ctx, s.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *singleton) Update(ctx context.Context, res api.Resource) (api.Resource, error) {
	var out api.Resource
	if err := s.c.Put(ctx, fmt.Sprintf("%s/%d", s.path, res.ID()), res, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// schemaList is a SchemaCatalog over one Sonarr schema endpoint.
type schemaList struct {
	c    *api.Client
	path string
}

func (s *schemaList) Schemas(ctx context.Context) ([]api.Resource, error) {
	var out []api.Resource
	if err := s.c.Get(ctx, s.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
