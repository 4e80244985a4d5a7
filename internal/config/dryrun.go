package config

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
)

// DryRun wraps an API so that reads pass through and writes are logged and
// suppressed.
func DryRun(log logr.Logger, a API) API {
	return &dryRunAPI{log: log, api: a}
}

type dryRunAPI struct {
	log logr.Logger
	api API

	// Labels of tag creates that were suppressed. Later sections resolve
	// their tag references against TagIDs, so the suppressed labels must
	// still be visible there.
	createdTags []string
}

func (d *dryRunAPI) collection(resource string, c reconcile.CollectionClient) reconcile.CollectionClient {
	return &reconcile.DryRunCollection{Log: d.log, Resource: resource, Client: c}
}

func (d *dryRunAPI) singleton(resource string, c reconcile.SingletonClient) reconcile.SingletonClient {
	return &reconcile.DryRunSingleton{Log: d.log, Resource: resource, Client: c}
}

func (d *dryRunAPI) Tags() reconcile.CollectionClient {
	return &dryRunTags{
		CollectionClient: d.collection("tag", d.api.Tags()),
		owner:            d,
	}
}

type dryRunTags struct {
	reconcile.CollectionClient
	owner *dryRunAPI
}

func (t *dryRunTags) Create(ctx context.Context, res api.Resource) (api.Resource, error) {
	if label, ok := res["label"].(string); ok {
		t.owner.createdTags = append(t.owner.createdTags, label)
	}
	return t.CollectionClient.Create(ctx, res)
}

func (d *dryRunAPI) QualityDefs() reconcile.CollectionClient {
	return d.collection("quality_definition", d.api.QualityDefs())
}

func (d *dryRunAPI) CustomFormats() reconcile.CollectionClient {
	return d.collection("custom_format", d.api.CustomFormats())
}

func (d *dryRunAPI) DownloadClients() reconcile.CollectionClient {
	return d.collection("download_client", d.api.DownloadClients())
}

func (d *dryRunAPI) DownloadClientSchemas() reconcile.SchemaCatalog {
	return d.api.DownloadClientSchemas()
}

func (d *dryRunAPI) Indexers() reconcile.CollectionClient {
	return d.collection("indexer", d.api.Indexers())
}

func (d *dryRunAPI) IndexerSchemas() reconcile.SchemaCatalog {
	return d.api.IndexerSchemas()
}

func (d *dryRunAPI) Exclusions() reconcile.CollectionClient {
	return d.collection("import_list_exclusion", d.api.Exclusions())
}

func (d *dryRunAPI) QualityProfiles() reconcile.CollectionClient {
	return d.collection("quality_profile", d.api.QualityProfiles())
}

func (d *dryRunAPI) QualityProfileSchema(ctx context.Context) (api.Resource, error) {
	return d.api.QualityProfileSchema(ctx)
}

func (d *dryRunAPI) Metadata() reconcile.CollectionClient {
	return d.collection("metadata", d.api.Metadata())
}

func (d *dryRunAPI) MediaManagement() reconcile.SingletonClient {
	return d.singleton("media_management", d.api.MediaManagement())
}

func (d *dryRunAPI) HostConfig() reconcile.SingletonClient {
	return d.singleton("general", d.api.HostConfig())
}

func (d *dryRunAPI) UIConfig() reconcile.SingletonClient {
	return d.singleton("ui", d.api.UIConfig())
}

// TagIDs overlays labels whose creation was suppressed with placeholder ids
// so the rest of the dry run can still resolve their references.
func (d *dryRunAPI) TagIDs(ctx context.Context) (map[string]int, error) {
	ids, err := d.api.TagIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(d.createdTags) == 0 {
		return ids, nil
	}
	merged := make(map[string]int, len(ids)+len(d.createdTags))
	next := 0
	for label, id := range ids {
		merged[label] = id
		if id > next {
			next = id
		}
	}
	for _, label := range d.createdTags {
		if _, ok := merged[label]; !ok {
			next++
			merged[label] = next
		}
	}
	return merged, nil
}
