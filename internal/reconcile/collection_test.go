package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/remotemap"
)

type fakeClient struct {
	resources []api.Resource

	created []api.Resource
	updated map[int]api.Resource
	deleted []int
}

func (f *fakeClient) List(ctx context.Context) ([]api.Resource, error) {
	return f.resources, nil
}

func (f *fakeClient) Create(ctx context.Context, res api.Resource) (api.Resource, error) {
	f.created = append(f.created, res)
	return res, nil
}

func (f *fakeClient) Update(ctx context.Context, id int, res api.Resource) (api.Resource, error) {
	if f.updated == nil {
		f.updated = map[int]api.Resource{}
	}
	f.updated[id] = res
	return res, nil
}

func (f *fakeClient) Delete(ctx context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSchemas struct {
	schemas []api.Resource
}

func (f *fakeSchemas) Schemas(ctx context.Context) ([]api.Resource, error) {
	return f.schemas, nil
}

type testItem struct {
	name string
	impl string
	host string
}

func (i testItem) Key() string { return i.name }

func testCollection(client *fakeClient, schemas SchemaCatalog) *Collection[testItem] {
	return &Collection[testItem]{
		Resource:       "indexer",
		Tree:           "indexers",
		Client:         client,
		Schemas:        schemas,
		Implementation: func(i testItem) string { return i.impl },
		RemoteKey:      api.Resource.Name,
		RemoteMap: func(testItem) []remotemap.Entry {
			return []remotemap.Entry{
				{Local: "host", Remote: "host", IsField: true},
			}
		},
		LocalAttrs: func(i testItem) (map[string]any, error) {
			return map[string]any{"host": i.host}, nil
		},
		Name:         func(i testItem) string { return i.name },
		SetUnchanged: true,
	}
}

func TestCollectionCreateFromSchema(t *testing.T) {
	client := &fakeClient{}
	schemas := &fakeSchemas{schemas: []api.Resource{
		{
			"implementation": "Newznab",
			"configContract": "NewznabSettings",
			"fields": []any{
				map[string]any{"name": "host", "value": ""},
				map[string]any{"name": "apiPath", "value": "/api"},
			},
		},
	}}
	collection := testCollection(client, schemas)

	local := []testItem{{name: "nzb", impl: "Newznab", host: "indexer.example.com"}}
	changed, err := collection.Update(context.Background(), logr.Discard(), local, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	if len(client.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(client.created))
	}

	created := client.created[0]
	if created.Name() != "nzb" {
		t.Errorf("unexpected name %q", created.Name())
	}
	if created.Implementation() != "Newznab" {
		t.Errorf("unexpected implementation %q", created.Implementation())
	}
	wantFields := []remotemap.Field{
		{Name: "host", Value: "indexer.example.com"},
		{Name: "apiPath", Value: "/api"},
	}
	if diff := cmp.Diff(wantFields, created["fields"]); diff != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestCollectionCreateUnknownImplementation(t *testing.T) {
	client := &fakeClient{}
	collection := testCollection(client, &fakeSchemas{})

	local := []testItem{{name: "nzb", impl: "NoSuchThing", host: "x"}}
	_, err := collection.Update(context.Background(), logr.Discard(), local, nil)

	var unsupported *remotemap.ConfigUnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ConfigUnsupportedError, got %v", err)
	}
	if unsupported.Implementation != "NoSuchThing" {
		t.Errorf("unexpected implementation %q", unsupported.Implementation)
	}
	if len(client.created) != 0 {
		t.Error("nothing should have been created")
	}
}

func TestCollectionUpdateUsesRemoteID(t *testing.T) {
	client := &fakeClient{resources: []api.Resource{
		{
			"id":   float64(7),
			"name": "nzb",
			"fields": []any{
				map[string]any{"name": "host", "value": "old-host"},
				map[string]any{"name": "apiPath", "value": "/api"},
			},
		},
	}}
	collection := testCollection(client, &fakeSchemas{})

	local := []testItem{{name: "nzb", impl: "Newznab", host: "new-host"}}
	remote := []testItem{{name: "nzb", impl: "Newznab", host: "old-host"}}
	changed, err := collection.Update(context.Background(), logr.Discard(), local, remote)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}

	payload, ok := client.updated[7]
	if !ok {
		t.Fatalf("expected update of id 7, got %v", client.updated)
	}
	wantFields := []remotemap.Field{
		{Name: "host", Value: "new-host"},
		{Name: "apiPath", Value: "/api"},
	}
	if diff := cmp.Diff(wantFields, payload["fields"]); diff != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestCollectionUpdateNoChange(t *testing.T) {
	client := &fakeClient{resources: []api.Resource{
		{"id": float64(7), "name": "nzb"},
	}}
	collection := testCollection(client, &fakeSchemas{})

	items := []testItem{{name: "nzb", impl: "Newznab", host: "same"}}
	changed, err := collection.Update(context.Background(), logr.Discard(), items, items)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if changed {
		t.Error("identical local and remote must not report a change")
	}
	if len(client.updated) != 0 {
		t.Errorf("no update call expected, got %v", client.updated)
	}
}

func TestCollectionDeleteRequiresOptIn(t *testing.T) {
	client := &fakeClient{resources: []api.Resource{
		{"id": float64(3), "name": "stale"},
	}}
	collection := testCollection(client, &fakeSchemas{})

	changed, err := collection.Delete(context.Background(), logr.Discard(), nil)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if changed || len(client.deleted) != 0 {
		t.Error("unmanaged resources must survive without DeleteUnmanaged")
	}

	collection.DeleteUnmanaged = true
	changed, err = collection.Delete(context.Background(), logr.Discard(), nil)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	if diff := cmp.Diff([]int{3}, client.deleted); diff != "" {
		t.Errorf("unexpected deletes (-want +got):\n%s", diff)
	}
}

func TestCollectionDeleteKeepsManaged(t *testing.T) {
	client := &fakeClient{resources: []api.Resource{
		{"id": float64(3), "name": "keep"},
	}}
	collection := testCollection(client, &fakeSchemas{})
	collection.DeleteUnmanaged = true

	items := []testItem{{name: "keep", impl: "Newznab", host: "x"}}
	changed, err := collection.Delete(context.Background(), logr.Discard(), items)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if changed || len(client.deleted) != 0 {
		t.Error("declared resources must never be deleted")
	}
}
