// Package reconcile implements the generic diff/apply engine: the change
// detector for flat config objects and the keyed-collection reconciler that
// generalizes it over sets of sub-resources. It consumes the remote API only
// through the collaborator interfaces declared here; concrete clients live
// in internal/sonarr.
package reconcile

import (
	"context"

	"github.com/declarr/declarr/internal/api"
)

// CollectionClient is the per-resource-type API surface for a keyed
// collection of remote entities.
type CollectionClient interface {
	// List returns the current remote collection.
	List(ctx context.Context) ([]api.Resource, error)

	// Create adds a new entity and returns it with its remote-assigned id.
	Create(ctx context.Context, res api.Resource) (api.Resource, error)

	// Update replaces the entity with the given remote id.
	Update(ctx context.Context, id int, res api.Resource) (api.Resource, error)

	// Delete removes the entity with the given remote id.
	Delete(ctx context.Context, id int) error
}

// SingletonClient is the API surface for configuration endpoints that hold
// exactly one object (media management, host config, UI config). Updates
// require the full object, so the change detector runs with SetUnchanged.
type SingletonClient interface {
	Get(ctx context.Context) (api.Resource, error)
	Update(ctx context.Context, res api.Resource) (api.Resource, error)
}

// SchemaCatalog looks up the available implementation schemas for a
// polymorphic resource type. Each schema is a template resource carrying the
// implementation's default field list.
type SchemaCatalog interface {
	Schemas(ctx context.Context) ([]api.Resource, error)
}

// TagResolver resolves tag labels to remote tag ids. Sections resolve
// fresh per reconciliation pass, since earlier sections may create tags.
type TagResolver interface {
	TagIDs(ctx context.Context) (map[string]int, error)
}
