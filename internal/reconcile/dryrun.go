package reconcile

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/declarr/declarr/internal/api"
)

// DryRunCollection wraps a CollectionClient so reads pass through but every
// write is logged and suppressed.
type DryRunCollection struct {
	Log      logr.Logger
	Resource string
	Client   CollectionClient
}

func (d *DryRunCollection) List(ctx context.Context) ([]api.Resource, error) {
	return d.Client.List(ctx)
}

func (d *DryRunCollection) Create(ctx context.Context, res api.Resource) (api.Resource, error) {
	d.Log.Info("dry run, skipping create", "resource", d.Resource, "name", res.Name())
	return res, nil
}

func (d *DryRunCollection) Update(ctx context.Context, id int, res api.Resource) (api.Resource, error) {
	d.Log.Info("dry run, skipping update", "resource", d.Resource, "id", id)
	return res, nil
}

func (d *DryRunCollection) Delete(ctx context.Context, id int) error {
	d.Log.Info("dry run, skipping delete", "resource", d.Resource, "id", id)
	return nil
}

// DryRunSingleton wraps a SingletonClient the same way.
type DryRunSingleton struct {
	Log      logr.Logger
	Resource string
	Client   SingletonClient
}

func (d *DryRunSingleton) Get(ctx context.Context) (api.Resource, error) {
	return d.Client.Get(ctx)
}

func (d *DryRunSingleton) Update(ctx context.Context, res api.Resource) (api.Resource, error) {
	d.Log.Info("dry run, skipping update", "resource", d.Resource)
	return res, nil
}
