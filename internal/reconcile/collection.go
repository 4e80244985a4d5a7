package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/remotemap"
)

// Item is one entry of a keyed collection. The key is the entry's natural
// identity (name, label, external id); remote-assigned numeric ids never
// participate in matching.
type Item interface {
	Key() string
}

// Collection reconciles one keyed collection of sub-resources against the
// remote instance. Update performs creates and updates only; deletion of
// unmanaged remote entries is a separate, explicitly invoked pass gated by
// DeleteUnmanaged.
type Collection[T Item] struct {
	// Resource names the resource type in logs and metrics.
	Resource string

	// Tree is the configuration tree path prefix for diagnostics.
	Tree string

	// Client issues the remote list/create/update/delete calls.
	Client CollectionClient

	// Schemas, when set, marks the collection polymorphic: creates start
	// from the implementation's schema template so schema-mandated default
	// fields are preserved.
	Schemas SchemaCatalog

	// Implementation returns the remote implementation name for an entry.
	// Required when Schemas is set.
	Implementation func(T) string

	// RemoteKey extracts the natural key from a remote resource.
	RemoteKey func(api.Resource) string

	// RemoteMap returns the entry's mapping table.
	RemoteMap func(T) []remotemap.Entry

	// LocalAttrs converts an entry into local attribute form.
	LocalAttrs func(T) (map[string]any, error)

	// Name, when set, supplies the remote "name" attribute on create.
	Name func(T) string

	// SetUnchanged forces full-payload updates (required when the remote
	// API expects the complete object on every update).
	SetUnchanged bool

	// DeleteUnmanaged enables deletion of remote entries with no local
	// declaration during the delete pass.
	DeleteUnmanaged bool
}

// Update reconciles local entries against the remote collection: entries
// absent from the remote side are created, entries present on both sides are
// diffed and updated when they differ. Remote entries with no local
// counterpart are left alone here. Returns true if any mutation was issued.
func (c *Collection[T]) Update(ctx context.Context, log logr.Logger, local, remote []T) (bool, error) {
	apiResources, err := c.Client.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", c.Resource, err)
	}
	apiByKey := c.resourcesByKey(apiResources)
	remoteByKey := itemsByKey(remote)

	var schemas []api.Resource
	changed := false
	seen := make(map[string]bool, len(local))
	for _, item := range local {
		key := item.Key()
		if seen[key] {
			// Guard against key collisions: the first-declared entry wins.
			log.Info("duplicate key ignored", "resource", c.Resource, "key", key)
			continue
		}
		seen[key] = true
		tree := entryPath(c.Tree, key)

		prev, exists := remoteByKey[key]
		apiResource, live := apiByKey[key]
		if !exists || !live {
			if c.Schemas != nil && schemas == nil {
				schemas, err = c.Schemas.Schemas(ctx)
				if err != nil {
					return false, fmt.Errorf("failed to fetch %s schemas: %w", c.Resource, err)
				}
			}
			if err := c.create(ctx, log, tree, item, schemas); err != nil {
				return false, err
			}
			changed = true
			continue
		}

		updated, err := c.update(ctx, log, tree, item, prev, apiResource)
		if err != nil {
			return false, err
		}
		changed = changed || updated
	}

	return changed, nil
}

// Delete removes remote entries that have no local declaration, but only
// when DeleteUnmanaged is set; otherwise they are logged and left in place.
// The live remote list is walked directly, so entries with implementations
// the local model cannot represent still count as unmanaged. Returns true if
// any delete call was issued.
func (c *Collection[T]) Delete(ctx context.Context, log logr.Logger, local []T) (bool, error) {
	apiResources, err := c.Client.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list %s: %w", c.Resource, err)
	}
	localByKey := itemsByKey(local)

	changed := false
	seen := make(map[string]bool, len(apiResources))
	for _, apiResource := range apiResources {
		key := c.RemoteKey(apiResource)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, managed := localByKey[key]; managed {
			continue
		}
		tree := entryPath(c.Tree, key)

		if !c.DeleteUnmanaged {
			log.V(1).Info("unmanaged, leaving in place", "resource", c.Resource, "entry", tree)
			metrics.RecordUnmanaged(c.Resource)
			continue
		}

		if err := c.Client.Delete(ctx, apiResource.ID()); err != nil {
			return false, fmt.Errorf("failed to delete %s %q: %w", c.Resource, key, err)
		}
		log.Info("deleted", "resource", c.Resource, "entry", tree)
		metrics.RecordChange(c.Resource, "delete")
		changed = true
	}

	return changed, nil
}

func (c *Collection[T]) create(ctx context.Context, log logr.Logger, tree string, item T, schemas []api.Resource) error {
	localAttrs, err := c.LocalAttrs(item)
	if err != nil {
		return err
	}

	// Unset optional entries stay unmanaged on create as well; the schema
	// defaults pass through instead of being overwritten with nil.
	entries := make([]remotemap.Entry, 0, len(c.RemoteMap(item)))
	for _, e := range c.RemoteMap(item) {
		if e.Optional && remotemap.IsUnset(localAttrs[e.Local]) {
			continue
		}
		entries = append(entries, e)
	}
	remoteAttrs, err := remotemap.ToRemote(entries, localAttrs)
	if err != nil {
		return err
	}

	payload := api.Resource{}
	if c.Schemas != nil {
		schema, err := c.schemaFor(tree, item, schemas)
		if err != nil {
			return err
		}
		payload = schema.Clone()
		delete(payload, "id")
		delete(payload, "name")
	}

	computed := remotemap.FieldsFromAttr(remoteAttrs["fields"])
	for k, v := range remoteAttrs {
		if k == "fields" {
			continue
		}
		payload[k] = v
	}
	if base := remotemap.FieldsFromAttr(payload["fields"]); base != nil {
		payload["fields"] = remotemap.MergeFields(base, computed)
	} else if computed != nil {
		payload["fields"] = computed
	}
	if c.Name != nil {
		payload["name"] = c.Name(item)
	}

	if _, err := c.Client.Create(ctx, payload); err != nil {
		return fmt.Errorf("failed to create %s %q: %w", c.Resource, item.Key(), err)
	}
	log.Info("created", "resource", c.Resource, "entry", tree)
	metrics.RecordChange(c.Resource, "create")
	return nil
}

func (c *Collection[T]) update(
	ctx context.Context,
	log logr.Logger,
	tree string,
	item, prev T,
	apiResource api.Resource,
) (bool, error) {
	localAttrs, err := c.LocalAttrs(item)
	if err != nil {
		return false, err
	}
	remoteAttrs, err := c.LocalAttrs(prev)
	if err != nil {
		return false, err
	}

	changed, setAttrs, err := Diff(log, tree, c.RemoteMap(item), localAttrs, remoteAttrs, DiffOptions{
		SetUnchanged: c.SetUnchanged,
	})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	payload := apiResource.Clone()
	computed := remotemap.FieldsFromAttr(setAttrs["fields"])
	for k, v := range setAttrs {
		if k == "fields" {
			continue
		}
		payload[k] = v
	}
	if computed != nil {
		payload["fields"] = remotemap.MergeFields(remotemap.FieldsFromAttr(apiResource["fields"]), computed)
	}

	if _, err := c.Client.Update(ctx, apiResource.ID(), payload); err != nil {
		return false, fmt.Errorf("failed to update %s %q: %w", c.Resource, item.Key(), err)
	}
	log.Info("updated", "resource", c.Resource, "entry", tree)
	metrics.RecordChange(c.Resource, "update")
	return true, nil
}

func (c *Collection[T]) schemaFor(tree string, item T, schemas []api.Resource) (api.Resource, error) {
	impl := c.Implementation(item)
	for _, s := range schemas {
		if strings.EqualFold(s.Implementation(), impl) {
			return s, nil
		}
	}
	return nil, &remotemap.ConfigUnsupportedError{Path: tree, Implementation: impl}
}

func (c *Collection[T]) resourcesByKey(resources []api.Resource) map[string]api.Resource {
	out := make(map[string]api.Resource, len(resources))
	for _, r := range resources {
		key := c.RemoteKey(r)
		if _, ok := out[key]; !ok {
			out[key] = r
		}
	}
	return out
}

func itemsByKey[T Item](items []T) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		if _, ok := out[item.Key()]; !ok {
			out[item.Key()] = item
		}
	}
	return out
}

func entryPath(tree, key string) string {
	return fmt.Sprintf("%s[%q]", tree, key)
}
