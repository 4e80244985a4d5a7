package config

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/remotemap"
)

// ProfilesSettings declares the quality profiles on the instance, keyed by
// profile name.
type ProfilesSettings struct {
	// DeleteUnmanaged removes remote quality profiles with no declaration.
	DeleteUnmanaged bool `koanf:"delete_unmanaged"`

	Definitions map[string]QualityProfile `koanf:"definitions"`
}

// QualityProfile is one quality profile. Qualities lists the allowed
// qualities from most to least preferred; qualities the instance knows but
// the profile omits are kept in the profile as not allowed.
type QualityProfile struct {
	UpgradesAllowed bool `koanf:"upgrades_allowed"`

	// UpgradeUntil names the quality or group upgrades stop at. Defaults
	// to the most preferred entry.
	UpgradeUntil string `koanf:"upgrade_until"`

	Qualities []QualityGroup `koanf:"qualities" validate:"min=1,dive"`
}

// QualityGroup is one entry of a profile's quality list: either a single
// quality (no members) or a named group of qualities ranked together.
type QualityGroup struct {
	Name    string   `koanf:"name" validate:"required"`
	Members []string `koanf:"members"`
}

// Group ids assigned on create start here, clear of the instance's quality
// ids.
const profileGroupIDBase = 1000

func (s ProfilesSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	if len(s.Definitions) == 0 {
		return false, nil
	}

	resources, err := run.API.QualityProfiles().List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list quality profiles: %w", err)
	}
	byName := make(map[string]api.Resource, len(resources))
	for _, r := range resources {
		if _, ok := byName[r.Name()]; !ok {
			byName[r.Name()] = r
		}
	}

	var schema api.Resource
	changed := false
	for _, name := range sortedKeys(s.Definitions) {
		profile := s.Definitions[name]
		tree := fmt.Sprintf("profiles.definitions[%q]", name)

		if schema == nil {
			schema, err = run.API.QualityProfileSchema(ctx)
			if err != nil {
				return changed, err
			}
		}
		desired, err := buildProfilePayload(tree, name, profile, schema)
		if err != nil {
			return changed, err
		}

		resource, exists := byName[name]
		if !exists {
			if _, err := run.API.QualityProfiles().Create(ctx, desired); err != nil {
				return changed, fmt.Errorf("failed to create quality profile %q: %w", name, err)
			}
			run.Log.Info("created", "resource", "quality_profile", "name", name)
			metrics.RecordChange("quality_profile", "create")
			changed = true
			continue
		}

		if reflect.DeepEqual(profileShapeOf(desired), profileShapeOf(resource)) {
			run.Log.V(1).Info("profile unchanged", "field", tree)
			continue
		}

		run.Log.Info("field changed", "field", tree)
		payload := desired.Clone()
		payload["id"] = resource.ID()
		if _, err := run.API.QualityProfiles().Update(ctx, resource.ID(), payload); err != nil {
			return changed, fmt.Errorf("failed to update quality profile %q: %w", name, err)
		}
		run.Log.Info("updated", "resource", "quality_profile", "name", name)
		metrics.RecordChange("quality_profile", "update")
		changed = true
	}
	return changed, nil
}

func (s ProfilesSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	resources, err := run.API.QualityProfiles().List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list quality profiles: %w", err)
	}

	changed := false
	for _, r := range resources {
		if _, managed := s.Definitions[r.Name()]; managed {
			continue
		}
		if !s.DeleteUnmanaged {
			run.Log.V(1).Info("unmanaged, leaving in place", "resource", "quality_profile", "name", r.Name())
			metrics.RecordUnmanaged("quality_profile")
			continue
		}
		if err := run.API.QualityProfiles().Delete(ctx, r.ID()); err != nil {
			return changed, fmt.Errorf("failed to delete quality profile %q: %w", r.Name(), err)
		}
		run.Log.Info("deleted", "resource", "quality_profile", "name", r.Name())
		metrics.RecordChange("quality_profile", "delete")
		changed = true
	}
	return changed, nil
}

func (s *ProfilesSettings) fetch(ctx context.Context, run *Run) error {
	resources, err := run.API.QualityProfiles().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list quality profiles: %w", err)
	}

	s.Definitions = make(map[string]QualityProfile, len(resources))
	for _, r := range resources {
		shape := profileShapeOf(r)
		profile := QualityProfile{
			UpgradesAllowed: shape.UpgradeAllowed,
			UpgradeUntil:    shape.Cutoff,
		}
		// Stored most preferred first; the wire order is the reverse.
		for i := len(shape.Allowed) - 1; i >= 0; i-- {
			profile.Qualities = append(profile.Qualities, shape.Allowed[i])
		}
		s.Definitions[r.Name()] = profile
	}
	return nil
}

// buildProfilePayload assembles a full quality profile resource from the
// instance's profile schema. Omitted qualities come first as not allowed,
// then the declared entries from least to most preferred, matching the
// wire's ascending priority order.
func buildProfilePayload(tree, name string, profile QualityProfile, schema api.Resource) (api.Resource, error) {
	singles := map[string]map[string]any{}
	var singleOrder []string
	schemaItems, _ := schema["items"].([]any)
	for _, raw := range schemaItems {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, single := range flattenProfileItem(item) {
			qname := profileItemName(single)
			if _, seen := singles[qname]; !seen {
				singles[qname] = single
				singleOrder = append(singleOrder, qname)
			}
		}
	}

	used := map[string]bool{}
	var allowed []map[string]any
	nextGroupID := profileGroupIDBase
	// Declared most preferred first; build in reverse.
	for i := len(profile.Qualities) - 1; i >= 0; i-- {
		group := profile.Qualities[i]
		if len(group.Members) == 0 {
			single, ok := singles[group.Name]
			if !ok {
				return nil, &remotemap.ConfigError{
					Path:    fmt.Sprintf("%s.qualities[%q]", tree, group.Name),
					Message: "no such quality on the instance",
				}
			}
			item := cloneProfileItem(single)
			item["allowed"] = true
			allowed = append(allowed, item)
			used[group.Name] = true
			continue
		}

		members := make([]any, 0, len(group.Members))
		for _, member := range group.Members {
			single, ok := singles[member]
			if !ok {
				return nil, &remotemap.ConfigError{
					Path:    fmt.Sprintf("%s.qualities[%q]", tree, group.Name),
					Message: fmt.Sprintf("no such quality %q on the instance", member),
				}
			}
			item := cloneProfileItem(single)
			item["allowed"] = true
			members = append(members, item)
			used[member] = true
		}
		allowed = append(allowed, map[string]any{
			"id":      nextGroupID,
			"name":    group.Name,
			"allowed": true,
			"items":   members,
		})
		nextGroupID++
	}

	items := make([]any, 0, len(singleOrder))
	for _, qname := range singleOrder {
		if used[qname] {
			continue
		}
		item := cloneProfileItem(singles[qname])
		item["allowed"] = false
		items = append(items, item)
	}
	for _, item := range allowed {
		items = append(items, item)
	}

	cutoffName := profile.UpgradeUntil
	if cutoffName == "" && len(allowed) > 0 {
		cutoffName = profileItemName(allowed[len(allowed)-1])
	}
	var cutoff any
	for _, item := range allowed {
		if profileItemName(item) == cutoffName {
			cutoff = profileItemID(item)
		}
	}
	if cutoff == nil {
		return nil, &remotemap.ConfigError{
			Path:    tree + ".upgrade_until",
			Message: fmt.Sprintf("%q is not an allowed quality or group of the profile", cutoffName),
		}
	}

	payload := schema.Clone()
	delete(payload, "id")
	payload["name"] = name
	payload["upgradeAllowed"] = profile.UpgradesAllowed
	payload["cutoff"] = cutoff
	payload["items"] = items
	return payload, nil
}

// profileShape is the comparable projection of a quality profile: the
// allowed entries in wire order plus the upgrade settings. Ids are
// deliberately excluded, since group ids are instance assigned.
type profileShape struct {
	UpgradeAllowed bool
	Cutoff         string
	Allowed        []QualityGroup
}

func profileShapeOf(r api.Resource) profileShape {
	shape := profileShape{}
	shape.UpgradeAllowed, _ = r["upgradeAllowed"].(bool)
	cutoffID, _ := api.IntValue(r["cutoff"])

	items, _ := r["items"].([]any)
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := api.IntValue(profileItemID(item)); ok && id == cutoffID {
			shape.Cutoff = profileItemName(item)
		}
		if allowed, _ := item["allowed"].(bool); !allowed {
			continue
		}
		group := QualityGroup{Name: profileItemName(item)}
		if members, ok := item["items"].([]any); ok && len(members) > 0 {
			for _, m := range members {
				if member, ok := m.(map[string]any); ok {
					group.Members = append(group.Members, profileItemName(member))
				}
			}
			sort.Strings(group.Members)
		}
		shape.Allowed = append(shape.Allowed, group)
	}
	return shape
}

// flattenProfileItem yields the single-quality items within a schema item,
// unwrapping one level of grouping.
func flattenProfileItem(item map[string]any) []map[string]any {
	if members, ok := item["items"].([]any); ok && len(members) > 0 {
		var out []map[string]any
		for _, m := range members {
			if member, ok := m.(map[string]any); ok {
				out = append(out, member)
			}
		}
		return out
	}
	return []map[string]any{item}
}

func cloneProfileItem(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func profileItemName(item map[string]any) string {
	if q, ok := item["quality"].(map[string]any); ok {
		if name, ok := q["name"].(string); ok {
			return name
		}
	}
	name, _ := item["name"].(string)
	return name
}

func profileItemID(item map[string]any) any {
	if q, ok := item["quality"].(map[string]any); ok {
		return q["id"]
	}
	return item["id"]
}
