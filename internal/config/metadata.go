package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// MetadataSettings mirrors the Metadata page: the per-consumer metadata
// file options. Consumers always exist on the instance and are only ever
// updated.
type MetadataSettings struct {
	Kodi    KodiMetadata    `koanf:"kodi"`
	Roksbox RoksboxMetadata `koanf:"roksbox"`
	WDTV    WDTVMetadata    `koanf:"wdtv"`
}

// KodiMetadata writes Kodi (XBMC) compatible metadata files.
type KodiMetadata struct {
	Enable *bool `koanf:"enable"`

	SeriesMetadata    *bool `koanf:"series_metadata"`
	SeriesMetadataURL *bool `koanf:"series_metadata_url"`
	EpisodeMetadata   *bool `koanf:"episode_metadata"`
	SeriesImages      *bool `koanf:"series_images"`
	SeasonImages      *bool `koanf:"season_images"`
	EpisodeImages     *bool `koanf:"episode_images"`
}

// RoksboxMetadata writes Roksbox compatible metadata files.
type RoksboxMetadata struct {
	Enable *bool `koanf:"enable"`

	EpisodeMetadata *bool `koanf:"episode_metadata"`
	SeriesImages    *bool `koanf:"series_images"`
	SeasonImages    *bool `koanf:"season_images"`
	EpisodeImages   *bool `koanf:"episode_images"`
}

// WDTVMetadata writes WDTV compatible metadata files.
type WDTVMetadata struct {
	Enable *bool `koanf:"enable"`

	EpisodeMetadata *bool `koanf:"episode_metadata"`
	SeriesImages    *bool `koanf:"series_images"`
	SeasonImages    *bool `koanf:"season_images"`
	EpisodeImages   *bool `koanf:"episode_images"`
}

type metadataConsumer struct {
	name           string
	implementation string
	entries        []remotemap.Entry
	local          func(MetadataSettings) any
	store          func(*MetadataSettings, map[string]any) error
}

func metadataConsumers() []metadataConsumer {
	enable := remotemap.Entry{Local: "enable", Remote: "enable", Optional: true, HasDefault: true}
	field := func(local, remote string) remotemap.Entry {
		return optionalField(local, remote)
	}
	return []metadataConsumer{
		{
			name:           "kodi",
			implementation: "XbmcMetadata",
			entries: []remotemap.Entry{
				enable,
				field("series_metadata", "seriesMetadata"),
				field("series_metadata_url", "seriesMetadataUrl"),
				field("episode_metadata", "episodeMetadata"),
				field("series_images", "seriesImages"),
				field("season_images", "seasonImages"),
				field("episode_images", "episodeImages"),
			},
			local: func(s MetadataSettings) any { return s.Kodi },
			store: func(s *MetadataSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Kodi)
			},
		},
		{
			name:           "roksbox",
			implementation: "RoksboxMetadata",
			entries: []remotemap.Entry{
				enable,
				field("episode_metadata", "episodeMetadata"),
				field("series_images", "seriesImages"),
				field("season_images", "seasonImages"),
				field("episode_images", "episodeImages"),
			},
			local: func(s MetadataSettings) any { return s.Roksbox },
			store: func(s *MetadataSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Roksbox)
			},
		},
		{
			name:           "wdtv",
			implementation: "WdtvMetadata",
			entries: []remotemap.Entry{
				enable,
				field("episode_metadata", "episodeMetadata"),
				field("series_images", "seriesImages"),
				field("season_images", "seasonImages"),
				field("episode_images", "episodeImages"),
			},
			local: func(s MetadataSettings) any { return s.WDTV },
			store: func(s *MetadataSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.WDTV)
			},
		},
	}
}

func (s MetadataSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	resources, err := run.API.Metadata().List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list metadata consumers: %w", err)
	}
	byImpl := make(map[string]api.Resource, len(resources))
	for _, r := range resources {
		byImpl[strings.ToLower(r.Implementation())] = r
	}

	changed := false
	for _, consumer := range metadataConsumers() {
		resource, ok := byImpl[strings.ToLower(consumer.implementation)]
		if !ok {
			run.Log.V(1).Info("metadata consumer not present on instance",
				"implementation", consumer.implementation)
			continue
		}

		localAttrs, err := remotemap.FromStruct(consumer.local(s))
		if err != nil {
			return changed, err
		}
		remoteAttrs, err := remotemap.FromStruct(consumer.local(remote.Metadata))
		if err != nil {
			return changed, err
		}

		consumerChanged, setAttrs, err := reconcile.Diff(
			run.Log, "metadata."+consumer.name,
			consumer.entries, localAttrs, remoteAttrs,
			reconcile.DiffOptions{SetUnchanged: true, CheckUnmanaged: run.CheckUnmanaged},
		)
		if err != nil {
			return changed, err
		}
		if !consumerChanged {
			continue
		}

		payload := resource.Clone()
		computed := remotemap.FieldsFromAttr(setAttrs["fields"])
		for k, v := range setAttrs {
			if k == "fields" {
				continue
			}
			payload[k] = v
		}
		if computed != nil {
			payload["fields"] = remotemap.MergeFields(remotemap.FieldsFromAttr(resource["fields"]), computed)
		}
		if _, err := run.API.Metadata().Update(ctx, resource.ID(), payload); err != nil {
			return changed, fmt.Errorf("failed to update metadata consumer %q: %w", consumer.name, err)
		}
		run.Log.Info("updated", "resource", "metadata", "consumer", consumer.name)
		metrics.RecordChange("metadata", "update")
		changed = true
	}
	return changed, nil
}

// delete is a no-op; the consumer set is fixed by the instance.
func (s MetadataSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return false, nil
}

func (s *MetadataSettings) fetch(ctx context.Context, run *Run) error {
	resources, err := run.API.Metadata().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list metadata consumers: %w", err)
	}
	byImpl := make(map[string]api.Resource, len(resources))
	for _, r := range resources {
		byImpl[strings.ToLower(r.Implementation())] = r
	}

	for _, consumer := range metadataConsumers() {
		resource, ok := byImpl[strings.ToLower(consumer.implementation)]
		if !ok {
			continue
		}
		attrs, err := remotemap.ToLocal(consumer.entries, resource)
		if err != nil {
			return err
		}
		if err := consumer.store(s, attrs); err != nil {
			return err
		}
	}
	return nil
}
