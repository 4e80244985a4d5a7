package config

import (
	"context"
	"fmt"
)

// Settings groups the declared configuration by instance settings section.
// Section names match the instance UI.
type Settings struct {
	Tags            TagsSettings            `koanf:"tags"`
	Quality         QualitySettings         `koanf:"quality"`
	CustomFormats   CustomFormatsSettings   `koanf:"custom_formats"`
	DownloadClients DownloadClientsSettings `koanf:"download_clients"`
	Indexers        IndexersSettings        `koanf:"indexers"`
	ImportLists     ImportListsSettings     `koanf:"import_lists"`
	MediaManagement MediaManagementSettings `koanf:"media_management"`
	Profiles        ProfilesSettings        `koanf:"profiles"`
	Metadata        MetadataSettings        `koanf:"metadata"`
	General         GeneralSettings         `koanf:"general"`
	UI              UISettings              `koanf:"ui"`
}

type sectionUpdate struct {
	name   string
	update func(context.Context, *Run, *Settings) (bool, error)
}

// UpdateRemote pushes the declared settings to the instance, section by
// section. Sections run in dependency order: tags first, since later
// sections resolve tag labels to the ids created here, and profiles after
// the resources they refer to. Every section runs even when earlier
// sections reported changes.
func (s *Settings) UpdateRemote(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	sections := []sectionUpdate{
		{"tags", s.Tags.update},
		{"quality", s.Quality.update},
		{"custom_formats", s.CustomFormats.update},
		{"download_clients", s.DownloadClients.update},
		{"indexers", s.Indexers.update},
		{"import_lists", s.ImportLists.update},
		{"media_management", s.MediaManagement.update},
		{"profiles", s.Profiles.update},
		{"metadata", s.Metadata.update},
		{"general", s.General.update},
		{"ui", s.UI.update},
	}

	changed := false
	for _, section := range sections {
		sectionChanged, err := section.update(ctx, run, remote)
		if err != nil {
			return changed, fmt.Errorf("%s: %w", section.name, err)
		}
		changed = changed || sectionChanged
	}
	return changed, nil
}

// DeleteRemote removes unmanaged remote resources where a section opts in.
// Deletion order is the reverse of the reference graph: profiles release
// their references before the resources they point at are considered, and
// tags go before the sections that can reference them have run their own
// deletes resolved. Every section runs even when earlier sections deleted.
func (s *Settings) DeleteRemote(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	sections := []sectionUpdate{
		{"profiles", s.Profiles.delete},
		{"indexers", s.Indexers.delete},
		{"download_clients", s.DownloadClients.delete},
		{"import_lists", s.ImportLists.delete},
		{"media_management", s.MediaManagement.delete},
		{"tags", s.Tags.delete},
		{"custom_formats", s.CustomFormats.delete},
		{"quality", s.Quality.delete},
		{"metadata", s.Metadata.delete},
		{"general", s.General.delete},
		{"ui", s.UI.delete},
	}

	changed := false
	for _, section := range sections {
		sectionChanged, err := section.update(ctx, run, remote)
		if err != nil {
			return changed, fmt.Errorf("%s: %w", section.name, err)
		}
		changed = changed || sectionChanged
	}
	return changed, nil
}

// FetchRemote reads the instance's current configuration into the local
// settings model. The result is both the comparison baseline for
// UpdateRemote/DeleteRemote and the payload of the dump-remote command.
func FetchRemote(ctx context.Context, run *Run) (*Settings, error) {
	remote := &Settings{}

	fetches := []struct {
		name  string
		fetch func(context.Context, *Run) error
	}{
		{"tags", remote.Tags.fetch},
		{"quality", remote.Quality.fetch},
		{"custom_formats", remote.CustomFormats.fetch},
		{"download_clients", remote.DownloadClients.fetch},
		{"indexers", remote.Indexers.fetch},
		{"import_lists", remote.ImportLists.fetch},
		{"media_management", remote.MediaManagement.fetch},
		{"profiles", remote.Profiles.fetch},
		{"metadata", remote.Metadata.fetch},
		{"general", remote.General.fetch},
		{"ui", remote.UI.fetch},
	}
	for _, f := range fetches {
		if err := f.fetch(ctx, run); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return remote, nil
}
