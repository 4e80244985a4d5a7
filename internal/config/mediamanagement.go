package config

import (
	"context"

	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// MediaManagementSettings mirrors the Media Management page. Pointer options
// are unmanaged when unset.
type MediaManagementSettings struct {
	RenameEpisodes           *bool `koanf:"rename_episodes"`
	ReplaceIllegalCharacters *bool `koanf:"replace_illegal_characters"`

	CreateEmptySeriesFolders *bool `koanf:"create_empty_series_folders"`
	DeleteEmptyFolders       *bool `koanf:"delete_empty_folders"`

	// EpisodeTitleRequired is one of always, bulk_season_releases or
	// never.
	EpisodeTitleRequired *string `koanf:"episode_title_required" validate:"omitempty,oneof=always bulk_season_releases never"`

	SkipFreeSpaceCheck *bool   `koanf:"skip_free_space_check"`
	MinimumFreeSpace   *int    `koanf:"minimum_free_space"`
	UseHardlinks       *bool   `koanf:"use_hardlinks"`
	ImportExtraFiles   *bool   `koanf:"import_extra_files"`
	UnmonitorDeleted   *bool   `koanf:"unmonitor_deleted_episodes"`
	PropersAndRepacks  *bool   `koanf:"propers_and_repacks"`
	AnalyzeVideoFiles  *bool   `koanf:"analyze_video_files"`
	RescanAfterRefresh *bool   `koanf:"rescan_series_folder_after_refresh"`
	ChangeFileDate     *bool   `koanf:"change_file_date"`
	RecycleBin         *string `koanf:"recycling_bin"`
	RecycleBinCleanup  *int    `koanf:"recycling_bin_cleanup"`
	SetPermissions     *bool   `koanf:"set_permissions"`
	ChmodFolder        *string `koanf:"chmod_folder"`
	ChownGroup         *string `koanf:"chown_group"`
}

func mediaManagementEntries() []remotemap.Entry {
	optional := func(local, remote string) remotemap.Entry {
		return remotemap.Entry{Local: local, Remote: remote, Optional: true, HasDefault: true}
	}
	return []remotemap.Entry{
		optional("rename_episodes", "renameEpisodes"),
		optional("replace_illegal_characters", "replaceIllegalCharacters"),
		optional("create_empty_series_folders", "createEmptySeriesFolders"),
		optional("delete_empty_folders", "deleteEmptyFolders"),
		{
			Local:      "episode_title_required",
			Remote:     "episodeTitleRequired",
			Optional:   true,
			HasDefault: true,
			Encoder:    enumEncoder(episodeTitleRequiredValues),
			Decoder:    enumDecoder(episodeTitleRequiredValues),
		},
		optional("skip_free_space_check", "skipFreeSpaceCheckWhenImporting"),
		optional("minimum_free_space", "minimumFreeSpaceWhenImporting"),
		optional("use_hardlinks", "copyUsingHardlinks"),
		optional("import_extra_files", "importExtraFiles"),
		optional("unmonitor_deleted_episodes", "autoUnmonitorPreviouslyDownloadedEpisodes"),
		optional("propers_and_repacks", "downloadPropersAndRepacks"),
		optional("analyze_video_files", "enableMediaInfo"),
		optional("rescan_series_folder_after_refresh", "rescanAfterRefresh"),
		optional("change_file_date", "fileDate"),
		optional("recycling_bin", "recycleBin"),
		optional("recycling_bin_cleanup", "recycleBinCleanupDays"),
		optional("set_permissions", "setPermissionsLinux"),
		optional("chmod_folder", "chmodFolder"),
		optional("chown_group", "chownGroup"),
	}
}

var episodeTitleRequiredValues = map[string]any{
	"always":               "always",
	"bulk_season_releases": "bulkSeasonReleases",
	"never":                "never",
}

func (s MediaManagementSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	localAttrs, err := remotemap.FromStruct(s)
	if err != nil {
		return false, err
	}
	remoteAttrs, err := remotemap.FromStruct(remote.MediaManagement)
	if err != nil {
		return false, err
	}

	singleton := &reconcile.Singleton{
		Resource:       "media_management",
		Tree:           "media_management",
		Client:         run.API.MediaManagement(),
		CheckUnmanaged: run.CheckUnmanaged,
	}
	return singleton.Update(ctx, run.Log, mediaManagementEntries(), localAttrs, remoteAttrs)
}

// delete is a no-op; singleton settings are only ever updated.
func (s MediaManagementSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return false, nil
}

func (s *MediaManagementSettings) fetch(ctx context.Context, run *Run) error {
	resource, err := run.API.MediaManagement().Get(ctx)
	if err != nil {
		return err
	}
	attrs, err := remotemap.ToLocal(mediaManagementEntries(), resource)
	if err != nil {
		return err
	}
	return remotemap.ToStruct(attrs, s)
}
