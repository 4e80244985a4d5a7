package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// DownloadClientsSettings declares the download clients on the instance,
// keyed by client name.
type DownloadClientsSettings struct {
	// DeleteUnmanaged removes remote download clients with no declaration.
	DeleteUnmanaged bool `koanf:"delete_unmanaged"`

	Definitions map[string]DownloadClient `koanf:"definitions"`
}

// DownloadClient is one download client definition. Type selects the remote
// implementation; the connection options are common across the supported
// types, with the ones a type does not use ignored.
type DownloadClient struct {
	// Type is one of transmission, sabnzbd or qbittorrent.
	Type string `koanf:"type" validate:"required"`

	Enable   bool     `koanf:"enable"`
	Priority int      `koanf:"priority"`
	Tags     []string `koanf:"tags"`

	Host   string `koanf:"host" validate:"required"`
	Port   int    `koanf:"port" validate:"min=1,max=65535"`
	UseSSL bool   `koanf:"use_ssl"`

	URLBase  *string `koanf:"url_base"`
	Username *string `koanf:"username"`
	Password *string `koanf:"password"`

	// APIKey authenticates SABnzbd.
	APIKey *string `koanf:"api_key"`

	// Category is the client-side category downloads are filed under.
	Category *string `koanf:"category"`

	// Directory overrides the download directory where the type supports
	// it.
	Directory *string `koanf:"directory"`
}

type downloadClientType struct {
	implementation string
	configContract string
	fields         func() []remotemap.Entry
}

var downloadClientTypes = map[string]downloadClientType{
	"transmission": {
		implementation: "Transmission",
		configContract: "TransmissionSettings",
		fields: func() []remotemap.Entry {
			return append(clientHostFields(),
				optionalField("url_base", "urlBase"),
				optionalField("username", "username"),
				optionalField("password", "password"),
				optionalField("category", "tvCategory"),
				optionalField("directory", "tvDirectory"),
			)
		},
	},
	"sabnzbd": {
		implementation: "Sabnzbd",
		configContract: "SabnzbdSettings",
		fields: func() []remotemap.Entry {
			return append(clientHostFields(),
				optionalField("url_base", "urlBase"),
				optionalField("api_key", "apiKey"),
				optionalField("username", "username"),
				optionalField("password", "password"),
				optionalField("category", "tvCategory"),
			)
		},
	},
	"qbittorrent": {
		implementation: "QBittorrent",
		configContract: "QBittorrentSettings",
		fields: func() []remotemap.Entry {
			return append(clientHostFields(),
				optionalField("url_base", "urlBase"),
				optionalField("username", "username"),
				optionalField("password", "password"),
				optionalField("category", "tvCategory"),
			)
		},
	},
}

func clientHostFields() []remotemap.Entry {
	return []remotemap.Entry{
		{Local: "host", Remote: "host", IsField: true},
		{Local: "port", Remote: "port", IsField: true},
		{Local: "use_ssl", Remote: "useSsl", IsField: true},
	}
}

// optionalField is an unmanaged-by-default {name, value} field: when the
// local value is unset the remote value is left alone.
func optionalField(local, remote string) remotemap.Entry {
	return remotemap.Entry{
		Local:      local,
		Remote:     remote,
		IsField:    true,
		Optional:   true,
		HasDefault: true,
	}
}

func downloadClientTypeByImpl(implementation string) (string, downloadClientType, bool) {
	for name, t := range downloadClientTypes {
		if strings.EqualFold(t.implementation, implementation) {
			return name, t, true
		}
	}
	return "", downloadClientType{}, false
}

func downloadClientEntries(t downloadClientType, tagIDs map[string]int) []remotemap.Entry {
	entries := []remotemap.Entry{
		{Local: "enable", Remote: "enable"},
		{Local: "priority", Remote: "priority"},
		tagsEntry(tagIDs),
	}
	return append(entries, t.fields()...)
}

type namedDownloadClient struct {
	Name string
	Spec DownloadClient
}

func (c namedDownloadClient) Key() string { return c.Name }

func (s DownloadClientsSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	collection, err := s.collection(ctx, run)
	if err != nil {
		return false, err
	}
	return collection.Update(ctx, run.Log, s.items(), remote.DownloadClients.items())
}

func (s DownloadClientsSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	collection, err := s.collection(ctx, run)
	if err != nil {
		return false, err
	}
	return collection.Delete(ctx, run.Log, s.items())
}

func (s DownloadClientsSettings) collection(ctx context.Context, run *Run) (*reconcile.Collection[namedDownloadClient], error) {
	for _, name := range sortedKeys(s.Definitions) {
		if _, ok := downloadClientTypes[s.Definitions[name].Type]; !ok {
			return nil, &remotemap.ConfigUnsupportedError{
				Path:           fmt.Sprintf("download_clients.definitions[%q].type", name),
				Implementation: s.Definitions[name].Type,
			}
		}
	}

	// Tag ids resolve fresh per pass; the tags section may just have
	// created some of the referenced tags.
	tagIDs, err := run.API.TagIDs(ctx)
	if err != nil {
		return nil, err
	}

	return &reconcile.Collection[namedDownloadClient]{
		Resource:  "download_client",
		Tree:      "download_clients.definitions",
		Client:    run.API.DownloadClients(),
		Schemas:   run.API.DownloadClientSchemas(),
		RemoteKey: api.Resource.Name,
		Implementation: func(c namedDownloadClient) string {
			return downloadClientTypes[c.Spec.Type].implementation
		},
		RemoteMap: func(c namedDownloadClient) []remotemap.Entry {
			return downloadClientEntries(downloadClientTypes[c.Spec.Type], tagIDs)
		},
		LocalAttrs: func(c namedDownloadClient) (map[string]any, error) {
			return remotemap.FromStruct(c.Spec)
		},
		Name:            func(c namedDownloadClient) string { return c.Name },
		SetUnchanged:    true,
		DeleteUnmanaged: s.DeleteUnmanaged,
	}, nil
}

func (s DownloadClientsSettings) items() []namedDownloadClient {
	items := make([]namedDownloadClient, 0, len(s.Definitions))
	for _, name := range sortedKeys(s.Definitions) {
		items = append(items, namedDownloadClient{Name: name, Spec: s.Definitions[name]})
	}
	return items
}

func (s *DownloadClientsSettings) fetch(ctx context.Context, run *Run) error {
	tagIDs, err := run.API.TagIDs(ctx)
	if err != nil {
		return err
	}
	resources, err := run.API.DownloadClients().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list download clients: %w", err)
	}

	s.Definitions = make(map[string]DownloadClient, len(resources))
	for _, r := range resources {
		typeName, t, ok := downloadClientTypeByImpl(r.Implementation())
		if !ok {
			run.Log.V(1).Info("skipping download client with unsupported implementation",
				"name", r.Name(), "implementation", r.Implementation())
			continue
		}
		attrs, err := remotemap.ToLocal(downloadClientEntries(t, tagIDs), r)
		if err != nil {
			return err
		}
		var client DownloadClient
		if err := remotemap.ToStruct(attrs, &client); err != nil {
			return err
		}
		client.Type = typeName
		s.Definitions[r.Name()] = client
	}
	return nil
}
