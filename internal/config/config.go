// Package config holds the declarative instance configuration model and the
// settings orchestrator that reconciles it against a running Sonarr
// instance, section by section in a fixed order.
package config

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
)

// Config is the root of one instance's declared configuration.
type Config struct {
	// Hostname of the Sonarr instance.
	Hostname string `koanf:"hostname" validate:"required"`

	// Port the instance listens on.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// Protocol to connect with.
	Protocol string `koanf:"protocol" validate:"oneof=http https"`

	// URLBase mirrors the instance's URL base setting, for instances
	// served behind a path prefix.
	URLBase string `koanf:"url_base"`

	// APIKey authenticates API calls. When empty it is fetched from the
	// instance automatically, which requires authentication to be
	// disabled on the instance.
	APIKey string `koanf:"api_key"`

	// VerifySSL disables certificate verification when false and the
	// protocol is https.
	VerifySSL bool `koanf:"verify_ssl"`

	// Settings is the declared instance configuration.
	Settings Settings `koanf:"settings"`
}

// URL builds the instance base URL from the connection options.
func (c *Config) URL() string {
	base := fmt.Sprintf("%s://%s:%d", c.Protocol, c.Hostname, c.Port)
	if c.URLBase != "" {
		base += "/" + trimSlashes(c.URLBase)
	}
	return base
}

func trimSlashes(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// API is the instance API surface the orchestrator reconciles against.
// internal/sonarr provides the real implementation; tests substitute fakes.
type API interface {
	Tags() reconcile.CollectionClient
	QualityDefs() reconcile.CollectionClient
	CustomFormats() reconcile.CollectionClient
	DownloadClients() reconcile.CollectionClient
	DownloadClientSchemas() reconcile.SchemaCatalog
	Indexers() reconcile.CollectionClient
	IndexerSchemas() reconcile.SchemaCatalog
	Exclusions() reconcile.CollectionClient
	QualityProfiles() reconcile.CollectionClient
	QualityProfileSchema(ctx context.Context) (api.Resource, error)
	Metadata() reconcile.CollectionClient
	MediaManagement() reconcile.SingletonClient
	HostConfig() reconcile.SingletonClient
	UIConfig() reconcile.SingletonClient
	TagIDs(ctx context.Context) (map[string]int, error)
}

// Run carries the per-invocation collaborators through the section methods.
type Run struct {
	Log logr.Logger
	API API

	// CheckUnmanaged diffs unset optional values against remote defaults
	// instead of leaving them unmanaged.
	CheckUnmanaged bool
}
