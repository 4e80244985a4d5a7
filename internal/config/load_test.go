package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/declarr/declarr/internal/remotemap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "declarr.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
hostname: sonarr.example.com
port: 9898
protocol: https
api_key: sekrit
settings:
  tags:
    definitions:
      - anime
      - tv
  indexers:
    delete_unmanaged: true
    definitions:
      nzb:
        type: newznab
        base_url: https://nzb.example.com
        categories:
          - TV/HD
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL() != "https://sonarr.example.com:9898" {
		t.Errorf("unexpected URL %q", cfg.URL())
	}
	if got := cfg.Settings.Tags.Definitions; len(got) != 2 || got[0] != "anime" {
		t.Errorf("unexpected tags %v", got)
	}
	if !cfg.Settings.Indexers.DeleteUnmanaged {
		t.Error("delete_unmanaged not decoded")
	}
	indexer, ok := cfg.Settings.Indexers.Definitions["nzb"]
	if !ok {
		t.Fatal("indexer definition missing")
	}
	if indexer.Type != "newznab" || indexer.Categories[0] != "TV/HD" {
		t.Errorf("unexpected indexer %+v", indexer)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "api_key: sekrit\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL() != "http://localhost:8989" {
		t.Errorf("unexpected default URL %q", cfg.URL())
	}
	if !cfg.VerifySSL {
		t.Error("expected certificate verification by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "port: 8989\n")
	t.Setenv("DECLARR_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("environment override lost, port = %d", cfg.Port)
	}
}

func TestLoadRejectsInvalidProtocol(t *testing.T) {
	path := writeConfig(t, "protocol: gopher\n")

	_, err := Load(path)
	var configErr *remotemap.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	path := writeConfig(t, `
settings:
  indexers:
    definitions:
      nzb:
        type: newznab
        base_url: https://nzb.example.com
        categories:
          - No/Such-Category
`)

	// An unresolvable category must fail at load time, before any remote
	// call could be issued.
	_, err := Load(path)
	var configErr *remotemap.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if configErr.Path != `settings.indexers.definitions["nzb"].categories` {
		t.Errorf("unexpected path %q", configErr.Path)
	}
}

func TestLoadRejectsDuplicateExclusions(t *testing.T) {
	path := writeConfig(t, `
settings:
  import_lists:
    exclusions:
      - tvdb_id: 1234
        title: Some Show
      - tvdb_id: 1234
        title: Some Show Again
`)

	_, err := Load(path)
	var configErr *remotemap.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if configErr.Path != "settings.import_lists.exclusions" {
		t.Errorf("unexpected path %q", configErr.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	var configErr *remotemap.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
