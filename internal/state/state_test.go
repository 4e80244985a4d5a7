package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sonarr.yml")

	snapshot := &Snapshot{
		Instance:  "http://localhost:8989",
		AppliedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Changed:   true,
		Settings: map[string]any{
			"tags": map[string]any{
				"definitions": []any{"anime", "tv"},
			},
		},
	}
	if err := Save(path, snapshot); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(snapshot, loaded); diff != "" {
		t.Errorf("snapshot did not round trip (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	snapshot, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snapshot != nil {
		t.Errorf("expected nil snapshot, got %+v", snapshot)
	}
}
