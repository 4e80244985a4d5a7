// Package state persists a snapshot of the settings last pushed to an
// instance, so operators can diff what a run applied against what a later
// run sees.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is one persisted reconciliation result.
type Snapshot struct {
	// Instance is the base URL of the instance the settings were pushed
	// to.
	Instance string `yaml:"instance"`

	// AppliedAt is when the run finished.
	AppliedAt time.Time `yaml:"applied_at"`

	// Changed reports whether the run made any remote change.
	Changed bool `yaml:"changed"`

	// Settings is the applied settings tree in attribute form, with the
	// same keys as the config file.
	Settings map[string]any `yaml:"settings"`
}

// Save writes the snapshot, replacing any previous one atomically.
func Save(path string, snapshot *Snapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}

// Load reads a previously saved snapshot. A missing file returns nil with
// no error; there is just nothing to compare against yet.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &snapshot, nil
}
