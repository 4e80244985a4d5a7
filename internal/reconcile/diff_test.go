package reconcile

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"

	"github.com/declarr/declarr/internal/remotemap"
)

func TestDiffReportsChangedFields(t *testing.T) {
	entries := []remotemap.Entry{
		{Local: "enable", Remote: "enable"},
		{Local: "priority", Remote: "priority"},
	}
	local := map[string]any{"enable": true, "priority": 1}
	remote := map[string]any{"enable": false, "priority": 1}

	changed, attrs, err := Diff(logr.Discard(), "indexers", entries, local, remote, DiffOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	want := map[string]any{"enable": true}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("unexpected attributes (-want +got):\n%s", diff)
	}
}

func TestDiffNoChange(t *testing.T) {
	entries := []remotemap.Entry{
		{Local: "min", Remote: "minSize", Precision: 1},
	}
	local := map[string]any{"min": 17.1}
	remote := map[string]any{"min": 17.14}

	changed, attrs, err := Diff(logr.Discard(), "quality", entries, local, remote, DiffOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if changed {
		t.Error("expected no change for values equal at the declared precision")
	}
	if len(attrs) != 0 {
		t.Errorf("expected empty attributes, got %v", attrs)
	}
}

func TestDiffSetUnchangedIncludesEveryField(t *testing.T) {
	entries := []remotemap.Entry{
		{Local: "enable", Remote: "enable"},
		{Local: "priority", Remote: "priority"},
	}
	local := map[string]any{"enable": true, "priority": 25}
	remote := map[string]any{"enable": false, "priority": 25}

	changed, attrs, err := Diff(logr.Discard(), "", entries, local, remote, DiffOptions{SetUnchanged: true})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	want := map[string]any{"enable": true, "priority": 25}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("unexpected attributes (-want +got):\n%s", diff)
	}
}

func TestDiffOptionalUnsetIsUnmanaged(t *testing.T) {
	entries := []remotemap.Entry{
		{Local: "username", Remote: "username", Optional: true},
	}
	local := map[string]any{"username": (*string)(nil)}
	username := "admin"
	remote := map[string]any{"username": &username}

	changed, _, err := Diff(logr.Discard(), "", entries, local, remote, DiffOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if changed {
		t.Error("unset optional field must not report a change")
	}

	// Opting in turns the same comparison into a change.
	changed, _, err = Diff(logr.Discard(), "", entries, local, remote, DiffOptions{CheckUnmanaged: true})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !changed {
		t.Error("expected a change with CheckUnmanaged")
	}
}

func TestDiffAccumulatesFieldEntries(t *testing.T) {
	entries := []remotemap.Entry{
		{Local: "enable", Remote: "enable"},
		{Local: "host", Remote: "host", IsField: true},
		{Local: "port", Remote: "port", IsField: true},
	}
	local := map[string]any{"enable": true, "host": "new-host", "port": 9091}
	remote := map[string]any{"enable": true, "host": "old-host", "port": 9091}

	changed, attrs, err := Diff(logr.Discard(), "", entries, local, remote, DiffOptions{SetUnchanged: true})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	want := map[string]any{
		"enable": true,
		"fields": []remotemap.Field{
			{Name: "host", Value: "new-host"},
			{Name: "port", Value: 9091},
		},
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("unexpected attributes (-want +got):\n%s", diff)
	}
}

func TestDiffLogsFieldPaths(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	entries := []remotemap.Entry{
		{Local: "enable", Remote: "enable"},
		{Local: "username", Remote: "username", Optional: true},
	}
	local := map[string]any{"enable": true, "username": (*string)(nil)}
	remote := map[string]any{"enable": false, "username": (*string)(nil)}

	if _, _, err := Diff(log, "download_clients[\"nzb\"]", entries, local, remote, DiffOptions{}); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"field changed"`) || !strings.Contains(lines[0], `download_clients[\"nzb\"].enable`) {
		t.Errorf("unexpected change record: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"field unmanaged"`) {
		t.Errorf("unexpected unmanaged record: %s", lines[1])
	}
}

func TestDiffEncodesChangedValues(t *testing.T) {
	entries := []remotemap.Entry{
		{
			Local:  "tags",
			Remote: "tags",
			Set:    true,
			Encoder: func(v any) (any, error) {
				return []int{1, 2}, nil
			},
		},
	}
	local := map[string]any{"tags": []string{"anime", "tv"}}
	remote := map[string]any{"tags": []string{}}

	changed, attrs, err := Diff(logr.Discard(), "", entries, local, remote, DiffOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !changed {
		t.Error("expected a change")
	}
	want := map[string]any{"tags": []int{1, 2}}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Errorf("unexpected attributes (-want +got):\n%s", diff)
	}
}
