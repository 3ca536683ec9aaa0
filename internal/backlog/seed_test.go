package backlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iammorganparry/backlog/internal/models"
)

func TestDefaultSeedIssues(t *testing.T) {
	issues := DefaultSeedIssues()
	if err := ValidateIssues(issues); err != nil {
		t.Fatalf("default seed is invalid: %v", err)
	}
	if issues[0].URL == "" || issues[1].URL != "" || issues[2].URL != "" {
		t.Errorf("only CF-4242 should carry a url: %+v", issues)
	}

	issues[0].Title = "mutated"
	if DefaultSeedIssues()[0].Title == "mutated" {
		t.Error("DefaultSeedIssues must return a fresh slice")
	}
}

func TestLoadSeedFile(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "seed.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write seed: %v", err)
		}
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		path := write(t, `
issues:
  - id: OPS-1
    title: Rotate the staging certificates
    status: open
    url: https://tracker.example.com/OPS-1
  - id: OPS-2
    title: Drop the legacy cron host
    status: cancelled
`)
		issues, err := LoadSeedFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []models.Issue{
			{ID: "OPS-1", Title: "Rotate the staging certificates", Status: models.IssueStatusOpen, URL: "https://tracker.example.com/OPS-1"},
			{ID: "OPS-2", Title: "Drop the legacy cron host", Status: models.IssueStatusCancelled},
		}
		if len(issues) != len(want) {
			t.Fatalf("expected %d issues, got %d", len(want), len(issues))
		}
		for i := range want {
			if issues[i] != want[i] {
				t.Errorf("issue %d: got %+v, want %+v", i, issues[i], want[i])
			}
		}
	})

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty list", "issues: []\n", "at least one issue"},
		{"duplicate id", "issues:\n  - {id: A, title: a, status: open}\n  - {id: A, title: b, status: done}\n", "duplicate id"},
		{"bad status", "issues:\n  - {id: A, title: a, status: blocked}\n", "invalid status"},
		{"missing title", "issues:\n  - {id: A, status: open}\n", "title is required"},
		{"missing id", "issues:\n  - {title: a, status: open}\n", "id is required"},
		{"not yaml", "issues: [\n", "parse seed file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeedFile(write(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
