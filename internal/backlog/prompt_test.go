package backlog

import (
	"strings"
	"testing"
	"time"

	"github.com/iammorganparry/backlog/internal/inference"
	"github.com/iammorganparry/backlog/internal/models"
)

func TestFormatNote(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	at := time.Date(2026, 10, 17, 11, 30, 5, 42_000_000, loc)

	got := FormatNote(at, "ada", "clean up backlog")
	want := "[2026-10-17T09:30:05.042Z][ada] clean up backlog"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderIssues(t *testing.T) {
	tests := []struct {
		name   string
		issues []models.Issue
		want   string
	}{
		{
			name:   "empty",
			issues: nil,
			want:   "",
		},
		{
			name: "with and without url",
			issues: []models.Issue{
				{ID: "CF-1", Title: "one", Status: models.IssueStatusOpen, URL: "https://x/CF-1"},
				{ID: "CF-2", Title: "two", Status: models.IssueStatusCancelled},
			},
			want: "- [open] CF-1: one (https://x/CF-1)\n- [cancelled] CF-2: two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderIssues(tt.issues); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	t.Run("placeholders for empty backlog and notes", func(t *testing.T) {
		got := BuildUserPrompt(nil, nil, 5, "hi")
		want := "Current backlog:\n(no issues yet)\n\nRecent notes:\n(none)\n\nUser message:\n\"hi\"\n\n" +
			"Respond with clear next steps and, when relevant, example git commands.\n"
		if got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("message is quoted verbatim", func(t *testing.T) {
		msg := "say \"hello\"\nand wave"
		got := BuildUserPrompt(DefaultSeedIssues(), []string{"n1"}, 5, msg)
		if !strings.Contains(got, "\""+msg+"\"") {
			t.Errorf("expected verbatim quoted message in:\n%s", got)
		}
	})

	t.Run("keeps only the most recent notes in order", func(t *testing.T) {
		notes := []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7"}
		got := BuildUserPrompt(DefaultSeedIssues(), notes, 5, "hi")
		if !strings.Contains(got, "Recent notes:\nn3\nn4\nn5\nn6\nn7\n\n") {
			t.Errorf("unexpected notes section in:\n%s", got)
		}
		if strings.Contains(got, "n2") {
			t.Errorf("older note leaked into prompt:\n%s", got)
		}
	})
}

func TestBuildMessages(t *testing.T) {
	msgs := BuildMessages(DefaultSeedIssues(), nil, 5, "hi")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != inference.RoleSystem || !strings.Contains(msgs[0].Content, "Backlog Buddy") {
		t.Errorf("unexpected system message %+v", msgs[0])
	}
	if !strings.Contains(msgs[0].Content, "Never invent real API tokens") {
		t.Error("system prompt is missing the credentials rule")
	}
	if msgs[1].Role != inference.RoleUser {
		t.Errorf("expected user role, got %s", msgs[1].Role)
	}
}

func TestRecentNotes(t *testing.T) {
	notes := []string{"a", "b", "c"}
	if got := recentNotes(notes, 5); len(got) != 3 {
		t.Errorf("expected all notes, got %v", got)
	}
	if got := recentNotes(notes, 2); got[0] != "b" || got[1] != "c" {
		t.Errorf("expected [b c], got %v", got)
	}
	if got := recentNotes(notes, 0); len(got) != 3 {
		t.Errorf("expected all notes for n=0, got %v", got)
	}
}
