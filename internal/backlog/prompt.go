package backlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/iammorganparry/backlog/internal/inference"
	"github.com/iammorganparry/backlog/internal/models"
)

// NoteTimeLayout stamps notes with UTC millisecond precision,
// e.g. 2026-10-17T09:30:00.000Z.
const NoteTimeLayout = "2006-01-02T15:04:05.000Z07:00"

const systemPrompt = `You are Backlog Buddy, an engineering assistant that helps a developer
triage and act on their issue backlog.

Goals:
- Look at the list of issues and their statuses.
- When asked to "implement and open a PR for the first issue", outline concrete steps:
  - Identify the first OPEN issue.
  - Suggest git branch name, commands and a checklist.
- When asked to "clean up backlog", propose which issues to close or cancel.
- Keep answers concise but structured with bullet points.
- Never invent real API tokens, passwords or secrets.
`

const (
	noIssuesPlaceholder = "(no issues yet)"
	noNotesPlaceholder  = "(none)"
)

// FormatNote renders one note log line.
func FormatNote(at time.Time, user, message string) string {
	return fmt.Sprintf("[%s][%s] %s", at.UTC().Format(NoteTimeLayout), user, message)
}

// RenderIssues renders one "- [status] id: title (url)" line per issue.
func RenderIssues(issues []models.Issue) string {
	lines := make([]string, 0, len(issues))
	for _, i := range issues {
		line := fmt.Sprintf("- [%s] %s: %s", i.Status, i.ID, i.Title)
		if i.URL != "" {
			line += fmt.Sprintf(" (%s)", i.URL)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// recentNotes returns at most n trailing notes.
func recentNotes(notes []string, n int) []string {
	if n <= 0 || len(notes) <= n {
		return notes
	}
	return notes[len(notes)-n:]
}

// BuildUserPrompt assembles the user turn from the backlog, the last recent
// notes and the raw message.
func BuildUserPrompt(issues []models.Issue, notes []string, recent int, message string) string {
	issuesSummary := RenderIssues(issues)
	if issuesSummary == "" {
		issuesSummary = noIssuesPlaceholder
	}

	notesSummary := strings.Join(recentNotes(notes, recent), "\n")
	if notesSummary == "" {
		notesSummary = noNotesPlaceholder
	}

	var b strings.Builder
	b.WriteString("Current backlog:\n")
	b.WriteString(issuesSummary)
	b.WriteString("\n\nRecent notes:\n")
	b.WriteString(notesSummary)
	b.WriteString("\n\nUser message:\n")
	b.WriteString(`"` + message + `"`)
	b.WriteString("\n\nRespond with clear next steps and, when relevant, example git commands.\n")
	return b.String()
}

// BuildMessages returns exactly the system and user turns sent upstream.
func BuildMessages(issues []models.Issue, notes []string, recent int, message string) []inference.Message {
	return []inference.Message{
		{Role: inference.RoleSystem, Content: systemPrompt},
		{Role: inference.RoleUser, Content: BuildUserPrompt(issues, notes, recent, message)},
	}
}
