package models

import (
	"slices"
	"time"
)

// IssueStatus is the lifecycle state of a backlog issue.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusDone       IssueStatus = "done"
	IssueStatusCancelled  IssueStatus = "cancelled"
)

var ValidIssueStatuses = map[IssueStatus]bool{
	IssueStatusOpen:       true,
	IssueStatusInProgress: true,
	IssueStatusDone:       true,
	IssueStatusCancelled:  true,
}

func (s IssueStatus) IsValid() bool {
	return ValidIssueStatuses[s]
}

// Issue is a single backlog item. Issues are only created when a session is
// seeded; nothing in the chat path mutates them.
type Issue struct {
	ID     string      `json:"id" yaml:"id"`
	Title  string      `json:"title" yaml:"title"`
	Status IssueStatus `json:"status" yaml:"status"`
	URL    string      `json:"url,omitempty" yaml:"url,omitempty"`
}

// BacklogState is the per-session document persisted by the state store.
// A nil Issues slice means the field was absent from the stored document.
type BacklogState struct {
	Issues      []Issue    `json:"issues"`
	Notes       []string   `json:"notes"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// Clone returns a deep copy so callers can't reach into stored slices.
func (s *BacklogState) Clone() *BacklogState {
	if s == nil {
		return nil
	}
	c := &BacklogState{
		Issues: slices.Clone(s.Issues),
		Notes:  slices.Clone(s.Notes),
	}
	if s.LastUpdated != nil {
		t := *s.LastUpdated
		c.LastUpdated = &t
	}
	return c
}

// ChatRequest is the payload for POST <session>/chat.
type ChatRequest struct {
	Message string `json:"message"`
	User    string `json:"user,omitempty"`
}

// ChatResponse is returned from POST <session>/chat.
type ChatResponse struct {
	Reply string        `json:"reply"`
	State *BacklogState `json:"state"`
}

// CleanupResponse is returned from POST /admin/sessions/{session}/cleanup.
type CleanupResponse struct {
	SessionID string        `json:"sessionId"`
	Removed   int           `json:"removed"`
	State     *BacklogState `json:"state"`
}

// SessionSummary describes one stored session for listings.
type SessionSummary struct {
	ID          string     `json:"id"`
	IssueCount  int        `json:"issueCount"`
	NoteCount   int        `json:"noteCount"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// ErrorResponse is the JSON body for every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServiceCheck reports the status of one dependency.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status string       `json:"status"`
	Ollama ServiceCheck `json:"ollama"`
	DB     ServiceCheck `json:"db"`
}
