package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIssueStatusIsValid(t *testing.T) {
	for _, s := range []IssueStatus{IssueStatusOpen, IssueStatusInProgress, IssueStatusDone, IssueStatusCancelled} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []IssueStatus{"", "OPEN", "blocked"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestBacklogStateClone(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	orig := &BacklogState{
		Issues:      []Issue{{ID: "CF-1", Title: "one", Status: IssueStatusOpen}},
		Notes:       []string{"a", "b"},
		LastUpdated: &ts,
	}

	c := orig.Clone()
	c.Issues[0].Title = "changed"
	c.Notes[0] = "changed"
	*c.LastUpdated = ts.Add(time.Hour)

	if orig.Issues[0].Title != "one" {
		t.Errorf("clone shares issues with original")
	}
	if orig.Notes[0] != "a" {
		t.Errorf("clone shares notes with original")
	}
	if !orig.LastUpdated.Equal(ts) {
		t.Errorf("clone shares lastUpdated with original")
	}

	var nilState *BacklogState
	if nilState.Clone() != nil {
		t.Errorf("expected nil clone of nil state")
	}
}

func TestBacklogStateJSONShape(t *testing.T) {
	state := BacklogState{
		Issues: []Issue{{ID: "CF-1", Title: "one", Status: IssueStatusOpen}},
		Notes:  []string{},
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	for _, want := range []string{`"issues":[`, `"notes":[]`, `"lastUpdated":null`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %s", want, got)
		}
	}
	if strings.Contains(got, `"url"`) {
		t.Errorf("expected empty url to be omitted, got %s", got)
	}
}

func TestBacklogStateMissingIssuesDecodesNil(t *testing.T) {
	var state BacklogState
	if err := json.Unmarshal([]byte(`{"notes":["x"]}`), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Issues != nil {
		t.Errorf("expected nil issues for absent field, got %v", state.Issues)
	}

	if err := json.Unmarshal([]byte(`{"issues":[]}`), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.Issues == nil {
		t.Errorf("expected empty non-nil issues for explicit empty list")
	}
}
