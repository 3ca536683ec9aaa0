package backlog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iammorganparry/backlog/internal/models"
)

// DefaultSeedIssues returns the issues every new session starts with.
func DefaultSeedIssues() []models.Issue {
	return []models.Issue{
		{
			ID:     "CF-4242",
			Title:  "Implement and open a pull request for the first issue assigned to me",
			Status: models.IssueStatusOpen,
			URL:    "https://example.com/your-issue-tracker/CF-4242",
		},
		{
			ID:     "CF-4243",
			Title:  "Clean up backlog, cancelling any issues that are no longer relevant",
			Status: models.IssueStatusOpen,
		},
		{
			ID:     "CF-4244",
			Title:  "Document how our Agents are wired into Workers AI",
			Status: models.IssueStatusInProgress,
		},
	}
}

type seedFile struct {
	Issues []models.Issue `yaml:"issues"`
}

// LoadSeedFile reads a YAML document of the form
//
//	issues:
//	  - id: CF-1
//	    title: Something
//	    status: open
//	    url: https://...
//
// and returns the validated issue list.
func LoadSeedFile(path string) ([]models.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	if err := ValidateIssues(f.Issues); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return f.Issues, nil
}

// ValidateIssues checks a seed list: non-empty, unique non-empty ids, titles
// present, known statuses.
func ValidateIssues(issues []models.Issue) error {
	if len(issues) == 0 {
		return fmt.Errorf("at least one issue is required")
	}
	seen := make(map[string]bool, len(issues))
	for i, issue := range issues {
		if issue.ID == "" {
			return fmt.Errorf("issue %d: id is required", i)
		}
		if seen[issue.ID] {
			return fmt.Errorf("issue %d: duplicate id %s", i, issue.ID)
		}
		seen[issue.ID] = true
		if issue.Title == "" {
			return fmt.Errorf("issue %s: title is required", issue.ID)
		}
		if !issue.Status.IsValid() {
			return fmt.Errorf("issue %s: invalid status %q", issue.ID, issue.Status)
		}
	}
	return nil
}
