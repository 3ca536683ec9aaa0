package store

import (
	"context"
	"fmt"

	"github.com/iammorganparry/backlog/internal/models"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// StateStore holds one BacklogState per session id. Save replaces the whole
// document (last write wins); callers serialize writes to a single session.
type StateStore interface {
	// Load returns the stored state and true, or nil and false when the
	// session has never been written.
	Load(ctx context.Context, sessionID string) (*models.BacklogState, bool, error)
	Save(ctx context.Context, sessionID string, state *models.BacklogState) error
	List(ctx context.Context) ([]models.SessionSummary, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// OpenDriver returns the StateStore for the configured driver.
func OpenDriver(driver, dbPath string) (StateStore, error) {
	switch driver {
	case DriverSQLite:
		db, err := Open(dbPath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStateStore(db), nil
	case DriverMemory:
		return NewMemoryStateStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func summarize(id string, state *models.BacklogState) models.SessionSummary {
	return models.SessionSummary{
		ID:          id,
		IssueCount:  len(state.Issues),
		NoteCount:   len(state.Notes),
		LastUpdated: state.LastUpdated,
	}
}
