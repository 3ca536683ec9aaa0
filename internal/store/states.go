package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iammorganparry/backlog/internal/models"
)

// SQLiteStateStore persists each session's state as a JSON document.
type SQLiteStateStore struct {
	db *DB
}

func NewSQLiteStateStore(db *DB) *SQLiteStateStore {
	return &SQLiteStateStore{db: db}
}

// Load fetches a session's state. A row whose JSON omits fields decodes with
// zero values; repairing them is the caller's concern.
func (s *SQLiteStateStore) Load(ctx context.Context, sessionID string) (*models.BacklogState, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM backlog_states WHERE session_id = ?`, sessionID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load state: %w", err)
	}

	var state models.BacklogState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false, fmt.Errorf("decode state for session %s: %w", sessionID, err)
	}
	return &state, true, nil
}

// Save upserts the full state document.
func (s *SQLiteStateStore) Save(ctx context.Context, sessionID string, state *models.BacklogState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO backlog_states (session_id, state, updated_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
	`, sessionID, string(data), now, now)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// List returns a summary of every stored session, most recently updated first.
func (s *SQLiteStateStore) List(ctx context.Context) ([]models.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, state FROM backlog_states
		ORDER BY updated_at DESC, session_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()

	var summaries []models.SessionSummary
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		var state models.BacklogState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, fmt.Errorf("decode state for session %s: %w", id, err)
		}
		summaries = append(summaries, summarize(id, &state))
	}
	return summaries, rows.Err()
}

func (s *SQLiteStateStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}
