package store

import (
	"context"
	"sort"
	"sync"

	"github.com/iammorganparry/backlog/internal/models"
)

// MemoryStateStore keeps states in a process-local map. Values are cloned on
// the way in and out.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]*models.BacklogState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*models.BacklogState)}
}

func (s *MemoryStateStore) Load(_ context.Context, sessionID string) (*models.BacklogState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, false, nil
	}
	return state.Clone(), true, nil
}

func (s *MemoryStateStore) Save(_ context.Context, sessionID string, state *models.BacklogState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = state.Clone()
	return nil
}

// Put stores a state verbatim, including nil fields. Used to simulate
// partially written documents.
func (s *MemoryStateStore) Put(sessionID string, state *models.BacklogState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = state
}

func (s *MemoryStateStore) List(_ context.Context) ([]models.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.SessionSummary, 0, len(s.states))
	for id, state := range s.states {
		summaries = append(summaries, summarize(id, state))
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastUpdated, summaries[j].LastUpdated
		if a != nil && b != nil && !a.Equal(*b) {
			return a.After(*b)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func (s *MemoryStateStore) HealthCheck(context.Context) error { return nil }

func (s *MemoryStateStore) Close() error { return nil }
