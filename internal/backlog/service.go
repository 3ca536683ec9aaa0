package backlog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/iammorganparry/backlog/internal/inference"
	"github.com/iammorganparry/backlog/internal/models"
	"github.com/iammorganparry/backlog/internal/store"
)

const (
	DefaultNoteLimit   = 50
	DefaultRecentNotes = 5
	DefaultUser        = "anonymous"
)

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	Seed        []models.Issue
	NoteLimit   int
	RecentNotes int
	// AutoCleanup trims the note log right after each chat write.
	AutoCleanup bool
	Now         func() time.Time
}

// Service owns the per-session backlog lifecycle: seeding, chat turns and
// note trimming. Operations on one session are serialized; different
// sessions proceed independently.
type Service struct {
	store       store.StateStore
	completer   inference.Completer
	seed        []models.Issue
	noteLimit   int
	recentNotes int
	autoCleanup bool
	now         func() time.Time
	locks       *sessionLocks
	logger      *slog.Logger
}

func NewService(st store.StateStore, completer inference.Completer, opts Options, logger *slog.Logger) *Service {
	s := &Service{
		store:       st,
		completer:   completer,
		seed:        opts.Seed,
		noteLimit:   opts.NoteLimit,
		recentNotes: opts.RecentNotes,
		autoCleanup: opts.AutoCleanup,
		now:         opts.Now,
		locks:       newSessionLocks(),
		logger:      logger,
	}
	if len(s.seed) == 0 {
		s.seed = DefaultSeedIssues()
	}
	if s.noteLimit <= 0 {
		s.noteLimit = DefaultNoteLimit
	}
	if s.recentNotes <= 0 {
		s.recentNotes = DefaultRecentNotes
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ChatResult is the reply text plus the state as written.
type ChatResult struct {
	Reply string
	State *models.BacklogState
}

// Initialize seeds the session on first use. A stored state that lacks an
// issues list is re-seeded; anything else is left alone.
func (s *Service) Initialize(ctx context.Context, sessionID string) (*models.BacklogState, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// GetState returns the session's state without modifying it. A session that
// was never initialized is initialized first.
func (s *Service) GetState(ctx context.Context, sessionID string) (*models.BacklogState, error) {
	return s.Initialize(ctx, sessionID)
}

// HandleChatMessage records the message as a note, asks the model for a
// reply and persists the note log. Nothing is written unless the model call
// succeeds.
func (s *Service) HandleChatMessage(ctx context.Context, sessionID, message, user string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, MissingMessage)
	}
	if user == "" {
		user = DefaultUser
	}

	release := s.locks.acquire(sessionID)
	defer release()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	notes := append(slices.Clone(state.Notes), FormatNote(s.now(), user, message))

	res, err := s.completer.Complete(ctx, BuildMessages(state.Issues, notes, s.recentNotes, message))
	if err != nil {
		s.logger.Warn("chat completion failed", "session", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	reply := res.Text()

	next := &models.BacklogState{
		Issues:      state.Issues,
		Notes:       notes,
		LastUpdated: s.stamp(state.LastUpdated),
	}
	if s.autoCleanup {
		next.Notes = s.trim(next.Notes)
	}
	if err := s.store.Save(ctx, sessionID, next); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.Debug("chat handled",
		"session", sessionID,
		"user", user,
		"notes", len(next.Notes),
		"structured", res.IsStructured(),
	)
	return &ChatResult{Reply: reply, State: next.Clone()}, nil
}

// CleanupStaleNotes keeps only the newest notes once the log is over the
// limit. Returns how many notes were dropped; zero means nothing was written.
func (s *Service) CleanupStaleNotes(ctx context.Context, sessionID string) (int, *models.BacklogState, error) {
	release := s.locks.acquire(sessionID)
	defer release()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, nil, err
	}

	if len(state.Notes) <= s.noteLimit {
		return 0, state.Clone(), nil
	}

	removed := len(state.Notes) - s.noteLimit
	state.Notes = s.trim(state.Notes)
	state.LastUpdated = s.stamp(state.LastUpdated)
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return 0, nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.Info("trimmed stale notes", "session", sessionID, "removed", removed)
	return removed, state.Clone(), nil
}

// ListSessions summarizes every stored session.
func (s *Service) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if list == nil {
		list = []models.SessionSummary{}
	}
	return list, nil
}

// load reads and hydrates a session's state, writing it back only when it
// had to be seeded. Callers hold the session lock.
func (s *Service) load(ctx context.Context, sessionID string) (*models.BacklogState, error) {
	state, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	if found && state.Issues != nil {
		if state.Notes == nil {
			state.Notes = []string{}
		}
		return state, nil
	}

	if found {
		s.logger.Warn("stored state has no issues, re-seeding", "session", sessionID)
	}
	seeded := s.hydrate(state)
	if err := s.store.Save(ctx, sessionID, seeded); err != nil {
		return nil, fmt.Errorf("seed state: %w", err)
	}
	if !found {
		s.logger.Info("session initialized", "session", sessionID, "issues", len(seeded.Issues))
	}
	return seeded, nil
}

// hydrate fills a missing or partial state with defaults. Existing notes
// survive a re-seed.
func (s *Service) hydrate(state *models.BacklogState) *models.BacklogState {
	out := &models.BacklogState{
		Issues: slices.Clone(s.seed),
		Notes:  []string{},
	}
	var prev *time.Time
	if state != nil {
		if state.Notes != nil {
			out.Notes = state.Notes
		}
		prev = state.LastUpdated
	}
	out.LastUpdated = s.stamp(prev)
	return out
}

// trim returns the newest noteLimit notes in their original order.
func (s *Service) trim(notes []string) []string {
	if len(notes) <= s.noteLimit {
		return notes
	}
	return slices.Clone(notes[len(notes)-s.noteLimit:])
}

// stamp returns the current time, never earlier than prev.
func (s *Service) stamp(prev *time.Time) *time.Time {
	now := s.now().UTC()
	if prev != nil && now.Before(*prev) {
		now = *prev
	}
	return &now
}
