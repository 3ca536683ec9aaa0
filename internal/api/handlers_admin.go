package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/backlog/internal/backlog"
	"github.com/iammorganparry/backlog/internal/models"
)

// AdminHandler exposes operator actions that sit outside the session scope.
type AdminHandler struct {
	svc *backlog.Service
}

func NewAdminHandler(svc *backlog.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ListSessions handles GET /admin/sessions
func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
	})
}

// Cleanup handles POST /admin/sessions/{session}/cleanup
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")

	removed, state, err := h.svc.CleanupStaleNotes(r.Context(), session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.CleanupResponse{
		SessionID: session,
		Removed:   removed,
		State:     state,
	})
}
