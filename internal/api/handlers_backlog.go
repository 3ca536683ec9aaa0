package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/backlog/internal/backlog"
	"github.com/iammorganparry/backlog/internal/models"
)

// BacklogHandler serves the session-scoped backlog endpoints.
type BacklogHandler struct {
	svc    *backlog.Service
	logger *slog.Logger
}

func NewBacklogHandler(svc *backlog.Service, logger *slog.Logger) *BacklogHandler {
	return &BacklogHandler{svc: svc, logger: logger}
}

// State handles GET <session>/state
func (h *BacklogHandler) State(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")

	state, err := h.svc.GetState(r.Context(), session)
	if err != nil {
		h.logger.Error("get state failed", "session", session, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// Chat handles POST <session>/chat
func (h *BacklogHandler) Chat(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")

	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusBadRequest, backlog.MissingMessage)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, backlog.MissingMessage)
		return
	}

	res, err := h.svc.HandleChatMessage(r.Context(), session, req.Message, req.User)
	switch {
	case errors.Is(err, backlog.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, backlog.MissingMessage)
		return
	case errors.Is(err, backlog.ErrUpstream):
		h.logger.Error("chat upstream failure", "session", session, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		h.logger.Error("chat failed", "session", session, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Reply: res.Reply,
		State: res.State,
	})
}
