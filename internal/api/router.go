package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/backlog/internal/backlog"
)

// AgentBasePath is the prefix of every session-scoped route. The chat UI
// posts to AgentBasePath + "/{session}/chat".
const AgentBasePath = "/agents/backlog-agent"

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	svc *backlog.Service,
	db HealthChecker,
	ollama HealthChecker,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Set before any Route so sub-routers inherit them.
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	healthH := NewHealthHandler(db, ollama)
	backlogH := NewBacklogHandler(svc, logger)
	adminH := NewAdminHandler(svc)

	r.Get("/", Index)
	r.Get("/health", healthH.Health)

	r.Route(AgentBasePath+"/{session}", func(r chi.Router) {
		r.Get("/state", backlogH.State)
		r.Post("/chat", backlogH.Chat)
	})

	r.Route("/admin/sessions", func(r chi.Router) {
		r.Get("/", adminH.ListSessions)
		r.Post("/{session}/cleanup", adminH.Cleanup)
	})

	return r
}
