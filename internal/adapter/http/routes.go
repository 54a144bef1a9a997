package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the control API on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1/agent", func(r chi.Router) {
		r.Get("/status", h.AgentStatus)
		r.Put("/toggle", h.AgentToggle)
		r.Post("/run-now", h.AgentRunNow)
		r.Get("/audit", h.AgentAudit)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}
