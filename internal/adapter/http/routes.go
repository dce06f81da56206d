package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/bloxkit/passproxy/internal/middleware"
)

// MountRoutes registers all routes on the given chi router. apiKey is the
// shared secret for the protected listing endpoint; empty disables the gate.
func MountRoutes(r chi.Router, h *Handlers, apiKey string) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.With(middleware.APIKey(apiKey)).Get("/passes", h.GetPasses)
}
