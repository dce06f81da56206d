package http

import (
	"net/http"
	"time"

	"github.com/bloxkit/passproxy/internal/domain/pass"
	"github.com/bloxkit/passproxy/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Passes *service.PassService
}

type passesResponse struct {
	Success bool            `json:"success"`
	Passes  []pass.GamePass `json:"passes"`
	Cached  bool            `json:"cached"`
}

// GetPasses serves the game-pass listing for a universe. The universe is
// taken from universeId, derived from placeId, or, failing both, from userId
// used directly as a universe identifier. The userId fallback is a naming
// quirk from an earlier API version that callers still depend on.
func (h *Handlers) GetPasses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	universeID := q.Get("universeId")
	if universeID == "" {
		if placeID := q.Get("placeId"); placeID != "" {
			id, err := h.Passes.ResolvePlace(r.Context(), placeID)
			if err != nil {
				writeErrorDetail(w, http.StatusBadRequest,
					"could not resolve placeId to a universe", err.Error())
				return
			}
			universeID = id
		}
	}
	if universeID == "" {
		universeID = q.Get("userId")
	}
	if universeID == "" {
		writeError(w, http.StatusBadRequest, "universeId, placeId, or userId is required")
		return
	}

	passes, cached, err := h.Passes.GetPasses(r.Context(), universeID)
	if err != nil {
		writeErrorDetail(w, http.StatusInternalServerError,
			"failed to fetch game passes", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, passesResponse{
		Success: true,
		Passes:  passes,
		Cached:  cached,
	})
}

// Health reports liveness with the current timestamp.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root lists the available routes.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "passproxy: Roblox game-pass listing proxy",
		"endpoints": map[string]string{
			"passes": "GET /passes?universeId=|placeId=|userId=",
			"health": "GET /health",
		},
	})
}
