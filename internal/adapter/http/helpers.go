package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorResponse is the structured failure body for every error path.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, errMsg string) {
	writeJSON(w, status, errorResponse{Error: errMsg})
}

// writeErrorDetail includes the underlying failure's message alongside the error.
func writeErrorDetail(w http.ResponseWriter, status int, errMsg, detail string) {
	writeJSON(w, status, errorResponse{Error: errMsg, Message: detail})
}
