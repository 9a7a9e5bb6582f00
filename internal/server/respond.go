package server

import (
	"log/slog"
	"net/http"

	"github.com/teemow/smsbridge/internal/jsoncodec"
	"github.com/teemow/smsbridge/internal/logging"
)

// ErrorResponse is the body of every non-2xx response produced by the router.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse acknowledges a structurally valid envelope.
type StatusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsoncodec.Encode(w, v); err != nil {
		slog.Debug("failed to write response body", logging.Err(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}
