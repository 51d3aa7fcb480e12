package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err onto its HTTP status. Only the public message reaches
// the client; the full chain is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "kind", apperr.KindOf(err).String(), "error", err)
	} else {
		slog.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.PublicMessage(err)})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Input("invalid request body")
	}
	return nil
}
