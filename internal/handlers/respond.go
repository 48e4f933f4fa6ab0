// Package handlers implements the JSON API: authentication, post CRUD,
// category management, Markdown upload, and the feed documents. Every JSON
// response uses the same envelope, success plus payload or error.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// respond writes the success envelope with the given payload fields merged in.
func respond(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// respondError writes the error envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// decodeJSON parses a request body into dst, rejecting unknown garbage early.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"status": "ok"})
}
