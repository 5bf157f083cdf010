package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"searchable-gallery/internal/catalog"
	"searchable-gallery/internal/database"
	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/media"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, statusCode int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"status": status})
}

// statusForError maps catalog, store and blob errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidArgument), errors.Is(err, media.ErrInvalidRef):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, database.ErrNotFound), errors.Is(err, media.ErrNotFound):
		return http.StatusNotFound
	case database.IsConnectionError(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error. Client errors echo the message;
// server errors are logged and replaced with a generic one.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	message := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		logging.Warn("%s %s: %v", r.Method, r.URL.Path, err)
		message = "catalog unavailable"
	case http.StatusGatewayTimeout:
		logging.Warn("%s %s: %v", r.Method, r.URL.Path, err)
		message = "request timed out"
	case http.StatusInternalServerError:
		logging.Error("%s %s: %v", r.Method, r.URL.Path, err)
		message = "internal error"
	}
	writeJSONError(w, message, status)
}
