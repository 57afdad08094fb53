package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// writeJSON encodes v before writing the status, so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.FromContext(context.Background()).WithComponent(log.ComponentHTTP).
			Error("Failed to encode response", "status", status, log.FieldError, err)
		buf.Reset()
		buf.WriteString(`{"error":"Internal server error"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a single JSON object into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// errorMessages are the client-facing texts for a route's failure kinds.
type errorMessages struct {
	notFound string
	conflict string
	internal string
}

// respondError maps service errors to status codes. Anything unrecognised
// is logged and answered with the route's generic internal message.
func respondError(w http.ResponseWriter, r *http.Request, err error, op string, msgs errorMessages) {
	if verr, ok := core.AsValidation(err); ok {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, core.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, core.ErrNotFound) && msgs.notFound != "":
		writeError(w, http.StatusNotFound, msgs.notFound)
	case errors.Is(err, core.ErrConflict) && msgs.conflict != "":
		writeError(w, http.StatusConflict, msgs.conflict)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, nil)
		writeError(w, http.StatusInternalServerError, msgs.internal)
	}
}
