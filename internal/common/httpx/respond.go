// Package httpx holds the response helpers shared by the handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"fleet-dispatch/internal/common/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps the error's kind to a status and emits a stable
// machine-readable body.
func WriteError(w http.ResponseWriter, err error) {
	body := map[string]string{
		"error":   string(apperr.KindOf(err)),
		"message": err.Error(),
	}
	if body["error"] == "" {
		body["error"] = "INTERNAL"
		body["message"] = "internal error"
	}
	WriteJSON(w, apperr.HTTPStatus(err), body)
}
