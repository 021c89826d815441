// Package respond writes JSON responses with the service's error envelope.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope for every non-2xx JSON response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes an ErrorBody.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: code, Message: message})
}

// FieldErrors writes a 422 with per-field messages.
func FieldErrors(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Error:   "validation_failed",
		Message: "some fields are invalid",
		Fields:  fields,
	})
}
