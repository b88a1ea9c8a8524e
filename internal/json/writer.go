package json

import (
	"encoding/json"
	"net/http"

	"github.com/dgellow/shop-admin/internal/log"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// WriteResponse writes a JSON response with the given status code
func WriteResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.LogError("Failed to encode JSON response: %v", err)
		return err
	}
	return nil
}

// Write writes a JSON response with 200 OK status
func Write(w http.ResponseWriter, data any) error {
	return WriteResponse(w, http.StatusOK, data)
}

// WriteError writes a JSON error response. detail is omitted when empty and
// must never contain secrets.
func WriteError(w http.ResponseWriter, statusCode int, code string, detail string) {
	response := ErrorResponse{
		Error:  code,
		Detail: detail,
	}

	if err := WriteResponse(w, statusCode, response); err != nil {
		// Fallback to plain text error if JSON encoding fails
		http.Error(w, code, statusCode)
	}
}

// Common error responses
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", detail)
}

func WriteInternalServerError(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusInternalServerError, "internal_server_error", detail)
}

func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusBadRequest, "bad_request", detail)
}

func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
}
