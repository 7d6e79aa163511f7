package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Status values carried in every response envelope
const (
	StatusCreated      = "created"
	StatusSuccess      = "success"
	StatusConflict     = "conflict"
	StatusUnauthorized = "unauthorized"
	StatusNotFound     = "not_found"
	StatusBadRequest   = "bad_request"
	StatusTooMany      = "too_many_requests"
	StatusError        = "error"
)

// Envelope is the JSON shape of every API response
type Envelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondData wraps data in a success envelope
func RespondData(w http.ResponseWriter, data any, statusCode int) {
	RespondJSON(w, Envelope{Status: StatusFor(statusCode), Code: statusCode, Data: data}, statusCode)
}

// RespondMessage sends an envelope carrying only a message
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Status: StatusFor(statusCode), Code: statusCode, Message: message}, statusCode)
}

// StatusFor maps an HTTP status code to its envelope status
func StatusFor(statusCode int) string {
	switch statusCode {
	case http.StatusCreated:
		return StatusCreated
	case http.StatusConflict:
		return StatusConflict
	case http.StatusUnauthorized:
		return StatusUnauthorized
	case http.StatusNotFound:
		return StatusNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return StatusBadRequest
	case http.StatusTooManyRequests:
		return StatusTooMany
	}
	if statusCode < http.StatusBadRequest {
		return StatusSuccess
	}
	return StatusError
}
