package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Error codes returned in the envelope
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Payload holds the fields merged into a success envelope next to status and message.
type Payload map[string]interface{}

// ErrorResponse is the error envelope: {"status":"error","code":"...","message":"..."}
type ErrorResponse struct {
	Status  string      `json:"status"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers already sent
			logrus.WithError(err).Warn("Failed to encode response body")
		}
	}
}

// WriteSuccess writes {"status":"success","message":...} merged with payload.
func WriteSuccess(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["status"] = StatusSuccess
	if message != "" {
		body["message"] = message
	}
	WriteJSON(w, status, body)
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{
		Status:  StatusError,
		Code:    code,
		Message: message,
	})
}

// WriteValidationError writes a 400 carrying per-field details.
func WriteValidationError(w http.ResponseWriter, message string, details interface{}) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Status:  StatusError,
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: details,
	})
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteBadRequestWithCode writes a 400 Bad Request error with a custom code
func WriteBadRequestWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteUnauthorizedWithCode writes a 401 Unauthorized error with a custom code
func WriteUnauthorizedWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

// WriteForbiddenWithCode writes a 403 Forbidden error with a custom code
func WriteForbiddenWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusForbidden, code, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteConflict writes a 409 Conflict error
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, ErrCodeConflict, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
