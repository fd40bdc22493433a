package api

import (
	"encoding/json"
	"net/http"

	"github.com/voxhaus/voxhaus-core/internal/dispatch"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDispatchError maps a classified dispatch failure onto an HTTP status.
// The error code is the dispatch kind verbatim and the message is the
// advisory sentence, so clients can speak it back without translation.
func writeDispatchError(w http.ResponseWriter, derr *dispatch.Error) {
	status := http.StatusInternalServerError
	switch derr.Kind {
	case dispatch.KindDeviceNotFound:
		status = http.StatusNotFound
	case dispatch.KindUnsupportedAction, dispatch.KindInvalidValue:
		status = http.StatusUnprocessableEntity
	case dispatch.KindDispatchFailed:
		status = http.StatusBadGateway
	}
	writeError(w, status, string(derr.Kind), derr.Advisory)
}
