package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

// statusFor maps the service error taxonomy onto HTTP. UNAVAILABLE and
// ILLEGAL_TRANSITION are both conflicts: the request was well-formed but the
// current state refuses it.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeUnavailable, apperr.CodeIllegalTransition:
		return http.StatusConflict
	case apperr.CodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDomainError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	writeJSON(w, statusFor(code), ErrorResponse{
		Error:   string(code),
		Message: err.Error(),
	})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
