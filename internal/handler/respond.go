package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/qaboard/internal/domain"
)

// ErrorResponse is the wire shape of every error: a stable code plus a
// human-readable message
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func statusForCode(code string) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnauthorized, domain.CodeInvalidCredentials,
		domain.CodeTokenExpired, domain.CodeTokenInvalid:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && log != nil {
		log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to its HTTP status and wire shape.
// The wrapped internal cause is never exposed.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := domain.CodeOf(err)
	message := "internal error"

	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
	}

	writeJSON(w, log, statusForCode(code), ErrorResponse{Code: code, Error: message})
}
