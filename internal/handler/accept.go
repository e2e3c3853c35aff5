package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security/middleware"
	"github.com/yourorg/qaboard/internal/service"
)

// AcceptHandler handles marking an answer as accepted
type AcceptHandler struct {
	acceptService *service.AcceptService
	logger        *slog.Logger
}

// NewAcceptHandler creates a new accept handler
func NewAcceptHandler(acceptService *service.AcceptService, logger *slog.Logger) *AcceptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcceptHandler{acceptService: acceptService, logger: logger}
}

// AcceptRequest names the answer to accept
type AcceptRequest struct {
	AnswerID string `json:"answerId"`
}

// Accept handles POST /api/questions/{id}/accept
func (h *AcceptHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, h.logger, http.StatusUnauthorized, ErrorResponse{Code: domain.CodeUnauthorized, Error: "authentication required"})
		return
	}

	questionID := r.PathValue("id")

	var req AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Code: domain.CodeValidation, Error: "invalid request body"})
		return
	}
	if req.AnswerID == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Code: domain.CodeValidation, Error: "answerId is required"})
		return
	}

	answer, err := h.acceptService.AcceptAnswer(r.Context(), claims.UserID, questionID, req.AnswerID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toAnswerResponse(answer))
}
