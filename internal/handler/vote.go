package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security/middleware"
	"github.com/yourorg/qaboard/internal/service"
)

// VoteHandler handles voting on answers
type VoteHandler struct {
	voteService *service.VoteService
	logger      *slog.Logger
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(voteService *service.VoteService, logger *slog.Logger) *VoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoteHandler{voteService: voteService, logger: logger}
}

// VoteRequest represents the vote payload
type VoteRequest struct {
	Direction string `json:"direction"`
}

// VoteResponse carries the answer's vote count after the vote settled
type VoteResponse struct {
	AnswerID  string `json:"answerId"`
	Direction string `json:"direction"`
	VoteCount int    `json:"voteCount"`
}

// Cast handles POST /api/answers/{id}/vote
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, h.logger, http.StatusUnauthorized, ErrorResponse{Code: domain.CodeUnauthorized, Error: "authentication required"})
		return
	}

	answerID := r.PathValue("id")

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Code: domain.CodeValidation, Error: "invalid request body"})
		return
	}

	direction := domain.VoteDirection(req.Direction)
	count, err := h.voteService.CastVote(r.Context(), claims.UserID, answerID, direction)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, VoteResponse{
		AnswerID:  answerID,
		Direction: string(direction),
		VoteCount: count,
	})
}
