package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security/middleware"
	"github.com/yourorg/qaboard/internal/service"
)

// AnswerHandler handles answer creation
type AnswerHandler struct {
	questionService *service.QuestionService
	logger          *slog.Logger
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(questionService *service.QuestionService, logger *slog.Logger) *AnswerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerHandler{questionService: questionService, logger: logger}
}

// CreateAnswerRequest represents the post-answer payload
type CreateAnswerRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/questions/{id}/answers
func (h *AnswerHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, h.logger, http.StatusUnauthorized, ErrorResponse{Code: domain.CodeUnauthorized, Error: "authentication required"})
		return
	}

	questionID := r.PathValue("id")

	var req CreateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Code: domain.CodeValidation, Error: "invalid request body"})
		return
	}

	answer, err := h.questionService.CreateAnswer(r.Context(), claims.UserID, questionID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, toAnswerResponse(answer))
}
