package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security/middleware"
	"github.com/yourorg/qaboard/internal/service"
)

// QuestionResponse is the wire shape of a question
type QuestionResponse struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	VoteCount   int       `json:"voteCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// QuestionSummaryResponse is a list item with answer aggregates
type QuestionSummaryResponse struct {
	QuestionResponse
	AnswerCount       int  `json:"answerCount"`
	HasAcceptedAnswer bool `json:"hasAcceptedAnswer"`
}

// AnswerResponse is the wire shape of an answer
type AnswerResponse struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"questionId"`
	AuthorID   string    `json:"authorId"`
	Content    string    `json:"content"`
	VoteCount  int       `json:"voteCount"`
	IsAccepted bool      `json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toQuestionResponse(q *domain.Question) QuestionResponse {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return QuestionResponse{
		ID:          q.ID,
		AuthorID:    q.AuthorID,
		Title:       q.Title,
		Description: q.Description,
		Tags:        tags,
		VoteCount:   q.VoteCount,
		CreatedAt:   q.CreatedAt,
	}
}

func toAnswerResponse(a *domain.Answer) AnswerResponse {
	return AnswerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		AuthorID:   a.AuthorID,
		Content:    a.Content,
		VoteCount:  a.VoteCount,
		IsAccepted: a.IsAccepted,
		CreatedAt:  a.CreatedAt,
	}
}

// QuestionHandler handles question endpoints
type QuestionHandler struct {
	questionService *service.QuestionService
	logger          *slog.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questionService *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionHandler{questionService: questionService, logger: logger}
}

// CreateQuestionRequest represents the ask-question payload
type CreateQuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Create handles POST /api/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, h.logger, http.StatusUnauthorized, ErrorResponse{Code: domain.CodeUnauthorized, Error: "authentication required"})
		return
	}

	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Code: domain.CodeValidation, Error: "invalid request body"})
		return
	}

	question, err := h.questionService.CreateQuestion(r.Context(), claims.UserID, req.Title, req.Description, req.Tags)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, toQuestionResponse(question))
}

// List handles GET /api/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ListFilter(r.URL.Query().Get("filter"))
	search := r.URL.Query().Get("q")

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			writeJSON(w, h.logger, http.StatusBadRequest, ErrorResponse{Code: domain.CodeValidation, Error: "page must be a positive integer"})
			return
		}
		page = parsed
	}

	summaries, err := h.questionService.ListQuestions(r.Context(), filter, search, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items := make([]QuestionSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, QuestionSummaryResponse{
			QuestionResponse:  toQuestionResponse(&s.Question),
			AnswerCount:       s.AnswerCount,
			HasAcceptedAnswer: s.HasAcceptedAnswer,
		})
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"questions": items,
		"page":      page,
		"pageSize":  h.questionService.PageSize(),
	})
}

// Get handles GET /api/questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.questionService.GetQuestion(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	answers := make([]AnswerResponse, 0, len(detail.Answers))
	for _, a := range detail.Answers {
		answers = append(answers, toAnswerResponse(a))
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"question": toQuestionResponse(detail.Question),
		"answers":  answers,
	})
}
