package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/observability/metrics"
	"github.com/yourorg/qaboard/pkg/cache"
)

const detailCachePrefix = "question:"

// QuestionDetail is a question together with its answers, accepted
// first then by vote count
type QuestionDetail struct {
	Question *domain.Question `json:"question"`
	Answers  []*domain.Answer `json:"answers"`
}

// QuestionService owns question and answer creation and reads
type QuestionService struct {
	questionRepo domain.QuestionRepository
	answerRepo   domain.AnswerRepository
	listCache    *ListCache
	detailCache  *cache.Cache
	detailTTL    time.Duration
	pageSize     int
	logger       *slog.Logger
}

// NewQuestionService creates a new question service
func NewQuestionService(
	questionRepo domain.QuestionRepository,
	answerRepo domain.AnswerRepository,
	listCache *ListCache,
	detailCache *cache.Cache,
	pageSize int,
	logger *slog.Logger,
) *QuestionService {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &QuestionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		listCache:    listCache,
		detailCache:  detailCache,
		detailTTL:    5 * time.Second,
		pageSize:     pageSize,
		logger:       logger,
	}
}

// PageSize returns the fixed page size for listings
func (s *QuestionService) PageSize() int {
	return s.pageSize
}

// CreateQuestion validates and stores a new question
func (s *QuestionService) CreateQuestion(ctx context.Context, authorID, title, description string, tags []string) (*domain.Question, error) {
	if authorID == "" {
		return nil, domain.NewError(domain.CodeUnauthorized, "authentication required")
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("description is required")
	}

	normalized, err := normalizeTags(tags)
	if err != nil {
		return nil, err
	}

	question := &domain.Question{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		Tags:        normalized,
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}

	metrics.ObserveQuestionCreated()
	s.logger.Info("question created",
		slog.String("question_id", question.ID),
		slog.String("author_id", authorID),
	)

	if s.listCache != nil {
		s.listCache.InvalidateAll(ctx)
	}
	return question, nil
}

// CreateAnswer validates and stores a new answer to an existing question
func (s *QuestionService) CreateAnswer(ctx context.Context, authorID, questionID, content string) (*domain.Answer, error) {
	if authorID == "" {
		return nil, domain.NewError(domain.CodeUnauthorized, "authentication required")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content is required")
	}

	if _, err := s.questionRepo.GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    content,
	}

	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, err
	}

	metrics.ObserveAnswerCreated()
	s.logger.Info("answer created",
		slog.String("answer_id", answer.ID),
		slog.String("question_id", questionID),
		slog.String("author_id", authorID),
	)

	s.InvalidateQuestion(ctx, questionID)
	return answer, nil
}

// GetQuestion returns a question with its answers. Detail reads are
// cached in-process for a few seconds to absorb hot-thread traffic.
func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*QuestionDetail, error) {
	if s.detailCache != nil {
		if v, ok := s.detailCache.Get(detailCachePrefix + id); ok {
			metrics.ObserveCache("detail", "hit")
			return v.(*QuestionDetail), nil
		}
		metrics.ObserveCache("detail", "miss")
	}

	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &QuestionDetail{Question: question, Answers: answers}
	if s.detailCache != nil {
		s.detailCache.Set(detailCachePrefix+id, detail, s.detailTTL)
	}
	return detail, nil
}

// ListQuestions returns one page of question summaries. Pages without a
// search term are served from the list cache when possible.
func (s *QuestionService) ListQuestions(ctx context.Context, filter domain.ListFilter, search string, page int) ([]*domain.QuestionSummary, error) {
	if filter == "" {
		filter = domain.FilterNewest
	}
	if !filter.Valid() {
		return nil, domain.NewValidationError("filter must be one of newest, unanswered, most-voted")
	}
	if page < 1 {
		page = 1
	}
	search = strings.TrimSpace(search)

	cacheable := search == "" && s.listCache != nil
	if cacheable {
		if summaries, ok := s.listCache.Get(ctx, filter, page); ok {
			return summaries, nil
		}
	}

	summaries, err := s.questionRepo.List(ctx, domain.ListOptions{
		Filter: filter,
		Search: search,
		Offset: (page - 1) * s.pageSize,
		Limit:  s.pageSize,
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.listCache.Set(ctx, filter, page, summaries)
	}
	return summaries, nil
}

// RefreshHotLists re-reads the first page of the common listings into
// the list cache. Used by the cache warm worker.
func (s *QuestionService) RefreshHotLists(ctx context.Context) error {
	if s.listCache == nil {
		return nil
	}
	for _, filter := range []domain.ListFilter{domain.FilterNewest, domain.FilterMostVoted} {
		summaries, err := s.questionRepo.List(ctx, domain.ListOptions{
			Filter: filter,
			Limit:  s.pageSize,
		})
		if err != nil {
			return err
		}
		s.listCache.Set(ctx, filter, 1, summaries)
	}
	return nil
}

// InvalidateQuestion drops cached state for one question and all list
// pages. Called after answers, votes and acceptances.
func (s *QuestionService) InvalidateQuestion(ctx context.Context, questionID string) {
	if s.detailCache != nil {
		s.detailCache.Delete(detailCachePrefix + questionID)
	}
	if s.listCache != nil {
		s.listCache.InvalidateAll(ctx)
	}
}

// normalizeTags trims, lower-cases and de-duplicates tags, rejecting
// more than domain.MaxTags unique values
func normalizeTags(tags []string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > domain.MaxTags {
		return nil, domain.NewValidationError("at most 5 tags are allowed")
	}
	return out, nil
}
