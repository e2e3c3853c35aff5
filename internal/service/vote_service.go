package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/observability/metrics"
	"github.com/yourorg/qaboard/internal/security/audit"
)

// VoteService is the vote ledger entry point
type VoteService struct {
	answerRepo  domain.AnswerRepository
	voteRepo    domain.VoteRepository
	questionSvc *QuestionService
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewVoteService creates a new vote service
func NewVoteService(
	answerRepo domain.AnswerRepository,
	voteRepo domain.VoteRepository,
	questionSvc *QuestionService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *VoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoteService{
		answerRepo:  answerRepo,
		voteRepo:    voteRepo,
		questionSvc: questionSvc,
		audit:       auditLog,
		logger:      logger,
	}
}

// CastVote records userID's vote on answerID and returns the answer's
// updated vote count. Repeating the same direction is a no-op; flipping
// direction reverses the earlier vote.
func (s *VoteService) CastVote(ctx context.Context, userID, answerID string, direction domain.VoteDirection) (int, error) {
	if userID == "" {
		return 0, domain.NewError(domain.CodeUnauthorized, "authentication required")
	}
	if !direction.Valid() {
		return 0, domain.NewValidationError("direction must be up or down")
	}

	answer, err := s.answerRepo.GetByID(ctx, answerID)
	if err != nil {
		return 0, err
	}

	outcome := "applied"
	if prior, err := s.voteRepo.Get(ctx, userID, answerID); err == nil {
		if prior.Direction == direction {
			outcome = "repeated"
		} else {
			outcome = "reversed"
		}
	}

	count, err := s.voteRepo.Cast(ctx, userID, answerID, direction)
	if err != nil {
		return 0, err
	}

	metrics.ObserveVote(string(direction), outcome)
	if s.audit != nil {
		s.audit.LogAction(ctx, userID, "vote", "answer", answerID, outcome)
	}
	if s.questionSvc != nil {
		s.questionSvc.InvalidateQuestion(ctx, answer.QuestionID)
	}

	return count, nil
}
