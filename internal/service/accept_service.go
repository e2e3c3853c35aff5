package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/observability/metrics"
	"github.com/yourorg/qaboard/internal/security"
	"github.com/yourorg/qaboard/internal/security/audit"
)

// AcceptService enforces the acceptance workflow: author-only, one
// accepted answer per question, idempotent re-accept
type AcceptService struct {
	questionRepo domain.QuestionRepository
	answerRepo   domain.AnswerRepository
	authz        *security.AuthorizationService
	questionSvc  *QuestionService
	audit        *audit.Logger
	logger       *slog.Logger
}

// NewAcceptService creates a new acceptance service
func NewAcceptService(
	questionRepo domain.QuestionRepository,
	answerRepo domain.AnswerRepository,
	authz *security.AuthorizationService,
	questionSvc *QuestionService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AcceptService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcceptService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		authz:        authz,
		questionSvc:  questionSvc,
		audit:        auditLog,
		logger:       logger,
	}
}

// AcceptAnswer marks answerID as the accepted answer of questionID.
// Only the question's author may do this. Any previously accepted
// answer of the question is cleared in the same transaction.
func (s *AcceptService) AcceptAnswer(ctx context.Context, callerID, questionID, answerID string) (*domain.Answer, error) {
	if callerID == "" {
		return nil, domain.NewError(domain.CodeUnauthorized, "authentication required")
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.CanAcceptAnswer(callerID, question); err != nil {
		if s.audit != nil {
			s.audit.LogAction(ctx, callerID, "accept", "answer", answerID, "denied")
		}
		return nil, err
	}

	answer, err := s.answerRepo.Accept(ctx, questionID, answerID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveAcceptance()
	if s.audit != nil {
		s.audit.LogAction(ctx, callerID, "accept", "answer", answerID, "accepted")
	}
	s.logger.Info("answer accepted",
		slog.String("question_id", questionID),
		slog.String("answer_id", answerID),
		slog.String("caller_id", callerID),
	)
	if s.questionSvc != nil {
		s.questionSvc.InvalidateQuestion(ctx, questionID)
	}

	return answer, nil
}
