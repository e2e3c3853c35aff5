package service

import (
	"context"
	"testing"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security"
)

func newTestAcceptService() (*AcceptService, *QuestionService, *memAnswerRepo) {
	answers := newMemAnswerRepo()
	questions := newMemQuestionRepo(answers)
	questionSvc := NewQuestionService(questions, answers, nil, nil, 20, nil)
	acceptSvc := NewAcceptService(questions, answers, security.NewAuthorizationService(nil), questionSvc, nil, nil)
	return acceptSvc, questionSvc, answers
}

func TestAcceptAnswer(t *testing.T) {
	ctx := context.Background()
	acceptSvc, questionSvc, _ := newTestAcceptService()

	q, _ := questionSvc.CreateQuestion(ctx, "asker", "Title", "Body", nil)
	a1, _ := questionSvc.CreateAnswer(ctx, "helper1", q.ID, "First answer")
	a2, _ := questionSvc.CreateAnswer(ctx, "helper2", q.ID, "Second answer")

	accepted, err := acceptSvc.AcceptAnswer(ctx, "asker", q.ID, a1.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if !accepted.IsAccepted {
		t.Fatalf("expected answer to be marked accepted")
	}

	// Accepting a second answer moves the mark
	accepted, err = acceptSvc.AcceptAnswer(ctx, "asker", q.ID, a2.ID)
	if err != nil {
		t.Fatalf("re-accept failed: %v", err)
	}
	if !accepted.IsAccepted {
		t.Fatalf("expected second answer to be accepted")
	}

	detail, _ := questionSvc.GetQuestion(ctx, q.ID)
	acceptedCount := 0
	for _, a := range detail.Answers {
		if a.IsAccepted {
			acceptedCount++
			if a.ID != a2.ID {
				t.Fatalf("wrong answer carries the accepted mark")
			}
		}
	}
	if acceptedCount != 1 {
		t.Fatalf("expected exactly one accepted answer, got %d", acceptedCount)
	}
}

func TestAcceptAnswerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	acceptSvc, questionSvc, _ := newTestAcceptService()

	q, _ := questionSvc.CreateQuestion(ctx, "asker", "Title", "Body", nil)
	a, _ := questionSvc.CreateAnswer(ctx, "helper", q.ID, "An answer")

	if _, err := acceptSvc.AcceptAnswer(ctx, "asker", q.ID, a.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	accepted, err := acceptSvc.AcceptAnswer(ctx, "asker", q.ID, a.ID)
	if err != nil {
		t.Fatalf("repeated accept failed: %v", err)
	}
	if !accepted.IsAccepted {
		t.Fatalf("expected answer to stay accepted")
	}
}

func TestAcceptAnswerAuthorOnly(t *testing.T) {
	ctx := context.Background()
	acceptSvc, questionSvc, _ := newTestAcceptService()

	q, _ := questionSvc.CreateQuestion(ctx, "asker", "Title", "Body", nil)
	a, _ := questionSvc.CreateAnswer(ctx, "helper", q.ID, "An answer")

	// The answer's own author cannot accept it on someone else's question
	if _, err := acceptSvc.AcceptAnswer(ctx, "helper", q.ID, a.ID); !domain.IsCode(err, domain.CodeForbidden) {
		t.Fatalf("expected forbidden for non-author, got %v", err)
	}
	if _, err := acceptSvc.AcceptAnswer(ctx, "", q.ID, a.ID); !domain.IsCode(err, domain.CodeUnauthorized) {
		t.Fatalf("expected unauthorized without caller, got %v", err)
	}
}

func TestAcceptAnswerErrors(t *testing.T) {
	ctx := context.Background()
	acceptSvc, questionSvc, _ := newTestAcceptService()

	q1, _ := questionSvc.CreateQuestion(ctx, "asker", "Title one", "Body", nil)
	q2, _ := questionSvc.CreateQuestion(ctx, "asker", "Title two", "Body", nil)
	a2, _ := questionSvc.CreateAnswer(ctx, "helper", q2.ID, "Answer to question two")

	if _, err := acceptSvc.AcceptAnswer(ctx, "asker", "missing-question", a2.ID); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected not found for unknown question, got %v", err)
	}
	if _, err := acceptSvc.AcceptAnswer(ctx, "asker", q1.ID, "missing-answer"); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected not found for unknown answer, got %v", err)
	}
	// Answer belongs to a different question
	if _, err := acceptSvc.AcceptAnswer(ctx, "asker", q1.ID, a2.ID); !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected validation error for cross-question accept, got %v", err)
	}
}
