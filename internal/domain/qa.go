package domain

import (
	"context"
	"time"
)

// MaxTags is the server-side cap on unique tags per question
const MaxTags = 5

// Question represents a posted question
type Question struct {
	ID          string // UUID
	AuthorID    string
	Title       string
	Description string
	Tags        []string // normalized, at most MaxTags unique values
	VoteCount   int
	CreatedAt   time.Time
}

// QuestionSummary is a question as shown in list views, with answer
// aggregates folded in
type QuestionSummary struct {
	Question
	AnswerCount       int
	HasAcceptedAnswer bool
}

// Answer represents an answer to a question. At most one answer per
// question has IsAccepted set; the answer repository enforces this
// inside a single transaction.
type Answer struct {
	ID         string // UUID
	QuestionID string
	AuthorID   string
	Content    string
	VoteCount  int
	IsAccepted bool
	CreatedAt  time.Time
}

// VoteDirection is an up or down vote
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Valid reports whether the direction is one of the two known values
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Delta returns the vote count contribution of the direction
func (d VoteDirection) Delta() int {
	if d == VoteDown {
		return -1
	}
	return 1
}

// Vote is a user's current vote on an answer. One row per
// (user, answer); casting again overwrites the direction.
type Vote struct {
	UserID    string
	AnswerID  string
	Direction VoteDirection
	UpdatedAt time.Time
}

// ListFilter selects the ordering/restriction of a question listing
type ListFilter string

const (
	FilterNewest     ListFilter = "newest"
	FilterUnanswered ListFilter = "unanswered"
	FilterMostVoted  ListFilter = "most-voted"
)

// Valid reports whether the filter is one of the known values
func (f ListFilter) Valid() bool {
	return f == FilterNewest || f == FilterUnanswered || f == FilterMostVoted
}

// ListOptions controls question listing
type ListOptions struct {
	Filter ListFilter
	Search string // free-text match on title, description and tags
	Offset int
	Limit  int
}

// QuestionRepository defines data access for questions
type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	List(ctx context.Context, opts ListOptions) ([]*QuestionSummary, error)
}

// AnswerRepository defines data access for answers.
// Accept performs the full acceptance transition in one transaction:
// it verifies the answer belongs to the question, clears the previously
// accepted answer (if any) and marks the target accepted.
type AnswerRepository interface {
	Create(ctx context.Context, answer *Answer) error
	GetByID(ctx context.Context, id string) (*Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]*Answer, error)
	Accept(ctx context.Context, questionID, answerID string) (*Answer, error)
}

// VoteRepository is the vote ledger. Cast applies the idempotent vote
// semantics in one transaction (no-op for a repeated direction, ±2 for a
// reversal) and returns the answer's updated vote count.
type VoteRepository interface {
	Cast(ctx context.Context, userID, answerID string, direction VoteDirection) (int, error)
	Get(ctx context.Context, userID, answerID string) (*Vote, error)
}
