package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/qaboard/internal/domain"
)

// PostgresAnswerRepository implements domain.AnswerRepository using PostgreSQL
type PostgresAnswerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAnswerRepository creates a new answer repository
func NewPostgresAnswerRepository(db *sql.DB, logger *slog.Logger) *PostgresAnswerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAnswerRepository{db: db, logger: logger}
}

// Create stores a new answer
func (r *PostgresAnswerRepository) Create(ctx context.Context, answer *domain.Answer) error {
	query := `
		INSERT INTO answers (id, question_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		answer.ID,
		answer.QuestionID,
		answer.AuthorID,
		answer.Content,
	).Scan(&answer.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create answer",
			slog.String("question_id", answer.QuestionID),
			slog.String("error", err.Error()),
		)
		return domain.WrapError(domain.CodeStorageUnavailable, "failed to create answer", err)
	}

	return nil
}

// GetByID retrieves an answer by ID
func (r *PostgresAnswerRepository) GetByID(ctx context.Context, id string) (*domain.Answer, error) {
	answer := &domain.Answer{}

	query := `
		SELECT id, question_id, author_id, content, vote_count, is_accepted, created_at
		FROM answers
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&answer.ID,
		&answer.QuestionID,
		&answer.AuthorID,
		&answer.Content,
		&answer.VoteCount,
		&answer.IsAccepted,
		&answer.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("answer", id)
		}
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to get answer", err)
	}

	return answer, nil
}

// ListByQuestion returns a question's answers, accepted first, then by
// vote count descending, then oldest first.
func (r *PostgresAnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]*domain.Answer, error) {
	query := `
		SELECT id, question_id, author_id, content, vote_count, is_accepted, created_at
		FROM answers
		WHERE question_id = $1
		ORDER BY is_accepted DESC, vote_count DESC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		r.logger.Error("failed to list answers",
			slog.String("question_id", questionID),
			slog.String("error", err.Error()),
		)
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to list answers", err)
	}
	defer rows.Close()

	answers := []*domain.Answer{}
	for rows.Next() {
		a := &domain.Answer{}
		err := rows.Scan(
			&a.ID,
			&a.QuestionID,
			&a.AuthorID,
			&a.Content,
			&a.VoteCount,
			&a.IsAccepted,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to scan answer row", err)
		}
		answers = append(answers, a)
	}

	return answers, rows.Err()
}

// Accept marks an answer accepted and clears the previously accepted
// answer of the same question. Both writes happen in one transaction so
// the single-accepted-answer invariant is never observable as violated.
// Accepting an already-accepted answer is a no-op.
func (r *PostgresAnswerRepository) Accept(ctx context.Context, questionID, answerID string) (*domain.Answer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	answer := &domain.Answer{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, question_id, author_id, content, vote_count, is_accepted, created_at
		FROM answers
		WHERE id = $1
		FOR UPDATE
	`, answerID).Scan(
		&answer.ID,
		&answer.QuestionID,
		&answer.AuthorID,
		&answer.Content,
		&answer.VoteCount,
		&answer.IsAccepted,
		&answer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("answer", answerID)
		}
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to lock answer", err)
	}

	if answer.QuestionID != questionID {
		return nil, domain.NewValidationError("answer does not belong to this question")
	}

	if answer.IsAccepted {
		return answer, nil
	}

	// Clear first: the partial unique index on (question_id) WHERE
	// is_accepted would otherwise reject the new acceptance.
	_, err = tx.ExecContext(ctx, `
		UPDATE answers SET is_accepted = false
		WHERE question_id = $1 AND is_accepted
	`, questionID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to clear accepted answer", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE answers SET is_accepted = true WHERE id = $1
	`, answerID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to accept answer", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to commit acceptance", err)
	}

	answer.IsAccepted = true
	r.logger.Info("answer accepted",
		slog.String("question_id", questionID),
		slog.String("answer_id", answerID),
	)
	return answer, nil
}
