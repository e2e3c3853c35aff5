package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/yourorg/qaboard/internal/domain"
)

// PostgresQuestionRepository implements domain.QuestionRepository using PostgreSQL
type PostgresQuestionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresQuestionRepository creates a new question repository
func NewPostgresQuestionRepository(db *sql.DB, logger *slog.Logger) *PostgresQuestionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuestionRepository{db: db, logger: logger}
}

// Create stores a new question
func (r *PostgresQuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	query := `
		INSERT INTO questions (id, author_id, title, description, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		question.ID,
		question.AuthorID,
		question.Title,
		question.Description,
		pq.Array(question.Tags),
	).Scan(&question.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create question",
			slog.String("author_id", question.AuthorID),
			slog.String("error", err.Error()),
		)
		return domain.WrapError(domain.CodeStorageUnavailable, "failed to create question", err)
	}

	return nil
}

// GetByID retrieves a question by ID
func (r *PostgresQuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	question := &domain.Question{}

	query := `
		SELECT id, author_id, title, description, tags, vote_count, created_at
		FROM questions
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&question.ID,
		&question.AuthorID,
		&question.Title,
		&question.Description,
		pq.Array(&question.Tags),
		&question.VoteCount,
		&question.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("question", id)
		}
		r.logger.Error("failed to get question",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to get question", err)
	}

	return question, nil
}

// List returns a page of question summaries for the given filter.
// Search, when set, matches title, description or any tag.
func (r *PostgresQuestionRepository) List(ctx context.Context, opts domain.ListOptions) ([]*domain.QuestionSummary, error) {
	query := `
		SELECT q.id, q.author_id, q.title, q.description, q.tags, q.vote_count, q.created_at,
		       COUNT(a.id) AS answer_count,
		       COALESCE(bool_or(a.is_accepted), false) AS has_accepted
		FROM questions q
		LEFT JOIN answers a ON a.question_id = q.id
		WHERE ($1 = '' OR q.title ILIKE '%' || $1 || '%'
		       OR q.description ILIKE '%' || $1 || '%'
		       OR EXISTS (SELECT 1 FROM unnest(q.tags) t WHERE t ILIKE '%' || $1 || '%'))
		GROUP BY q.id
	`

	switch opts.Filter {
	case domain.FilterUnanswered:
		query += ` HAVING COUNT(a.id) = 0 ORDER BY q.created_at DESC`
	case domain.FilterMostVoted:
		query += ` ORDER BY q.vote_count DESC, q.created_at DESC`
	default:
		query += ` ORDER BY q.created_at DESC`
	}

	query += ` LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, opts.Search, opts.Limit, opts.Offset)
	if err != nil {
		r.logger.Error("failed to list questions",
			slog.String("filter", string(opts.Filter)),
			slog.String("error", err.Error()),
		)
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to list questions", err)
	}
	defer rows.Close()

	summaries := []*domain.QuestionSummary{}
	for rows.Next() {
		s := &domain.QuestionSummary{}
		err := rows.Scan(
			&s.ID,
			&s.AuthorID,
			&s.Title,
			&s.Description,
			pq.Array(&s.Tags),
			&s.VoteCount,
			&s.CreatedAt,
			&s.AnswerCount,
			&s.HasAcceptedAnswer,
		)
		if err != nil {
			return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to scan question row", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to read question rows", err)
	}

	return summaries, nil
}
