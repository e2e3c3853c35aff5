package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/qaboard/internal/domain"
)

// PostgresVoteRepository implements the vote ledger using PostgreSQL
type PostgresVoteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresVoteRepository creates a new vote repository
func NewPostgresVoteRepository(db *sql.DB, logger *slog.Logger) *PostgresVoteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVoteRepository{db: db, logger: logger}
}

// Cast records a user's vote on an answer and returns the updated vote
// count. The whole read-compute-write runs in one transaction:
//   - no prior vote: apply ±1 and insert the row
//   - same direction again: no-op
//   - opposite direction: apply ±2 and flip the stored row
func (r *PostgresVoteRepository) Cast(ctx context.Context, userID, answerID string, direction domain.VoteDirection) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	// Lock the answer row first so concurrent casts on the same answer
	// serialize and the count never drifts.
	var voteCount int
	err = tx.QueryRowContext(ctx,
		`SELECT vote_count FROM answers WHERE id = $1 FOR UPDATE`,
		answerID,
	).Scan(&voteCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NewNotFoundError("answer", answerID)
		}
		return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to lock answer", err)
	}

	var prior int
	err = tx.QueryRowContext(ctx,
		`SELECT direction FROM votes WHERE user_id = $1 AND answer_id = $2`,
		userID, answerID,
	).Scan(&prior)

	delta := direction.Delta()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO votes (user_id, answer_id, direction)
			VALUES ($1, $2, $3)
		`, userID, answerID, delta)
		if err != nil {
			return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to record vote", err)
		}
	case err != nil:
		return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to read vote", err)
	case prior == delta:
		// Repeated click in the same direction: current state already
		// reflects the vote.
		return voteCount, nil
	default:
		delta *= 2
		_, err = tx.ExecContext(ctx, `
			UPDATE votes SET direction = $1, updated_at = now()
			WHERE user_id = $2 AND answer_id = $3
		`, direction.Delta(), userID, answerID)
		if err != nil {
			return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to update vote", err)
		}
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE answers SET vote_count = vote_count + $1
		WHERE id = $2
		RETURNING vote_count
	`, delta, answerID).Scan(&voteCount)
	if err != nil {
		return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to update vote count", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.WrapError(domain.CodeStorageUnavailable, "failed to commit vote", err)
	}

	r.logger.Debug("vote cast",
		slog.String("user_id", userID),
		slog.String("answer_id", answerID),
		slog.String("direction", string(direction)),
		slog.Int("vote_count", voteCount),
	)
	return voteCount, nil
}

// Get returns a user's current vote on an answer, if any
func (r *PostgresVoteRepository) Get(ctx context.Context, userID, answerID string) (*domain.Vote, error) {
	var dir int
	vote := &domain.Vote{UserID: userID, AnswerID: answerID}

	err := r.db.QueryRowContext(ctx, `
		SELECT direction, updated_at FROM votes
		WHERE user_id = $1 AND answer_id = $2
	`, userID, answerID).Scan(&dir, &vote.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("vote", answerID)
		}
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to get vote", err)
	}

	if dir < 0 {
		vote.Direction = domain.VoteDown
	} else {
		vote.Direction = domain.VoteUp
	}
	return vote, nil
}
