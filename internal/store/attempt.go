package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hudl-events/apiserver/types"
)

// AttemptRepository handles persistence for quiz attempts.
type AttemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// ListByUser returns a user's attempts, most recent first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string) ([]types.Attempt, error) {
	const query = `
		SELECT id, quiz_id, user_id, answers, score, total_points, completed_at
		FROM quiz_attempts
		WHERE user_id = $1
		ORDER BY completed_at DESC`
	return r.queryAttempts(ctx, query, userID)
}

// ListByQuiz returns all attempts for one quiz, best score first.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID string) ([]types.Attempt, error) {
	const query = `
		SELECT id, quiz_id, user_id, answers, score, total_points, completed_at
		FROM quiz_attempts
		WHERE quiz_id = $1
		ORDER BY score DESC, completed_at ASC`
	return r.queryAttempts(ctx, query, quizID)
}

// Upsert records an attempt. Re-taking a quiz replaces the user's previous
// attempt for it; the (quiz_id, user_id) unique constraint carries that
// decision so concurrent submissions cannot produce duplicate rows.
func (r *AttemptRepository) Upsert(ctx context.Context, attempt types.Attempt) (types.Attempt, error) {
	answersJSON, err := json.Marshal(attempt.Answers)
	if err != nil {
		return types.Attempt{}, err
	}

	const query = `
		INSERT INTO quiz_attempts (quiz_id, user_id, answers, score, total_points)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (quiz_id, user_id) DO UPDATE
		SET answers = EXCLUDED.answers,
			score = EXCLUDED.score,
			total_points = EXCLUDED.total_points,
			completed_at = NOW()
		RETURNING id, completed_at`
	err = r.db.QueryRowContext(
		ctx,
		query,
		attempt.QuizID,
		attempt.UserID,
		answersJSON,
		attempt.Score,
		attempt.TotalPoints,
	).Scan(&attempt.ID, &attempt.CompletedAt)
	if err != nil {
		return types.Attempt{}, mapPQError(err)
	}
	return attempt, nil
}

func (r *AttemptRepository) queryAttempts(ctx context.Context, query string, arg any) ([]types.Attempt, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []types.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func scanAttempt(rows *sql.Rows) (types.Attempt, error) {
	var attempt types.Attempt
	var answersJSON []byte
	if err := rows.Scan(
		&attempt.ID,
		&attempt.QuizID,
		&attempt.UserID,
		&answersJSON,
		&attempt.Score,
		&attempt.TotalPoints,
		&attempt.CompletedAt,
	); err != nil {
		return types.Attempt{}, err
	}
	if err := json.Unmarshal(answersJSON, &attempt.Answers); err != nil {
		return types.Attempt{}, err
	}
	return attempt, nil
}
