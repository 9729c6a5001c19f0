package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hudl-events/apiserver/types"
)

// QuizRepository handles persistence for quizzes.
type QuizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

const quizColumns = `id, title, description, is_active, created_by, created_at, updated_at`

func scanQuiz(row *sql.Row) (types.Quiz, error) {
	var quiz types.Quiz
	err := row.Scan(
		&quiz.ID,
		&quiz.Title,
		&quiz.Description,
		&quiz.IsActive,
		&quiz.CreatedBy,
		&quiz.CreatedAt,
		&quiz.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Quiz{}, ErrNotFound
		}
		return types.Quiz{}, err
	}
	return quiz, nil
}

// List returns quizzes newest-first, optionally restricted to active ones.
func (r *QuizRepository) List(ctx context.Context, activeOnly bool) ([]types.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes ORDER BY created_at DESC`
	if activeOnly {
		query = `SELECT ` + quizColumns + ` FROM quizzes WHERE is_active = TRUE ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []types.Quiz
	for rows.Next() {
		var quiz types.Quiz
		if err := rows.Scan(
			&quiz.ID,
			&quiz.Title,
			&quiz.Description,
			&quiz.IsActive,
			&quiz.CreatedBy,
			&quiz.CreatedAt,
			&quiz.UpdatedAt,
		); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (r *QuizRepository) Get(ctx context.Context, id string) (types.Quiz, error) {
	const query = `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`
	return scanQuiz(r.db.QueryRowContext(ctx, query, id))
}

func (r *QuizRepository) Create(ctx context.Context, quiz types.Quiz) (types.Quiz, error) {
	const query = `
		INSERT INTO quizzes (title, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING ` + quizColumns
	return scanQuiz(r.db.QueryRowContext(ctx, query, quiz.Title, quiz.Description, quiz.CreatedBy))
}

// SetActive toggles a quiz's availability and bumps updated_at.
func (r *QuizRepository) SetActive(ctx context.Context, id string, active bool) (types.Quiz, error) {
	const query = `
		UPDATE quizzes
		SET is_active = $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING ` + quizColumns
	return scanQuiz(r.db.QueryRowContext(ctx, query, active, id))
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM quizzes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
