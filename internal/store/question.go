package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/hudl-events/apiserver/types"
)

// QuestionRepository handles persistence for quiz questions.
// Options are stored as a jsonb array.
type QuestionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListByQuiz returns a quiz's questions in creation order.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID string) ([]types.Question, error) {
	const query = `
		SELECT id, quiz_id, question_text, options, correct_answer, points, created_at
		FROM questions
		WHERE quiz_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []types.Question
	for rows.Next() {
		var question types.Question
		var optionsJSON []byte
		if err := rows.Scan(
			&question.ID,
			&question.QuizID,
			&question.QuestionText,
			&optionsJSON,
			&question.CorrectAnswer,
			&question.Points,
			&question.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) Create(ctx context.Context, question types.Question) (types.Question, error) {
	optionsJSON, err := json.Marshal(question.Options)
	if err != nil {
		return types.Question{}, err
	}

	const query = `
		INSERT INTO questions (quiz_id, question_text, options, correct_answer, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err = r.db.QueryRowContext(
		ctx,
		query,
		question.QuizID,
		question.QuestionText,
		optionsJSON,
		question.CorrectAnswer,
		question.Points,
	).Scan(&question.ID, &question.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Question{}, ErrNotFound
		}
		return types.Question{}, mapPQError(err)
	}
	return question, nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM questions WHERE id = $1`
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
