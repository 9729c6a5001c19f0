package services

import (
	"context"

	"github.com/hudl-events/apiserver/types"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	ListByQuiz(ctx context.Context, quizID string) ([]types.Question, error)
	Create(ctx context.Context, question types.Question) (types.Question, error)
	Delete(ctx context.Context, id string) error
}

// QuestionService encapsulates question use-cases.
type QuestionService struct {
	repo QuestionRepository
}

func NewQuestionService(repo QuestionRepository) *QuestionService {
	return &QuestionService{repo: repo}
}

func (s *QuestionService) ListByQuiz(ctx context.Context, quizID string) ([]types.Question, error) {
	return s.repo.ListByQuiz(ctx, quizID)
}

// Create validates and stores a question. The correct answer must index
// into the options.
func (s *QuestionService) Create(ctx context.Context, question types.Question) (types.Question, error) {
	if question.QuizID == "" || question.QuestionText == "" || len(question.Options) < 2 {
		return types.Question{}, ErrBadRequest
	}
	if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
		return types.Question{}, ErrBadRequest
	}
	if question.Points <= 0 {
		question.Points = 1
	}
	return s.repo.Create(ctx, question)
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
