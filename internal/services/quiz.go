package services

import (
	"context"

	"github.com/hudl-events/apiserver/types"
)

// QuizRepository defines persistence operations for quizzes.
type QuizRepository interface {
	List(ctx context.Context, activeOnly bool) ([]types.Quiz, error)
	Get(ctx context.Context, id string) (types.Quiz, error)
	Create(ctx context.Context, quiz types.Quiz) (types.Quiz, error)
	SetActive(ctx context.Context, id string, active bool) (types.Quiz, error)
	Delete(ctx context.Context, id string) error
}

// QuizService encapsulates quiz use-cases.
type QuizService struct {
	repo QuizRepository
}

func NewQuizService(repo QuizRepository) *QuizService {
	return &QuizService{repo: repo}
}

func (s *QuizService) List(ctx context.Context, activeOnly bool) ([]types.Quiz, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *QuizService) Get(ctx context.Context, id string) (types.Quiz, error) {
	return s.repo.Get(ctx, id)
}

// Create authors a quiz on behalf of an admin user.
func (s *QuizService) Create(ctx context.Context, title string, description *string, createdBy string) (types.Quiz, error) {
	return s.repo.Create(ctx, types.Quiz{
		Title:       title,
		Description: description,
		CreatedBy:   &createdBy,
	})
}

func (s *QuizService) SetActive(ctx context.Context, id string, active bool) (types.Quiz, error) {
	return s.repo.SetActive(ctx, id, active)
}

func (s *QuizService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
