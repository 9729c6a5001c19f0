package services

import (
	"context"
	"log/slog"

	"github.com/hudl-events/apiserver/types"
)

// AttemptRepository defines persistence operations for attempts.
type AttemptRepository interface {
	ListByUser(ctx context.Context, userID string) ([]types.Attempt, error)
	ListByQuiz(ctx context.Context, quizID string) ([]types.Attempt, error)
	Upsert(ctx context.Context, attempt types.Attempt) (types.Attempt, error)
}

// AttemptPublisher emits a completed-attempt event to the configured
// broker. Publishing is best-effort; a broker outage never fails the
// attendee's request.
type AttemptPublisher interface {
	PublishAttempt(ctx context.Context, attempt types.Attempt) error
}

// AttemptService encapsulates attempt use-cases.
type AttemptService struct {
	repo      AttemptRepository
	publisher AttemptPublisher
	log       *slog.Logger
}

// NewAttemptService constructs an AttemptService. publisher may be nil
// when no broker is configured.
func NewAttemptService(repo AttemptRepository, publisher AttemptPublisher, log *slog.Logger) *AttemptService {
	return &AttemptService{repo: repo, publisher: publisher, log: log}
}

func (s *AttemptService) ListByUser(ctx context.Context, userID string) ([]types.Attempt, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *AttemptService) ListByQuiz(ctx context.Context, quizID string) ([]types.Attempt, error) {
	return s.repo.ListByQuiz(ctx, quizID)
}

// Record stores an attempt, replacing any earlier attempt by the same user
// on the same quiz, then publishes the completion event.
func (s *AttemptService) Record(ctx context.Context, attempt types.Attempt) (types.Attempt, error) {
	if attempt.QuizID == "" || attempt.UserID == "" || attempt.Answers == nil || attempt.TotalPoints <= 0 {
		return types.Attempt{}, ErrBadRequest
	}

	saved, err := s.repo.Upsert(ctx, attempt)
	if err != nil {
		return types.Attempt{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAttempt(ctx, saved); err != nil {
			s.log.Warn("attempt event publish failed", "quiz_id", saved.QuizID, "error", err)
		}
	}
	return saved, nil
}
