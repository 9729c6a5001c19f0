package services

import (
	"context"

	"github.com/hudl-events/apiserver/types"
)

const (
	defaultQuizLimit    = 10
	defaultAllTimeLimit = 5
	maxLeaderboardLimit = 100
)

// LeaderboardRepository defines the ranking read paths.
type LeaderboardRepository interface {
	TopForQuiz(ctx context.Context, quizID string, limit int) ([]types.LeaderboardEntry, error)
	AllTimeTop(ctx context.Context, limit int) ([]types.LeaderboardEntry, error)
	QuizLeaders(ctx context.Context) ([]types.LeaderboardEntry, error)
}

// LeaderboardService encapsulates leaderboard reads.
type LeaderboardService struct {
	repo LeaderboardRepository
}

func NewLeaderboardService(repo LeaderboardRepository) *LeaderboardService {
	return &LeaderboardService{repo: repo}
}

func (s *LeaderboardService) TopForQuiz(ctx context.Context, quizID string, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultQuizLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return s.repo.TopForQuiz(ctx, quizID, limit)
}

// Overview returns the all-time top entries plus each active quiz's leader.
func (s *LeaderboardService) Overview(ctx context.Context, limit int) (allTime, quizLeaders []types.LeaderboardEntry, err error) {
	if limit <= 0 {
		limit = defaultAllTimeLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	allTime, err = s.repo.AllTimeTop(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	quizLeaders, err = s.repo.QuizLeaders(ctx)
	if err != nil {
		return nil, nil, err
	}
	return allTime, quizLeaders, nil
}
