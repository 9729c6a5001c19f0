package store

import (
	"context"
	"database/sql"

	"github.com/hudl-events/apiserver/types"
)

// LeaderboardRepository reads the quiz_leaderboard view. Ranking lives in
// SQL: score descending, earliest completion breaking ties.
type LeaderboardRepository struct {
	db *sql.DB
}

func NewLeaderboardRepository(db *sql.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// TopForQuiz returns the ranked leaderboard for one quiz.
func (r *LeaderboardRepository) TopForQuiz(ctx context.Context, quizID string, limit int) ([]types.LeaderboardEntry, error) {
	const query = `
		SELECT l.quiz_id,
		       q.title,
		       l.user_name,
		       l.wallet_address,
		       l.score,
		       l.total_points,
		       ROUND((l.score::DECIMAL / l.total_points::DECIMAL) * 100, 2),
		       RANK() OVER (ORDER BY l.score DESC, l.completed_at ASC),
		       l.completed_at
		FROM quiz_leaderboard l
		JOIN quizzes q ON q.id = l.quiz_id
		WHERE l.quiz_id = $1
		ORDER BY l.score DESC, l.completed_at ASC
		LIMIT $2`
	return r.queryEntries(ctx, query, quizID, limit)
}

// AllTimeTop returns the best entries across all active quizzes, ordered
// by percentage, then raw score, then completion time.
func (r *LeaderboardRepository) AllTimeTop(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	const query = `
		SELECT l.quiz_id,
		       q.title,
		       l.user_name,
		       l.wallet_address,
		       l.score,
		       l.total_points,
		       ROUND((l.score::DECIMAL / l.total_points::DECIMAL) * 100, 2) AS percentage,
		       RANK() OVER (PARTITION BY l.quiz_id ORDER BY l.score DESC, l.completed_at ASC),
		       l.completed_at
		FROM quiz_leaderboard l
		JOIN quizzes q ON q.id = l.quiz_id
		WHERE q.is_active = TRUE
		ORDER BY percentage DESC, l.score DESC, l.completed_at ASC
		LIMIT $1`
	return r.queryEntries(ctx, query, limit)
}

// QuizLeaders returns each active quiz's single best entry.
func (r *LeaderboardRepository) QuizLeaders(ctx context.Context) ([]types.LeaderboardEntry, error) {
	const query = `
		SELECT DISTINCT ON (l.quiz_id)
		       l.quiz_id,
		       q.title,
		       l.user_name,
		       l.wallet_address,
		       l.score,
		       l.total_points,
		       ROUND((l.score::DECIMAL / l.total_points::DECIMAL) * 100, 2),
		       1,
		       l.completed_at
		FROM quiz_leaderboard l
		JOIN quizzes q ON q.id = l.quiz_id
		WHERE q.is_active = TRUE
		ORDER BY l.quiz_id, l.score DESC, l.completed_at ASC`
	return r.queryEntries(ctx, query)
}

func (r *LeaderboardRepository) queryEntries(ctx context.Context, query string, args ...any) ([]types.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.LeaderboardEntry
	for rows.Next() {
		var entry types.LeaderboardEntry
		if err := rows.Scan(
			&entry.QuizID,
			&entry.QuizTitle,
			&entry.UserName,
			&entry.WalletAddress,
			&entry.Score,
			&entry.TotalPoints,
			&entry.Percentage,
			&entry.Rank,
			&entry.CompletedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
