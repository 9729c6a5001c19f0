package types

import "time"

// Quiz is an event quiz authored by an administrator.
type Quiz struct {
	// ID is the unique identifier of the quiz.
	ID string `json:"id" db:"id"`

	// Title is the quiz title shown to attendees.
	Title string `json:"title" db:"title"`

	// Description is an optional longer blurb.
	Description *string `json:"description,omitempty" db:"description"`

	// IsActive controls whether the quiz is open to attendees and counted
	// on the global leaderboard.
	IsActive bool `json:"is_active" db:"is_active"`

	// CreatedBy references the admin user who authored the quiz.
	CreatedBy *string `json:"created_by,omitempty" db:"created_by"`

	// CreatedAt is the timestamp when the quiz was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the quiz.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Question is a single multiple-choice question belonging to a quiz.
type Question struct {
	// ID is the unique identifier of the question.
	ID string `json:"id" db:"id"`

	// QuizID identifies the quiz this question belongs to.
	QuizID string `json:"quiz_id" db:"quiz_id"`

	// QuestionText is the prompt shown to attendees.
	QuestionText string `json:"question_text" db:"question_text"`

	// Options are the answer choices, in display order.
	Options []string `json:"options" db:"options"`

	// CorrectAnswer is the index into Options of the correct choice.
	CorrectAnswer int `json:"correct_answer" db:"correct_answer"`

	// Points awarded for a correct answer.
	Points int `json:"points" db:"points"`

	// CreatedAt is the timestamp when the question was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Attempt records an attendee's answers and score for one quiz.
// Re-taking a quiz replaces the previous attempt for that user.
type Attempt struct {
	// ID is the unique identifier of the attempt.
	ID string `json:"id" db:"id"`

	// QuizID identifies the quiz attempted.
	QuizID string `json:"quiz_id" db:"quiz_id"`

	// UserID identifies the attendee.
	UserID string `json:"user_id" db:"user_id"`

	// Answers maps question IDs to the selected option index.
	Answers map[string]int `json:"answers" db:"answers"`

	// Score is the total points earned.
	Score int `json:"score" db:"score"`

	// TotalPoints is the maximum achievable score at attempt time.
	TotalPoints int `json:"total_points" db:"total_points"`

	// CompletedAt is the timestamp of the latest completion.
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// LeaderboardEntry is one ranked row of a quiz leaderboard.
type LeaderboardEntry struct {
	// QuizID identifies the quiz the entry belongs to.
	QuizID string `json:"quiz_id" db:"quiz_id"`

	// QuizTitle is the title of that quiz.
	QuizTitle string `json:"quiz_title" db:"quiz_title"`

	// UserName is the attendee's display name, if known.
	UserName *string `json:"user_name,omitempty" db:"user_name"`

	// WalletAddress is shown for wallet attendees without a display name.
	WalletAddress *string `json:"wallet_address,omitempty" db:"wallet_address"`

	// Score is the attempt's total points.
	Score int `json:"score" db:"score"`

	// TotalPoints is the maximum achievable score for the attempt.
	TotalPoints int `json:"total_points" db:"total_points"`

	// Percentage is Score over TotalPoints, in percent.
	Percentage float64 `json:"percentage" db:"percentage"`

	// Rank orders entries by score descending, earliest completion first.
	Rank int `json:"rank" db:"rank"`

	// CompletedAt is the attempt completion time used for tie-breaking.
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
