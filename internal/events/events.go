// Package events publishes attempt-completion events to a message broker
// so downstream consumers (leaderboard caches, notification bots) can
// react without polling the database. The API server only publishes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hudl-events/apiserver/types"
)

// AttemptEvent is the broker payload for one completed quiz attempt.
type AttemptEvent struct {
	QuizID      string    `json:"quiz_id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"`
	CompletedAt time.Time `json:"completed_at"`
}

const attemptEventName = "attempt.completed"

// Backend is a broker-agnostic publish capability.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher serializes attempt events onto a fixed channel of a Backend.
type Publisher struct {
	backend Backend
	channel string
}

func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// PublishAttempt emits one attempt-completed event.
func (p *Publisher) PublishAttempt(ctx context.Context, attempt types.Attempt) error {
	data, err := json.Marshal(AttemptEvent{
		QuizID:      attempt.QuizID,
		UserID:      attempt.UserID,
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
		CompletedAt: attempt.CompletedAt,
	})
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{"event": attemptEventName})
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}
