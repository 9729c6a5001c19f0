package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hudl-events/apiserver/types"
)

type captureBackend struct {
	channel string
	data    []byte
	attrs   map[string]string
	closed  bool
}

func (b *captureBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.channel, b.data, b.attrs = channel, data, attrs
	return "msg-1", nil
}

func (b *captureBackend) Close() error {
	b.closed = true
	return nil
}

func TestPublishAttempt(t *testing.T) {
	backend := &captureBackend{}
	pub := NewPublisher(backend, "quiz.attempts")

	completed := time.Unix(1700000000, 0).UTC()
	err := pub.PublishAttempt(context.Background(), types.Attempt{
		ID:          "a1",
		QuizID:      "q1",
		UserID:      "u1",
		Score:       3,
		TotalPoints: 5,
		CompletedAt: completed,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if backend.channel != "quiz.attempts" {
		t.Errorf("channel = %q", backend.channel)
	}
	if backend.attrs["event"] != "attempt.completed" {
		t.Errorf("attrs = %v", backend.attrs)
	}

	var event AttemptEvent
	if err := json.Unmarshal(backend.data, &event); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if event.QuizID != "q1" || event.UserID != "u1" || event.Score != 3 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if !event.CompletedAt.Equal(completed) {
		t.Errorf("completed_at = %v", event.CompletedAt)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !backend.closed {
		t.Error("backend not closed")
	}
}
