package coach

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetcoach/internal/domain/analytics"
)

// Message authors
const (
	AuthorUser = "user"
	AuthorAI   = "ai"
)

// Message is one entry of a coach conversation.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Exchange is a question and its answer.
type Exchange struct {
	Question Message `json:"question"`
	Answer   Message `json:"answer"`
	Topic    string  `json:"topic"`
}

// Ask wraps Respond into a timestamped question/answer pair.
func Ask(ctx context.Context, query string, snap analytics.Snapshot, now time.Time) (*Exchange, error) {
	reply, err := Respond(ctx, query, snap)
	if err != nil {
		return nil, err
	}

	return &Exchange{
		Question: Message{ID: uuid.NewString(), Content: strings.TrimSpace(query), Type: AuthorUser, Timestamp: now},
		Answer:   Message{ID: uuid.NewString(), Content: reply.Message, Type: AuthorAI, Timestamp: now},
		Topic:    reply.Topic,
	}, nil
}
