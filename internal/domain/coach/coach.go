// Package coach generates canned financial tips from keyword matching over a
// free-text question and an aggregate snapshot of the user's transactions.
package coach

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"budgetcoach/internal/domain/analytics"
)

// Topics matched against the question, in priority order.
const (
	TopicSpending = "spending"
	TopicBudget   = "budget"
	TopicSave     = "save"
	TopicGeneral  = "general"
)

const (
	budgetHeadroom = 1.2
	savingsShare   = 0.2

	noCategory = "N/A"

	generalReply = "I can help you analyze your spending patterns, suggest budgeting strategies, or provide saving tips. What would you like to know more about?"
)

// ErrEmptyMessage is returned for blank questions
var ErrEmptyMessage = errors.New("message cannot be empty")

var topics = []string{TopicSpending, TopicBudget, TopicSave}

var (
	coachMeter      = otel.Meter("budgetcoach/coach")
	coachReplies, _ = coachMeter.Int64Counter("coach.replies.total",
		metric.WithDescription("Coach replies by matched topic"),
	)
)

// Reply is the generated answer and the topic that produced it.
type Reply struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// Match returns the first topic keyword contained in query, case-insensitively,
// or TopicGeneral.
func Match(query string) string {
	q := strings.ToLower(query)
	for _, t := range topics {
		if strings.Contains(q, t) {
			return t
		}
	}
	return TopicGeneral
}

// Respond builds the reply for query from snap.
func Respond(ctx context.Context, query string, snap analytics.Snapshot) (Reply, error) {
	if strings.TrimSpace(query) == "" {
		return Reply{}, ErrEmptyMessage
	}

	topic := Match(query)
	total := math.Abs(snap.Total)

	var msg string
	switch topic {
	case TopicSpending:
		top, ok := analytics.TopCategory(snap.ByCategory)
		if !ok {
			top = noCategory
		}
		msg = fmt.Sprintf("Based on your transaction history, you've spent $%s in total. Your highest spending category is %s.",
			money(total), top)
	case TopicBudget:
		avg := snap.Average
		if math.IsNaN(avg) {
			avg = 0
		}
		msg = fmt.Sprintf("Your average transaction amount is $%s. Consider setting a monthly budget of $%s to account for potential increases in expenses.",
			money(math.Abs(avg)), money(total*budgetHeadroom))
	case TopicSave:
		msg = fmt.Sprintf("To start saving, I recommend setting aside 20%% of your income. Based on your spending patterns, you could potentially save $%s monthly.",
			money(total*savingsShare))
	default:
		msg = generalReply
	}

	coachReplies.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
	return Reply{Topic: topic, Message: msg}, nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
