package http

import (
	"context"
	"net/http"
	"sync"

	"budgetcoach/internal/domain/notification"
	"budgetcoach/internal/domain/session"
)

func withUser(r *http.Request, userID string) *http.Request {
	ctx := session.WithIdentity(r.Context(), session.Identity{UserID: userID, Email: userID + "@example.com"})
	return r.WithContext(ctx)
}

// recordingNotifier captures enqueued notifications
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.EnqueueParams
}

func (n *recordingNotifier) Enqueue(_ context.Context, p notification.EnqueueParams) (*notification.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, p)
	return &notification.Notification{ID: "n-1", Message: p.Message, Severity: p.Severity}, nil
}

func (n *recordingNotifier) last() (notification.EnqueueParams, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notification.EnqueueParams{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// recordingClearer remembers which owners were cleared
type recordingClearer struct {
	cleared []string
}

func (c *recordingClearer) Clear(owner string) {
	c.cleared = append(c.cleared, owner)
}
