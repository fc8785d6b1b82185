package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/notification"
	"budgetcoach/internal/domain/session"
)

const maxBodySize = 1 << 20 // 1 MiB

// Notifier queues a transient message for one owner
type Notifier interface {
	Enqueue(ctx context.Context, params notification.EnqueueParams) (*notification.Notification, error)
}

// Clearer drops per-owner state such as cached records or queued notifications
type Clearer interface {
	Clear(owner string)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Error encoding response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// currentUser returns the identity set by the auth middleware and answers 401
// when there is none
func currentUser(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

// notify enqueues a message and logs instead of failing the request
func notify(ctx context.Context, n Notifier, owner, message, severity string) {
	if n == nil {
		return
	}
	_, err := n.Enqueue(ctx, notification.EnqueueParams{Owner: owner, Message: message, Severity: severity})
	if err != nil {
		logrus.WithError(err).WithField("user_id", owner).Warn("Failed to enqueue notification")
	}
}
