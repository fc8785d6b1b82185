package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	queueMeter  = otel.Meter("budgetcoach/notification")
	enqueued, _ = queueMeter.Int64Counter("notifications.enqueued.total",
		metric.WithDescription("Notifications enqueued by severity"),
	)
)

// timer is the part of *time.Timer the queue needs
type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

type entry struct {
	n     *Notification
	timer timer
}

// Queue holds transient notifications per owner. Every item is removed
// automatically after the TTL unless dequeued first. Safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	items  map[string][]*entry
	closed bool

	now   func() time.Time
	after afterFunc
}

// NewQueue creates a queue whose items expire after ttl.
// A non-positive ttl uses DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:   ttl,
		items: make(map[string][]*entry),
		now:   time.Now,
		after: func(d time.Duration, f func()) timer { return time.AfterFunc(d, f) },
	}
}

// TTL returns the expiry delay of the queue
func (q *Queue) TTL() time.Duration {
	return q.ttl
}

// Enqueue appends a notification for the owner and schedules its removal
func (q *Queue) Enqueue(ctx context.Context, params EnqueueParams) (*Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}

	now := q.now()
	n := &Notification{
		ID:        uuid.NewString(),
		Message:   params.Message,
		Severity:  params.Severity,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}

	owner, id := params.Owner, n.ID
	e := &entry{n: n}
	e.timer = q.after(q.ttl, func() { q.remove(owner, id) })
	q.items[owner] = append(q.items[owner], e)

	enqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("severity", n.Severity)))
	logrus.WithFields(logrus.Fields{
		"owner":    owner,
		"severity": n.Severity,
		"id":       id,
	}).Debug("Notification enqueued")

	return n, nil
}

// Dequeue removes a notification before it expires
func (q *Queue) Dequeue(owner, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.take(owner, id)
	if e == nil {
		return ErrNotFound
	}
	e.timer.Stop()
	return nil
}

// List returns the owner's pending notifications in insertion order
func (q *Queue) List(owner string) []*Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.items[owner]
	out := make([]*Notification, len(entries))
	for i, e := range entries {
		cp := *e.n
		out[i] = &cp
	}
	return out
}

// Clear drops every pending notification of the owner
func (q *Queue) Clear(owner string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.items[owner] {
		e.timer.Stop()
	}
	delete(q.items, owner)
}

// Close stops every pending timer. Enqueue fails afterwards.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entries := range q.items {
		for _, e := range entries {
			e.timer.Stop()
		}
	}
	q.items = make(map[string][]*entry)
	q.closed = true
}

func (q *Queue) remove(owner, id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.take(owner, id)
}

// take unlinks an entry. Caller holds q.mu.
func (q *Queue) take(owner, id string) *entry {
	entries := q.items[owner]
	for i, e := range entries {
		if e.n.ID != id {
			continue
		}
		rest := append(entries[:i:i], entries[i+1:]...)
		if len(rest) == 0 {
			delete(q.items, owner)
		} else {
			q.items[owner] = rest
		}
		return e
	}
	return nil
}
