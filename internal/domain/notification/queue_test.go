package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeTimer records scheduled callbacks so tests can fire them on demand
type fakeTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) after(d time.Duration, f func()) timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: f, delay: d}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the i-th callback unless its timer was stopped
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	if !t.stopped {
		t.fn()
	}
}

func newTestQueue() (*Queue, *fakeScheduler) {
	q := NewQueue(0)
	s := &fakeScheduler{}
	q.after = s.after
	q.now = func() time.Time { return time.Date(2024, 3, 25, 12, 0, 0, 0, time.UTC) }
	return q, s
}

func TestEnqueue_Validation(t *testing.T) {
	q, _ := newTestQueue()
	ctx := context.Background()

	tests := []struct {
		name    string
		params  EnqueueParams
		wantErr error
	}{
		{"Invalid severity", EnqueueParams{Owner: "u1", Message: "hi", Severity: "fatal"}, ErrInvalidSeverity},
		{"Empty message", EnqueueParams{Owner: "u1", Message: "  ", Severity: SeverityInfo}, ErrEmptyMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := q.Enqueue(ctx, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("Enqueue() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := q.Enqueue(ctx, EnqueueParams{Message: "hi", Severity: SeverityInfo}); err == nil {
		t.Error("Enqueue() without owner should fail")
	}
}

func TestEnqueue_OrderAndExpiry(t *testing.T) {
	q, s := newTestQueue()
	ctx := context.Background()

	first, err := q.Enqueue(ctx, EnqueueParams{Owner: "u1", Message: "Successfully added expense of $10.00", Severity: SeveritySuccess})
	if err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	second, _ := q.Enqueue(ctx, EnqueueParams{Owner: "u1", Message: "Error adding transaction", Severity: SeverityError})
	_, _ = q.Enqueue(ctx, EnqueueParams{Owner: "u2", Message: "other owner", Severity: SeverityInfo})

	if first.ID == second.ID {
		t.Fatal("Enqueue() generated duplicate IDs")
	}
	if got := first.ExpiresAt.Sub(first.CreatedAt); got != DefaultTTL {
		t.Errorf("ExpiresAt - CreatedAt = %v, want %v", got, DefaultTTL)
	}
	if s.timers[0].delay != DefaultTTL {
		t.Errorf("timer delay = %v, want %v", s.timers[0].delay, DefaultTTL)
	}

	list := q.List("u1")
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("List() = %+v, want [first second]", list)
	}

	s.fire(0)
	list = q.List("u1")
	if len(list) != 1 || list[0].ID != second.ID {
		t.Errorf("List() after expiry = %+v, want [second]", list)
	}
	if len(q.List("u2")) != 1 {
		t.Error("expiry for u1 should not touch u2")
	}
}

func TestDequeue(t *testing.T) {
	q, s := newTestQueue()
	ctx := context.Background()

	n, _ := q.Enqueue(ctx, EnqueueParams{Owner: "u1", Message: "Budget exceeded", Severity: SeverityWarning})

	if err := q.Dequeue("u2", n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Dequeue() by other owner error = %v, want ErrNotFound", err)
	}
	if err := q.Dequeue("u1", n.ID); err != nil {
		t.Fatalf("Dequeue() error: %v", err)
	}
	if !s.timers[0].stopped {
		t.Error("Dequeue() should stop the expiry timer")
	}
	if len(q.List("u1")) != 0 {
		t.Error("List() should be empty after Dequeue")
	}
	if err := q.Dequeue("u1", n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Dequeue() error = %v, want ErrNotFound", err)
	}
}

func TestClose(t *testing.T) {
	q, s := newTestQueue()
	ctx := context.Background()

	_, _ = q.Enqueue(ctx, EnqueueParams{Owner: "u1", Message: "a", Severity: SeverityInfo})
	_, _ = q.Enqueue(ctx, EnqueueParams{Owner: "u2", Message: "b", Severity: SeverityInfo})
	q.Close()

	for i, tm := range s.timers {
		if !tm.stopped {
			t.Errorf("timer %d still running after Close", i)
		}
	}
	if _, err := q.Enqueue(ctx, EnqueueParams{Owner: "u1", Message: "c", Severity: SeverityInfo}); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue() after Close error = %v, want ErrClosed", err)
	}
}

func TestQueue_RealTimer(t *testing.T) {
	q := NewQueue(20 * time.Millisecond)
	defer q.Close()

	if _, err := q.Enqueue(context.Background(), EnqueueParams{Owner: "u1", Message: "bye", Severity: SeverityInfo}); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(q.List("u1")) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("notification was not removed after its TTL")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
