package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budgetcoach/internal/domain/user"
)

type funcJob struct {
	userID string
	fn     func(ctx context.Context) error
}

func (j *funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }
func (j *funcJob) UserID() string                    { return j.userID }
func (j *funcJob) Description() string               { return "test job " + j.userID }

func TestRun_CountsResults(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}

	var jobs []Job
	for _, id := range []string{"a", "b", "c", "d"} {
		id := id
		jobs = append(jobs, &funcJob{userID: id, fn: func(ctx context.Context) error {
			mu.Lock()
			seen[id] = true
			mu.Unlock()
			if id == "c" {
				return errors.New("boom")
			}
			return nil
		}})
	}

	ok, failed := Run(context.Background(), 2, jobs)

	if ok != 3 || failed != 1 {
		t.Errorf("Run() = %d ok, %d failed, want 3 and 1", ok, failed)
	}
	if len(seen) != 4 {
		t.Errorf("executed %d jobs, want 4", len(seen))
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, 1)

	job := &funcJob{userID: "a", fn: func(ctx context.Context) error { return nil }}
	if err := pool.Submit(job); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if err := pool.Submit(job); err == nil {
		t.Error("expected error when queue is full")
	}

	pool.Start()
	pool.Shutdown(time.Second)

	if ok, _ := pool.Results(); ok != 1 {
		t.Errorf("succeeded = %d, want 1", ok)
	}
}

func TestShutdown_CancelsAfterTimeout(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&funcJob{userID: "slow", fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})
	<-started

	pool.Shutdown(10 * time.Millisecond)

	if _, failed := pool.Results(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestShutdown_CountsQueuedJobsAsFailed(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, 3)
	pool.Start()

	started := make(chan struct{})
	wait := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	pool.Submit(&funcJob{userID: "slow", fn: func(ctx context.Context) error {
		close(started)
		return wait(ctx)
	}})
	<-started
	pool.Submit(&funcJob{userID: "queued-1", fn: wait})
	pool.Submit(&funcJob{userID: "queued-2", fn: wait})

	pool.Shutdown(10 * time.Millisecond)

	ok, failed := pool.Results()
	if ok != 0 || failed != 3 {
		t.Errorf("Results() = %d ok, %d failed, want 0 and 3", ok, failed)
	}
}

func TestSubmit_AfterShutdown(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, 1)
	pool.Start()
	pool.Shutdown(time.Second)

	job := &funcJob{userID: "late", fn: func(ctx context.Context) error { return nil }}
	if err := pool.Submit(job); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Submit() after Shutdown error = %v, want ErrPoolClosed", err)
	}
	if n := pool.SubmitBatch([]Job{job, job}); n != 0 {
		t.Errorf("SubmitBatch() after Shutdown accepted %d, want 0", n)
	}

	// a second Shutdown is a no-op
	pool.Shutdown(time.Second)
}

// MockAccountService implements AccountService for testing
type MockAccountService struct {
	SeedFunc   func(ctx context.Context, userID string, now time.Time) (*user.Seed, error)
	PurgeFunc  func(ctx context.Context, userID string) (*user.Teardown, error)
	DeleteFunc func(ctx context.Context, userID string) (*user.Teardown, error)
}

func (m *MockAccountService) SeedSampleData(ctx context.Context, userID string, now time.Time) (*user.Seed, error) {
	return m.SeedFunc(ctx, userID, now)
}

func (m *MockAccountService) PurgeData(ctx context.Context, userID string) (*user.Teardown, error) {
	return m.PurgeFunc(ctx, userID)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, userID string) (*user.Teardown, error) {
	return m.DeleteFunc(ctx, userID)
}

func TestTeardownJob(t *testing.T) {
	var purged, deleted []string
	svc := &MockAccountService{
		PurgeFunc: func(ctx context.Context, userID string) (*user.Teardown, error) {
			purged = append(purged, userID)
			return &user.Teardown{}, nil
		},
		DeleteFunc: func(ctx context.Context, userID string) (*user.Teardown, error) {
			deleted = append(deleted, userID)
			return &user.Teardown{Transactions: 1}, nil
		},
	}

	if err := NewTeardownJob("u1", svc, false).Execute(context.Background()); err != nil {
		t.Fatalf("purge Execute() error = %v", err)
	}
	if err := NewTeardownJob("u2", svc, true).Execute(context.Background()); err != nil {
		t.Fatalf("delete Execute() error = %v", err)
	}

	if len(purged) != 1 || purged[0] != "u1" {
		t.Errorf("purged = %v, want [u1]", purged)
	}
	if len(deleted) != 1 || deleted[0] != "u2" {
		t.Errorf("deleted = %v, want [u2]", deleted)
	}
}

func TestSeedJob_WrapsError(t *testing.T) {
	svc := &MockAccountService{
		SeedFunc: func(ctx context.Context, userID string, now time.Time) (*user.Seed, error) {
			return nil, user.ErrNotFound
		},
	}

	err := NewSeedJob("ghost", svc, time.Now()).Execute(context.Background())
	if !errors.Is(err, user.ErrNotFound) {
		t.Errorf("Execute() error = %v, want ErrNotFound", err)
	}
}
