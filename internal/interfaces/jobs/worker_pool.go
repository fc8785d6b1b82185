package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	jobTracer          = otel.Tracer("budgetcoach/jobs")
	jobMeter           = otel.Meter("budgetcoach/jobs")
	jobDuration, _     = jobMeter.Float64Histogram("jobs.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("jobs.job.total", metric.WithDescription("Total jobs executed by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("jobs.job.queue_dropped", metric.WithDescription("Jobs dropped due to full queue"))
)

// ErrPoolClosed is returned by Submit after Shutdown
var ErrPoolClosed = errors.New("worker pool is shut down")

// DefaultJobTimeout bounds a single job execution
const DefaultJobTimeout = 2 * time.Minute

// Job is one unit of per-user work
type Job interface {
	Execute(ctx context.Context) error
	UserID() string
	Description() string
}

// WorkerPool runs jobs on a fixed number of goroutines
type WorkerPool struct {
	workerCount int
	jobTimeout  time.Duration
	jobs        chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	// mu guards closed and the close of jobs
	mu     sync.Mutex
	closed bool

	succeeded atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool creates a pool with workerCount workers and a job buffer of
// queueSize. Values below one are raised to one.
func NewWorkerPool(ctx context.Context, workerCount, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		jobTimeout:  DefaultJobTimeout,
		jobs:        make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutines
func (wp *WorkerPool) Start() {
	logrus.WithField("workers", wp.workerCount).Debug("Starting worker pool")

	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job Job) {
	log := logrus.WithFields(logrus.Fields{
		"worker":  workerID,
		"job":     job.Description(),
		"user_id": job.UserID(),
	})

	ctx, cancel := context.WithTimeout(wp.ctx, wp.jobTimeout)
	defer cancel()

	ctx, span := jobTracer.Start(ctx, "job.execute",
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("job.description", job.Description()),
			attribute.String("job.user_id", job.UserID()),
		),
	)
	defer span.End()

	start := time.Now()
	err := job.Execute(ctx)
	jobDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		wp.failed.Add(1)
		log.WithError(err).Error("Job failed")
		return
	}

	jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	wp.succeeded.Add(1)
	log.Info("Job completed")
}

// Submit queues a job without blocking. A full queue drops the job and
// returns an error.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	case wp.jobs <- job:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1)
		return fmt.Errorf("job queue full, dropping job for user %s", job.UserID())
	}
}

// SubmitBatch queues jobs and returns how many were accepted
func (wp *WorkerPool) SubmitBatch(jobs []Job) int {
	submitted := 0
	for _, job := range jobs {
		if err := wp.Submit(job); err != nil {
			logrus.WithError(err).WithField("user_id", job.UserID()).Warn("Failed to submit job")
			continue
		}
		submitted++
	}
	logrus.Debugf("Submitted %d/%d jobs to worker pool", submitted, len(jobs))
	return submitted
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
// After timeout the running jobs are cancelled and jobs still queued are
// counted as failed. Later calls return immediately.
func (wp *WorkerPool) Shutdown(timeout time.Duration) {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logrus.Warn("Worker pool shutdown timed out, cancelling running jobs")
		wp.cancel()
		<-done
	}
	wp.cancel()

	for job := range wp.jobs {
		wp.failed.Add(1)
		logrus.WithFields(logrus.Fields{
			"job":     job.Description(),
			"user_id": job.UserID(),
		}).Error("Job not started before shutdown")
	}
}

// Results returns the number of succeeded and failed jobs so far
func (wp *WorkerPool) Results() (succeeded, failed int) {
	return int(wp.succeeded.Load()), int(wp.failed.Load())
}

// Run executes jobs on a fresh pool and waits for all of them
func Run(ctx context.Context, workers int, jobs []Job) (succeeded, failed int) {
	pool := NewWorkerPool(ctx, workers, len(jobs))
	pool.Start()
	pool.SubmitBatch(jobs)
	pool.Shutdown(time.Duration(len(jobs)+1) * DefaultJobTimeout)
	return pool.Results()
}
