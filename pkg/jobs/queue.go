package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work identified for logging purposes.
type Job struct {
	ID   string
	Kind string
	Run  func(ctx context.Context) error
}

// Queue executes jobs on a fixed pool of workers with bounded retries.
type Queue struct {
	logger  *zap.Logger
	jobs    chan Job
	wg      sync.WaitGroup
	retries int
	backoff time.Duration

	closeOnce sync.Once
}

// NewQueue starts the worker pool. Concurrency and retries fall back to sane
// minimums when non-positive values are supplied.
func NewQueue(logger *zap.Logger, concurrency, retries int) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	if retries < 0 {
		retries = 0
	}

	q := &Queue{
		logger:  logger,
		jobs:    make(chan Job, concurrency*4),
		retries: retries,
		backoff: 2 * time.Second,
	}

	for i := 0; i < concurrency; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	return q
}

// Enqueue submits a job. It blocks when the buffer is full so producers are
// throttled rather than dropped.
func (q *Queue) Enqueue(job Job) {
	q.jobs <- job
}

// Shutdown stops accepting work and waits for in-flight jobs to finish.
func (q *Queue) Shutdown() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for job := range q.jobs {
		q.runWithRetry(id, job)
	}
}

func (q *Queue) runWithRetry(workerID int, job Job) {
	var lastErr error
	for attempt := 0; attempt <= q.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(q.backoff * time.Duration(attempt))
		}

		lastErr = job.Run(context.Background())
		if lastErr == nil {
			q.logger.Debug("job finished",
				zap.Int("worker", workerID),
				zap.String("job_id", job.ID),
				zap.String("kind", job.Kind),
				zap.Int("attempt", attempt+1))
			return
		}

		q.logger.Warn("job attempt failed",
			zap.Int("worker", workerID),
			zap.String("job_id", job.ID),
			zap.String("kind", job.Kind),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
	}

	q.logger.Error("job exhausted retries",
		zap.Int("worker", workerID),
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Error(lastErr))
}
