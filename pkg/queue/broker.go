package queue

import (
	"context"
	"time"
)

// Broker is the durable queue shared by producers and workers.
type Broker interface {
	// Enqueue stores a pending job. A job whose id was already accepted
	// within the dedup window yields ErrDuplicateJob.
	Enqueue(ctx context.Context, job *Job) error

	// EnqueueBulk stores all jobs or none of them. Duplicates are skipped
	// and do not fail the batch. It returns the number of jobs accepted.
	EnqueueBulk(ctx context.Context, jobs []*Job) (int, error)

	// Claim locks the next due job from the given queues for workerID and
	// counts the claim as an attempt. It returns ErrNoJob when nothing is due.
	Claim(ctx context.Context, workerID string, queues []string, lock time.Duration) (*Job, error)

	// Complete removes a job claimed by workerID.
	Complete(ctx context.Context, id, workerID string) error

	// Retry releases a job claimed by workerID so it becomes due again at runAt.
	Retry(ctx context.Context, id, workerID string, runAt time.Time, errMsg string) error

	// Fail moves a job claimed by workerID to the bounded failed-job record.
	Fail(ctx context.Context, id, workerID string, errMsg string) error

	// Complete, Retry and Fail return ErrJobNotClaimed when the job is not
	// processing or its lock is held by another worker.

	// FailedJobs returns up to limit failed jobs of a queue, newest first.
	FailedJobs(ctx context.Context, queue string, limit int) ([]FailedJob, error)

	// Ping checks that the broker is reachable.
	Ping(ctx context.Context) error

	// Close releases broker resources.
	Close() error
}
