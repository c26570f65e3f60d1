package queue

import (
	"log/slog"
	"time"
)

// WorkerOption is a functional option for configuring a worker
type WorkerOption func(*workerOptions)

type workerOptions struct {
	queues            []string
	pollInterval      time.Duration
	lockTimeout       time.Duration
	maxConcurrentJobs int
	shutdownTimeout   time.Duration
	retry             RetryPolicy
	now               func() time.Time
	logger            *slog.Logger
}

// WithQueues sets which queues the worker claims from
func WithQueues(queues ...string) WorkerOption {
	return func(o *workerOptions) {
		if len(queues) > 0 {
			o.queues = queues
		}
	}
}

// WithPollInterval sets how often the worker checks for due jobs
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLockTimeout sets how long a claimed job stays locked to this worker
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithMaxConcurrentJobs sets the maximum number of jobs handled at once
func WithMaxConcurrentJobs(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrentJobs = n
		}
	}
}

// WithRetryPolicy sets the backoff applied to failed jobs
func WithRetryPolicy(p RetryPolicy) WorkerOption {
	return func(o *workerOptions) {
		o.retry = p.normalized()
	}
}

// WithWorkerClock overrides the time source used for scheduling retries
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(o *workerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithWorkerLogger sets the logger for the worker
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithShutdownTimeout bounds how long Stop waits for in-flight jobs. Zero
// waits until they finish.
func WithShutdownTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d >= 0 {
			o.shutdownTimeout = d
		}
	}
}
