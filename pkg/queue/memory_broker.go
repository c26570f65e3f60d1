package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	defaultFailedCapacity = 1000
	defaultDedupWindow    = 24 * time.Hour
)

// MemoryBroker is a Broker held in process memory, for tests and local runs.
type MemoryBroker struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	seen   map[string]time.Time // job id -> accepted at
	failed map[string][]FailedJob
	closed bool

	failedCap   int
	dedupWindow time.Duration
	now         func() time.Time
}

// MemoryBrokerOption configures a MemoryBroker.
type MemoryBrokerOption func(*MemoryBroker)

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryBrokerOption {
	return func(b *MemoryBroker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithMemoryFailedCapacity bounds the failed-job record per queue.
func WithMemoryFailedCapacity(n int) MemoryBrokerOption {
	return func(b *MemoryBroker) {
		if n > 0 {
			b.failedCap = n
		}
	}
}

// WithMemoryDedupWindow sets how long accepted ids are remembered.
func WithMemoryDedupWindow(d time.Duration) MemoryBrokerOption {
	return func(b *MemoryBroker) {
		if d > 0 {
			b.dedupWindow = d
		}
	}
}

// NewMemoryBroker creates an empty in-memory broker.
func NewMemoryBroker(opts ...MemoryBrokerOption) *MemoryBroker {
	b := &MemoryBroker{
		jobs:        make(map[string]*Job),
		seen:        make(map[string]time.Time),
		failed:      make(map[string][]FailedJob),
		failedCap:   defaultFailedCapacity,
		dedupWindow: defaultDedupWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enqueue implements Broker.
func (b *MemoryBroker) Enqueue(_ context.Context, job *Job) error {
	if job == nil {
		return errors.New("queue: job cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClientClosed
	}
	now := b.now()
	b.pruneSeen(now)
	if _, dup := b.seen[job.ID]; dup {
		return ErrDuplicateJob
	}
	b.insert(job, now)
	return nil
}

// EnqueueBulk implements Broker.
func (b *MemoryBroker) EnqueueBulk(_ context.Context, jobs []*Job) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClientClosed
	}
	for _, job := range jobs {
		if job == nil {
			return 0, errors.New("queue: job cannot be nil")
		}
	}

	now := b.now()
	b.pruneSeen(now)

	accepted := 0
	for _, job := range jobs {
		if _, dup := b.seen[job.ID]; dup {
			continue
		}
		b.insert(job, now)
		accepted++
	}
	return accepted, nil
}

func (b *MemoryBroker) insert(job *Job, now time.Time) {
	cp := *job
	cp.Status = JobStatusPending
	if cp.Queue == "" {
		cp.Queue = DefaultQueueName
	}
	if cp.RunAt.IsZero() {
		cp.RunAt = now
	}
	b.jobs[cp.ID] = &cp
	b.seen[cp.ID] = now
}

func (b *MemoryBroker) pruneSeen(now time.Time) {
	for id, at := range b.seen {
		if now.Sub(at) >= b.dedupWindow {
			delete(b.seen, id)
		}
	}
}

// Claim implements Broker. Processing jobs whose lock expired become
// claimable again.
func (b *MemoryBroker) Claim(_ context.Context, workerID string, queues []string, lock time.Duration) (*Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClientClosed
	}

	now := b.now()
	var best *Job
	for _, job := range b.jobs {
		if !slices.Contains(queues, job.Queue) {
			continue
		}
		switch job.Status {
		case JobStatusPending:
			if job.RunAt.After(now) {
				continue
			}
		case JobStatusProcessing:
			if job.LockedUntil == nil || job.LockedUntil.After(now) {
				continue
			}
		default:
			continue
		}
		if best == nil || job.RunAt.Before(best.RunAt) {
			best = job
		}
	}
	if best == nil {
		return nil, ErrNoJob
	}

	lockedUntil := now.Add(lock)
	best.Status = JobStatusProcessing
	best.LockedUntil = &lockedUntil
	best.LockedBy = workerID
	best.Attempts++

	cp := *best
	return &cp, nil
}

// Complete implements Broker.
func (b *MemoryBroker) Complete(_ context.Context, id, workerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.claimed(id, workerID); err != nil {
		return err
	}
	delete(b.jobs, id)
	return nil
}

// Retry implements Broker.
func (b *MemoryBroker) Retry(_ context.Context, id, workerID string, runAt time.Time, errMsg string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	job, err := b.claimed(id, workerID)
	if err != nil {
		return err
	}
	job.Status = JobStatusPending
	job.Backoff = runAt.Sub(b.now())
	job.RunAt = runAt
	job.LockedUntil = nil
	job.LockedBy = ""
	job.LastError = errMsg
	return nil
}

// Fail implements Broker.
func (b *MemoryBroker) Fail(_ context.Context, id, workerID string, errMsg string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	job, err := b.claimed(id, workerID)
	if err != nil {
		return err
	}
	delete(b.jobs, id)

	cp := *job
	cp.Status = JobStatusFailed
	cp.LockedUntil = nil
	cp.LockedBy = ""
	cp.LastError = errMsg

	list := append(b.failed[cp.Queue], FailedJob{Job: cp, Error: errMsg, FailedAt: b.now()})
	if len(list) > b.failedCap {
		list = slices.Clone(list[len(list)-b.failedCap:])
	}
	b.failed[cp.Queue] = list
	return nil
}

// FailedJobs implements Broker.
func (b *MemoryBroker) FailedJobs(_ context.Context, queue string, limit int) ([]FailedJob, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.failed[queue]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]FailedJob, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// Pending returns the number of jobs not yet completed or failed.
func (b *MemoryBroker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.jobs)
}

// Job returns a copy of a job that is still pending or processing.
func (b *MemoryBroker) Job(id string) (Job, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Ping implements Broker.
func (b *MemoryBroker) Ping(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClientClosed
	}
	return nil
}

// Close implements Broker.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// claimed returns the job if workerID currently holds its lock. A holder
// whose lock expired keeps it until another worker reclaims the job.
func (b *MemoryBroker) claimed(id, workerID string) (*Job, error) {
	job, ok := b.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if job.Status != JobStatusProcessing {
		return nil, fmt.Errorf("%w: %s", ErrJobNotClaimed, id)
	}
	if job.LockedBy != workerID {
		return nil, fmt.Errorf("%w: %s is locked by %s", ErrJobNotClaimed, id, job.LockedBy)
	}
	return job, nil
}
