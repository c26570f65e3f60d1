package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/campusnotify/pkg/logger"
)

// Worker claims jobs from the broker and runs the registered handlers.
type Worker struct {
	client   *Client
	handlers map[string]Handler
	queues   []string
	workerID string
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex // guards stopping together with wg.Add

	pollInterval    time.Duration
	lockTimeout     time.Duration
	shutdownTimeout time.Duration
	retry           RetryPolicy
	now             func() time.Time
	logger          *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// NewWorker creates a worker bound to client.
func NewWorker(client *Client, opts ...WorkerOption) (*Worker, error) {
	if client == nil {
		return nil, ErrClientNil
	}

	options := &workerOptions{
		queues:            []string{DefaultQueueName},
		pollInterval:      500 * time.Millisecond,
		lockTimeout:       time.Minute,
		maxConcurrentJobs: 1,
		retry:             DefaultRetryPolicy(),
		now:               time.Now,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		client:          client,
		handlers:        make(map[string]Handler),
		queues:          options.queues,
		workerID:        uuid.NewString(),
		sem:             make(chan struct{}, options.maxConcurrentJobs),
		pollInterval:    options.pollInterval,
		lockTimeout:     options.lockTimeout,
		shutdownTimeout: options.shutdownTimeout,
		retry:           options.retry,
		now:             options.now,
		logger:          options.logger,
	}, nil
}

// ID returns the worker instance id used for job locks.
func (w *Worker) ID() string {
	return w.workerID
}

// RegisterHandler registers a single job handler
func (w *Worker) RegisterHandler(handler Handler) error {
	if handler == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers[handler.Name()] = handler
	return nil
}

// RegisterHandlers registers multiple job handlers
func (w *Worker) RegisterHandlers(handlers ...Handler) error {
	for _, h := range handlers {
		if err := w.RegisterHandler(h); err != nil {
			return err
		}
	}
	return nil
}

// Start begins processing jobs in the background
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerStarted
	}
	if len(w.handlers) == 0 {
		w.mu.Unlock()
		return ErrNoHandlers
	}
	if !w.client.IsOpen() {
		w.mu.Unlock()
		return ErrClientClosed
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)

	go w.run()

	w.logger.Info("worker started",
		logger.WorkerID(w.workerID),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)))

	return nil
}

// Stop cancels polling and waits for in-flight jobs to finish
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()

	w.logger.Info("worker stopping, waiting for active jobs to complete",
		logger.WorkerID(w.workerID))

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	if w.shutdownTimeout > 0 {
		select {
		case <-done:
		case <-time.After(w.shutdownTimeout):
			w.logger.Warn("worker shutdown timed out, abandoning active jobs",
				logger.WorkerID(w.workerID),
				slog.Duration("timeout", w.shutdownTimeout))
			return ErrShutdownTimeout
		}
	} else {
		<-done
	}

	w.logger.Info("worker stopped", logger.WorkerID(w.workerID))

	return nil
}

// Run starts the worker and returns a function suitable for errgroup
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if _, err := w.ProcessOne(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
						w.logger.Error("failed to process job",
							logger.WorkerID(w.workerID),
							logger.Error(err))
					}
				}()
			default:
				w.logger.Debug("all worker slots busy, skipping tick",
					logger.WorkerID(w.workerID))
			}
		}
	}
}

// ProcessOne claims and handles at most one due job. It reports whether a
// job was claimed. Handler failures are not returned; they are recorded on
// the job. Only broker errors are.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	broker, err := w.client.acquire("queue.Worker.ProcessOne")
	if err != nil {
		return false, err
	}

	job, err := broker.Claim(ctx, w.workerID, w.queues, w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoJob) {
			return false, nil
		}
		return false, fmt.Errorf("claim job: %w", err)
	}

	return true, w.process(context.WithoutCancel(ctx), broker, job)
}

func (w *Worker) maxAttempts(job *Job) int {
	if job.MaxAttempts > 0 {
		return job.MaxAttempts
	}
	return w.retry.MaxAttempts
}

// process runs job to its next state. ctx is only used for broker
// bookkeeping and is detached from cancellation by the caller.
func (w *Worker) process(ctx context.Context, broker Broker, job *Job) (retErr error) {
	start := time.Now()

	// A lock that expired during the final attempt hands the job back with
	// the budget already spent.
	if job.Attempts > w.maxAttempts(job) {
		msg := job.LastError
		if msg == "" {
			msg = "attempt budget spent before completion"
		}
		if err := broker.Fail(ctx, job.ID, w.workerID, msg); err != nil {
			return fmt.Errorf("fail job %s: %w", job.ID, err)
		}
		w.logOutcome(job, logger.OutcomeExhausted, errors.New(msg), time.Since(start))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			retErr = w.handleFailure(ctx, broker, job, fmt.Errorf("panic in handler: %v", r), time.Since(start))
		}
	}()

	w.mu.RLock()
	handler, ok := w.handlers[job.Name]
	w.mu.RUnlock()

	if !ok {
		return w.handleFailure(ctx, broker, job, Permanent(fmt.Errorf("%w: %s", ErrHandlerNotFound, job.Name)), time.Since(start))
	}

	// Not tied to the worker lifecycle so Stop lets in-flight jobs finish.
	hctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	if err := handler.Handle(hctx, job.Payload); err != nil {
		return w.handleFailure(ctx, broker, job, err, time.Since(start))
	}

	if err := broker.Complete(ctx, job.ID, w.workerID); err != nil {
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}
	w.logOutcome(job, logger.OutcomeDelivered, nil, time.Since(start))
	return nil
}

func (w *Worker) handleFailure(ctx context.Context, broker Broker, job *Job, execErr error, duration time.Duration) error {
	if IsPermanent(execErr) {
		if err := broker.Fail(ctx, job.ID, w.workerID, execErr.Error()); err != nil {
			return fmt.Errorf("fail job %s: %w", job.ID, err)
		}
		w.logOutcome(job, logger.OutcomeRejected, execErr, duration)
		return nil
	}

	if job.Attempts >= w.maxAttempts(job) {
		if err := broker.Fail(ctx, job.ID, w.workerID, execErr.Error()); err != nil {
			return fmt.Errorf("fail job %s: %w", job.ID, err)
		}
		w.logOutcome(job, logger.OutcomeExhausted, execErr, duration)
		return nil
	}

	delay := w.retry.Delay(job.Attempts)
	if err := broker.Retry(ctx, job.ID, w.workerID, w.now().Add(delay), execErr.Error()); err != nil {
		return fmt.Errorf("retry job %s: %w", job.ID, err)
	}
	w.logOutcome(job, logger.OutcomeRetrying, execErr, duration, slog.Duration("backoff", delay))
	return nil
}

func (w *Worker) logOutcome(job *Job, outcome string, err error, duration time.Duration, extra ...slog.Attr) {
	level := slog.LevelInfo
	switch outcome {
	case logger.OutcomeRetrying:
		level = slog.LevelWarn
	case logger.OutcomeExhausted, logger.OutcomeRejected:
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		logger.WorkerID(w.workerID),
		logger.JobID(job.ID),
		logger.Recipient(job.RecipientID),
		logger.NotificationType(job.Type),
		logger.Outcome(outcome),
		logger.Attempt(job.Attempts),
		logger.Queue(job.Queue),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, logger.Error(err))
	}
	attrs = append(attrs, extra...)

	w.logger.LogAttrs(context.Background(), level, "notification job finished", attrs...)
}
