package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
)

// Message is what a producer turns into a job.
type Message struct {
	Name        string // handler name, defaults to the payload type name
	Type        string // domain label carried into worker logs
	RecipientID string
	Payload     any
}

// Producer submits jobs to the broker behind an open Client.
type Producer struct {
	client      *Client
	queue       string
	keys        KeyStrategy
	maxAttempts int
	now         func() time.Time
	logger      *slog.Logger
}

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithProducerQueue sets the queue jobs are written to.
func WithProducerQueue(name string) ProducerOption {
	return func(p *Producer) {
		if name != "" {
			p.queue = name
		}
	}
}

// WithKeyStrategy sets how job ids are derived.
func WithKeyStrategy(ks KeyStrategy) ProducerOption {
	return func(p *Producer) {
		if ks != nil {
			p.keys = ks
		}
	}
}

// WithMaxAttempts sets the attempt budget stamped on new jobs.
func WithMaxAttempts(n int) ProducerOption {
	return func(p *Producer) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithProducerClock overrides the time source.
func WithProducerClock(now func() time.Time) ProducerOption {
	return func(p *Producer) {
		if now != nil {
			p.now = now
		}
	}
}

// WithProducerLogger sets the producer logger.
func WithProducerLogger(l *slog.Logger) ProducerOption {
	return func(p *Producer) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProducer creates a producer bound to client.
func NewProducer(client *Client, opts ...ProducerOption) (*Producer, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	p := &Producer{
		client:      client,
		queue:       DefaultQueueName,
		keys:        RecipientTimestampKey{},
		maxAttempts: DefaultRetryPolicy().MaxAttempts,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Enqueue submits one message and returns once the broker acknowledged it.
// A message dropped as a duplicate is reported as success with the existing id.
func (p *Producer) Enqueue(ctx context.Context, msg Message) (*Job, error) {
	const op = "queue.Producer.Enqueue"

	broker, err := p.client.acquire(op)
	if err != nil {
		return nil, err
	}

	job, err := p.build(msg)
	if err != nil {
		return nil, apperr.New(apperr.ValidationFailed, op, err)
	}

	if err := broker.Enqueue(ctx, job); err != nil {
		if errors.Is(err, ErrDuplicateJob) {
			p.logger.DebugContext(ctx, "duplicate job dropped",
				logger.JobID(job.ID),
				logger.Recipient(job.RecipientID),
				logger.NotificationType(job.Type))
			return job, nil
		}
		return nil, apperr.New(apperr.QueueUnavailable, op,
			fmt.Errorf("enqueue job %q in queue %q: %w", job.Name, job.Queue, err))
	}

	p.logger.DebugContext(ctx, "job enqueued",
		logger.JobID(job.ID),
		logger.Recipient(job.RecipientID),
		logger.NotificationType(job.Type),
		logger.Queue(job.Queue))

	return job, nil
}

// EnqueueBatch submits all messages in one broker call. Either every job is
// stored or none is; an invalid message rejects the whole batch before the
// broker is contacted.
//
// The result holds one job per message. As with Enqueue, a job the broker
// dropped as a duplicate is still returned: its id is already queued, so the
// result can contain jobs this call did not store.
func (p *Producer) EnqueueBatch(ctx context.Context, msgs []Message) ([]*Job, error) {
	const op = "queue.Producer.EnqueueBatch"

	if len(msgs) == 0 {
		return nil, nil
	}

	broker, err := p.client.acquire(op)
	if err != nil {
		return nil, err
	}

	jobs := make([]*Job, 0, len(msgs))
	for i, msg := range msgs {
		job, err := p.build(msg)
		if err != nil {
			return nil, apperr.New(apperr.ValidationFailed, op, fmt.Errorf("message %d: %w", i, err))
		}
		jobs = append(jobs, job)
	}

	accepted, err := broker.EnqueueBulk(ctx, jobs)
	if err != nil {
		return nil, apperr.New(apperr.QueueUnavailable, op, err)
	}

	p.logger.DebugContext(ctx, "job batch enqueued",
		logger.Count(len(jobs)),
		slog.Int("accepted", accepted),
		slog.Int("duplicates", len(jobs)-accepted),
		logger.Queue(p.queue))

	return jobs, nil
}

func (p *Producer) build(msg Message) (*Job, error) {
	if msg.Payload == nil {
		return nil, ErrPayloadNil
	}
	if strings.TrimSpace(msg.RecipientID) == "" {
		return nil, ErrRecipientRequired
	}

	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload of type %T: %w", msg.Payload, err)
	}

	if msg.Name == "" {
		msg.Name = qualifiedStructName(msg.Payload)
	}

	now := p.now()
	id, err := p.keys.Key(msg, payload, now)
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:          id,
		Queue:       p.queue,
		Name:        msg.Name,
		Type:        msg.Type,
		RecipientID: msg.RecipientID,
		Payload:     payload,
		Status:      JobStatusPending,
		MaxAttempts: p.maxAttempts,
		RunAt:       now,
		CreatedAt:   now,
	}, nil
}
