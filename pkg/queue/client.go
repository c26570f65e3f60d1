package queue

import (
	"context"
	"sync"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
)

const defaultFailedJobsLimit = 100

// Client is an explicit handle on a broker. Producers and workers refuse to
// work through a client that has not been opened or was closed.
type Client struct {
	broker Broker
	queue  string

	mu   sync.RWMutex
	open bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientQueue sets the queue FailedJobs reads by default.
func WithClientQueue(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.queue = name
		}
	}
}

// NewClient wraps a broker. The client starts closed.
func NewClient(broker Broker, opts ...ClientOption) (*Client, error) {
	if broker == nil {
		return nil, ErrBrokerNil
	}
	c := &Client{broker: broker, queue: DefaultQueueName}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Open verifies the broker is reachable and marks the client usable.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return ErrClientAlreadyOpen
	}
	if err := c.broker.Ping(ctx); err != nil {
		return apperr.New(apperr.QueueUnavailable, "queue.Client.Open", err)
	}
	c.open = true
	return nil
}

// Close marks the client unusable and closes the broker. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	c.open = false
	return c.broker.Close()
}

// IsOpen reports whether the client can be used.
func (c *Client) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// Healthcheck pings the broker through an open client.
func (c *Client) Healthcheck(ctx context.Context) error {
	b, err := c.acquire("queue.Client.Healthcheck")
	if err != nil {
		return err
	}
	if err := b.Ping(ctx); err != nil {
		return apperr.New(apperr.QueueUnavailable, "queue.Client.Healthcheck", err)
	}
	return nil
}

// FailedJobs lists the newest failed jobs of the client queue.
func (c *Client) FailedJobs(ctx context.Context, limit int) ([]FailedJob, error) {
	b, err := c.acquire("queue.Client.FailedJobs")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFailedJobsLimit
	}
	jobs, err := b.FailedJobs(ctx, c.queue, limit)
	if err != nil {
		return nil, apperr.New(apperr.QueueUnavailable, "queue.Client.FailedJobs", err)
	}
	return jobs, nil
}

func (c *Client) acquire(op string) (Broker, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.open {
		return nil, apperr.New(apperr.QueueUnavailable, op, ErrClientClosed)
	}
	return c.broker, nil
}
