package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

type testPayload struct {
	Message string `json:"message"`
	Value   int    `json:"value"`
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	clock    *fakeClock
	broker   *queue.MemoryBroker
	client   *queue.Client
	producer *queue.Producer
}

func newTestEnv(t *testing.T, opts ...queue.MemoryBrokerOption) *testEnv {
	t.Helper()

	clock := newFakeClock()
	broker := queue.NewMemoryBroker(append([]queue.MemoryBrokerOption{queue.WithMemoryClock(clock.Now)}, opts...)...)

	client, err := queue.NewClient(broker)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	t.Cleanup(func() { _ = client.Close() })

	producer, err := queue.NewProducer(client,
		queue.WithProducerClock(clock.Now),
		queue.WithProducerLogger(logger.Nop()))
	require.NoError(t, err)

	return &testEnv{clock: clock, broker: broker, client: client, producer: producer}
}

func (e *testEnv) worker(t *testing.T, opts ...queue.WorkerOption) *queue.Worker {
	t.Helper()
	base := []queue.WorkerOption{
		queue.WithWorkerClock(e.clock.Now),
		queue.WithWorkerLogger(logger.Nop()),
	}
	w, err := queue.NewWorker(e.client, append(base, opts...)...)
	require.NoError(t, err)
	return w
}
