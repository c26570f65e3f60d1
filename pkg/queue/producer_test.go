package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Enqueue(ctx context.Context, job *queue.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockBroker) EnqueueBulk(ctx context.Context, jobs []*queue.Job) (int, error) {
	args := m.Called(ctx, jobs)
	return args.Int(0), args.Error(1)
}

func (m *MockBroker) Claim(ctx context.Context, workerID string, queues []string, lock time.Duration) (*queue.Job, error) {
	args := m.Called(ctx, workerID, queues, lock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Job), args.Error(1)
}

func (m *MockBroker) Complete(ctx context.Context, id, workerID string) error {
	return m.Called(ctx, id, workerID).Error(0)
}

func (m *MockBroker) Retry(ctx context.Context, id, workerID string, runAt time.Time, errMsg string) error {
	return m.Called(ctx, id, workerID, runAt, errMsg).Error(0)
}

func (m *MockBroker) Fail(ctx context.Context, id, workerID string, errMsg string) error {
	return m.Called(ctx, id, workerID, errMsg).Error(0)
}

func (m *MockBroker) FailedJobs(ctx context.Context, q string, limit int) ([]queue.FailedJob, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.FailedJob), args.Error(1)
}

func (m *MockBroker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBroker) Close() error {
	return m.Called().Error(0)
}

func openMockClient(t *testing.T, b *MockBroker) *queue.Client {
	t.Helper()
	b.On("Ping", mock.Anything).Return(nil).Once()
	client, err := queue.NewClient(b)
	require.NoError(t, err)
	require.NoError(t, client.Open(context.Background()))
	return client
}

func TestProducer_New(t *testing.T) {
	t.Parallel()

	p, err := queue.NewProducer(nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, queue.ErrClientNil)
}

func TestProducer_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("stores pending job", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		job, err := env.producer.Enqueue(context.Background(), queue.Message{
			Type:        "MENTION",
			RecipientID: "user-1",
			Payload:     testPayload{Message: "hi", Value: 1},
		})
		require.NoError(t, err)

		assert.Equal(t, queue.DefaultQueueName, job.Queue)
		assert.Equal(t, "queue_test.testPayload", job.Name)
		assert.Equal(t, "MENTION", job.Type)
		assert.Equal(t, 3, job.MaxAttempts)
		assert.Equal(t, env.clock.Now(), job.RunAt)
		assert.JSONEq(t, `{"message":"hi","value":1}`, string(job.Payload))

		stored, ok := env.broker.Job(job.ID)
		require.True(t, ok)
		assert.Equal(t, queue.JobStatusPending, stored.Status)
		assert.Equal(t, 0, stored.Attempts)
	})

	t.Run("same event twice creates two jobs", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		msg := queue.Message{RecipientID: "user-1", Payload: testPayload{Message: "same"}}
		a, err := env.producer.Enqueue(context.Background(), msg)
		require.NoError(t, err)
		b, err := env.producer.Enqueue(context.Background(), msg)
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, 2, env.broker.Pending())
	})

	t.Run("payload hash key drops repeats", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		producer, err := queue.NewProducer(env.client,
			queue.WithKeyStrategy(queue.PayloadHashKey{}),
			queue.WithProducerLogger(logger.Nop()))
		require.NoError(t, err)

		msg := queue.Message{RecipientID: "user-1", Payload: testPayload{Message: "same"}}
		a, err := producer.Enqueue(context.Background(), msg)
		require.NoError(t, err)
		b, err := producer.Enqueue(context.Background(), msg)
		require.NoError(t, err)

		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, 1, env.broker.Pending())
	})

	t.Run("invalid messages", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.producer.Enqueue(context.Background(), queue.Message{RecipientID: "user-1"})
		assert.ErrorIs(t, err, queue.ErrPayloadNil)
		assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

		_, err = env.producer.Enqueue(context.Background(), queue.Message{Payload: testPayload{}})
		assert.ErrorIs(t, err, queue.ErrRecipientRequired)

		_, err = env.producer.Enqueue(context.Background(), queue.Message{RecipientID: "user-1", Payload: make(chan int)})
		assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))

		assert.Equal(t, 0, env.broker.Pending())
	})

	t.Run("broker failure is queue unavailable", func(t *testing.T) {
		t.Parallel()

		b := new(MockBroker)
		defer b.AssertExpectations(t)
		client := openMockClient(t, b)

		cause := errors.New("connection refused")
		b.On("Enqueue", mock.Anything, mock.Anything).Return(cause).Once()

		producer, err := queue.NewProducer(client, queue.WithProducerLogger(logger.Nop()))
		require.NoError(t, err)

		job, err := producer.Enqueue(context.Background(), queue.Message{RecipientID: "user-1", Payload: testPayload{}})
		assert.Nil(t, job)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, apperr.QueueUnavailable, apperr.KindOf(err))
	})

	t.Run("closed client", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		require.NoError(t, env.client.Close())

		_, err := env.producer.Enqueue(context.Background(), queue.Message{RecipientID: "user-1", Payload: testPayload{}})
		assert.ErrorIs(t, err, queue.ErrClientClosed)
		assert.Equal(t, apperr.QueueUnavailable, apperr.KindOf(err))
	})
}

func TestProducer_EnqueueBatch(t *testing.T) {
	t.Parallel()

	t.Run("one job per message", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		msgs := []queue.Message{
			{Type: "MENTION", RecipientID: "u1", Payload: testPayload{Value: 1}},
			{Type: "MENTION", RecipientID: "u2", Payload: testPayload{Value: 2}},
			{Type: "MENTION", RecipientID: "u3", Payload: testPayload{Value: 3}},
		}
		jobs, err := env.producer.EnqueueBatch(context.Background(), msgs)
		require.NoError(t, err)
		require.Len(t, jobs, 3)
		assert.Equal(t, 3, env.broker.Pending())

		for i, job := range jobs {
			assert.Equal(t, msgs[i].RecipientID, job.RecipientID)
		}
	})

	t.Run("duplicates are returned with their queued ids", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		producer, err := queue.NewProducer(env.client,
			queue.WithKeyStrategy(queue.PayloadHashKey{}),
			queue.WithProducerLogger(logger.Nop()))
		require.NoError(t, err)

		repeat := queue.Message{RecipientID: "u1", Payload: testPayload{Message: "same"}}
		first, err := producer.Enqueue(context.Background(), repeat)
		require.NoError(t, err)

		jobs, err := producer.EnqueueBatch(context.Background(), []queue.Message{
			repeat,
			{RecipientID: "u2", Payload: testPayload{Message: "new"}},
		})
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, first.ID, jobs[0].ID)
		assert.Equal(t, 2, env.broker.Pending(), "the repeat is stored once")

		for _, job := range jobs {
			_, queued := env.broker.Job(job.ID)
			assert.True(t, queued, job.ID)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		jobs, err := env.producer.EnqueueBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("invalid message rejects whole batch", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.producer.EnqueueBatch(context.Background(), []queue.Message{
			{RecipientID: "u1", Payload: testPayload{}},
			{RecipientID: "", Payload: testPayload{}},
		})
		assert.True(t, apperr.IsKind(err, apperr.ValidationFailed))
		assert.Equal(t, 0, env.broker.Pending())
	})

	t.Run("broker rejection leaves nothing enqueued", func(t *testing.T) {
		t.Parallel()

		b := new(MockBroker)
		defer b.AssertExpectations(t)
		client := openMockClient(t, b)

		b.On("EnqueueBulk", mock.Anything, mock.MatchedBy(func(jobs []*queue.Job) bool {
			return len(jobs) == 2
		})).Return(0, errors.New("broker down")).Once()

		producer, err := queue.NewProducer(client, queue.WithProducerLogger(logger.Nop()))
		require.NoError(t, err)

		jobs, err := producer.EnqueueBatch(context.Background(), []queue.Message{
			{RecipientID: "u1", Payload: testPayload{}},
			{RecipientID: "u2", Payload: testPayload{}},
		})
		assert.Nil(t, jobs)
		assert.Equal(t, apperr.QueueUnavailable, apperr.KindOf(err))
	})
}
