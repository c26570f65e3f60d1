package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

func newJob(id string) *queue.Job {
	return &queue.Job{ID: id, Queue: queue.DefaultQueueName, Name: "deliver", RecipientID: "u", MaxAttempts: 3}
}

func TestMemoryBroker_Claim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	queues := []string{queue.DefaultQueueName}

	t.Run("each job claimed once under contention", func(t *testing.T) {
		t.Parallel()

		b := queue.NewMemoryBroker()
		for i := range 50 {
			require.NoError(t, b.Enqueue(ctx, newJob(fmt.Sprintf("job-%d", i))))
		}

		var (
			mu   sync.Mutex
			seen = make(map[string]int)
			wg   sync.WaitGroup
		)
		for w := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					job, err := b.Claim(ctx, fmt.Sprintf("w-%d", w), queues, time.Minute)
					if err != nil {
						return
					}
					mu.Lock()
					seen[job.ID]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, 50)
		for id, n := range seen {
			assert.Equal(t, 1, n, id)
		}
	})

	t.Run("earliest run at first and future jobs wait", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		b := queue.NewMemoryBroker(queue.WithMemoryClock(clock.Now))

		later := newJob("later")
		later.RunAt = clock.Now().Add(time.Minute)
		early := newJob("early")
		early.RunAt = clock.Now().Add(-time.Second)
		now := newJob("now")
		now.RunAt = clock.Now()

		_, err := b.EnqueueBulk(ctx, []*queue.Job{later, now, early})
		require.NoError(t, err)

		job, err := b.Claim(ctx, "w", queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "early", job.ID)
		assert.Equal(t, 1, job.Attempts)
		assert.Equal(t, "w", job.LockedBy)

		job, err = b.Claim(ctx, "w", queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "now", job.ID)

		_, err = b.Claim(ctx, "w", queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJob)
	})

	t.Run("other queues ignored", func(t *testing.T) {
		t.Parallel()

		b := queue.NewMemoryBroker()
		job := newJob("a")
		job.Queue = "maintenance"
		require.NoError(t, b.Enqueue(ctx, job))

		_, err := b.Claim(ctx, "w", queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJob)

		got, err := b.Claim(ctx, "w", []string{"maintenance"}, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "a", got.ID)
	})

	t.Run("lock expiry makes job claimable again", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		b := queue.NewMemoryBroker(queue.WithMemoryClock(clock.Now))
		require.NoError(t, b.Enqueue(ctx, newJob("a")))

		_, err := b.Claim(ctx, "w1", queues, time.Minute)
		require.NoError(t, err)

		_, err = b.Claim(ctx, "w2", queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJob)

		clock.Advance(time.Minute)
		job, err := b.Claim(ctx, "w2", queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "w2", job.LockedBy)
		assert.Equal(t, 2, job.Attempts)
	})
}

func TestMemoryBroker_Transitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unclaimed job cannot be completed", func(t *testing.T) {
		t.Parallel()

		b := queue.NewMemoryBroker()
		require.NoError(t, b.Enqueue(ctx, newJob("a")))

		assert.ErrorIs(t, b.Complete(ctx, "a", "w"), queue.ErrJobNotClaimed)
		assert.ErrorIs(t, b.Fail(ctx, "a", "w", "x"), queue.ErrJobNotClaimed)
		assert.ErrorIs(t, b.Complete(ctx, "missing", "w"), queue.ErrJobNotFound)
	})

	t.Run("only the lock holder releases a job", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		b := queue.NewMemoryBroker(queue.WithMemoryClock(clock.Now))
		queues := []string{queue.DefaultQueueName}
		require.NoError(t, b.Enqueue(ctx, newJob("a")))

		_, err := b.Claim(ctx, "w1", queues, time.Second)
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		held, err := b.Claim(ctx, "w2", queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, held.Attempts)

		assert.ErrorIs(t, b.Retry(ctx, "a", "w1", clock.Now(), "late"), queue.ErrJobNotClaimed)
		assert.ErrorIs(t, b.Complete(ctx, "a", "w1"), queue.ErrJobNotClaimed)
		assert.ErrorIs(t, b.Fail(ctx, "a", "w1", "late"), queue.ErrJobNotClaimed)

		_, err = b.Claim(ctx, "w3", queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJob)

		stored, ok := b.Job("a")
		require.True(t, ok)
		assert.Equal(t, "w2", stored.LockedBy)
		assert.Equal(t, 2, stored.Attempts)
		assert.Empty(t, stored.LastError)

		require.NoError(t, b.Complete(ctx, "a", "w2"))
		assert.Equal(t, 0, b.Pending())
	})

	t.Run("duplicate ids inside window", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		b := queue.NewMemoryBroker(queue.WithMemoryClock(clock.Now), queue.WithMemoryDedupWindow(time.Hour))
		require.NoError(t, b.Enqueue(ctx, newJob("a")))
		assert.ErrorIs(t, b.Enqueue(ctx, newJob("a")), queue.ErrDuplicateJob)

		n, err := b.EnqueueBulk(ctx, []*queue.Job{newJob("a"), newJob("b")})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		clock.Advance(time.Hour)
		job, err := b.Claim(ctx, "w", []string{queue.DefaultQueueName}, time.Minute)
		require.NoError(t, err)
		require.NoError(t, b.Complete(ctx, job.ID, "w"))
		assert.NoError(t, b.Enqueue(ctx, newJob(job.ID)), "id reusable once the window passed")
	})

	t.Run("failed record is bounded and newest first", func(t *testing.T) {
		t.Parallel()

		b := queue.NewMemoryBroker(queue.WithMemoryFailedCapacity(3))
		for i := range 5 {
			id := fmt.Sprintf("job-%d", i)
			require.NoError(t, b.Enqueue(ctx, newJob(id)))
			_, err := b.Claim(ctx, "w", []string{queue.DefaultQueueName}, time.Minute)
			require.NoError(t, err)
			require.NoError(t, b.Fail(ctx, id, "w", "err "+id))
		}

		failed, err := b.FailedJobs(ctx, queue.DefaultQueueName, 10)
		require.NoError(t, err)
		require.Len(t, failed, 3)
		assert.Equal(t, "job-4", failed[0].Job.ID)
		assert.Equal(t, "job-3", failed[1].Job.ID)
		assert.Equal(t, "job-2", failed[2].Job.ID)

		failed, err = b.FailedJobs(ctx, queue.DefaultQueueName, 1)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, "err job-4", failed[0].Error)
	})

	t.Run("closed broker", func(t *testing.T) {
		t.Parallel()

		b := queue.NewMemoryBroker()
		require.NoError(t, b.Close())
		assert.Error(t, b.Ping(ctx))
		assert.Error(t, b.Enqueue(ctx, newJob("a")))
	})
}
