package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout under the configured prefix:
//
//	<p>:job:<id>                  job JSON
//	<p>:seen:<id>                 dedup marker, expires after the dedup window
//	<p>:lock:<id>                 id of the worker holding the claim
//	<p>:queue:<q>:ready           ZSET id -> run at (unix ms)
//	<p>:queue:<q>:processing      ZSET id -> lock deadline (unix ms)
//	<p>:queue:<q>:failed          LIST of FailedJob JSON, newest first

var enqueueScript = redis.NewScript(`
local prefix = ARGV[1]
local window = ARGV[2]
local accepted = 0
for i = 3, #ARGV, 4 do
  local id, q, score, body = ARGV[i], ARGV[i+1], ARGV[i+2], ARGV[i+3]
  if redis.call('SET', prefix .. ':seen:' .. id, '1', 'NX', 'PX', window) then
    redis.call('SET', prefix .. ':job:' .. id, body)
    redis.call('ZADD', prefix .. ':queue:' .. q .. ':ready', score, id)
    accepted = accepted + 1
  end
end
return accepted
`)

var claimScript = redis.NewScript(`
local prefix = ARGV[1]
local now = ARGV[2]
local deadline = ARGV[3]
local worker = ARGV[4]
for i = 5, #ARGV do
  local ready = prefix .. ':queue:' .. ARGV[i] .. ':ready'
  local processing = prefix .. ':queue:' .. ARGV[i] .. ':processing'
  local expired = redis.call('ZRANGEBYSCORE', processing, '-inf', now)
  for _, id in ipairs(expired) do
    redis.call('ZREM', processing, id)
    redis.call('ZADD', ready, now, id)
  end
  local ids = redis.call('ZRANGEBYSCORE', ready, '-inf', now, 'LIMIT', 0, 1)
  if #ids > 0 then
    redis.call('ZREM', ready, ids[1])
    redis.call('ZADD', processing, deadline, ids[1])
    redis.call('SET', prefix .. ':lock:' .. ids[1], worker)
    return ids[1]
  end
end
return false
`)

// releaseScript ends a claim held by ARGV[4]. It returns 0 without touching
// anything when the job is no longer processing or another worker holds it.
var releaseScript = redis.NewScript(`
local prefix, id, q, worker, action = ARGV[1], ARGV[2], ARGV[3], ARGV[4], ARGV[5]
local lock = prefix .. ':lock:' .. id
local processing = prefix .. ':queue:' .. q .. ':processing'
if redis.call('GET', lock) ~= worker or not redis.call('ZSCORE', processing, id) then
  return 0
end
redis.call('ZREM', processing, id)
redis.call('DEL', lock)
if action == 'retry' then
  redis.call('SET', prefix .. ':job:' .. id, ARGV[6])
  redis.call('ZADD', prefix .. ':queue:' .. q .. ':ready', ARGV[7], id)
else
  redis.call('DEL', prefix .. ':job:' .. id)
  if action == 'fail' then
    local failed = prefix .. ':queue:' .. q .. ':failed'
    redis.call('LPUSH', failed, ARGV[6])
    redis.call('LTRIM', failed, 0, tonumber(ARGV[7]) - 1)
  end
end
return 1
`)

const (
	releaseComplete = "complete"
	releaseRetry    = "retry"
	releaseFail     = "fail"
)

// RedisBroker is a Broker backed by Redis sorted sets.
type RedisBroker struct {
	rdb         redis.UniversalClient
	prefix      string
	failedCap   int
	dedupWindow time.Duration
	now         func() time.Time
}

// RedisBrokerOption configures a RedisBroker.
type RedisBrokerOption func(*RedisBroker)

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisBrokerOption {
	return func(b *RedisBroker) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// WithRedisFailedCapacity bounds the failed-job list per queue.
func WithRedisFailedCapacity(n int) RedisBrokerOption {
	return func(b *RedisBroker) {
		if n > 0 {
			b.failedCap = n
		}
	}
}

// WithRedisDedupWindow sets how long accepted ids are remembered.
func WithRedisDedupWindow(d time.Duration) RedisBrokerOption {
	return func(b *RedisBroker) {
		if d > 0 {
			b.dedupWindow = d
		}
	}
}

// WithRedisClock overrides the time source.
func WithRedisClock(now func() time.Time) RedisBrokerOption {
	return func(b *RedisBroker) {
		if now != nil {
			b.now = now
		}
	}
}

// NewRedisBroker creates a broker on top of an existing client. The broker
// owns the client and closes it on Close.
func NewRedisBroker(rdb redis.UniversalClient, opts ...RedisBrokerOption) *RedisBroker {
	b := &RedisBroker{
		rdb:         rdb,
		prefix:      "campusnotify",
		failedCap:   defaultFailedCapacity,
		dedupWindow: defaultDedupWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBroker) jobKey(id string) string       { return b.prefix + ":job:" + id }
func (b *RedisBroker) readyKey(q string) string      { return b.prefix + ":queue:" + q + ":ready" }
func (b *RedisBroker) processingKey(q string) string { return b.prefix + ":queue:" + q + ":processing" }
func (b *RedisBroker) failedKey(q string) string     { return b.prefix + ":queue:" + q + ":failed" }

// Enqueue implements Broker.
func (b *RedisBroker) Enqueue(ctx context.Context, job *Job) error {
	accepted, err := b.EnqueueBulk(ctx, []*Job{job})
	if err != nil {
		return err
	}
	if accepted == 0 {
		return ErrDuplicateJob
	}
	return nil
}

// EnqueueBulk implements Broker. The whole batch is written by one script.
func (b *RedisBroker) EnqueueBulk(ctx context.Context, jobs []*Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	now := b.now()
	args := make([]any, 0, 2+len(jobs)*4)
	args = append(args, b.prefix, b.dedupWindow.Milliseconds())
	for _, job := range jobs {
		if job == nil {
			return 0, errors.New("queue: job cannot be nil")
		}
		cp := *job
		cp.Status = JobStatusPending
		if cp.Queue == "" {
			cp.Queue = DefaultQueueName
		}
		if cp.RunAt.IsZero() {
			cp.RunAt = now
		}
		body, err := json.Marshal(cp)
		if err != nil {
			return 0, fmt.Errorf("marshal job %s: %w", cp.ID, err)
		}
		args = append(args, cp.ID, cp.Queue, cp.RunAt.UnixMilli(), body)
	}

	accepted, err := enqueueScript.Run(ctx, b.rdb, nil, args...).Int()
	if err != nil {
		return 0, fmt.Errorf("enqueue jobs: %w", err)
	}
	return accepted, nil
}

// Claim implements Broker.
func (b *RedisBroker) Claim(ctx context.Context, workerID string, queues []string, lock time.Duration) (*Job, error) {
	now := b.now()
	deadline := now.Add(lock)

	args := make([]any, 0, 4+len(queues))
	args = append(args, b.prefix, now.UnixMilli(), deadline.UnixMilli(), workerID)
	for _, q := range queues {
		args = append(args, q)
	}

	id, err := claimScript.Run(ctx, b.rdb, nil, args...).Text()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}

	job, err := b.load(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Status = JobStatusProcessing
	job.Attempts++
	job.LockedUntil = &deadline
	job.LockedBy = workerID

	if err := b.save(ctx, b.rdb, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Complete implements Broker.
func (b *RedisBroker) Complete(ctx context.Context, id, workerID string) error {
	job, err := b.load(ctx, id)
	if err != nil {
		return err
	}
	if err := b.release(ctx, job, workerID, releaseComplete); err != nil {
		return fmt.Errorf("complete job %s: %w", id, err)
	}
	return nil
}

// Retry implements Broker.
func (b *RedisBroker) Retry(ctx context.Context, id, workerID string, runAt time.Time, errMsg string) error {
	job, err := b.load(ctx, id)
	if err != nil {
		return err
	}
	job.Status = JobStatusPending
	job.Backoff = runAt.Sub(b.now())
	job.RunAt = runAt
	job.LockedUntil = nil
	job.LockedBy = ""
	job.LastError = errMsg

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", id, err)
	}
	if err := b.release(ctx, job, workerID, releaseRetry, body, runAt.UnixMilli()); err != nil {
		return fmt.Errorf("retry job %s: %w", id, err)
	}
	return nil
}

// Fail implements Broker.
func (b *RedisBroker) Fail(ctx context.Context, id, workerID string, errMsg string) error {
	job, err := b.load(ctx, id)
	if err != nil {
		return err
	}
	job.Status = JobStatusFailed
	job.LockedUntil = nil
	job.LockedBy = ""
	job.LastError = errMsg

	entry, err := json.Marshal(FailedJob{Job: *job, Error: errMsg, FailedAt: b.now()})
	if err != nil {
		return fmt.Errorf("marshal failed job %s: %w", id, err)
	}
	if err := b.release(ctx, job, workerID, releaseFail, entry, b.failedCap); err != nil {
		return fmt.Errorf("fail job %s: %w", id, err)
	}
	return nil
}

// FailedJobs implements Broker.
func (b *RedisBroker) FailedJobs(ctx context.Context, queue string, limit int) ([]FailedJob, error) {
	if limit <= 0 {
		limit = b.failedCap
	}
	raw, err := b.rdb.LRange(ctx, b.failedKey(queue), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list failed jobs: %w", err)
	}
	out := make([]FailedJob, 0, len(raw))
	for _, s := range raw {
		var fj FailedJob
		if err := json.Unmarshal([]byte(s), &fj); err != nil {
			return nil, fmt.Errorf("decode failed job: %w", err)
		}
		out = append(out, fj)
	}
	return out, nil
}

// Ping implements Broker.
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Close implements Broker.
func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}

func (b *RedisBroker) load(ctx context.Context, id string) (*Job, error) {
	body, err := b.rdb.Get(ctx, b.jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

func (b *RedisBroker) release(ctx context.Context, job *Job, workerID, action string, extra ...any) error {
	args := append([]any{b.prefix, job.ID, job.Queue, workerID, action}, extra...)
	ok, err := releaseScript.Run(ctx, b.rdb, nil, args...).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return ErrJobNotClaimed
	}
	return nil
}

func (b *RedisBroker) save(ctx context.Context, c redis.Cmdable, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	return c.Set(ctx, b.jobKey(job.ID), body, 0).Err()
}
