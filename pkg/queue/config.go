package queue

import "time"

// Config holds the queue settings shared by producers and workers.
type Config struct {
	QueueName          string        `env:"QUEUE_NAME" envDefault:"notifications"`
	PollInterval       time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"500ms"`
	LockTimeout        time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"1m"`
	ShutdownTimeout    time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxConcurrentJobs  int           `env:"QUEUE_MAX_CONCURRENT_JOBS" envDefault:"10"`
	MaxAttempts        int           `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3"`
	InitialBackoff     time.Duration `env:"QUEUE_INITIAL_BACKOFF" envDefault:"1s"`
	BackoffMultiplier  float64       `env:"QUEUE_BACKOFF_MULTIPLIER" envDefault:"2"`
	MaxBackoff         time.Duration `env:"QUEUE_MAX_BACKOFF" envDefault:"1m"`
	FailedJobsCapacity int           `env:"QUEUE_FAILED_CAPACITY" envDefault:"1000"`
	DedupWindow        time.Duration `env:"QUEUE_DEDUP_WINDOW" envDefault:"24h"`
	RedisPrefix        string        `env:"QUEUE_REDIS_PREFIX" envDefault:"campusnotify"`
}

// RetryPolicy builds the retry policy described by the config.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  c.MaxAttempts,
		InitialDelay: c.InitialBackoff,
		Multiplier:   c.BackoffMultiplier,
		MaxDelay:     c.MaxBackoff,
	}
}
