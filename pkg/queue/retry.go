package queue

import (
	"math"
	"time"
)

// RetryPolicy controls how often and how late a failed job runs again.
type RetryPolicy struct {
	MaxAttempts  int           // total attempts including the first one
	InitialDelay time.Duration // delay after the first failed attempt
	Multiplier   float64       // growth factor per further failure
	MaxDelay     time.Duration // upper bound, zero means unbounded
}

// DefaultRetryPolicy is three attempts with 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	return p
}

// Delay returns the wait before the next run once the given attempt failed.
// Attempt numbering starts at 1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Exhausted reports whether no attempts remain after the given number of attempts.
func (p RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= p.normalized().MaxAttempts
}
