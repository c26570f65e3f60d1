package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/campusnotify/pkg/logger"
)

// PeriodicFunc is the body of a periodic job.
type PeriodicFunc func(ctx context.Context) error

// Periodic runs a function on a schedule inside the process. It is meant for
// maintenance work such as retention cleanup, not for notification delivery.
type Periodic struct {
	name     string
	schedule Schedule
	fn       PeriodicFunc
	now      func() time.Time
	logger   *slog.Logger
}

// PeriodicOption configures a Periodic.
type PeriodicOption func(*Periodic)

// WithPeriodicLogger sets the logger.
func WithPeriodicLogger(l *slog.Logger) PeriodicOption {
	return func(p *Periodic) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPeriodicClock overrides the time source used to compute the next run.
func WithPeriodicClock(now func() time.Time) PeriodicOption {
	return func(p *Periodic) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPeriodic creates a named periodic runner.
func NewPeriodic(name string, schedule Schedule, fn PeriodicFunc, opts ...PeriodicOption) *Periodic {
	p := &Periodic{
		name:     name,
		schedule: schedule,
		fn:       fn,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tick runs the function once and logs the result.
func (p *Periodic) Tick(ctx context.Context) error {
	start := time.Now()
	err := p.fn(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "periodic job failed",
			slog.String("periodic", p.name),
			slog.Duration("duration", time.Since(start)),
			logger.Error(err))
		return err
	}
	p.logger.DebugContext(ctx, "periodic job finished",
		slog.String("periodic", p.name),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Run returns a function suitable for errgroup. Failures of a single run are
// logged and do not stop the loop.
func (p *Periodic) Run(ctx context.Context) func() error {
	return func() error {
		p.logger.InfoContext(ctx, "periodic job scheduled",
			slog.String("periodic", p.name),
			slog.String("schedule", p.schedule.String()))

		for {
			now := p.now()
			wait := p.schedule.Next(now).Sub(now)
			timer := time.NewTimer(wait)

			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
				_ = p.Tick(ctx)
			}
		}
	}
}
