package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

// Deliverer is the worker-side job handler: it turns a JobPayload into a
// stored Notification.
type Deliverer struct {
	store  Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// DelivererOption configures a Deliverer.
type DelivererOption func(*Deliverer)

// WithDelivererClock overrides the time source for CreatedAt.
func WithDelivererClock(now func() time.Time) DelivererOption {
	return func(d *Deliverer) {
		if now != nil {
			d.now = now
		}
	}
}

// WithIDGenerator overrides notification id generation.
func WithIDGenerator(newID func() string) DelivererOption {
	return func(d *Deliverer) {
		if newID != nil {
			d.newID = newID
		}
	}
}

// WithDelivererLogger sets the logger.
func WithDelivererLogger(l *slog.Logger) DelivererOption {
	return func(d *Deliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDeliverer creates a handler writing to store.
func NewDeliverer(store Store, opts ...DelivererOption) (*Deliverer, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	d := &Deliverer{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Handler returns the queue handler registered under DeliverJobName.
func (d *Deliverer) Handler() queue.Handler {
	return queue.NewNamedHandler(DeliverJobName, d.Deliver)
}

// Deliver persists the notification described by p. Invalid payloads fail
// permanently; store errors are returned for the worker to retry.
func (d *Deliverer) Deliver(ctx context.Context, p JobPayload) error {
	const op = "notifications.Deliver"

	if err := p.Validate(); err != nil {
		return queue.Permanent(apperr.New(apperr.ValidationFailed, op, err))
	}

	n := Notification{
		ID:            d.newID(),
		UserID:        p.RecipientID,
		Message:       p.Message,
		Type:          p.Type,
		CreatedAt:     d.now(),
		PostID:        p.PostID,
		CommentID:     p.CommentID,
		TriggeredByID: p.TriggeredByID,
	}
	if err := d.store.Create(ctx, n); err != nil {
		return apperr.New(apperr.OperationFailed, op, err)
	}

	d.logger.DebugContext(ctx, "notification stored",
		slog.String("notification_id", n.ID),
		logger.Recipient(n.UserID),
		logger.NotificationType(string(n.Type)))
	return nil
}
