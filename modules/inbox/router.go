package inbox

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/campusnotify/pkg/notifications"
)

// Service is the access layer consumed by the router, satisfied by
// *notifications.Service.
type Service interface {
	List(ctx context.Context, userID string, q notifications.ListQuery) (*notifications.Page, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) (*notifications.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	MarkManyRead(ctx context.Context, ids []string) (int64, error)
	Delete(ctx context.Context, id string) error
	CleanupOld(ctx context.Context, daysToKeep int) (int64, error)
}

// Option configures the router.
type Option func(*handler)

// WithRequesterFunc replaces HeaderRequester.
func WithRequesterFunc(fn RequesterFunc) Option {
	return func(h *handler) {
		if fn != nil {
			h.requester = fn
		}
	}
}

// WithLogger sets the logger for failed requests.
func WithLogger(l *slog.Logger) Option {
	return func(h *handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// Router returns the inbox routes.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	r.Mount("/notifications", inbox.Router(svc, inbox.WithLogger(log)))
func Router(svc Service, opts ...Option) chi.Router {
	h := &handler{
		svc:       svc,
		requester: HeaderRequester,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(authenticate(h.requester))

	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/read-all", h.markAllRead)
	r.Post("/read", h.markManyRead)
	r.Post("/delete", h.deleteMany)
	r.Post("/cleanup", h.cleanup)
	r.Post("/{id}/read", h.markRead)
	r.Delete("/{id}", h.delete)

	return r
}
