package notifications

import (
	"context"
	"time"
)

// Store persists notifications.
type Store interface {
	// Create inserts a notification. The id must be unique.
	Create(ctx context.Context, n Notification) error

	// Get returns ErrNotificationNotFound for an unknown id.
	Get(ctx context.Context, id string) (*Notification, error)

	// GetMany returns the notifications that exist among ids, in no particular order.
	GetMany(ctx context.Context, ids []string) ([]Notification, error)

	// List returns a user's notifications newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// Count returns the number of a user's notifications, optionally unread only.
	Count(ctx context.Context, userID string, onlyUnread bool) (int, error)

	// MarkRead marks the given notifications read and returns how many changed.
	MarkRead(ctx context.Context, at time.Time, ids ...string) (int64, error)

	// MarkAllRead marks every unread notification of a user read.
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)

	// Delete removes one notification. Returns ErrNotificationNotFound for an unknown id.
	Delete(ctx context.Context, id string) error

	// DeleteReadBefore removes read notifications created strictly before cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PreferenceStore persists per-user delivery preferences.
type PreferenceStore interface {
	// GetPreferences returns ErrPreferencesNotFound when the user has none.
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)

	// GetPreferencesBatch returns preferences keyed by user id. Users without
	// preferences are absent from the map.
	GetPreferencesBatch(ctx context.Context, userIDs []string) (map[string]Preferences, error)

	SavePreferences(ctx context.Context, p Preferences) error
	DeletePreferences(ctx context.Context, userID string) error
}

// ListOptions filters and paginates List.
type ListOptions struct {
	Offset     int
	Limit      int // 0 means no limit
	OnlyUnread bool
}
