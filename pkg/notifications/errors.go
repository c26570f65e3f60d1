package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notifications: notification not found")
	ErrPreferencesNotFound  = errors.New("notifications: preferences not found")
	ErrStoreRead            = errors.New("notifications: failed to read from store")
	ErrStoreNil             = errors.New("notifications: store cannot be nil")
	ErrProducerNil          = errors.New("notifications: producer cannot be nil")
	ErrExtractorNil         = errors.New("notifications: mention extractor cannot be nil")

	ErrUnknownType       = errors.New("notifications: unknown notification type")
	ErrRecipientRequired = errors.New("notifications: recipient id is required")
	ErrMessageRequired   = errors.New("notifications: message is required")
	ErrTriggerRequired   = errors.New("notifications: triggering user is required for this type")
	ErrSelfNotification  = errors.New("notifications: recipient cannot be the triggering user")
	ErrNotificationIDs   = errors.New("notifications: at least one notification id is required")
	ErrRequesterMissing  = errors.New("notifications: no requester in context")
	ErrNotOwner          = errors.New("notifications: requester does not own the notification")
	ErrAdminRequired     = errors.New("notifications: admin role required")
	ErrTooManyIDs        = errors.New("notifications: too many notification ids")
	ErrInvalidRetention  = errors.New("notifications: retention days must not be negative")
	ErrDuplicateID       = errors.New("notifications: notification id already exists")
)
