package notifications

import "github.com/dmitrymomot/campusnotify/pkg/validator"

// DeliverJobName is the queue handler name for notification jobs.
const DeliverJobName = "notifications.deliver"

// JobPayload is the job body: the future Notification plus its recipient.
type JobPayload struct {
	RecipientID   string `json:"recipient_id"`
	Message       string `json:"message"`
	Type          Type   `json:"type"`
	PostID        string `json:"post_id,omitempty"`
	CommentID     string `json:"comment_id,omitempty"`
	TriggeredByID string `json:"triggered_by_id,omitempty"`
}

// Validate checks the payload invariants. All violations are reported as
// validator.ValidationErrors that unwrap to the package sentinels.
func (p JobPayload) Validate() error {
	needsTrigger := p.Type.RequiresTrigger()
	return validator.Apply(
		validator.RequiredString("recipient_id", p.RecipientID).Because(ErrRecipientRequired),
		validator.RequiredString("message", p.Message).Because(ErrMessageRequired),
		validator.OneOf("type", p.Type, AllTypes).Because(ErrUnknownType),
		validator.When(needsTrigger,
			validator.RequiredString("triggered_by_id", p.TriggeredByID).Because(ErrTriggerRequired)),
		validator.When(needsTrigger && p.TriggeredByID != "",
			validator.NotEqual("triggered_by_id", p.TriggeredByID, "recipient_id", p.RecipientID).Because(ErrSelfNotification)),
	)
}

// ForRecipient returns a copy of the template addressed to userID.
func (p JobPayload) ForRecipient(userID string) JobPayload {
	p.RecipientID = userID
	return p
}
