package notifications

import "time"

// Type is the closed set of notification kinds.
type Type string

const (
	TypeComment    Type = "COMMENT"
	TypeMention    Type = "MENTION"
	TypePostUpdate Type = "POST_UPDATE"
	TypeSystem     Type = "SYSTEM"
)

// AllTypes lists every notification type.
var AllTypes = []Type{TypeComment, TypeMention, TypePostUpdate, TypeSystem}

// Valid reports whether t is one of AllTypes.
func (t Type) Valid() bool {
	switch t {
	case TypeComment, TypeMention, TypePostUpdate, TypeSystem:
		return true
	}
	return false
}

// RequiresTrigger reports whether notifications of this type are caused by
// another user, who then must not be the recipient.
func (t Type) RequiresTrigger() bool {
	return t == TypeComment || t == TypeMention
}

// Notification is a persisted message addressed to one user.
type Notification struct {
	ID            string     `json:"id" bson:"_id"`
	UserID        string     `json:"user_id" bson:"user_id"`
	Message       string     `json:"message" bson:"message"`
	Type          Type       `json:"type" bson:"type"`
	IsRead        bool       `json:"is_read" bson:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	PostID        string     `json:"post_id,omitempty" bson:"post_id,omitempty"`
	CommentID     string     `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	TriggeredByID string     `json:"triggered_by_id,omitempty" bson:"triggered_by_id,omitempty"`
}

// MarkAsRead marks the notification as read at the given time.
func (n *Notification) MarkAsRead(at time.Time) {
	n.IsRead = true
	n.ReadAt = &at
}

// Preferences are the per-user delivery switches.
type Preferences struct {
	UserID              string    `json:"user_id" bson:"_id"`
	Enabled             bool      `json:"enabled" bson:"enabled"`
	AllowComments       bool      `json:"allow_comments" bson:"allow_comments"`
	AllowMentions       bool      `json:"allow_mentions" bson:"allow_mentions"`
	AllowProjectUpdates bool      `json:"allow_project_updates" bson:"allow_project_updates"`
	AllowSystem         bool      `json:"allow_system" bson:"allow_system"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

// DefaultPreferences are the preferences a new user starts with.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:              userID,
		Enabled:             true,
		AllowComments:       true,
		AllowMentions:       true,
		AllowProjectUpdates: true,
		AllowSystem:         true,
	}
}
