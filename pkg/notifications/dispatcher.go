package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/queue"
)

// Enqueuer is the producer side of the queue, satisfied by *queue.Producer.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg queue.Message) (*queue.Job, error)
	EnqueueBatch(ctx context.Context, msgs []queue.Message) ([]*queue.Job, error)
}

// MentionExtractor resolves @mentions to user ids, satisfied by *mention.Extractor.
type MentionExtractor interface {
	Extract(ctx context.Context, content, authorID string) ([]string, error)
}

// CommentEvent describes a comment that was just stored.
type CommentEvent struct {
	CommentID    string
	PostID       string
	PostTitle    string
	PostAuthorID string
	AuthorID     string
	AuthorName   string
	Content      string
}

// PostUpdateEvent describes an edit of a post followed by other users.
type PostUpdateEvent struct {
	PostID      string
	PostTitle   string
	AuthorID    string
	AuthorName  string
	FollowerIDs []string
}

// Dispatch reports which jobs a dispatcher call produced.
type Dispatch struct {
	Mentioned []string     // recipients of MENTION jobs
	Commented string       // recipient of the COMMENT job, empty if none
	Notified  []string     // recipients of POST_UPDATE or SYSTEM jobs
	Jobs      []*queue.Job // every job handed to the queue, including dropped duplicates
}

// Dispatcher is the send-notifications step run after a business action
// commits. It never rolls the action back: errors only abort notification
// sending and are returned for the caller to log.
type Dispatcher struct {
	producer Enqueuer
	mentions MentionExtractor
	prefs    PreferenceStore
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher wires the producer, the mention extractor and the preference store.
func NewDispatcher(producer Enqueuer, mentions MentionExtractor, prefs PreferenceStore, opts ...DispatcherOption) (*Dispatcher, error) {
	if producer == nil {
		return nil, ErrProducerNil
	}
	if mentions == nil {
		return nil, ErrExtractorNil
	}
	if prefs == nil {
		return nil, ErrStoreNil
	}
	d := &Dispatcher{
		producer: producer,
		mentions: mentions,
		prefs:    prefs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NotifyComment sends MENTION notifications to the users mentioned in the
// comment and a COMMENT notification to the post author. The commenter never
// receives either; a post author who is also mentioned gets the MENTION only.
//
// When the COMMENT job fails after the MENTION batch was accepted, the
// returned Dispatch lists the queued mentions alongside the error.
func (d *Dispatcher) NotifyComment(ctx context.Context, ev CommentEvent) (*Dispatch, error) {
	const op = "notifications.NotifyComment"

	mentioned, err := d.mentions.Extract(ctx, ev.Content, ev.AuthorID)
	if err != nil {
		return nil, apperr.Wrap(apperr.OperationFailed, op, err)
	}

	candidates := slices.Clone(mentioned)
	postAuthor := ev.PostAuthorID
	if postAuthor == ev.AuthorID {
		postAuthor = ""
	}
	if postAuthor != "" && !slices.Contains(candidates, postAuthor) {
		candidates = append(candidates, postAuthor)
	}
	if len(candidates) == 0 {
		return &Dispatch{}, nil
	}

	prefs, err := d.prefs.GetPreferencesBatch(ctx, candidates)
	if err != nil {
		return nil, apperr.New(apperr.OperationFailed, op, err)
	}

	out := &Dispatch{}

	recipients := d.gate(TypeMention, mentioned, prefs)
	if len(recipients) > 0 {
		jobs, err := d.producer.EnqueueBatch(ctx, messages(JobPayload{
			Message:       fmt.Sprintf("%s mentioned you in a comment on: %s", ev.AuthorName, ev.PostTitle),
			Type:          TypeMention,
			PostID:        ev.PostID,
			CommentID:     ev.CommentID,
			TriggeredByID: ev.AuthorID,
		}, recipients))
		if err != nil {
			return nil, apperr.Wrap(apperr.QueueUnavailable, op, err)
		}
		out.Mentioned = recipients
		out.Jobs = append(out.Jobs, jobs...)
	}

	if postAuthor != "" && !slices.Contains(out.Mentioned, postAuthor) {
		if p, ok := prefs[postAuthor]; ok && ShouldSend(TypeComment, &p) {
			job, err := d.producer.Enqueue(ctx, message(JobPayload{
				RecipientID:   postAuthor,
				Message:       fmt.Sprintf("%s commented on your post: %s", ev.AuthorName, ev.PostTitle),
				Type:          TypeComment,
				PostID:        ev.PostID,
				CommentID:     ev.CommentID,
				TriggeredByID: ev.AuthorID,
			}))
			if err != nil {
				// MENTION jobs already accepted stay queued; report them.
				return out, apperr.Wrap(apperr.QueueUnavailable, op, err)
			}
			out.Commented = postAuthor
			out.Jobs = append(out.Jobs, job)
		}
	}

	d.logger.DebugContext(ctx, "comment notifications dispatched",
		slog.String("comment_id", ev.CommentID),
		slog.Int("mentions", len(out.Mentioned)),
		slog.Bool("post_author_notified", out.Commented != ""))

	return out, nil
}

// NotifyPostUpdate sends POST_UPDATE notifications to the followers of a post.
func (d *Dispatcher) NotifyPostUpdate(ctx context.Context, ev PostUpdateEvent) (*Dispatch, error) {
	const op = "notifications.NotifyPostUpdate"

	followers := make([]string, 0, len(ev.FollowerIDs))
	for _, id := range ev.FollowerIDs {
		if id != "" && id != ev.AuthorID && !slices.Contains(followers, id) {
			followers = append(followers, id)
		}
	}

	return d.fanOut(ctx, op, JobPayload{
		Message:       fmt.Sprintf("%s updated the post: %s", ev.AuthorName, ev.PostTitle),
		Type:          TypePostUpdate,
		PostID:        ev.PostID,
		TriggeredByID: ev.AuthorID,
	}, followers)
}

// NotifySystem sends a SYSTEM notification to every listed user.
func (d *Dispatcher) NotifySystem(ctx context.Context, text string, userIDs []string) (*Dispatch, error) {
	const op = "notifications.NotifySystem"

	if text == "" {
		return nil, apperr.New(apperr.ValidationFailed, op, ErrMessageRequired)
	}
	return d.fanOut(ctx, op, JobPayload{Message: text, Type: TypeSystem}, uniqueIDs(userIDs))
}

func (d *Dispatcher) fanOut(ctx context.Context, op string, tmpl JobPayload, userIDs []string) (*Dispatch, error) {
	if len(userIDs) == 0 {
		return &Dispatch{}, nil
	}

	prefs, err := d.prefs.GetPreferencesBatch(ctx, userIDs)
	if err != nil {
		return nil, apperr.New(apperr.OperationFailed, op, err)
	}

	recipients := d.gate(tmpl.Type, userIDs, prefs)
	if len(recipients) == 0 {
		return &Dispatch{}, nil
	}

	jobs, err := d.producer.EnqueueBatch(ctx, messages(tmpl, recipients))
	if err != nil {
		return nil, apperr.Wrap(apperr.QueueUnavailable, op, err)
	}

	d.logger.DebugContext(ctx, "notifications dispatched",
		logger.NotificationType(string(tmpl.Type)),
		logger.Count(len(recipients)))

	return &Dispatch{Notified: recipients, Jobs: jobs}, nil
}

func (d *Dispatcher) gate(t Type, userIDs []string, prefs map[string]Preferences) []string {
	out := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		p, ok := prefs[id]
		if !ok || !ShouldSend(t, &p) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func message(p JobPayload) queue.Message {
	return queue.Message{
		Name:        DeliverJobName,
		Type:        string(p.Type),
		RecipientID: p.RecipientID,
		Payload:     p,
	}
}

func messages(tmpl JobPayload, recipients []string) []queue.Message {
	out := make([]queue.Message, 0, len(recipients))
	for _, id := range recipients {
		out = append(out, message(tmpl.ForRecipient(id)))
	}
	return out
}
