package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/campusnotify/pkg/pg"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is a Store and PreferenceStore backed by PostgreSQL. The
// schema is created by Migrations.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a store on top of a pool.
func NewPostgresStore(db DB) (*PostgresStore, error) {
	if db == nil {
		return nil, ErrStoreNil
	}
	return &PostgresStore{db: db}, nil
}

const notificationColumns = `id, user_id, message, type, is_read, read_at, created_at,
	COALESCE(post_id, ''), COALESCE(comment_id, ''), COALESCE(triggered_by_id, '')`

func (s *PostgresStore) Create(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, message, type, is_read, read_at, created_at, post_id, comment_id, triggered_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''))`,
		n.ID, n.UserID, n.Message, string(n.Type), n.IsRead, n.ReadAt, n.CreatedAt,
		n.PostID, n.CommentID, n.TriggeredByID)
	if pg.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Notification, error) {
	row := s.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if pg.IsNotFoundError(err) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *PostgresStore) GetMany(ctx context.Context, ids []string) ([]Notification, error) {
	if len(ids) == 0 {
		return []Notification{}, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}
	return collectNotifications(rows)
}

func (s *PostgresStore) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	var limit *int
	if opts.Limit > 0 {
		limit = &opts.Limit
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		userID, opts.OnlyUnread, limit, max(opts.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return collectNotifications(rows)
}

func (s *PostgresStore) Count(ctx context.Context, userID string, onlyUnread bool) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND (NOT $2 OR NOT is_read)`,
		userID, onlyUnread).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, at time.Time, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE id = ANY($2) AND NOT is_read`,
		at, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE user_id = $2 AND NOT is_read`,
		at, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE is_read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

const preferenceColumns = `user_id, enabled, allow_comments, allow_mentions, allow_project_updates, allow_system, updated_at`

func (s *PostgresStore) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	row := s.db.QueryRow(ctx, `SELECT `+preferenceColumns+` FROM notification_preferences WHERE user_id = $1`, userID)
	p, err := scanPreferences(row)
	if pg.IsNotFoundError(err) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) GetPreferencesBatch(ctx context.Context, userIDs []string) (map[string]Preferences, error) {
	out := make(map[string]Preferences, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+preferenceColumns+` FROM notification_preferences WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPreferences(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preferences: %w", err)
		}
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SavePreferences(ctx context.Context, p Preferences) error {
	if p.UserID == "" {
		return ErrRecipientRequired
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notification_preferences (`+preferenceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			allow_comments = EXCLUDED.allow_comments,
			allow_mentions = EXCLUDED.allow_mentions,
			allow_project_updates = EXCLUDED.allow_project_updates,
			allow_system = EXCLUDED.allow_system,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Enabled, p.AllowComments, p.AllowMentions, p.AllowProjectUpdates, p.AllowSystem, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePreferences(ctx context.Context, userID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM notification_preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var (
		n   Notification
		typ string
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &typ, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		&n.PostID, &n.CommentID, &n.TriggeredByID)
	n.Type = Type(typ)
	return n, err
}

func scanPreferences(row pgx.Row) (Preferences, error) {
	var p Preferences
	err := row.Scan(&p.UserID, &p.Enabled, &p.AllowComments, &p.AllowMentions,
		&p.AllowProjectUpdates, &p.AllowSystem, &p.UpdatedAt)
	return p, err
}

func collectNotifications(rows pgx.Rows) ([]Notification, error) {
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreRead, err)
	}
	return out, nil
}
