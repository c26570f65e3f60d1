package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	notificationsCollection = "notifications"
	preferencesCollection   = "notification_preferences"
)

// MongoStore is a Store and PreferenceStore backed by MongoDB.
type MongoStore struct {
	notifications *mongo.Collection
	prefs         *mongo.Collection
}

// NewMongoStore creates a store using collections of db.
func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	if db == nil {
		return nil, ErrStoreNil
	}
	return &MongoStore{
		notifications: db.Collection(notificationsCollection),
		prefs:         db.Collection(preferencesCollection),
	}, nil
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}}},
		{Keys: bson.D{{Key: "is_read", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.notifications.InsertOne(ctx, n)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	err := s.notifications.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *MongoStore) GetMany(ctx context.Context, ids []string) ([]Notification, error) {
	if len(ids) == 0 {
		return []Notification{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (s *MongoStore) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(max(opts.Offset, 0)))
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	return s.find(ctx, userFilter(userID, opts.OnlyUnread), find)
}

func (s *MongoStore) Count(ctx context.Context, userID string, onlyUnread bool) (int, error) {
	n, err := s.notifications.CountDocuments(ctx, userFilter(userID, onlyUnread))
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) MarkRead(ctx context.Context, at time.Time, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.notifications.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "is_read": false},
		readUpdate(at))
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := s.notifications.UpdateMany(ctx, userFilter(userID, true), readUpdate(at))
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.notifications.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *MongoStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.notifications.DeleteMany(ctx, bson.M{"is_read": true, "created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	var p Preferences
	err := s.prefs.FindOne(ctx, bson.M{"_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) GetPreferencesBatch(ctx context.Context, userIDs []string) (map[string]Preferences, error) {
	out := make(map[string]Preferences, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	cur, err := s.prefs.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	var list []Preferences
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	for _, p := range list {
		out[p.UserID] = p
	}
	return out, nil
}

func (s *MongoStore) SavePreferences(ctx context.Context, p Preferences) error {
	if p.UserID == "" {
		return ErrRecipientRequired
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.prefs.ReplaceOne(ctx, bson.M{"_id": p.UserID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *MongoStore) DeletePreferences(ctx context.Context, userID string) error {
	if _, err := s.prefs.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]Notification, error) {
	cur, err := s.notifications.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	out := make([]Notification, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStoreRead, err)
	}
	return out, nil
}

func userFilter(userID string, onlyUnread bool) bson.M {
	f := bson.M{"user_id": userID}
	if onlyUnread {
		f["is_read"] = false
	}
	return f
}

func readUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{"is_read": true, "read_at": at}}
}
