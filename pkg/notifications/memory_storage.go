package notifications

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store and PreferenceStore for development and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[string]Notification // id -> notification
	prefs         map[string]Preferences  // user id -> preferences
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[string]Notification),
		prefs:         make(map[string]Preferences),
	}
}

func (s *MemoryStore) Create(_ context.Context, n Notification) error {
	if n.ID == "" {
		return errors.New("notifications: notification id is required")
	}
	if n.UserID == "" {
		return ErrRecipientRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notifications[n.ID]; exists {
		return ErrDuplicateID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	return &n, nil
}

func (s *MemoryStore) GetMany(_ context.Context, ids []string) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if n, ok := s.notifications[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	filtered := make([]Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID || (opts.OnlyUnread && n.IsRead) {
			continue
		}
		filtered = append(filtered, n)
	}
	s.mu.RUnlock()

	slices.SortFunc(filtered, compareNewestFirst)

	start := max(opts.Offset, 0)
	if start >= len(filtered) {
		return []Notification{}, nil
	}
	end := len(filtered)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return filtered[start:end], nil
}

func (s *MemoryStore) Count(_ context.Context, userID string, onlyUnread bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && (!onlyUnread || !n.IsRead) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, at time.Time, ids ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for _, id := range ids {
		n, ok := s.notifications[id]
		if !ok || n.IsRead {
			continue
		}
		n.MarkAsRead(at)
		s.notifications[id] = n
		changed++
	}
	return changed, nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, n := range s.notifications {
		if n.UserID != userID || n.IsRead {
			continue
		}
		n.MarkAsRead(at)
		s.notifications[id] = n
		changed++
	}
	return changed, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok {
		return ErrNotificationNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *MemoryStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, n := range s.notifications {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			delete(s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) GetPreferences(_ context.Context, userID string) (*Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return nil, ErrPreferencesNotFound
	}
	return &p, nil
}

func (s *MemoryStore) GetPreferencesBatch(_ context.Context, userIDs []string) (map[string]Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Preferences, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.prefs[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *MemoryStore) SavePreferences(_ context.Context, p Preferences) error {
	if p.UserID == "" {
		return ErrRecipientRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	s.prefs[p.UserID] = p
	return nil
}

func (s *MemoryStore) DeletePreferences(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.prefs, userID)
	return nil
}

// compareNewestFirst orders by creation time descending, id descending on ties.
func compareNewestFirst(a, b Notification) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}
