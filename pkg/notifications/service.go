package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/campusnotify/pkg/apperr"
	"github.com/dmitrymomot/campusnotify/pkg/logger"
	"github.com/dmitrymomot/campusnotify/pkg/validator"
)

// MaxBatchIDs bounds the ids accepted by one MarkManyRead call.
const MaxBatchIDs = 100

const (
	defaultPageSize      = 20
	defaultRetentionDays = 30
	defaultAdminRole     = "admin"
)

// Service is the notification access layer. Every method reads the requester
// from the context and runs fetch, authorize, mutate in that order.
type Service struct {
	store         Store
	pageSize      int
	retentionDays int
	adminRole     string
	now           func() time.Time
	logger        *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPageSize sets the fixed page size and the upper bound for list limits.
func WithPageSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithRetentionDays sets the default for CleanupOld.
func WithRetentionDays(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

// WithAdminRole sets the role allowed to act on any user's notifications.
func WithAdminRole(role string) ServiceOption {
	return func(s *Service) {
		if role != "" {
			s.adminRole = role
		}
	}
}

// WithServiceClock overrides the time source.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithServiceConfig applies the settings of cfg.
func WithServiceConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		WithPageSize(cfg.PageSize)(s)
		WithRetentionDays(cfg.RetentionDays)(s)
		WithAdminRole(cfg.AdminRole)(s)
	}
}

// NewService creates the access layer on top of store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	s := &Service{
		store:         store,
		pageSize:      defaultPageSize,
		retentionDays: defaultRetentionDays,
		adminRole:     defaultAdminRole,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AdminRole returns the role treated as administrator.
func (s *Service) AdminRole() string {
	return s.adminRole
}

// ListQuery selects a page of a user's notifications. Page is 1-based; Limit
// is clamped to [1, page size] and defaults to the page size.
type ListQuery struct {
	Page       int
	Limit      int
	OnlyUnread bool
}

// Page is one page of notifications, newest first.
type Page struct {
	Items    []Notification `json:"items"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int            `json:"total"`
	HasNext  bool           `json:"has_next"`
}

// List returns a page of userID's notifications.
func (s *Service) List(ctx context.Context, userID string, q ListQuery) (*Page, error) {
	const op = "notifications.List"

	r, err := s.authorizeUser(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	page := max(q.Page, 1)
	limit := q.Limit
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}

	total, err := s.store.Count(ctx, userID, q.OnlyUnread)
	if err != nil {
		return nil, apperr.New(apperr.OperationFailed, op, err)
	}

	offset := (page - 1) * limit
	items, err := s.store.List(ctx, userID, ListOptions{Offset: offset, Limit: limit, OnlyUnread: q.OnlyUnread})
	if err != nil {
		return nil, apperr.New(apperr.OperationFailed, op, err)
	}

	s.logger.DebugContext(ctx, "notifications listed",
		logger.Requester(r.UserID),
		logger.UserID(userID),
		logger.Count(len(items)))

	return &Page{
		Items:    items,
		Page:     page,
		PageSize: limit,
		Total:    total,
		HasNext:  offset+len(items) < total,
	}, nil
}

// UnreadCount returns how many of userID's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	const op = "notifications.UnreadCount"

	if _, err := s.authorizeUser(ctx, op, userID); err != nil {
		return 0, err
	}
	n, err := s.store.Count(ctx, userID, true)
	if err != nil {
		return 0, apperr.New(apperr.OperationFailed, op, err)
	}
	return n, nil
}

// MarkRead marks one notification read and returns its new state.
func (s *Service) MarkRead(ctx context.Context, id string) (*Notification, error) {
	const op = "notifications.MarkRead"

	r, err := s.requester(ctx, op)
	if err != nil {
		return nil, err
	}

	n, err := s.fetch(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(op, r, n.UserID); err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}

	at := s.now()
	if _, err := s.store.MarkRead(ctx, at, id); err != nil {
		return nil, apperr.New(apperr.OperationFailed, op, err)
	}
	n.MarkAsRead(at)
	return n, nil
}

// MarkAllRead marks every unread notification of userID read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const op = "notifications.MarkAllRead"

	r, err := s.authorizeUser(ctx, op, userID)
	if err != nil {
		return 0, err
	}
	changed, err := s.store.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, apperr.New(apperr.OperationFailed, op, err)
	}

	s.logger.InfoContext(ctx, "notifications marked read",
		logger.Requester(r.UserID),
		logger.UserID(userID),
		logger.Count(int(changed)))
	return changed, nil
}

// MarkManyRead marks the given notifications read. The call is all or
// nothing: an unknown id or one the requester may not touch rejects it before
// anything is written.
func (s *Service) MarkManyRead(ctx context.Context, ids []string) (int64, error) {
	const op = "notifications.MarkManyRead"

	r, err := s.requester(ctx, op)
	if err != nil {
		return 0, err
	}

	ids = uniqueIDs(ids)
	if err := ValidateIDs(ids); err != nil {
		return 0, apperr.New(apperr.ValidationFailed, op, err)
	}

	found, err := s.store.GetMany(ctx, ids)
	if err != nil {
		return 0, apperr.New(apperr.OperationFailed, op, err)
	}
	if len(found) != len(ids) {
		return 0, apperr.New(apperr.NotFound, op,
			fmt.Errorf("%w: %v", ErrNotificationNotFound, missingIDs(ids, found)))
	}
	for _, n := range found {
		if err := s.authorize(op, r, n.UserID); err != nil {
			return 0, err
		}
	}

	changed, err := s.store.MarkRead(ctx, s.now(), ids...)
	if err != nil {
		return 0, apperr.New(apperr.OperationFailed, op, err)
	}
	return changed, nil
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "notifications.Delete"

	r, err := s.requester(ctx, op)
	if err != nil {
		return err
	}

	n, err := s.fetch(ctx, op, id)
	if err != nil {
		return err
	}
	if err := s.authorize(op, r, n.UserID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return apperr.New(apperr.NotFound, op, err)
		}
		return apperr.New(apperr.OperationFailed, op, err)
	}
	return nil
}

// CleanupOld deletes read notifications created more than daysToKeep days
// ago. Zero uses the configured retention. Admin only.
func (s *Service) CleanupOld(ctx context.Context, daysToKeep int) (int64, error) {
	const op = "notifications.CleanupOld"

	r, err := s.requester(ctx, op)
	if err != nil {
		return 0, err
	}
	if !s.isAdmin(r) {
		return 0, apperr.New(apperr.AuthorizationDenied, op, ErrAdminRequired)
	}

	if err := ValidateRetention(daysToKeep); err != nil {
		return 0, apperr.New(apperr.ValidationFailed, op, err)
	}
	if daysToKeep == 0 {
		daysToKeep = s.retentionDays
	}

	cutoff := s.now().Add(-time.Duration(daysToKeep) * 24 * time.Hour)
	deleted, err := s.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, apperr.New(apperr.OperationFailed, op, err)
	}

	s.logger.InfoContext(ctx, "old notifications cleaned up",
		logger.Requester(r.UserID),
		slog.Int("days_to_keep", daysToKeep),
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

func (s *Service) requester(ctx context.Context, op string) (Requester, error) {
	r, ok := RequesterFromContext(ctx)
	if !ok {
		return Requester{}, apperr.New(apperr.AuthenticationRequired, op, ErrRequesterMissing)
	}
	return r, nil
}

func (s *Service) fetch(ctx context.Context, op, id string) (*Notification, error) {
	n, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotificationNotFound) {
		return nil, apperr.New(apperr.NotFound, op, err)
	}
	if err != nil {
		return nil, apperr.New(apperr.OperationFailed, op, err)
	}
	return n, nil
}

func (s *Service) authorize(op string, r Requester, ownerID string) error {
	if r.UserID == ownerID || s.isAdmin(r) {
		return nil
	}
	return apperr.New(apperr.AuthorizationDenied, op, ErrNotOwner)
}

func (s *Service) authorizeUser(ctx context.Context, op, userID string) (Requester, error) {
	r, err := s.requester(ctx, op)
	if err != nil {
		return Requester{}, err
	}
	if err := s.authorize(op, r, userID); err != nil {
		return Requester{}, err
	}
	return r, nil
}

func (s *Service) isAdmin(r Requester) bool {
	return r.Role != "" && r.Role == s.adminRole
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []string, found []Notification) []string {
	have := make(map[string]struct{}, len(found))
	for _, n := range found {
		have[n.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// ValidateIDs checks a batch of notification ids: at least one and at most
// MaxBatchIDs.
func ValidateIDs(ids []string) error {
	return validator.Apply(
		validator.RequiredSlice("ids", ids).Because(ErrNotificationIDs),
		validator.MaxLenSlice("ids", ids, MaxBatchIDs).Because(ErrTooManyIDs),
	)
}

// ValidateRetention checks a retention period in days. Zero means the
// configured default.
func ValidateRetention(daysToKeep int) error {
	return validator.Apply(
		validator.MinNum("days_to_keep", daysToKeep, 0).Because(ErrInvalidRetention),
	)
}
