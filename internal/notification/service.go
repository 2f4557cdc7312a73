package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/notifications/internal/event"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Clock returns the current time. The service stores whatever it returns
// in UTC.
type Clock func() time.Time

// Option configures a Service
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.now = clock
	}
}

// Service handles notification business logic. It is the only writer of
// the read-state rules and keeps no state of its own between calls.
type Service struct {
	store Store
	now   Clock
}

// NewService creates a new notification service with its store injected
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNotification stores a new unread notification for a user.
// Inputs are not validated; empty strings are stored as given.
func (s *Service) CreateNotification(ctx context.Context, userID int64, message, notificationType string) (*Notification, error) {
	n := &Notification{
		UserID:    userID,
		Message:   message,
		Type:      notificationType,
		IsRead:    false,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.store.Insert(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("create notification for user %d: %w", userID, err)
	}
	return created, nil
}

// SendNotification turns an upstream event into a notification. The event
// timestamp is informational: CreatedAt is always the service's own clock.
// Redelivered events produce duplicate notifications.
func (s *Service) SendNotification(ctx context.Context, evt event.NotificationEvent) error {
	_, err := s.CreateNotification(ctx, evt.UserID, evt.Message, evt.Type)
	return err
}

// GetUserNotifications returns every notification for a user, newest first
func (s *Service) GetUserNotifications(ctx context.Context, userID int64) ([]*Notification, error) {
	notifications, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

// GetUnreadNotifications returns the unread notifications for a user, newest first
func (s *Service) GetUnreadNotifications(ctx context.Context, userID int64) ([]*Notification, error) {
	notifications, err := s.store.FindByUserUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

// GetUnreadCount returns how many unread notifications a user has
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications for user %d: %w", userID, err)
	}
	return count, nil
}

// MarkAsRead marks a notification as read. Marking an already read
// notification succeeds without a write and keeps the original ReadAt.
func (s *Service) MarkAsRead(ctx context.Context, id string) (*Notification, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, err)
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}

	if !n.markRead(s.now()) {
		return n, nil
	}

	saved, err := s.store.SaveAll(ctx, []*Notification{n})
	if err != nil {
		return nil, fmt.Errorf("mark notification %s as read: %w", id, err)
	}
	return saved[0], nil
}

// MarkAllAsRead marks every unread notification of a user as read, all
// with the same ReadAt, in a single bulk save. A user with nothing unread
// is a no-op.
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	unread, err := s.store.FindByUserUnread(ctx, userID)
	if err != nil {
		return fmt.Errorf("list unread notifications for user %d: %w", userID, err)
	}
	if len(unread) == 0 {
		return nil
	}

	now := s.now()
	for _, n := range unread {
		n.markRead(now)
	}

	if _, err := s.store.SaveAll(ctx, unread); err != nil {
		return fmt.Errorf("mark all notifications as read for user %d: %w", userID, err)
	}
	return nil
}

// DeleteNotification removes a single notification
func (s *Service) DeleteNotification(ctx context.Context, id string) error {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get notification %s: %w", id, err)
	}
	if n == nil {
		return ErrNotificationNotFound
	}

	if err := s.store.Delete(ctx, n); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

// DeleteAllUserNotifications removes every notification owned by a user
func (s *Service) DeleteAllUserNotifications(ctx context.Context, userID int64) error {
	if err := s.store.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete notifications for user %d: %w", userID, err)
	}
	return nil
}
