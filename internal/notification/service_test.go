package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fkhayef/notifications/internal/event"
)

// fakeClock is a settable clock for deterministic timestamps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingStore wraps a Store, counting writes and optionally failing them.
type recordingStore struct {
	Store
	mu       sync.Mutex
	inserts  int
	saveAlls int
	saved    int
	deletes  int
	failWith error
}

func (s *recordingStore) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	s.mu.Lock()
	s.inserts++
	err := s.failWith
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.Insert(ctx, n)
}

func (s *recordingStore) SaveAll(ctx context.Context, notifications []*Notification) ([]*Notification, error) {
	s.mu.Lock()
	s.saveAlls++
	s.saved += len(notifications)
	err := s.failWith
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.SaveAll(ctx, notifications)
}

func (s *recordingStore) Delete(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	s.deletes++
	err := s.failWith
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, n)
}

// setupTestService builds a service over an in-memory store with a fake clock.
func setupTestService(t *testing.T) (*Service, *recordingStore, *fakeClock) {
	t.Helper()
	store := &recordingStore{Store: NewMemoryStore()}
	clock := newFakeClock()
	return NewService(store, WithClock(clock.Now)), store, clock
}

// insertTestNotification puts a record straight into the store, bypassing
// the service defaults.
func insertTestNotification(t *testing.T, store Store, n *Notification) *Notification {
	t.Helper()
	created, err := store.Insert(context.Background(), n)
	if err != nil {
		t.Fatalf("failed to insert test notification: %v", err)
	}
	return created
}

func TestCreateNotification(t *testing.T) {
	t.Parallel()

	t.Run("applies creation defaults", func(t *testing.T) {
		t.Parallel()
		svc, _, clock := setupTestService(t)

		n, err := svc.CreateNotification(context.Background(), 100, "Test notification", "TEST_TYPE")
		if err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}

		if n.ID == "" {
			t.Error("ID was not assigned")
		}
		if n.UserID != 100 {
			t.Errorf("UserID: got %d, want 100", n.UserID)
		}
		if n.Message != "Test notification" {
			t.Errorf("Message: got %q, want %q", n.Message, "Test notification")
		}
		if n.Type != "TEST_TYPE" {
			t.Errorf("Type: got %q, want %q", n.Type, "TEST_TYPE")
		}
		if n.IsRead {
			t.Error("IsRead: got true, want false")
		}
		if n.ReadAt != nil {
			t.Errorf("ReadAt: got %v, want nil", n.ReadAt)
		}
		if !n.CreatedAt.Equal(clock.Now()) {
			t.Errorf("CreatedAt: got %v, want %v", n.CreatedAt, clock.Now())
		}
		if n.CreatedAt.Location() != time.UTC {
			t.Errorf("CreatedAt location: got %v, want UTC", n.CreatedAt.Location())
		}
	})

	t.Run("stores createdAt in UTC for a non-UTC clock", func(t *testing.T) {
		t.Parallel()
		tokyo := time.FixedZone("JST", 9*60*60)
		local := time.Date(2025, 1, 2, 9, 0, 0, 0, tokyo)
		svc := NewService(NewMemoryStore(), WithClock(func() time.Time { return local }))

		n, err := svc.CreateNotification(context.Background(), 1, "m", "t")
		if err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
		if n.CreatedAt.Location() != time.UTC || !n.CreatedAt.Equal(local) {
			t.Errorf("CreatedAt: got %v, want %v in UTC", n.CreatedAt, local.UTC())
		}
	})

	t.Run("passes empty input through", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupTestService(t)

		n, err := svc.CreateNotification(context.Background(), 0, "", "")
		if err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
		if n.Message != "" || n.Type != "" || n.UserID != 0 {
			t.Errorf("got %+v, want empty fields stored as given", n)
		}
	})

	t.Run("wraps store failures", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := setupTestService(t)
		storeErr := errors.New("store unavailable")
		store.failWith = storeErr

		_, err := svc.CreateNotification(context.Background(), 100, "m", "t")
		if !errors.Is(err, storeErr) {
			t.Errorf("error: got %v, want wrapping %v", err, storeErr)
		}
	})
}

func TestSendNotification(t *testing.T) {
	t.Parallel()

	t.Run("creates a notification from the event", func(t *testing.T) {
		t.Parallel()
		svc, store, clock := setupTestService(t)

		evt := event.NotificationEvent{
			UserID:    100,
			Message:   "Application submitted successfully",
			Type:      string(NotificationTypeApplicationSubmitted),
			Timestamp: event.Timestamp{Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		}
		if err := svc.SendNotification(context.Background(), evt); err != nil {
			t.Fatalf("SendNotification() error = %v", err)
		}

		if store.inserts != 1 {
			t.Errorf("inserts: got %d, want 1", store.inserts)
		}

		list, err := svc.GetUserNotifications(context.Background(), 100)
		if err != nil {
			t.Fatalf("GetUserNotifications() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("notifications: got %d, want 1", len(list))
		}
		if list[0].Message != evt.Message || list[0].Type != evt.Type {
			t.Errorf("got %+v, want message/type from event", list[0])
		}
		if !list[0].CreatedAt.Equal(clock.Now()) {
			t.Errorf("CreatedAt: got %v, want service clock %v (event timestamp ignored)", list[0].CreatedAt, clock.Now())
		}
	})

	t.Run("redelivery creates a duplicate", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupTestService(t)

		evt := event.NotificationEvent{UserID: 7, Message: "m", Type: "t"}
		for range 2 {
			if err := svc.SendNotification(context.Background(), evt); err != nil {
				t.Fatalf("SendNotification() error = %v", err)
			}
		}

		count, _ := svc.GetUnreadCount(context.Background(), 7)
		if count != 2 {
			t.Errorf("unread count: got %d, want 2", count)
		}
	})
}

func TestGetNotifications(t *testing.T) {
	t.Parallel()

	t.Run("lists newest first and filters by user", func(t *testing.T) {
		t.Parallel()
		svc, _, clock := setupTestService(t)
		ctx := context.Background()

		first, _ := svc.CreateNotification(ctx, 100, "first", "T")
		clock.Advance(time.Minute)
		second, _ := svc.CreateNotification(ctx, 100, "second", "T")
		svc.CreateNotification(ctx, 200, "other user", "T")

		list, err := svc.GetUserNotifications(ctx, 100)
		if err != nil {
			t.Fatalf("GetUserNotifications() error = %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("notifications: got %d, want 2", len(list))
		}
		if list[0].ID != second.ID || list[1].ID != first.ID {
			t.Errorf("order: got [%s %s], want [%s %s]", list[0].ID, list[1].ID, second.ID, first.ID)
		}
	})

	t.Run("unread list returns only unread", func(t *testing.T) {
		t.Parallel()
		svc, store, clock := setupTestService(t)
		ctx := context.Background()

		readAt := clock.Now()
		insertTestNotification(t, store, &Notification{UserID: 100, Message: "Read notification", Type: "READ", IsRead: true, ReadAt: &readAt, CreatedAt: clock.Now()})
		unread := insertTestNotification(t, store, &Notification{UserID: 100, Message: "Unread notification", Type: "UNREAD", CreatedAt: clock.Now()})

		list, err := svc.GetUnreadNotifications(ctx, 100)
		if err != nil {
			t.Fatalf("GetUnreadNotifications() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("unread notifications: got %d, want 1", len(list))
		}
		if list[0].ID != unread.ID || list[0].IsRead {
			t.Errorf("got %+v, want the unread notification", list[0])
		}
	})

	t.Run("unread count matches unread list", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupTestService(t)
		ctx := context.Background()

		for range 3 {
			svc.CreateNotification(ctx, 100, "Unread", "UNREAD")
		}
		n, _ := svc.CreateNotification(ctx, 100, "to read", "T")
		if _, err := svc.MarkAsRead(ctx, n.ID); err != nil {
			t.Fatalf("MarkAsRead() error = %v", err)
		}

		count, err := svc.GetUnreadCount(ctx, 100)
		if err != nil {
			t.Fatalf("GetUnreadCount() error = %v", err)
		}
		unread, _ := svc.GetUnreadNotifications(ctx, 100)
		if count != 3 || count != len(unread) {
			t.Errorf("count: got %d, unread list %d, want 3", count, len(unread))
		}
	})

	t.Run("unknown user has nothing", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupTestService(t)

		list, err := svc.GetUserNotifications(context.Background(), 999)
		if err != nil {
			t.Fatalf("GetUserNotifications() error = %v", err)
		}
		if len(list) != 0 {
			t.Errorf("notifications: got %d, want 0", len(list))
		}
	})
}

func TestMarkAsRead(t *testing.T) {
	t.Parallel()

	t.Run("marks an unread notification", func(t *testing.T) {
		t.Parallel()
		svc, store, clock := setupTestService(t)
		ctx := context.Background()

		n, _ := svc.CreateNotification(ctx, 100, "m", "t")
		clock.Advance(5 * time.Second)

		updated, err := svc.MarkAsRead(ctx, n.ID)
		if err != nil {
			t.Fatalf("MarkAsRead() error = %v", err)
		}
		if !updated.IsRead {
			t.Error("IsRead: got false, want true")
		}
		if updated.ReadAt == nil || !updated.ReadAt.Equal(clock.Now()) {
			t.Errorf("ReadAt: got %v, want %v", updated.ReadAt, clock.Now())
		}
		if store.saveAlls != 1 {
			t.Errorf("saves: got %d, want 1", store.saveAlls)
		}

		stored, _ := store.FindByID(ctx, n.ID)
		if !stored.IsRead || stored.ReadAt == nil {
			t.Errorf("stored: got %+v, want read with ReadAt", stored)
		}
		if !stored.CreatedAt.Equal(n.CreatedAt) {
			t.Errorf("CreatedAt changed: got %v, want %v", stored.CreatedAt, n.CreatedAt)
		}
	})

	t.Run("keeps the first readAt on repeat", func(t *testing.T) {
		t.Parallel()
		svc, store, clock := setupTestService(t)
		ctx := context.Background()

		n, _ := svc.CreateNotification(ctx, 100, "m", "t")
		first, err := svc.MarkAsRead(ctx, n.ID)
		if err != nil {
			t.Fatalf("MarkAsRead() error = %v", err)
		}
		clock.Advance(time.Hour)

		again, err := svc.MarkAsRead(ctx, n.ID)
		if err != nil {
			t.Fatalf("second MarkAsRead() error = %v", err)
		}
		if !again.IsRead {
			t.Error("IsRead: got false, want true")
		}
		if !again.ReadAt.Equal(*first.ReadAt) {
			t.Errorf("ReadAt: got %v, want original %v", again.ReadAt, first.ReadAt)
		}
		if store.saveAlls != 1 {
			t.Errorf("saves: got %d, want 1", store.saveAlls)
		}
	})

	t.Run("unknown id is not found and writes nothing", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := setupTestService(t)

		_, err := svc.MarkAsRead(context.Background(), "invalid123")
		if !errors.Is(err, ErrNotificationNotFound) {
			t.Errorf("error: got %v, want %v", err, ErrNotificationNotFound)
		}
		if store.saveAlls != 0 {
			t.Errorf("saves: got %d, want 0", store.saveAlls)
		}
	})
}

func TestMarkAllAsRead(t *testing.T) {
	t.Parallel()

	t.Run("marks every unread with one instant in one save", func(t *testing.T) {
		t.Parallel()
		svc, store, clock := setupTestService(t)
		ctx := context.Background()

		for range 3 {
			svc.CreateNotification(ctx, 100, "Unread", "UNREAD")
			clock.Advance(time.Second)
		}
		other, _ := svc.CreateNotification(ctx, 200, "other", "T")
		if count, _ := svc.GetUnreadCount(ctx, 100); count != 3 {
			t.Fatalf("unread count before: got %d, want 3", count)
		}

		clock.Advance(time.Minute)
		if err := svc.MarkAllAsRead(ctx, 100); err != nil {
			t.Fatalf("MarkAllAsRead() error = %v", err)
		}

		if count, _ := svc.GetUnreadCount(ctx, 100); count != 0 {
			t.Errorf("unread count after: got %d, want 0", count)
		}
		if store.saveAlls != 1 || store.saved != 3 {
			t.Errorf("saves: got %d calls / %d records, want 1 / 3", store.saveAlls, store.saved)
		}

		list, _ := svc.GetUserNotifications(ctx, 100)
		for _, n := range list {
			if !n.IsRead || n.ReadAt == nil || !n.ReadAt.Equal(clock.Now()) {
				t.Errorf("notification %s: got read=%v readAt=%v, want read at %v", n.ID, n.IsRead, n.ReadAt, clock.Now())
			}
		}

		stillUnread, _ := store.FindByID(ctx, other.ID)
		if stillUnread.IsRead {
			t.Error("another user's notification was marked read")
		}
	})

	t.Run("no unread is a no-op", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := setupTestService(t)

		if err := svc.MarkAllAsRead(context.Background(), 100); err != nil {
			t.Fatalf("MarkAllAsRead() error = %v", err)
		}
		if store.saveAlls != 0 {
			t.Errorf("saves: got %d, want 0", store.saveAlls)
		}
	})

	t.Run("already read keep their readAt", func(t *testing.T) {
		t.Parallel()
		svc, _, clock := setupTestService(t)
		ctx := context.Background()

		read, _ := svc.CreateNotification(ctx, 100, "read early", "T")
		first, _ := svc.MarkAsRead(ctx, read.ID)
		svc.CreateNotification(ctx, 100, "unread", "T")

		clock.Advance(time.Hour)
		if err := svc.MarkAllAsRead(ctx, 100); err != nil {
			t.Fatalf("MarkAllAsRead() error = %v", err)
		}

		list, _ := svc.GetUserNotifications(ctx, 100)
		for _, n := range list {
			if n.ID == read.ID && !n.ReadAt.Equal(*first.ReadAt) {
				t.Errorf("ReadAt: got %v, want original %v", n.ReadAt, first.ReadAt)
			}
		}
	})
}

func TestDeleteNotification(t *testing.T) {
	t.Parallel()

	t.Run("deletes an existing notification", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := setupTestService(t)
		ctx := context.Background()

		n, _ := svc.CreateNotification(ctx, 100, "m", "t")
		if err := svc.DeleteNotification(ctx, n.ID); err != nil {
			t.Fatalf("DeleteNotification() error = %v", err)
		}

		if got, _ := store.FindByID(ctx, n.ID); got != nil {
			t.Errorf("FindByID: got %+v, want nil", got)
		}
	})

	t.Run("unknown id is not found and deletes nothing", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := setupTestService(t)

		err := svc.DeleteNotification(context.Background(), "invalid")
		if !errors.Is(err, ErrNotificationNotFound) {
			t.Errorf("error: got %v, want %v", err, ErrNotificationNotFound)
		}
		if store.deletes != 0 {
			t.Errorf("deletes: got %d, want 0", store.deletes)
		}
	})
}

func TestDeleteAllUserNotifications(t *testing.T) {
	t.Parallel()

	t.Run("removes only that user's notifications", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupTestService(t)
		ctx := context.Background()

		svc.CreateNotification(ctx, 100, "a", "T")
		svc.CreateNotification(ctx, 100, "b", "T")
		svc.CreateNotification(ctx, 200, "c", "T")

		if err := svc.DeleteAllUserNotifications(ctx, 100); err != nil {
			t.Fatalf("DeleteAllUserNotifications() error = %v", err)
		}

		if list, _ := svc.GetUserNotifications(ctx, 100); len(list) != 0 {
			t.Errorf("user 100: got %d notifications, want 0", len(list))
		}
		if list, _ := svc.GetUserNotifications(ctx, 200); len(list) != 1 {
			t.Errorf("user 200: got %d notifications, want 1", len(list))
		}
	})

	t.Run("user without notifications succeeds", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := setupTestService(t)

		if err := svc.DeleteAllUserNotifications(context.Background(), 404); err != nil {
			t.Errorf("DeleteAllUserNotifications() error = %v", err)
		}
	})
}
