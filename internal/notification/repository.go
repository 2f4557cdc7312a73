package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const selectColumns = `id, user_id, message, type, is_read, created_at, read_at`

// Repository handles notification data persistence in a SQL database.
// Queries are written with '?' placeholders and rebound for the driver,
// so the same repository serves Postgres and SQLite.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert assigns an ID and writes a new notification row
func (r *Repository) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	stored := n.clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = stored.CreatedAt.UTC()

	query := r.db.Rebind(`
		INSERT INTO notifications (id, user_id, message, type, is_read, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		stored.ID,
		stored.UserID,
		stored.Message,
		stored.Type,
		stored.IsRead,
		stored.CreatedAt,
		utcOrNil(stored.ReadAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return stored, nil
}

// FindByID retrieves a notification by its ID
func (r *Repository) FindByID(ctx context.Context, id string) (*Notification, error) {
	query := r.db.Rebind(`SELECT ` + selectColumns + ` FROM notifications WHERE id = ?`)

	notification := &Notification{}
	if err := r.db.GetContext(ctx, notification, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return normalize(notification), nil
}

// FindByUser retrieves all notifications for a user, newest first
func (r *Repository) FindByUser(ctx context.Context, userID int64) ([]*Notification, error) {
	query := r.db.Rebind(`
		SELECT ` + selectColumns + `
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`)
	return r.list(ctx, query, userID)
}

// FindByUserUnread retrieves the unread notifications for a user, newest first
func (r *Repository) FindByUserUnread(ctx context.Context, userID int64) ([]*Notification, error) {
	query := r.db.Rebind(`
		SELECT ` + selectColumns + `
		FROM notifications
		WHERE user_id = ? AND is_read = ?
		ORDER BY created_at DESC, id DESC
	`)
	return r.list(ctx, query, userID, false)
}

// CountUnread returns the count of unread notifications for a user
func (r *Repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`)
	if err := r.db.GetContext(ctx, &count, query, userID, false); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// SaveAll upserts each notification in turn. There is no wrapping
// transaction: rows written before a failure stay written.
// Only the read state is updated on conflict; the remaining columns are
// immutable once inserted.
func (r *Repository) SaveAll(ctx context.Context, notifications []*Notification) ([]*Notification, error) {
	query := r.db.Rebind(`
		INSERT INTO notifications (id, user_id, message, type, is_read, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET is_read = EXCLUDED.is_read, read_at = EXCLUDED.read_at
	`)

	saved := make([]*Notification, 0, len(notifications))
	for _, n := range notifications {
		stored := n.clone()
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		_, err := r.db.ExecContext(ctx, query,
			stored.ID,
			stored.UserID,
			stored.Message,
			stored.Type,
			stored.IsRead,
			stored.CreatedAt.UTC(),
			utcOrNil(stored.ReadAt),
		)
		if err != nil {
			return saved, fmt.Errorf("failed to save notification %s: %w", stored.ID, err)
		}
		saved = append(saved, stored)
	}

	return saved, nil
}

// Delete removes a single notification
func (r *Repository) Delete(ctx context.Context, n *Notification) error {
	query := r.db.Rebind(`DELETE FROM notifications WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, n.ID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// DeleteByUser removes every notification owned by a user
func (r *Repository) DeleteByUser(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`DELETE FROM notifications WHERE user_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user notifications: %w", err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Notification, error) {
	notifications := []*Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	for _, n := range notifications {
		normalize(n)
	}
	return notifications, nil
}

// normalize puts scanned timestamps back in UTC; drivers return them in
// the session or local zone.
func normalize(n *Notification) *Notification {
	n.CreatedAt = n.CreatedAt.UTC()
	if n.ReadAt != nil {
		t := n.ReadAt.UTC()
		n.ReadAt = &t
	}
	return n
}

func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
