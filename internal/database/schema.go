package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is valid for both Postgres and SQLite. Timestamps are written in
// UTC by the repository.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		message    TEXT NOT NULL,
		type       TEXT NOT NULL,
		is_read    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		read_at    TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id, is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at)`,
}

// Migrate creates the notifications table and its indexes if missing
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
