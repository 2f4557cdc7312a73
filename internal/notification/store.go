package notification

import "context"

// Store is the persistence contract the service depends on. Implementations
// assign IDs on Insert and return nil, nil from FindByID when no record
// exists. List results are ordered by CreatedAt, newest first.
//
// No locking or versioning is expected: SaveAll is a plain bulk upsert and
// may apply only part of a batch if it fails midway.
type Store interface {
	Insert(ctx context.Context, n *Notification) (*Notification, error)
	FindByID(ctx context.Context, id string) (*Notification, error)
	FindByUser(ctx context.Context, userID int64) ([]*Notification, error)
	FindByUserUnread(ctx context.Context, userID int64) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	SaveAll(ctx context.Context, notifications []*Notification) ([]*Notification, error)
	Delete(ctx context.Context, n *Notification) error
	DeleteByUser(ctx context.Context, userID int64) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MongoRepository)(nil)
	_ Store = (*MemoryStore)(nil)
)
