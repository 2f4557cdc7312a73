package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding notifications
const CollectionName = "notifications"

// mongoNotification is the BSON document shape of a notification
type mongoNotification struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    int64              `bson:"userId"`
	Message   string             `bson:"message"`
	Type      string             `bson:"type"`
	IsRead    bool               `bson:"isRead"`
	CreatedAt time.Time          `bson:"createdAt"`
	ReadAt    *time.Time         `bson:"readAt,omitempty"`
}

func (d *mongoNotification) toModel() *Notification {
	n := &Notification{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Message:   d.Message,
		Type:      d.Type,
		IsRead:    d.IsRead,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.ReadAt != nil {
		t := d.ReadAt.UTC()
		n.ReadAt = &t
	}
	return n
}

func toDocument(n *Notification, id primitive.ObjectID) *mongoNotification {
	return &mongoNotification{
		ID:        id,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC(),
		ReadAt:    n.ReadAt,
	}
}

// MongoRepository stores notifications in a MongoDB collection. IDs are
// ObjectIDs rendered as hex strings.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a repository backed by db.notifications
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the indexes used by the user and unread queries
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// Insert assigns a new ObjectID and stores the notification
func (r *MongoRepository) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	doc := toDocument(n, primitive.NewObjectID())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return doc.toModel(), nil
}

// FindByID retrieves a notification by its ID. IDs that are not valid
// ObjectIDs cannot match any document and are reported as absent.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (*Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc mongoNotification
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return doc.toModel(), nil
}

// FindByUser retrieves all notifications for a user, newest first
func (r *MongoRepository) FindByUser(ctx context.Context, userID int64) ([]*Notification, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// FindByUserUnread retrieves the unread notifications for a user, newest first
func (r *MongoRepository) FindByUserUnread(ctx context.Context, userID int64) ([]*Notification, error) {
	return r.find(ctx, bson.M{"userId": userID, "isRead": false})
}

// CountUnread returns the count of unread notifications for a user
func (r *MongoRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int(count), nil
}

// SaveAll replaces (or inserts) every notification with one unordered bulk
// write. MongoDB applies each replacement independently, so a failure can
// leave part of the batch written.
func (r *MongoRepository) SaveAll(ctx context.Context, notifications []*Notification) ([]*Notification, error) {
	if len(notifications) == 0 {
		return []*Notification{}, nil
	}

	writes := make([]mongo.WriteModel, 0, len(notifications))
	saved := make([]*Notification, 0, len(notifications))
	for _, n := range notifications {
		oid := primitive.NewObjectID()
		if n.ID != "" {
			var err error
			if oid, err = primitive.ObjectIDFromHex(n.ID); err != nil {
				return nil, fmt.Errorf("invalid notification id %q: %w", n.ID, err)
			}
		}
		doc := toDocument(n, oid)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetReplacement(doc).
			SetUpsert(true))
		saved = append(saved, doc.toModel())
	}

	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return nil, fmt.Errorf("failed to save notifications: %w", err)
	}
	return saved, nil
}

// Delete removes a single notification
func (r *MongoRepository) Delete(ctx context.Context, n *Notification) error {
	oid, err := primitive.ObjectIDFromHex(n.ID)
	if err != nil {
		return nil
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// DeleteByUser removes every notification owned by a user
func (r *MongoRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete user notifications: %w", err)
	}
	return nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []*Notification{}
	for cursor.Next(ctx) {
		var doc mongoNotification
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}
