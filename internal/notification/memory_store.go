package notification

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps notifications in process memory. It hands out copies,
// so changes only become visible through SaveAll.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Notification
	seq     map[string]uint64 // insertion order, breaks CreatedAt ties
	next    uint64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Notification),
		seq:     make(map[string]uint64),
	}
}

// Insert assigns an ID and stores a copy of the notification
func (s *MemoryStore) Insert(_ context.Context, n *Notification) (*Notification, error) {
	stored := n.clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = stored.CreatedAt.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(stored)
	return stored.clone(), nil
}

// FindByID retrieves a notification by its ID, nil if absent
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return n.clone(), nil
}

// FindByUser retrieves all notifications for a user, newest first
func (s *MemoryStore) FindByUser(_ context.Context, userID int64) ([]*Notification, error) {
	return s.filter(func(n *Notification) bool { return n.UserID == userID }), nil
}

// FindByUserUnread retrieves the unread notifications for a user, newest first
func (s *MemoryStore) FindByUserUnread(_ context.Context, userID int64) ([]*Notification, error) {
	return s.filter(func(n *Notification) bool { return n.UserID == userID && !n.IsRead }), nil
}

// CountUnread returns the count of unread notifications for a user
func (s *MemoryStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	unread, _ := s.FindByUserUnread(ctx, userID)
	return len(unread), nil
}

// SaveAll writes the read state of existing notifications and stores new ones
func (s *MemoryStore) SaveAll(_ context.Context, notifications []*Notification) ([]*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]*Notification, 0, len(notifications))
	for _, n := range notifications {
		stored := n.clone()
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		if existing, ok := s.records[stored.ID]; ok {
			existing.IsRead = stored.IsRead
			existing.ReadAt = stored.ReadAt
			saved = append(saved, existing.clone())
			continue
		}
		s.put(stored)
		saved = append(saved, stored.clone())
	}
	return saved, nil
}

// Delete removes a single notification
func (s *MemoryStore) Delete(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, n.ID)
	delete(s.seq, n.ID)
	return nil
}

// DeleteByUser removes every notification owned by a user
func (s *MemoryStore) DeleteByUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.records {
		if n.UserID == userID {
			delete(s.records, id)
			delete(s.seq, id)
		}
	}
	return nil
}

// put must be called with mu held.
func (s *MemoryStore) put(n *Notification) {
	s.next++
	s.records[n.ID] = n
	s.seq[n.ID] = s.next
}

func (s *MemoryStore) filter(keep func(*Notification) bool) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Notification{}
	for _, n := range s.records {
		if keep(n) {
			out = append(out, n.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out
}
