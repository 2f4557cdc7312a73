package notification

import "time"

// Notification represents a single message delivered to a user
type Notification struct {
	ID        string     `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Message   string     `json:"message" db:"message"`
	Type      string     `json:"type" db:"type"`
	IsRead    bool       `json:"isRead" db:"is_read"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time `json:"readAt,omitempty" db:"read_at"` // set once, on the unread -> read transition
}

// NotificationType is a free-text category label. The constants below are
// the types published by other subsystems; any string is accepted.
type NotificationType string

const (
	NotificationTypeApplicationSubmitted NotificationType = "APPLICATION_SUBMITTED"
	NotificationTypeApplicationReviewed  NotificationType = "APPLICATION_REVIEWED"
	NotificationTypeInterviewScheduled   NotificationType = "INTERVIEW_SCHEDULED"
	NotificationTypeJobPosted            NotificationType = "JOB_POSTED"
)

// TimeFormat is the wire layout for notification timestamps: millisecond
// precision with an explicit offset ("Z" for UTC).
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// markRead moves the notification to the read state. A notification that is
// already read keeps its original ReadAt; the return value reports whether
// anything changed.
func (n *Notification) markRead(at time.Time) bool {
	if n.IsRead && n.ReadAt != nil {
		return false
	}
	at = at.UTC()
	n.IsRead = true
	n.ReadAt = &at
	return true
}

// clone returns a deep copy so stores can hand out records without sharing
// the ReadAt pointer.
func (n *Notification) clone() *Notification {
	c := *n
	if n.ReadAt != nil {
		t := *n.ReadAt
		c.ReadAt = &t
	}
	return &c
}
