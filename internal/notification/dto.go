package notification

// CreateNotificationRequest holds the query/form parameters for POST /notifications
type CreateNotificationRequest struct {
	UserID  *int64 `schema:"userId" validate:"required"` // nil when absent; 0 is a valid ID
	Message string `schema:"message"`
	Type    string `schema:"type"`
}

// NotificationResponse represents the response for a single notification
type NotificationResponse struct {
	ID        string  `json:"id"`
	UserID    int64   `json:"userId"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	IsRead    bool    `json:"isRead"`
	CreatedAt string  `json:"createdAt"`
	ReadAt    *string `json:"readAt,omitempty"`
}

// ToResponse converts a Notification model to a NotificationResponse DTO
func (n *Notification) ToResponse() *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UTC().Format(TimeFormat),
	}
	if n.ReadAt != nil {
		readAt := n.ReadAt.UTC().Format(TimeFormat)
		resp.ReadAt = &readAt
	}
	return resp
}

func toResponses(notifications []*Notification) []*NotificationResponse {
	responses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = n.ToResponse()
	}
	return responses
}
