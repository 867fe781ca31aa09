package queries

import pkgerrors "campuspulse-backend/pkg/errors"

// GetNotificationsQuery represents a query for the notification inbox
type GetNotificationsQuery struct {
	UserID     string
	UnreadOnly bool
}

// Validate validates the GetNotificationsQuery
func (q GetNotificationsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	return nil
}

// NotificationResult is one inbox entry
type NotificationResult struct {
	ReplyID        string `json:"replyId"`
	PostID         string `json:"postId"`
	AuthorID       string `json:"authorId,omitempty"`
	Preview        string `json:"preview"`
	ParentPostText string `json:"parentPostText"`
	IsAnonymous    bool   `json:"isAnonymous"`
	IsRead         bool   `json:"isRead"`
	CreatedAt      string `json:"createdAt"`
}

// GetNotificationsResult represents the inbox response
type GetNotificationsResult struct {
	Notifications []NotificationResult `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}
