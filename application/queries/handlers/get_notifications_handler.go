package handlers

import (
	"context"

	"go.uber.org/zap"

	"campuspulse-backend/application/queries"
	"campuspulse-backend/application/services"
)

// GetNotificationsHandler serves the notification inbox.
type GetNotificationsHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewGetNotificationsHandler creates a new handler instance
func NewGetNotificationsHandler(sessions *services.SessionManager, logger *zap.Logger) *GetNotificationsHandler {
	return &GetNotificationsHandler{sessions: sessions, logger: logger}
}

// Handle executes the notifications query. A cold inbox is refreshed
// before serving.
func (h *GetNotificationsHandler) Handle(ctx context.Context, q queries.GetNotificationsQuery) (queries.GetNotificationsResult, error) {
	session := h.sessions.Get(q.UserID)

	notifications := session.Notifications.Notifications()
	if len(notifications) == 0 {
		if err := session.Notifications.Refresh(ctx); err != nil {
			return queries.GetNotificationsResult{}, err
		}
		notifications = session.Notifications.Notifications()
	}

	results := make([]queries.NotificationResult, 0, len(notifications))
	for _, n := range notifications {
		if q.UnreadOnly && n.IsRead {
			continue
		}
		results = append(results, queries.NotificationResult{
			ReplyID:        n.ReplyID,
			PostID:         n.PostID,
			AuthorID:       n.AuthorID,
			Preview:        n.Preview,
			ParentPostText: n.ParentPostText,
			IsAnonymous:    n.IsAnonymous,
			IsRead:         n.IsRead,
			CreatedAt:      n.CreatedAt,
		})
	}

	return queries.GetNotificationsResult{
		Notifications: results,
		UnreadCount:   session.Notifications.Unread(),
	}, nil
}
