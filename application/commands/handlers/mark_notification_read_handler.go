package handlers

import (
	"context"

	"go.uber.org/zap"

	"campuspulse-backend/application/commands"
	"campuspulse-backend/application/services"
)

// MarkNotificationReadHandler handles read-state commands against the
// user's notification inbox.
type MarkNotificationReadHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewMarkNotificationReadHandler creates a new handler instance
func NewMarkNotificationReadHandler(sessions *services.SessionManager, logger *zap.Logger) *MarkNotificationReadHandler {
	return &MarkNotificationReadHandler{sessions: sessions, logger: logger}
}

// Handle executes the mark-read command
func (h *MarkNotificationReadHandler) Handle(ctx context.Context, cmd commands.MarkNotificationReadCommand) error {
	session := h.sessions.Get(cmd.UserID)
	if cmd.All {
		return session.Notifications.MarkAllRead(ctx)
	}
	return session.Notifications.MarkRead(ctx, cmd.ReplyID)
}
