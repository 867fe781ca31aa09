package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"campuspulse-backend/application/commands"
	cmdbus "campuspulse-backend/application/commands/bus"
	"campuspulse-backend/application/queries"
	querybus "campuspulse-backend/application/queries/bus"
	"campuspulse-backend/pkg/common"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// NotificationHandler serves the inbox and its read-state operations.
type NotificationHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	commandBus *cmdbus.CommandBus,
	queryBus *querybus.QueryBus,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{commandBus: commandBus, queryBus: queryBus, errors: errors, logger: logger}
}

// GetNotifications handles GET /notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	q := queries.GetNotificationsQuery{
		UserID:     userID,
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	}
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// MarkRead handles POST /notifications/{replyID}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	cmd := commands.MarkNotificationReadCommand{
		UserID:  userID,
		ReplyID: chi.URLParam(r, "replyID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	cmd := commands.MarkNotificationReadCommand{UserID: userID, All: true}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
