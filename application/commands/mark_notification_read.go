package commands

import (
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/utils"
)

// MarkNotificationReadCommand marks one notification as read. An
// empty ReplyID with All set marks the whole inbox.
type MarkNotificationReadCommand struct {
	UserID  string `json:"user_id" validate:"required"`
	ReplyID string `json:"reply_id"`
	All     bool   `json:"all"`
}

// Validate validates the command
func (cmd MarkNotificationReadCommand) Validate() error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}
	if !cmd.All && cmd.ReplyID == "" {
		return pkgerrors.NewValidationError("reply ID is required unless marking all")
	}
	return nil
}
