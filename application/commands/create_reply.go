package commands

import (
	"campuspulse-backend/pkg/utils"
)

// CreateReplyCommand represents the command to reply to a post
type CreateReplyCommand struct {
	ParentPostID string `json:"parent_post_id" validate:"required"`
	AuthorID     string `json:"author_id" validate:"required"`
	Text         string `json:"text" validate:"required"`
	IsAnonymous  bool   `json:"is_anonymous"`
}

// Validate validates the command
func (cmd CreateReplyCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}
