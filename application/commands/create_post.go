package commands

import (
	"campuspulse-backend/domain/core/valueobjects"
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/utils"
)

// CreatePostCommand represents the command to publish a new post
type CreatePostCommand struct {
	AuthorID    string `json:"author_id" validate:"required"`
	Text        string `json:"text" validate:"required"`
	Category    string `json:"category"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Validate validates the command
func (cmd CreatePostCommand) Validate() error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}
	if cmd.Category != "" && !valueobjects.Category(cmd.Category).IsValid() {
		return pkgerrors.NewValidationError("unknown category")
	}
	return nil
}
