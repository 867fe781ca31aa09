package handlers

import (
	"context"

	"go.uber.org/zap"

	"campuspulse-backend/application/commands"
	"campuspulse-backend/application/ports"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// CreateReplyHandler handles the CreateReplyCommand
type CreateReplyHandler struct {
	posts   ports.PostRepository
	replies ports.ReplyRepository
	cfg     *domainconfig.DomainConfig
	logger  *zap.Logger
}

// NewCreateReplyHandler creates a new handler instance
func NewCreateReplyHandler(posts ports.PostRepository, replies ports.ReplyRepository, cfg *domainconfig.DomainConfig, logger *zap.Logger) *CreateReplyHandler {
	return &CreateReplyHandler{posts: posts, replies: replies, cfg: cfg, logger: logger}
}

// Handle executes the create reply command. The parent post must
// exist; replying to a deleted post is a not-found, not a dangling
// record.
func (h *CreateReplyHandler) Handle(ctx context.Context, cmd commands.CreateReplyCommand) (entities.ReplyRecord, error) {
	if _, err := h.posts.GetByID(ctx, cmd.ParentPostID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return entities.ReplyRecord{}, pkgerrors.NewNotFoundError("post")
		}
		return entities.ReplyRecord{}, err
	}

	draft, err := entities.NewReplyDraft(cmd.ParentPostID, cmd.AuthorID, cmd.Text, cmd.IsAnonymous, h.cfg.MaxReplyLength)
	if err != nil {
		return entities.ReplyRecord{}, err
	}

	created, err := h.replies.Create(ctx, draft)
	if err != nil {
		return entities.ReplyRecord{}, err
	}

	h.logger.Info("Reply created",
		zap.String("reply_id", created.ID),
		zap.String("post_id", created.ParentPostID),
	)
	return created, nil
}
