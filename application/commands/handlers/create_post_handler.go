package handlers

import (
	"context"

	"go.uber.org/zap"

	"campuspulse-backend/application/commands"
	"campuspulse-backend/application/ports"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
)

// CreatePostHandler handles the CreatePostCommand
type CreatePostHandler struct {
	posts  ports.PostRepository
	cfg    *domainconfig.DomainConfig
	logger *zap.Logger
}

// NewCreatePostHandler creates a new handler instance
func NewCreatePostHandler(posts ports.PostRepository, cfg *domainconfig.DomainConfig, logger *zap.Logger) *CreatePostHandler {
	return &CreatePostHandler{posts: posts, cfg: cfg, logger: logger}
}

// Handle executes the create post command
func (h *CreatePostHandler) Handle(ctx context.Context, cmd commands.CreatePostCommand) (entities.Post, error) {
	draft, err := entities.NewPostDraft(cmd.AuthorID, cmd.Text, valueobjects.Category(cmd.Category), cmd.IsAnonymous, h.cfg.MaxPostLength)
	if err != nil {
		return entities.Post{}, err
	}

	created, err := h.posts.Create(ctx, draft)
	if err != nil {
		return entities.Post{}, err
	}

	h.logger.Info("Post created",
		zap.String("post_id", created.ID),
		zap.String("category", created.Category.String()),
		zap.Bool("anonymous", created.IsAnonymous),
	)
	return created, nil
}
