package handlers

import (
	"context"

	"go.uber.org/zap"

	"campuspulse-backend/application/queries"
	"campuspulse-backend/application/services"
	domainservices "campuspulse-backend/domain/services"
)

// GetPostHandler serves the single-post detail view.
type GetPostHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewGetPostHandler creates a new handler instance
func NewGetPostHandler(sessions *services.SessionManager, logger *zap.Logger) *GetPostHandler {
	return &GetPostHandler{sessions: sessions, logger: logger}
}

// Handle executes the post detail query
func (h *GetPostHandler) Handle(ctx context.Context, q queries.GetPostQuery) (queries.GetPostResult, error) {
	session := h.sessions.Get(q.UserID)

	sort := domainservices.ReplySort(q.ReplySort)
	if q.ReplySort == "" {
		sort = domainservices.ReplySortNewest
	}

	detail, err := session.Feed.PostDetail(ctx, q.PostID, sort)
	if err != nil {
		return queries.GetPostResult{}, err
	}

	replies := make([]queries.ReplyResult, 0, len(detail.Replies))
	for _, r := range detail.Replies {
		replies = append(replies, toReplyResult(r))
	}

	return queries.GetPostResult{
		Post: toFeedItemResult(services.FeedItem{
			Post:       detail.Post,
			Engagement: detail.Engagement,
		}),
		Replies: replies,
	}, nil
}
