package handlers

import (
	"context"

	"go.uber.org/zap"

	"campuspulse-backend/application/queries"
	"campuspulse-backend/application/services"
	"campuspulse-backend/domain/core/valueobjects"
	domainservices "campuspulse-backend/domain/services"
)

// GetFeedHandler serves the ranked, filtered feed from the user's
// session state.
type GetFeedHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewGetFeedHandler creates a new handler instance
func NewGetFeedHandler(sessions *services.SessionManager, logger *zap.Logger) *GetFeedHandler {
	return &GetFeedHandler{sessions: sessions, logger: logger}
}

// Handle executes the feed query
func (h *GetFeedHandler) Handle(ctx context.Context, q queries.GetFeedQuery) (queries.GetFeedResult, error) {
	session := h.sessions.Get(q.UserID)

	mode := domainservices.SortMode(q.SortMode)
	if q.SortMode == "" {
		mode = domainservices.SortRecent
	}

	filters := domainservices.FeedFilters{
		Category:   valueobjects.Category(q.Category),
		DateRange:  domainservices.DateRange(q.DateRange),
		MinUpvotes: q.MinUpvotes,
		HasReplies: domainservices.ReplyPresence(q.HasReplies),
	}

	items, err := session.Feed.Feed(ctx, mode, filters)
	if err != nil {
		return queries.GetFeedResult{}, err
	}

	total := len(items)
	start, end := q.Offset, total
	if start > total {
		start = total
	}
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	results := make([]queries.FeedItemResult, 0, end-start)
	for _, item := range items[start:end] {
		results = append(results, toFeedItemResult(item))
	}

	return queries.GetFeedResult{
		Items:   results,
		Total:   total,
		HasMore: end < total,
	}, nil
}
