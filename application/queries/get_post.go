package queries

import (
	domainservices "campuspulse-backend/domain/services"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// GetPostQuery represents a query for one post with its replies
type GetPostQuery struct {
	UserID    string
	PostID    string
	ReplySort string
}

// Validate validates the GetPostQuery
func (q GetPostQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.PostID == "" {
		return pkgerrors.NewValidationError("post ID is required")
	}
	switch domainservices.ReplySort(q.ReplySort) {
	case "", domainservices.ReplySortNewest, domainservices.ReplySortOldest, domainservices.ReplySortVotes:
		return nil
	}
	return pkgerrors.NewValidationError("unknown reply sort")
}

// ReplyResult is one reply in the post detail response
type ReplyResult struct {
	ID          string         `json:"id"`
	AuthorID    string         `json:"authorId,omitempty"`
	IsAnonymous bool           `json:"isAnonymous"`
	Text        string         `json:"text"`
	CreatedAt   string         `json:"createdAt"`
	Votes       VoteSummaryDTO `json:"votes"`
}

// GetPostResult represents the post detail response
type GetPostResult struct {
	Post    FeedItemResult `json:"post"`
	Replies []ReplyResult  `json:"replies"`
}
