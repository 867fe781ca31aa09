package queries

import (
	"campuspulse-backend/domain/core/valueobjects"
	domainservices "campuspulse-backend/domain/services"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// GetFeedQuery represents a query for the ranked, filtered feed
type GetFeedQuery struct {
	UserID     string
	SortMode   string
	Category   string
	DateRange  string
	MinUpvotes int
	HasReplies string
	Limit      int
	Offset     int
}

// Validate validates the GetFeedQuery. Empty fields fall back to their
// defaults; present fields must be recognized.
func (q GetFeedQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if q.SortMode != "" && !domainservices.SortMode(q.SortMode).IsValid() {
		return pkgerrors.NewValidationError("unknown sort mode")
	}
	if q.Category != "" && q.Category != string(valueobjects.CategoryAll) &&
		!valueobjects.Category(q.Category).IsValid() {
		return pkgerrors.NewValidationError("unknown category")
	}
	switch domainservices.DateRange(q.DateRange) {
	case "", domainservices.RangeAll, domainservices.RangeToday, domainservices.RangeWeek, domainservices.RangeMonth:
	default:
		return pkgerrors.NewValidationError("unknown date range")
	}
	switch domainservices.ReplyPresence(q.HasReplies) {
	case "", domainservices.RepliesAll, domainservices.RepliesWith, domainservices.RepliesWithout:
	default:
		return pkgerrors.NewValidationError("unknown reply filter")
	}
	if q.MinUpvotes < 0 {
		return pkgerrors.NewValidationError("minimum upvotes cannot be negative")
	}
	return nil
}

// VoteSummaryDTO is the wire form of a vote summary
type VoteSummaryDTO struct {
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	UserVoted string `json:"userVoted,omitempty"`
}

// ReactionSummaryDTO is the wire form of one reaction type's summary
type ReactionSummaryDTO struct {
	Count       int  `json:"count"`
	UserReacted bool `json:"userReacted"`
}

// FeedItemResult is one post in the feed response
type FeedItemResult struct {
	ID          string                        `json:"id"`
	AuthorID    string                        `json:"authorId,omitempty"`
	IsAnonymous bool                          `json:"isAnonymous"`
	Category    string                        `json:"category"`
	Text        string                        `json:"text"`
	CreatedAt   string                        `json:"createdAt"`
	Votes       VoteSummaryDTO                `json:"votes"`
	Reactions   map[string]ReactionSummaryDTO `json:"reactions"`
	ReplyCount  int                           `json:"replyCount"`
}

// GetFeedResult represents the feed response
type GetFeedResult struct {
	Items   []FeedItemResult `json:"items"`
	Total   int              `json:"total"`
	HasMore bool             `json:"hasMore"`
}
