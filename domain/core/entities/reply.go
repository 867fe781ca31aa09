package entities

import (
	"time"

	pkgerrors "campuspulse-backend/pkg/errors"
)

// ReplyRecord is a reply to a post. IsRead is notification metadata
// only; it never affects how the reply itself is aggregated or shown.
type ReplyRecord struct {
	ID           string
	ParentPostID string
	AuthorID     string
	Text         string
	CreatedAt    time.Time
	IsAnonymous  bool
	IsRead       bool
}

// NewReplyDraft validates a reply before it is sent to the store.
// maxLength bounds the body; zero means unbounded.
func NewReplyDraft(parentPostID, authorID, text string, isAnonymous bool, maxLength int) (ReplyRecord, error) {
	if parentPostID == "" {
		return ReplyRecord{}, pkgerrors.NewValidationError("parent post id cannot be empty")
	}
	if authorID == "" {
		return ReplyRecord{}, pkgerrors.NewValidationError("author id cannot be empty")
	}
	if text == "" {
		return ReplyRecord{}, pkgerrors.NewValidationError("reply text cannot be empty")
	}
	if maxLength > 0 && len(text) > maxLength {
		return ReplyRecord{}, pkgerrors.NewValidationError("reply text exceeds maximum length")
	}
	return ReplyRecord{
		ParentPostID: parentPostID,
		AuthorID:     authorID,
		Text:         text,
		IsAnonymous:  isAnonymous,
	}, nil
}
