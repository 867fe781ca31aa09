package entities

import (
	"time"

	"campuspulse-backend/domain/core/valueobjects"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// Post is a short feed message. Posts are immutable after creation:
// the store owns them and this engine only ever creates and reads them.
type Post struct {
	ID          string
	AuthorID    string
	IsAnonymous bool
	Category    valueobjects.Category
	Text        string
	CreatedAt   time.Time
}

// NewPostDraft validates the fields of a post before it is sent to the
// store. The store assigns the id and creation timestamp. maxLength
// bounds the body; zero means unbounded.
func NewPostDraft(authorID, text string, category valueobjects.Category, isAnonymous bool, maxLength int) (Post, error) {
	if authorID == "" {
		return Post{}, pkgerrors.NewValidationError("author id cannot be empty")
	}
	if text == "" {
		return Post{}, pkgerrors.NewValidationError("post text cannot be empty")
	}
	if maxLength > 0 && len(text) > maxLength {
		return Post{}, pkgerrors.NewValidationError("post text exceeds maximum length")
	}
	return Post{
		AuthorID:    authorID,
		IsAnonymous: isAnonymous,
		Category:    valueobjects.NormalizeCategory(category.String()),
		Text:        text,
	}, nil
}

// EffectiveCategory returns the post's category, defaulting to general
// when the stored record carries no category.
func (p Post) EffectiveCategory() valueobjects.Category {
	return valueobjects.NormalizeCategory(p.Category.String())
}
