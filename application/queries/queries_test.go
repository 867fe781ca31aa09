package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "campuspulse-backend/pkg/errors"
)

func TestGetFeedQuery_Validate(t *testing.T) {
	assert.NoError(t, GetFeedQuery{UserID: "user1"}.Validate(), "empty fields fall back to defaults")
	assert.NoError(t, GetFeedQuery{
		UserID:     "user1",
		SortMode:   "trending",
		Category:   "food",
		DateRange:  "week",
		HasReplies: "with",
		MinUpvotes: 2,
	}.Validate())
	assert.NoError(t, GetFeedQuery{UserID: "user1", Category: "all"}.Validate(),
		"the all sentinel is accepted even though it is not storable")

	cases := map[string]GetFeedQuery{
		"missing user":         {SortMode: "recent"},
		"unknown sort":         {UserID: "user1", SortMode: "hot"},
		"unknown category":     {UserID: "user1", Category: "memes"},
		"unknown date range":   {UserID: "user1", DateRange: "year"},
		"unknown reply filter": {UserID: "user1", HasReplies: "some"},
		"negative min upvotes": {UserID: "user1", MinUpvotes: -1},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, pkgerrors.IsValidation(q.Validate()))
		})
	}
}

func TestGetPostQuery_Validate(t *testing.T) {
	assert.NoError(t, GetPostQuery{UserID: "user1", PostID: "p1"}.Validate())
	assert.NoError(t, GetPostQuery{UserID: "user1", PostID: "p1", ReplySort: "votes"}.Validate())

	assert.True(t, pkgerrors.IsValidation(GetPostQuery{PostID: "p1"}.Validate()))
	assert.True(t, pkgerrors.IsValidation(GetPostQuery{UserID: "user1"}.Validate()))
	assert.True(t, pkgerrors.IsValidation(
		GetPostQuery{UserID: "user1", PostID: "p1", ReplySort: "spicy"}.Validate()))
}
