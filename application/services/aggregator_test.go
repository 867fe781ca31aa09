package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
)

func dirPtr(d valueobjects.VoteDirection) *valueobjects.VoteDirection {
	return &d
}

func testPost(id string) entities.Post {
	return entities.Post{ID: id, AuthorID: "author-" + id, CreatedAt: time.Now()}
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func TestAggregator_Aggregate_ZeroedSummariesForQuietPosts(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	state := agg.Aggregate(
		[]entities.Post{testPost("p1"), testPost("p2")},
		nil, nil, nil,
		"user1",
	)

	require.Len(t, state, 2)
	assert.Equal(t, aggregates.ZeroEngagement(), state["p1"])
	assert.Equal(t, aggregates.ZeroEngagement(), state["p2"])
}

func TestAggregator_Aggregate_FoldsAllRecordKinds(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "p1", UserID: "user1", Value: 1},
		{ID: "v2", SubjectID: "p1", UserID: "user2", Value: 1},
		{ID: "v3", SubjectID: "p1", UserID: "user3", Value: -1},
	}
	reactions := []entities.ReactionRecord{
		{ID: "r1", PostID: "p1", UserID: "user1", ReactionType: "fire"},
		{ID: "r2", PostID: "p1", UserID: "user2", ReactionType: "fire"},
		{ID: "r3", PostID: "p1", UserID: "user2", ReactionType: "heart"},
	}
	replies := []entities.ReplyRecord{
		{ID: "rp1", ParentPostID: "p1", AuthorID: "user2"},
		{ID: "rp2", ParentPostID: "p1", AuthorID: "user3"},
	}

	state := agg.Aggregate([]entities.Post{testPost("p1")}, votes, reactions, replies, "user1")

	e := state["p1"]
	assert.Equal(t, 2, e.Votes.Upvotes)
	assert.Equal(t, 1, e.Votes.Downvotes)
	require.NotNil(t, e.Votes.UserVoted)
	assert.Equal(t, valueobjects.VoteUp, *e.Votes.UserVoted)

	assert.Equal(t, aggregates.ReactionSummary{Count: 2, UserReacted: true}, e.Reactions["fire"])
	assert.Equal(t, aggregates.ReactionSummary{Count: 1, UserReacted: false}, e.Reactions["heart"])
	assert.Equal(t, 2, e.ReplyCount)
}

func TestAggregator_Aggregate_OrderIndependent(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	posts := []entities.Post{testPost("p1"), testPost("p2")}
	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "p1", UserID: "user1", Value: 1},
		{ID: "v2", SubjectID: "p2", UserID: "user2", Value: -1},
		{ID: "v3", SubjectID: "p1", UserID: "user3", Value: 1},
	}
	reactions := []entities.ReactionRecord{
		{ID: "r1", PostID: "p1", UserID: "user1", ReactionType: "fire"},
		{ID: "r2", PostID: "p2", UserID: "user2", ReactionType: "heart"},
	}
	replies := []entities.ReplyRecord{
		{ID: "rp1", ParentPostID: "p2", AuthorID: "user1"},
	}

	forward := agg.Aggregate(posts, votes, reactions, replies, "user1")
	backward := agg.Aggregate(
		reversed(posts), reversed(votes), reversed(reactions), reversed(replies), "user1")

	assert.Equal(t, forward, backward)
}

func TestAggregator_Aggregate_MalformedVoteValuesIgnored(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "p1", UserID: "user1", Value: 0},
		{ID: "v2", SubjectID: "p1", UserID: "user2", Value: 5},
		{ID: "v3", SubjectID: "p1", UserID: "user3", Value: 1},
	}

	state := agg.Aggregate([]entities.Post{testPost("p1")}, votes, nil, nil, "user1")

	e := state["p1"]
	assert.Equal(t, 1, e.Votes.Upvotes)
	assert.Equal(t, 0, e.Votes.Downvotes)
	assert.Nil(t, e.Votes.UserVoted, "a malformed vote must not count as the user's vote")
}

func TestAggregator_Aggregate_DuplicateVoteLastWins(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "p1", UserID: "user1", Value: 1},
		{ID: "v2", SubjectID: "p1", UserID: "user1", Value: -1},
	}

	state := agg.Aggregate([]entities.Post{testPost("p1")}, votes, nil, nil, "user1")

	e := state["p1"]
	assert.Equal(t, 0, e.Votes.Upvotes)
	assert.Equal(t, 1, e.Votes.Downvotes)
	require.NotNil(t, e.Votes.UserVoted)
	assert.Equal(t, valueobjects.VoteDown, *e.Votes.UserVoted)
}

func TestAggregator_Aggregate_SkipsRecordsOutsidePostSet(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	// Reply votes share the vote collection; their subject is a reply
	// id and must not surface in post state.
	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "reply-9", UserID: "user1", Value: 1},
	}
	reactions := []entities.ReactionRecord{
		{ID: "r1", PostID: "deleted-post", UserID: "user1", ReactionType: "fire"},
	}
	replies := []entities.ReplyRecord{
		{ID: "rp1", ParentPostID: "deleted-post", AuthorID: "user2"},
	}

	state := agg.Aggregate([]entities.Post{testPost("p1")}, votes, reactions, replies, "user1")

	require.Len(t, state, 1)
	assert.Equal(t, aggregates.ZeroEngagement(), state["p1"])
}

func TestAggregator_AggregateSubject(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "p1", UserID: "user1", Value: 1},
		{ID: "v2", SubjectID: "p1", UserID: "user2", Value: -1},
		{ID: "v3", SubjectID: "other", UserID: "user3", Value: 1},
	}
	reactions := []entities.ReactionRecord{
		{ID: "r1", PostID: "p1", UserID: "user2", ReactionType: "fire"},
		{ID: "r2", PostID: "other", UserID: "user2", ReactionType: "fire"},
	}

	e := agg.AggregateSubject("p1", votes, reactions, 3, "user1")

	assert.Equal(t, 1, e.Votes.Upvotes)
	assert.Equal(t, 1, e.Votes.Downvotes)
	require.NotNil(t, e.Votes.UserVoted)
	assert.Equal(t, valueobjects.VoteUp, *e.Votes.UserVoted)
	assert.Equal(t, aggregates.ReactionSummary{Count: 1}, e.Reactions["fire"])
	assert.Equal(t, 3, e.ReplyCount)
}

func TestAggregator_ReplyVoteSummaries(t *testing.T) {
	agg := NewAggregator(zap.NewNop())

	replies := []entities.ReplyRecord{
		{ID: "rp1", ParentPostID: "p1"},
		{ID: "rp2", ParentPostID: "p1"},
	}
	votes := []entities.VoteRecord{
		{ID: "v1", SubjectID: "rp1", UserID: "user1", Value: 1},
		{ID: "v2", SubjectID: "rp1", UserID: "user2", Value: 1},
		{ID: "v3", SubjectID: "p1", UserID: "user1", Value: 1},
	}

	summaries := agg.ReplyVoteSummaries(replies, votes, "user1")

	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries["rp1"].Upvotes)
	require.NotNil(t, summaries["rp1"].UserVoted)
	assert.Equal(t, valueobjects.VoteUp, *summaries["rp1"].UserVoted)
	assert.Equal(t, aggregates.VoteSummary{}, summaries["rp2"], "replies without votes get a zeroed summary")
}
