package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/domain/core/valueobjects"
)

func TestEngagementStore_ApplyVote_Toggles(t *testing.T) {
	store := NewEngagementStore()

	// First cast sets the vote.
	summary := store.ApplyVote("p1", valueobjects.VoteUp)
	assert.Equal(t, 1, summary.Upvotes)
	require.NotNil(t, summary.UserVoted)
	assert.Equal(t, valueobjects.VoteUp, *summary.UserVoted)

	// Casting the same direction again retracts it.
	summary = store.ApplyVote("p1", valueobjects.VoteUp)
	assert.Equal(t, 0, summary.Upvotes)
	assert.Nil(t, summary.UserVoted)
}

func TestEngagementStore_ApplyVote_SwapsDirection(t *testing.T) {
	store := NewEngagementStore()
	store.SetEngagement("p1", aggregates.PostEngagement{
		Votes:     aggregates.VoteSummary{Upvotes: 3, Downvotes: 1},
		Reactions: map[string]aggregates.ReactionSummary{},
	})

	summary := store.ApplyVote("p1", valueobjects.VoteUp)
	assert.Equal(t, 4, summary.Upvotes)
	assert.Equal(t, 1, summary.Downvotes)

	summary = store.ApplyVote("p1", valueobjects.VoteDown)
	assert.Equal(t, 3, summary.Upvotes)
	assert.Equal(t, 2, summary.Downvotes)
	require.NotNil(t, summary.UserVoted)
	assert.Equal(t, valueobjects.VoteDown, *summary.UserVoted)
}

func TestEngagementStore_ApplyReaction_Toggles(t *testing.T) {
	store := NewEngagementStore()

	assert.True(t, store.ApplyReaction("p1", "fire"))
	e, ok := store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, aggregates.ReactionSummary{Count: 1, UserReacted: true}, e.Reactions["fire"])

	// Toggling off removes the entry entirely once nobody holds it.
	assert.False(t, store.ApplyReaction("p1", "fire"))
	e, _ = store.Get("p1")
	_, present := e.Reactions["fire"]
	assert.False(t, present)
}

func TestEngagementStore_ApplyReaction_KeepsOtherUsersCounts(t *testing.T) {
	store := NewEngagementStore()
	store.SetEngagement("p1", aggregates.PostEngagement{
		Reactions: map[string]aggregates.ReactionSummary{
			"fire": {Count: 2, UserReacted: true},
		},
	})

	assert.False(t, store.ApplyReaction("p1", "fire"))

	e, _ := store.Get("p1")
	assert.Equal(t, aggregates.ReactionSummary{Count: 1, UserReacted: false}, e.Reactions["fire"])
}

func TestEngagementStore_Snapshot_IsDeepCopy(t *testing.T) {
	store := NewEngagementStore()
	store.ApplyReaction("p1", "fire")

	snap := store.Snapshot()
	snap["p1"].Reactions["fire"] = aggregates.ReactionSummary{Count: 99}

	e, _ := store.Get("p1")
	assert.Equal(t, 1, e.Reactions["fire"].Count)
}

func TestEngagementStore_Reconcile_TakesFreshState(t *testing.T) {
	store := NewEngagementStore()
	store.ApplyVote("p1", valueobjects.VoteUp)

	fresh := aggregates.EngagementState{
		"p1": {Votes: aggregates.VoteSummary{Upvotes: 10}, Reactions: map[string]aggregates.ReactionSummary{}},
		"p2": {Votes: aggregates.VoteSummary{Upvotes: 2}, Reactions: map[string]aggregates.ReactionSummary{}},
	}
	store.Reconcile(fresh, nil)

	e, _ := store.Get("p1")
	assert.Equal(t, 10, e.Votes.Upvotes)
	assert.Nil(t, e.Votes.UserVoted)
	assert.Equal(t, 2, store.TrackedPosts())
	assert.False(t, store.LastRefreshed().IsZero())
}

func TestEngagementStore_Reconcile_PreservesOutstandingVote(t *testing.T) {
	store := NewEngagementStore()
	store.SetEngagement("p1", aggregates.PostEngagement{
		Votes:     aggregates.VoteSummary{Upvotes: 5},
		Reactions: map[string]aggregates.ReactionSummary{},
	})
	store.ApplyVote("p1", valueobjects.VoteUp) // local: 6, user voted up

	// A refresh races the commit: the fetch still sees 5 upvotes.
	fresh := aggregates.EngagementState{
		"p1": {Votes: aggregates.VoteSummary{Upvotes: 5}, Reactions: map[string]aggregates.ReactionSummary{}},
	}
	store.Reconcile(fresh, []MutationKey{{PostID: "p1", UserID: "user1", Kind: "vote"}})

	e, _ := store.Get("p1")
	assert.Equal(t, 6, e.Votes.Upvotes)
	require.NotNil(t, e.Votes.UserVoted)
	assert.Equal(t, valueobjects.VoteUp, *e.Votes.UserVoted)
}

func TestEngagementStore_Reconcile_PreservesOutstandingReaction(t *testing.T) {
	store := NewEngagementStore()

	// Local state: the user just removed their reaction; the entry is
	// gone. The racing fetch still carries it.
	store.SetEngagement("p1", aggregates.PostEngagement{
		Reactions: map[string]aggregates.ReactionSummary{
			"fire":  {Count: 1, UserReacted: true},
			"heart": {Count: 4},
		},
	})
	store.ApplyReaction("p1", "fire")

	fresh := aggregates.EngagementState{
		"p1": {Reactions: map[string]aggregates.ReactionSummary{
			"fire":  {Count: 1, UserReacted: true},
			"heart": {Count: 7},
		}},
	}
	store.Reconcile(fresh, []MutationKey{{PostID: "p1", UserID: "user1", Kind: "reaction:fire"}})

	e, _ := store.Get("p1")
	_, present := e.Reactions["fire"]
	assert.False(t, present, "the pending removal must survive the refresh")
	assert.Equal(t, 7, e.Reactions["heart"].Count, "untouched reaction types take the fetched truth")
}

func TestEngagementStore_Reconcile_IgnoresKeysOutsideFreshState(t *testing.T) {
	store := NewEngagementStore()
	store.ApplyVote("gone", valueobjects.VoteUp)

	fresh := aggregates.EngagementState{
		"p1": aggregates.ZeroEngagement(),
	}
	store.Reconcile(fresh, []MutationKey{{PostID: "gone", UserID: "user1", Kind: "vote"}})

	_, ok := store.Get("gone")
	assert.False(t, ok, "posts absent from the fetch drop out of the state")
	assert.Equal(t, 1, store.TrackedPosts())
}
