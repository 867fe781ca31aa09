package aggregates

import "campuspulse-backend/domain/core/valueobjects"

// VoteSummary is the reduced view of all vote records for one subject.
// UserVoted is nil when the current user has no vote on it.
type VoteSummary struct {
	Upvotes   int
	Downvotes int
	UserVoted *valueobjects.VoteDirection
}

// Net returns upvotes minus downvotes. The feed's "upvotes" sort does
// not use this; it ranks by raw upvote count.
func (v VoteSummary) Net() int {
	return v.Upvotes - v.Downvotes
}

// ReactionSummary is the reduced view of one reaction type on one post.
type ReactionSummary struct {
	Count       int
	UserReacted bool
}

// PostEngagement is everything the feed needs to render one post's
// engagement: vote totals, reactions keyed by type, and reply count.
type PostEngagement struct {
	Votes      VoteSummary
	Reactions  map[string]ReactionSummary
	ReplyCount int
}

// TotalReactions sums the counts of every reaction type.
func (e PostEngagement) TotalReactions() int {
	total := 0
	for _, r := range e.Reactions {
		total += r.Count
	}
	return total
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the reactions map.
func (e PostEngagement) Clone() PostEngagement {
	out := e
	out.Reactions = make(map[string]ReactionSummary, len(e.Reactions))
	for k, v := range e.Reactions {
		out.Reactions[k] = v
	}
	if e.Votes.UserVoted != nil {
		voted := *e.Votes.UserVoted
		out.Votes.UserVoted = &voted
	}
	return out
}

// ZeroEngagement is the summary a post carries before any record is
// folded into it. Posts with no engagement still appear in the feed.
func ZeroEngagement() PostEngagement {
	return PostEngagement{Reactions: make(map[string]ReactionSummary)}
}

// EngagementState maps post id to its reduced engagement. It is
// rebuilt wholesale on every successful fetch and patched in place by
// optimistic mutations in between.
type EngagementState map[string]PostEngagement

// Clone deep-copies the whole state.
func (s EngagementState) Clone() EngagementState {
	out := make(EngagementState, len(s))
	for id, e := range s {
		out[id] = e.Clone()
	}
	return out
}
