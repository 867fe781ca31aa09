package services

import (
	"campuspulse-backend/domain/core/aggregates"
)

// ScoreFunc computes a ranking score for a post from its aggregated
// engagement alone. Scores must be pure so that changing the sort mode
// never requires a network round-trip.
type ScoreFunc func(e aggregates.PostEngagement) float64

// Weights applied by the trending score. These mirror the heuristics
// the product shipped with; they are configuration, not domain truth,
// which is why scoring is a pluggable strategy rather than fixed math.
const (
	trendingReplyWeight    = 2.0
	trendingReactionWeight = 0.5
)

// UpvoteScore ranks by raw upvote count. Downvotes do not subtract:
// "most voted" is a different signal from net score.
func UpvoteScore(e aggregates.PostEngagement) float64 {
	return float64(e.Votes.Upvotes)
}

// TrendingScore weighs replies double and reactions half against
// upvotes. Replies signal engagement more strongly than votes;
// reactions are a lightweight signal.
func TrendingScore(e aggregates.PostEngagement) float64 {
	return float64(e.Votes.Upvotes) +
		float64(e.ReplyCount)*trendingReplyWeight +
		float64(e.TotalReactions())*trendingReactionWeight
}

// ControversialScore rewards posts people engage with heavily without
// converging on agreement: many reactions and replies relative to a
// small vote magnitude.
func ControversialScore(e aggregates.PostEngagement) float64 {
	replies := e.ReplyCount
	if replies < 1 {
		replies = 1
	}
	upvotes := e.Votes.Upvotes
	if upvotes < 0 {
		upvotes = -upvotes
	}
	return float64(e.TotalReactions()*replies) / float64(upvotes+1)
}
