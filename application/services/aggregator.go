package services

import (
	"go.uber.org/zap"

	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
)

// Aggregator reduces raw store records into per-post engagement
// summaries. It performs no I/O; the same inputs always produce the
// same state regardless of record order.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate folds votes, reactions and replies into an engagement
// state covering every post in posts. Posts with no records still get
// a zeroed summary. Records pointing at subjects outside the post set
// are skipped; vote records for replies share the collection and land
// here too.
//
// Malformed vote values are ignored. Duplicate records for the same
// (subject, user) key should not exist; when they do, the last one
// wins and the anomaly is logged.
func (a *Aggregator) Aggregate(
	posts []entities.Post,
	votes []entities.VoteRecord,
	reactions []entities.ReactionRecord,
	replies []entities.ReplyRecord,
	userID string,
) aggregates.EngagementState {
	state := make(aggregates.EngagementState, len(posts))
	for _, p := range posts {
		state[p.ID] = aggregates.ZeroEngagement()
	}

	for subjectID, records := range a.dedupeVotes(votes) {
		e, ok := state[subjectID]
		if !ok {
			continue
		}
		e.Votes = reduceVotes(records, userID)
		state[subjectID] = e
	}

	for _, r := range a.dedupeReactions(reactions) {
		e, ok := state[r.PostID]
		if !ok {
			continue
		}
		summary := e.Reactions[r.ReactionType]
		summary.Count++
		if r.UserID == userID {
			summary.UserReacted = true
		}
		e.Reactions[r.ReactionType] = summary
		state[r.PostID] = e
	}

	for _, r := range replies {
		e, ok := state[r.ParentPostID]
		if !ok {
			continue
		}
		e.ReplyCount++
		state[r.ParentPostID] = e
	}

	return state
}

// AggregateSubject reduces the records of a single subject (post or
// reply) without needing the full post set. Used when one subject is
// refetched after a failed write.
func (a *Aggregator) AggregateSubject(
	subjectID string,
	votes []entities.VoteRecord,
	reactions []entities.ReactionRecord,
	replyCount int,
	userID string,
) aggregates.PostEngagement {
	e := aggregates.ZeroEngagement()
	e.ReplyCount = replyCount

	byUser := make(map[string]entities.VoteRecord)
	var ordered []entities.VoteRecord
	for _, v := range votes {
		if v.SubjectID != subjectID {
			continue
		}
		if prev, dup := byUser[v.UserID]; dup {
			a.warnDuplicate("vote", prev.ID, v.ID, v.UserID)
		}
		byUser[v.UserID] = v
	}
	for _, v := range byUser {
		ordered = append(ordered, v)
	}
	e.Votes = reduceVotes(ordered, userID)

	seen := make(map[string]string)
	for _, r := range reactions {
		if r.PostID != subjectID {
			continue
		}
		key := r.UserID + "|" + r.ReactionType
		if prev, dup := seen[key]; dup {
			a.warnDuplicate("reaction", prev, r.ID, r.UserID)
			continue
		}
		seen[key] = r.ID
		summary := e.Reactions[r.ReactionType]
		summary.Count++
		if r.UserID == userID {
			summary.UserReacted = true
		}
		e.Reactions[r.ReactionType] = summary
	}

	return e
}

// ReplyVoteSummaries reduces vote records belonging to the given
// replies. Returns a summary per reply id, zeroed for replies with no
// votes.
func (a *Aggregator) ReplyVoteSummaries(
	replies []entities.ReplyRecord,
	votes []entities.VoteRecord,
	userID string,
) map[string]aggregates.VoteSummary {
	byReply := make(map[string][]entities.VoteRecord)
	replyIDs := make(map[string]struct{}, len(replies))
	for _, r := range replies {
		replyIDs[r.ID] = struct{}{}
	}
	for subjectID, records := range a.dedupeVotes(votes) {
		if _, ok := replyIDs[subjectID]; ok {
			byReply[subjectID] = records
		}
	}

	out := make(map[string]aggregates.VoteSummary, len(replies))
	for _, r := range replies {
		out[r.ID] = reduceVotes(byReply[r.ID], userID)
	}
	return out
}

// dedupeVotes groups vote records by subject, keeping the last record
// per (subject, user).
func (a *Aggregator) dedupeVotes(votes []entities.VoteRecord) map[string][]entities.VoteRecord {
	type key struct{ subject, user string }
	last := make(map[key]entities.VoteRecord)
	order := make([]key, 0, len(votes))

	for _, v := range votes {
		k := key{v.SubjectID, v.UserID}
		if prev, dup := last[k]; dup {
			a.warnDuplicate("vote", prev.ID, v.ID, v.UserID)
		} else {
			order = append(order, k)
		}
		last[k] = v
	}

	out := make(map[string][]entities.VoteRecord)
	for _, k := range order {
		out[k.subject] = append(out[k.subject], last[k])
	}
	return out
}

// dedupeReactions keeps the last record per (post, user, type).
func (a *Aggregator) dedupeReactions(reactions []entities.ReactionRecord) []entities.ReactionRecord {
	type key struct{ post, user, reaction string }
	last := make(map[key]entities.ReactionRecord)
	order := make([]key, 0, len(reactions))

	for _, r := range reactions {
		k := key{r.PostID, r.UserID, r.ReactionType}
		if prev, dup := last[k]; dup {
			a.warnDuplicate("reaction", prev.ID, r.ID, r.UserID)
		} else {
			order = append(order, k)
		}
		last[k] = r
	}

	out := make([]entities.ReactionRecord, 0, len(order))
	for _, k := range order {
		out = append(out, last[k])
	}
	return out
}

func (a *Aggregator) warnDuplicate(kind, firstID, lastID, userID string) {
	a.logger.Warn("Duplicate engagement record for user, keeping latest",
		zap.String("kind", kind),
		zap.String("first_id", firstID),
		zap.String("last_id", lastID),
		zap.String("user_id", userID),
	)
}

// reduceVotes counts one subject's deduplicated vote records. Values
// other than +1/-1 are skipped entirely.
func reduceVotes(records []entities.VoteRecord, userID string) aggregates.VoteSummary {
	var summary aggregates.VoteSummary
	for _, v := range records {
		dir, ok := valueobjects.DirectionFromValue(v.Value)
		if !ok {
			continue
		}
		switch dir {
		case valueobjects.VoteUp:
			summary.Upvotes++
		case valueobjects.VoteDown:
			summary.Downvotes++
		}
		if v.UserID == userID {
			voted := dir
			summary.UserVoted = &voted
		}
	}
	return summary
}
