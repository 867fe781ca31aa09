package services

import (
	"strings"
	"sync"
	"time"

	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/domain/core/valueobjects"
)

// EngagementStore holds one user's view of per-post engagement. Reads
// hand out deep copies; writers mutate under the lock. The state is
// replaced wholesale on refresh and patched in place by optimistic
// mutations in between.
type EngagementStore struct {
	mu            sync.RWMutex
	state         aggregates.EngagementState
	lastRefreshed time.Time
}

// NewEngagementStore creates an empty store.
func NewEngagementStore() *EngagementStore {
	return &EngagementStore{state: make(aggregates.EngagementState)}
}

// Snapshot returns a deep copy of the full state.
func (s *EngagementStore) Snapshot() aggregates.EngagementState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Get returns a deep copy of one post's engagement.
func (s *EngagementStore) Get(postID string) (aggregates.PostEngagement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state[postID]
	if !ok {
		return aggregates.PostEngagement{}, false
	}
	return e.Clone(), true
}

// LastRefreshed reports when the state was last replaced by a fetch.
func (s *EngagementStore) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

// ApplyVote applies the toggle transition for the user's vote on a
// post and returns the resulting summary, which is also the desired
// end state the commit must reach. Casting the direction already held
// retracts it; casting the opposite direction swaps it.
func (s *EngagementStore) ApplyVote(postID string, dir valueobjects.VoteDirection) aggregates.VoteSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state[postID]
	if !ok {
		e = aggregates.ZeroEngagement()
	}

	switch {
	case e.Votes.UserVoted != nil && *e.Votes.UserVoted == dir:
		decrement(&e.Votes, dir)
		e.Votes.UserVoted = nil
	case e.Votes.UserVoted != nil:
		decrement(&e.Votes, *e.Votes.UserVoted)
		increment(&e.Votes, dir)
		voted := dir
		e.Votes.UserVoted = &voted
	default:
		increment(&e.Votes, dir)
		voted := dir
		e.Votes.UserVoted = &voted
	}

	s.state[postID] = e
	return e.Votes
}

// ApplyReaction toggles the user's reaction of the given type and
// returns whether the user holds it afterwards. Entries that drop to
// zero with no user mark are removed.
func (s *EngagementStore) ApplyReaction(postID, reactionType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state[postID]
	if !ok {
		e = aggregates.ZeroEngagement()
	}

	summary := e.Reactions[reactionType]
	if summary.UserReacted {
		summary.Count--
		summary.UserReacted = false
		if summary.Count <= 0 {
			delete(e.Reactions, reactionType)
		} else {
			e.Reactions[reactionType] = summary
		}
		s.state[postID] = e
		return false
	}

	summary.Count++
	summary.UserReacted = true
	e.Reactions[reactionType] = summary
	s.state[postID] = e
	return true
}

// SetEngagement replaces one post's summary with freshly fetched
// truth. Used to roll back optimistic state after a failed commit.
func (s *EngagementStore) SetEngagement(postID string, e aggregates.PostEngagement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[postID] = e.Clone()
}

// Reconcile replaces the state with a freshly aggregated one while
// preserving the local deltas of still in-flight mutations: a pending
// vote keeps the local vote summary, a pending reaction keeps that
// reaction entry's local value. Everything else takes the fetched
// truth.
func (s *EngagementStore) Reconcile(fresh aggregates.EngagementState, outstanding []MutationKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fresh.Clone()
	for _, key := range outstanding {
		local, ok := s.state[key.PostID]
		if !ok {
			continue
		}
		target, ok := next[key.PostID]
		if !ok {
			continue
		}

		switch {
		case key.Kind == mutationKindVote:
			target.Votes = local.Votes
			if local.Votes.UserVoted != nil {
				voted := *local.Votes.UserVoted
				target.Votes.UserVoted = &voted
			}
		case strings.HasPrefix(key.Kind, mutationKindReactionPrefix):
			reactionType := strings.TrimPrefix(key.Kind, mutationKindReactionPrefix)
			if summary, present := local.Reactions[reactionType]; present {
				target.Reactions[reactionType] = summary
			} else {
				delete(target.Reactions, reactionType)
			}
		}
		next[key.PostID] = target
	}

	s.state = next
	s.lastRefreshed = time.Now()
}

// TrackedPosts reports how many posts the state currently covers.
func (s *EngagementStore) TrackedPosts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

func increment(v *aggregates.VoteSummary, dir valueobjects.VoteDirection) {
	if dir == valueobjects.VoteUp {
		v.Upvotes++
	} else {
		v.Downvotes++
	}
}

func decrement(v *aggregates.VoteSummary, dir valueobjects.VoteDirection) {
	if dir == valueobjects.VoteUp {
		if v.Upvotes > 0 {
			v.Upvotes--
		}
	} else if v.Downvotes > 0 {
		v.Downvotes--
	}
}
