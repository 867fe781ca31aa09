package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"campuspulse-backend/application/ports"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/observability"
)

const (
	mutationKindVote           = "vote"
	mutationKindReactionPrefix = "reaction:"
)

// MutationKey identifies one coalescing slot: one user toggling one
// action on one post.
type MutationKey struct {
	PostID string
	UserID string
	Kind   string
}

// Outcome reports how a mutation ended. Failures never surface as
// errors to the feed; the local state is rolled back to store truth
// instead.
type Outcome string

const (
	// OutcomeCommitted means the store now matches the local state.
	OutcomeCommitted Outcome = "committed"
	// OutcomeRolledBack means the commit failed and the post's local
	// engagement was replaced by refetched truth.
	OutcomeRolledBack Outcome = "rolled_back"
	// OutcomeCoalesced means an in-flight commit for the same slot
	// absorbed this request; it will settle on the latest requested
	// end state.
	OutcomeCoalesced Outcome = "coalesced"
)

// flight tracks one in-flight commit and the latest end state
// requested while it ran. Only the newest pending state matters;
// intermediate toggles cancel out.
type flight struct {
	hasPending      bool
	pendingVote     *valueobjects.VoteDirection
	pendingReaction bool
}

// MutationCoordinator applies vote and reaction toggles optimistically
// and commits the resulting end state to the store, one flight per
// (post, user, action) slot. The local state changes synchronously;
// the caller's outcome reflects how the commit settled.
type MutationCoordinator struct {
	userID     string
	store      *EngagementStore
	posts      ports.PostRepository
	votes      ports.VoteRepository
	reactions  ports.ReactionRepository
	replies    ports.ReplyRepository
	aggregator *Aggregator
	cfg        *domainconfig.DomainConfig
	logger     *zap.Logger
	metrics    *observability.Metrics

	mu      sync.Mutex
	flights map[MutationKey]*flight
}

// NewMutationCoordinator creates a coordinator bound to one user's
// engagement store.
func NewMutationCoordinator(
	userID string,
	store *EngagementStore,
	posts ports.PostRepository,
	votes ports.VoteRepository,
	reactions ports.ReactionRepository,
	replies ports.ReplyRepository,
	aggregator *Aggregator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *MutationCoordinator {
	return &MutationCoordinator{
		userID:     userID,
		store:      store,
		posts:      posts,
		votes:      votes,
		reactions:  reactions,
		replies:    replies,
		aggregator: aggregator,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		flights:    make(map[MutationKey]*flight),
	}
}

// CastVote toggles the user's vote on a post. The local summary is
// updated before any I/O. If a commit for the same slot is already in
// flight, the new end state is handed to it and the call returns
// immediately as coalesced; otherwise the call blocks until the flight
// drains. When policy forbids self-votes the call is rejected before
// any local state changes, with an empty outcome.
func (c *MutationCoordinator) CastVote(ctx context.Context, postID string, dir valueobjects.VoteDirection) (Outcome, error) {
	if !c.cfg.AllowSelfVotes {
		if err := c.rejectSelfAction(ctx, postID, "voting on your own post is not allowed"); err != nil {
			return "", err
		}
	}

	summary := c.store.ApplyVote(postID, dir)
	desired := summary.UserVoted

	key := MutationKey{PostID: postID, UserID: c.userID, Kind: mutationKindVote}

	c.mu.Lock()
	if f, inFlight := c.flights[key]; inFlight {
		f.hasPending = true
		f.pendingVote = desired
		c.mu.Unlock()
		c.observeCoalesced()
		return OutcomeCoalesced, nil
	}
	c.flights[key] = &flight{}
	c.mu.Unlock()

	return c.driveVoteFlight(ctx, key, desired)
}

func (c *MutationCoordinator) driveVoteFlight(ctx context.Context, key MutationKey, desired *valueobjects.VoteDirection) (Outcome, error) {
	for {
		if err := c.commitVote(ctx, key.PostID, desired); err != nil {
			c.logger.Warn("Vote commit failed, rolling back to store truth",
				zap.String("post_id", key.PostID),
				zap.Error(err),
			)
			c.rollback(ctx, key.PostID)
			c.clearFlight(key)
			c.observeOutcome(key.Kind, OutcomeRolledBack)
			return OutcomeRolledBack, err
		}

		c.mu.Lock()
		f := c.flights[key]
		if f != nil && f.hasPending {
			desired = f.pendingVote
			f.hasPending = false
			c.mu.Unlock()
			continue
		}
		delete(c.flights, key)
		c.mu.Unlock()

		c.observeOutcome(key.Kind, OutcomeCommitted)
		return OutcomeCommitted, nil
	}
}

// commitVote makes the store match the desired end state: nil deletes
// the user's record, a direction creates or rewrites it. Committing a
// state the store already holds is a no-op.
func (c *MutationCoordinator) commitVote(ctx context.Context, postID string, desired *valueobjects.VoteDirection) error {
	records, err := c.votes.List(ctx, ports.ListOptions{}.
		Eq(ports.FieldPostID, postID).
		Eq(ports.FieldUserID, c.userID))
	if err != nil {
		return err
	}

	var existing *entities.VoteRecord
	if len(records) > 0 {
		existing = &records[len(records)-1]
		if len(records) > 1 {
			c.logger.Warn("Multiple vote records for one user on one subject",
				zap.String("post_id", postID),
				zap.Int("count", len(records)),
			)
		}
	}

	switch {
	case desired == nil && existing == nil:
		return nil
	case desired == nil:
		return c.votes.Delete(ctx, existing.ID)
	case existing == nil:
		_, err := c.votes.Create(ctx, entities.VoteRecord{
			SubjectID: postID,
			UserID:    c.userID,
			Value:     desired.Value(),
		})
		return err
	case existing.Value != desired.Value():
		_, err := c.votes.UpdateValue(ctx, existing.ID, desired.Value())
		return err
	default:
		return nil
	}
}

// CastReaction toggles a reaction of the given type on a post. Same
// flight semantics as CastVote, with one slot per reaction type.
func (c *MutationCoordinator) CastReaction(ctx context.Context, postID, reactionType string) (Outcome, error) {
	if !c.cfg.AllowSelfReactions {
		if err := c.rejectSelfAction(ctx, postID, "reacting to your own post is not allowed"); err != nil {
			return "", err
		}
	}

	desired := c.store.ApplyReaction(postID, reactionType)

	key := MutationKey{PostID: postID, UserID: c.userID, Kind: mutationKindReactionPrefix + reactionType}

	c.mu.Lock()
	if f, inFlight := c.flights[key]; inFlight {
		f.hasPending = true
		f.pendingReaction = desired
		c.mu.Unlock()
		c.observeCoalesced()
		return OutcomeCoalesced, nil
	}
	c.flights[key] = &flight{}
	c.mu.Unlock()

	return c.driveReactionFlight(ctx, key, reactionType, desired)
}

func (c *MutationCoordinator) driveReactionFlight(ctx context.Context, key MutationKey, reactionType string, desired bool) (Outcome, error) {
	for {
		if err := c.commitReaction(ctx, key.PostID, reactionType, desired); err != nil {
			c.logger.Warn("Reaction commit failed, rolling back to store truth",
				zap.String("post_id", key.PostID),
				zap.String("reaction_type", reactionType),
				zap.Error(err),
			)
			c.rollback(ctx, key.PostID)
			c.clearFlight(key)
			c.observeOutcome(key.Kind, OutcomeRolledBack)
			return OutcomeRolledBack, err
		}

		c.mu.Lock()
		f := c.flights[key]
		if f != nil && f.hasPending {
			desired = f.pendingReaction
			f.hasPending = false
			c.mu.Unlock()
			continue
		}
		delete(c.flights, key)
		c.mu.Unlock()

		c.observeOutcome(key.Kind, OutcomeCommitted)
		return OutcomeCommitted, nil
	}
}

func (c *MutationCoordinator) commitReaction(ctx context.Context, postID, reactionType string, desired bool) error {
	records, err := c.reactions.List(ctx, ports.ListOptions{}.
		Eq(ports.FieldPostID, postID).
		Eq(ports.FieldUserID, c.userID).
		Eq(ports.FieldReactionType, reactionType))
	if err != nil {
		return err
	}

	if desired {
		if len(records) > 0 {
			return nil
		}
		_, err := c.reactions.Create(ctx, entities.ReactionRecord{
			PostID:       postID,
			UserID:       c.userID,
			ReactionType: reactionType,
		})
		return err
	}

	for _, r := range records {
		if err := c.reactions.Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

// rejectSelfAction errors when the post belongs to the acting user. A
// post that cannot be fetched passes; the store is the authority on
// whether the write itself succeeds.
func (c *MutationCoordinator) rejectSelfAction(ctx context.Context, postID, message string) error {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		return nil
	}
	if post.AuthorID == c.userID {
		return pkgerrors.NewValidationError(message)
	}
	return nil
}

// rollback replaces one post's local engagement with refetched truth.
// The refetch outlives the request context; a canceled caller must not
// leave optimistic state behind. If the refetch itself fails the stale
// local state stands until the next scheduled refresh.
func (c *MutationCoordinator) rollback(ctx context.Context, postID string) {
	ctx = context.WithoutCancel(ctx)

	votes, err := DrainPages(ctx, c.cfg.StorePageSize, 0, c.votes.List,
		ports.ListOptions{}.Eq(ports.FieldPostID, postID))
	if err != nil {
		c.logger.Error("Rollback refetch failed", zap.String("post_id", postID), zap.Error(err))
		return
	}
	reactions, err := DrainPages(ctx, c.cfg.StorePageSize, 0, c.reactions.List,
		ports.ListOptions{}.Eq(ports.FieldPostID, postID))
	if err != nil {
		c.logger.Error("Rollback refetch failed", zap.String("post_id", postID), zap.Error(err))
		return
	}
	replies, err := DrainPages(ctx, c.cfg.StorePageSize, 0, c.replies.List,
		ports.ListOptions{}.Eq(ports.FieldParentPostID, postID))
	if err != nil {
		c.logger.Error("Rollback refetch failed", zap.String("post_id", postID), zap.Error(err))
		return
	}

	e := c.aggregator.AggregateSubject(postID, votes, reactions, len(replies), c.userID)
	c.store.SetEngagement(postID, e)
}

// OutstandingKeys snapshots the slots with commits still in flight.
// The refresh path preserves their local deltas when swapping in fresh
// state.
func (c *MutationCoordinator) OutstandingKeys() []MutationKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]MutationKey, 0, len(c.flights))
	for k := range c.flights {
		keys = append(keys, k)
	}
	return keys
}

func (c *MutationCoordinator) clearFlight(key MutationKey) {
	c.mu.Lock()
	delete(c.flights, key)
	c.mu.Unlock()
}

func (c *MutationCoordinator) observeOutcome(kind string, outcome Outcome) {
	if c.metrics != nil {
		c.metrics.MutationOutcomes.WithLabelValues(kind, string(outcome)).Inc()
	}
}

func (c *MutationCoordinator) observeCoalesced() {
	if c.metrics != nil {
		c.metrics.CoalescedRequests.Inc()
	}
}
