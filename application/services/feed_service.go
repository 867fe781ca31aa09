package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"campuspulse-backend/application/ports"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/domain/core/entities"
	domainservices "campuspulse-backend/domain/services"
	"campuspulse-backend/pkg/observability"
	"campuspulse-backend/pkg/utils"
)

// FeedItem pairs a post with its engagement summary for rendering.
type FeedItem struct {
	Post       entities.Post
	Engagement aggregates.PostEngagement
}

// ReplyItem pairs a reply with its own vote summary.
type ReplyItem struct {
	Reply entities.ReplyRecord
	Votes aggregates.VoteSummary
}

// PostDetail is the single-post view: the post, its engagement, and
// its replies with their vote summaries.
type PostDetail struct {
	Post       entities.Post
	Engagement aggregates.PostEngagement
	Replies    []ReplyItem
}

// FeedService owns one user's feed: it refreshes the post list and
// engagement state from the stores and serves ranked, filtered views
// of whatever is already resident. Sorting and filtering never touch
// the network.
type FeedService struct {
	userID      string
	posts       ports.PostRepository
	votes       ports.VoteRepository
	reactions   ports.ReactionRepository
	replies     ports.ReplyRepository
	store       *EngagementStore
	outstanding func() []MutationKey
	aggregator  *Aggregator
	cfg         *domainconfig.DomainConfig
	logger      *zap.Logger
	metrics     *observability.Metrics
	clock       utils.Clock

	mu        sync.RWMutex
	postCache []entities.Post
}

// NewFeedService creates a feed service for one user. outstanding
// supplies the mutation slots still in flight at refresh time.
func NewFeedService(
	userID string,
	posts ports.PostRepository,
	votes ports.VoteRepository,
	reactions ports.ReactionRepository,
	replies ports.ReplyRepository,
	store *EngagementStore,
	outstanding func() []MutationKey,
	aggregator *Aggregator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
	clock utils.Clock,
) *FeedService {
	return &FeedService{
		userID:      userID,
		posts:       posts,
		votes:       votes,
		reactions:   reactions,
		replies:     replies,
		store:       store,
		outstanding: outstanding,
		aggregator:  aggregator,
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
	}
}

// RefreshAll pulls the full post list and every engagement record,
// aggregates them, and swaps the result into the store. In-flight
// mutations keep their local deltas across the swap. A canceled
// context discards the fetched state instead of installing it, so a
// torn-down caller never resurrects stale data.
func (s *FeedService) RefreshAll(ctx context.Context) error {
	posts, err := DrainPages(ctx, s.cfg.StorePageSize, s.cfg.MaxPostsPerFeed, s.posts.List,
		ports.ListOptions{OrderBy: &ports.Order{Field: ports.FieldCreatedAt, Desc: true}})
	if err != nil {
		return err
	}
	votes, err := DrainPages(ctx, s.cfg.StorePageSize, 0, s.votes.List, ports.ListOptions{})
	if err != nil {
		return err
	}
	reactions, err := DrainPages(ctx, s.cfg.StorePageSize, 0, s.reactions.List, ports.ListOptions{})
	if err != nil {
		return err
	}
	replies, err := DrainPages(ctx, s.cfg.StorePageSize, 0, s.replies.List, ports.ListOptions{})
	if err != nil {
		return err
	}

	state := s.aggregator.Aggregate(posts, votes, reactions, replies, s.userID)

	if err := ctx.Err(); err != nil {
		return err
	}

	s.store.Reconcile(state, s.outstanding())

	s.mu.Lock()
	s.postCache = posts
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.TrackedPosts.Set(float64(s.store.TrackedPosts()))
	}
	return nil
}

// Feed returns the ranked, filtered feed from resident state. The
// first call on a cold session performs an initial refresh.
func (s *FeedService) Feed(ctx context.Context, mode domainservices.SortMode, filters domainservices.FeedFilters) ([]FeedItem, error) {
	s.mu.RLock()
	cold := s.postCache == nil
	s.mu.RUnlock()

	if cold {
		if err := s.RefreshAll(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	posts := make([]entities.Post, len(s.postCache))
	copy(posts, s.postCache)
	s.mu.RUnlock()

	state := s.store.Snapshot()
	ranked := domainservices.Rank(posts, state, mode, filters, s.clock.Now())

	items := make([]FeedItem, 0, len(ranked))
	for _, p := range ranked {
		e, ok := state[p.ID]
		if !ok {
			e = aggregates.ZeroEngagement()
		}
		items = append(items, FeedItem{Post: p, Engagement: e})
	}
	return items, nil
}

// PostDetail returns one post with its replies and their vote
// summaries. Replies are fetched fresh; the post's own engagement
// comes from resident state so optimistic deltas stay visible.
func (s *FeedService) PostDetail(ctx context.Context, postID string, replySort domainservices.ReplySort) (PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return PostDetail{}, err
	}

	replies, err := DrainPages(ctx, s.cfg.ReplyPageSize, 0, s.replies.List,
		ports.ListOptions{OrderBy: &ports.Order{Field: ports.FieldCreatedAt, Desc: true}}.
			Eq(ports.FieldParentPostID, postID))
	if err != nil {
		return PostDetail{}, err
	}

	var replyVotes []entities.VoteRecord
	for _, r := range replies {
		votes, err := s.votes.List(ctx, ports.ListOptions{}.Eq(ports.FieldPostID, r.ID))
		if err != nil {
			return PostDetail{}, err
		}
		replyVotes = append(replyVotes, votes...)
	}
	summaries := s.aggregator.ReplyVoteSummaries(replies, replyVotes, s.userID)

	ranked := domainservices.RankReplies(replies, summaries, replySort)
	items := make([]ReplyItem, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, ReplyItem{Reply: r, Votes: summaries[r.ID]})
	}

	engagement, ok := s.store.Get(postID)
	if !ok {
		engagement = aggregates.ZeroEngagement()
	}

	return PostDetail{Post: post, Engagement: engagement, Replies: items}, nil
}
