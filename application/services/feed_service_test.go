package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
	domainservices "campuspulse-backend/domain/services"
	"campuspulse-backend/infrastructure/persistence/memory"
)

type feedFixture struct {
	clock     *stepClock
	posts     *memory.PostStore
	votes     *memory.VoteStore
	reactions *memory.ReactionStore
	replies   *memory.ReplyStore
	store     *EngagementStore
	svc       *FeedService
}

func newFeedFixture(t *testing.T, userID string) *feedFixture {
	t.Helper()
	clock := newStepClock()

	f := &feedFixture{
		clock:     clock,
		posts:     memory.NewPostStore(clock),
		votes:     memory.NewVoteStore(),
		reactions: memory.NewReactionStore(),
		replies:   memory.NewReplyStore(clock),
		store:     NewEngagementStore(),
	}
	f.svc = NewFeedService(
		userID, f.posts, f.votes, f.reactions, f.replies, f.store,
		func() []MutationKey { return nil },
		NewAggregator(zap.NewNop()),
		domainconfig.DefaultDomainConfig(),
		zap.NewNop(), nil, clock,
	)
	return f
}

func (f *feedFixture) addPost(t *testing.T, authorID, text string, category valueobjects.Category) entities.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), entities.Post{
		AuthorID: authorID, Text: text, Category: category,
	})
	require.NoError(t, err)
	return p
}

func TestFeedService_RefreshAll_PopulatesEngagement(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")

	p1 := f.addPost(t, "author1", "first", valueobjects.CategoryGeneral)
	_, err := f.votes.Create(ctx, entities.VoteRecord{SubjectID: p1.ID, UserID: "user1", Value: 1})
	require.NoError(t, err)
	_, err = f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: p1.ID, AuthorID: "user2", Text: "re"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RefreshAll(ctx))

	e, ok := f.store.Get(p1.ID)
	require.True(t, ok)
	assert.Equal(t, 1, e.Votes.Upvotes)
	assert.Equal(t, 1, e.ReplyCount)
	require.NotNil(t, e.Votes.UserVoted)
	assert.Equal(t, valueobjects.VoteUp, *e.Votes.UserVoted)
}

func TestFeedService_Feed_ColdSessionRefreshesFirst(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")
	p := f.addPost(t, "author1", "hello", valueobjects.CategoryGeneral)

	items, err := f.svc.Feed(ctx, domainservices.SortRecent, domainservices.FeedFilters{})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].Post.ID)
	assert.Equal(t, 1, f.store.TrackedPosts())
}

func TestFeedService_Feed_RecentOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")
	older := f.addPost(t, "author1", "older", valueobjects.CategoryGeneral)
	newer := f.addPost(t, "author2", "newer", valueobjects.CategoryGeneral)

	items, err := f.svc.Feed(ctx, domainservices.SortRecent, domainservices.FeedFilters{})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].Post.ID)
	assert.Equal(t, older.ID, items[1].Post.ID)
}

func TestFeedService_Feed_TrendingUsesEngagement(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")
	quiet := f.addPost(t, "author1", "quiet", valueobjects.CategoryGeneral)
	busy := f.addPost(t, "author2", "busy", valueobjects.CategoryGeneral)

	for _, u := range []string{"user2", "user3"} {
		_, err := f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: busy.ID, AuthorID: u, Text: "re"})
		require.NoError(t, err)
	}
	_, err := f.votes.Create(ctx, entities.VoteRecord{SubjectID: quiet.ID, UserID: "user2", Value: 1})
	require.NoError(t, err)

	items, err := f.svc.Feed(ctx, domainservices.SortTrending, domainservices.FeedFilters{})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, busy.ID, items[0].Post.ID, "two replies outweigh one upvote")
}

func TestFeedService_Feed_AppliesCategoryFilter(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")
	f.addPost(t, "author1", "class q", valueobjects.CategoryAcademics)
	food := f.addPost(t, "author2", "pizza night", valueobjects.CategoryFood)

	items, err := f.svc.Feed(ctx, domainservices.SortRecent, domainservices.FeedFilters{
		Category: valueobjects.CategoryFood,
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, food.ID, items[0].Post.ID)
}

func TestFeedService_RefreshAll_CanceledContextKeepsResidentState(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")
	f.addPost(t, "author1", "first", valueobjects.CategoryGeneral)
	require.NoError(t, f.svc.RefreshAll(ctx))
	require.Equal(t, 1, f.store.TrackedPosts())

	f.addPost(t, "author2", "second", valueobjects.CategoryGeneral)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err := f.svc.RefreshAll(canceled)

	require.Error(t, err)
	assert.Equal(t, 1, f.store.TrackedPosts(), "a canceled refresh must not install its state")
}

func TestFeedService_PostDetail(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")
	post := f.addPost(t, "author1", "question", valueobjects.CategoryGeneral)

	first, err := f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user2", Text: "meh"})
	require.NoError(t, err)
	popular, err := f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user3", Text: "this"})
	require.NoError(t, err)
	_, err = f.votes.Create(ctx, entities.VoteRecord{SubjectID: popular.ID, UserID: "user1", Value: 1})
	require.NoError(t, err)
	_, err = f.votes.Create(ctx, entities.VoteRecord{SubjectID: popular.ID, UserID: "user2", Value: 1})
	require.NoError(t, err)

	require.NoError(t, f.svc.RefreshAll(ctx))
	detail, err := f.svc.PostDetail(ctx, post.ID, domainservices.ReplySortVotes)

	require.NoError(t, err)
	assert.Equal(t, post.ID, detail.Post.ID)
	assert.Equal(t, 2, detail.Engagement.ReplyCount)
	require.Len(t, detail.Replies, 2)
	assert.Equal(t, popular.ID, detail.Replies[0].Reply.ID)
	assert.Equal(t, 2, detail.Replies[0].Votes.Upvotes)
	assert.Equal(t, first.ID, detail.Replies[1].Reply.ID)
}

func TestFeedService_PostDetail_UnknownPost(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t, "user1")

	_, err := f.svc.PostDetail(ctx, "missing", domainservices.ReplySortNewest)

	assert.Error(t, err)
}
