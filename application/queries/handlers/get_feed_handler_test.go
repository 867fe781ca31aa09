package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campuspulse-backend/application/queries"
	"campuspulse-backend/application/services"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/infrastructure/persistence/memory"
)

type secondClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *secondClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type handlerFixture struct {
	posts     *memory.PostStore
	votes     *memory.VoteStore
	reactions *memory.ReactionStore
	replies   *memory.ReplyStore
	sessions  *services.SessionManager
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	clock := &secondClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	logger := zap.NewNop()
	cfg := domainconfig.DefaultDomainConfig()
	aggregator := services.NewAggregator(logger)

	f := &handlerFixture{
		posts:     memory.NewPostStore(clock),
		votes:     memory.NewVoteStore(),
		reactions: memory.NewReactionStore(),
		replies:   memory.NewReplyStore(clock),
	}

	factory := func(userID string) *services.Session {
		store := services.NewEngagementStore()
		coordinator := services.NewMutationCoordinator(
			userID, store, f.posts, f.votes, f.reactions, f.replies, aggregator, cfg, logger, nil)
		feed := services.NewFeedService(
			userID, f.posts, f.votes, f.reactions, f.replies, store,
			coordinator.OutstandingKeys, aggregator, cfg, logger, nil, clock)
		notifications := services.NewNotificationService(userID, f.posts, f.replies, cfg, logger)
		return &services.Session{
			UserID:        userID,
			Store:         store,
			Coordinator:   coordinator,
			Feed:          feed,
			Notifications: notifications,
		}
	}
	f.sessions = services.NewSessionManager(factory, cfg.SessionIdleTimeout, clock, logger, nil)
	return f
}

func TestGetFeedHandler_Handle_ReturnsRankedItems(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	_, err := f.posts.Create(ctx, entities.Post{AuthorID: "author1", Text: "older"})
	require.NoError(t, err)
	newer, err := f.posts.Create(ctx, entities.Post{AuthorID: "author2", Text: "newer", IsAnonymous: true})
	require.NoError(t, err)

	handler := NewGetFeedHandler(f.sessions, zap.NewNop())
	result, err := handler.Handle(ctx, queries.GetFeedQuery{UserID: "user1"})

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.Total)
	assert.False(t, result.HasMore)

	top := result.Items[0]
	assert.Equal(t, newer.ID, top.ID)
	assert.Empty(t, top.AuthorID, "anonymous posts never expose their author")
	assert.True(t, top.IsAnonymous)
	assert.Equal(t, "general", top.Category)
}

func TestGetFeedHandler_Handle_Pages(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.posts.Create(ctx, entities.Post{AuthorID: "author1", Text: "post"})
		require.NoError(t, err)
	}

	handler := NewGetFeedHandler(f.sessions, zap.NewNop())

	first, err := handler.Handle(ctx, queries.GetFeedQuery{UserID: "user1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, 5, first.Total)
	assert.True(t, first.HasMore)

	last, err := handler.Handle(ctx, queries.GetFeedQuery{UserID: "user1", Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasMore)

	past, err := handler.Handle(ctx, queries.GetFeedQuery{UserID: "user1", Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past.Items)
}

func TestGetFeedHandler_Handle_ReflectsOptimisticVote(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	post, err := f.posts.Create(ctx, entities.Post{AuthorID: "author1", Text: "vote me"})
	require.NoError(t, err)

	session := f.sessions.Get("user1")
	require.NoError(t, session.Feed.RefreshAll(ctx))
	_, err = session.Coordinator.CastVote(ctx, post.ID, "up")
	require.NoError(t, err)

	handler := NewGetFeedHandler(f.sessions, zap.NewNop())
	result, err := handler.Handle(ctx, queries.GetFeedQuery{UserID: "user1"})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Items[0].Votes.Upvotes)
	assert.Equal(t, "up", result.Items[0].Votes.UserVoted)
}

func TestGetNotificationsHandler_Handle_ColdInboxRefreshes(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	post, err := f.posts.Create(ctx, entities.Post{AuthorID: "me", Text: "mine"})
	require.NoError(t, err)
	_, err = f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user2", Text: "hey"})
	require.NoError(t, err)

	handler := NewGetNotificationsHandler(f.sessions, zap.NewNop())
	result, err := handler.Handle(ctx, queries.GetNotificationsQuery{UserID: "me"})

	require.NoError(t, err)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, post.ID, result.Notifications[0].PostID)
	assert.Equal(t, "mine", result.Notifications[0].ParentPostText)
	assert.Equal(t, 1, result.UnreadCount)
}

func TestGetNotificationsHandler_Handle_UnreadOnly(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	post, err := f.posts.Create(ctx, entities.Post{AuthorID: "me", Text: "mine"})
	require.NoError(t, err)
	read, err := f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user2", Text: "seen", IsRead: true})
	require.NoError(t, err)
	unread, err := f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user3", Text: "new"})
	require.NoError(t, err)
	_ = read

	handler := NewGetNotificationsHandler(f.sessions, zap.NewNop())
	result, err := handler.Handle(ctx, queries.GetNotificationsQuery{UserID: "me", UnreadOnly: true})

	require.NoError(t, err)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, unread.ID, result.Notifications[0].ReplyID)
	assert.Equal(t, 1, result.UnreadCount)
}

func TestGetPostHandler_Handle(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t)

	post, err := f.posts.Create(ctx, entities.Post{AuthorID: "author1", Text: "question"})
	require.NoError(t, err)
	reply, err := f.replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user2", Text: "answer", IsAnonymous: true})
	require.NoError(t, err)

	handler := NewGetPostHandler(f.sessions, zap.NewNop())
	result, err := handler.Handle(ctx, queries.GetPostQuery{UserID: "user1", PostID: post.ID})

	require.NoError(t, err)
	assert.Equal(t, post.ID, result.Post.ID)
	require.Len(t, result.Replies, 1)
	assert.Equal(t, reply.ID, result.Replies[0].ID)
	assert.Empty(t, result.Replies[0].AuthorID)
}
