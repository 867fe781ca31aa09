package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campuspulse-backend/application/ports"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/infrastructure/persistence/memory"
	pkgerrors "campuspulse-backend/pkg/errors"
)

// stepClock advances one second per reading so created records get
// distinct, ordered timestamps.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// stubReplies lets tests break or swallow read-state writes while
// reads keep hitting the real store.
type stubReplies struct {
	ports.ReplyRepository
	updateErr  error
	dropWrites bool
}

func (s *stubReplies) UpdateReadState(ctx context.Context, id string, isRead bool) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.dropWrites {
		return nil
	}
	return s.ReplyRepository.UpdateReadState(ctx, id, isRead)
}

type inboxFixture struct {
	posts   *memory.PostStore
	replies *memory.ReplyStore
	svc     *NotificationService
	post    entities.Post
}

func newInboxFixture(t *testing.T, repliesRepo ports.ReplyRepository) *inboxFixture {
	t.Helper()
	ctx := context.Background()
	clock := newStepClock()

	f := &inboxFixture{
		posts:   memory.NewPostStore(clock),
		replies: memory.NewReplyStore(clock),
	}
	if repliesRepo == nil {
		repliesRepo = f.replies
	}

	post, err := f.posts.Create(ctx, entities.Post{AuthorID: "me", Text: "anyone else hate the new dining hall hours"})
	require.NoError(t, err)
	f.post = post

	f.svc = NewNotificationService("me", f.posts, repliesRepo,
		domainconfig.DefaultDomainConfig(), zap.NewNop())
	return f
}

func (f *inboxFixture) addReply(t *testing.T, authorID, text string) entities.ReplyRecord {
	t.Helper()
	r, err := f.replies.Create(context.Background(), entities.ReplyRecord{
		ParentPostID: f.post.ID,
		AuthorID:     authorID,
		Text:         text,
	})
	require.NoError(t, err)
	return r
}

func TestNotificationService_Refresh_BuildsInboxNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)

	first := f.addReply(t, "user2", "same, lines are brutal")
	second := f.addReply(t, "user3", "just go at 2pm")

	require.NoError(t, f.svc.Refresh(ctx))

	got := f.svc.Notifications()
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ReplyID)
	assert.Equal(t, first.ID, got[1].ReplyID)
	assert.Equal(t, f.post.ID, got[0].PostID)
	assert.Equal(t, 2, f.svc.Unread())
}

func TestNotificationService_EntriesCarryParentPostText(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)
	f.addReply(t, "user2", "same, lines are brutal")

	require.NoError(t, f.svc.Refresh(ctx))

	got := f.svc.Notifications()
	require.Len(t, got, 1)
	assert.Equal(t, "anyone else hate the new dining hall hours", got[0].ParentPostText,
		"the entry names the post that was replied to")
}

func TestNotificationService_PreviewTruncatesOnRuneBoundary(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)
	f.addReply(t, "user2", strings.Repeat("é", previewLength+40))

	require.NoError(t, f.svc.Refresh(ctx))

	got := f.svc.Notifications()
	require.Len(t, got, 1)
	assert.True(t, utf8.ValidString(got[0].Preview))
	assert.Equal(t, previewLength, utf8.RuneCountInString(got[0].Preview))
}

func TestNotificationService_Refresh_ExcludesSelfReplies(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)

	f.addReply(t, "me", "replying to myself")
	other := f.addReply(t, "user2", "ok")

	require.NoError(t, f.svc.Refresh(ctx))

	got := f.svc.Notifications()
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].ReplyID)
}

func TestNotificationService_Refresh_DedupesByReplyID(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)
	f.addReply(t, "user2", "hello")

	require.NoError(t, f.svc.Refresh(ctx))
	require.NoError(t, f.svc.Refresh(ctx))

	assert.Len(t, f.svc.Notifications(), 1)
}

func TestNotificationService_Refresh_LocalReadWins(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)

	// Writes report success without reaching the store, simulating a
	// commit the next refresh has not observed yet.
	stub := &stubReplies{ReplyRepository: f.replies, dropWrites: true}
	f.svc = NewNotificationService("me", f.posts, stub, domainconfig.DefaultDomainConfig(), zap.NewNop())
	reply := f.addReply(t, "user2", "hey")

	require.NoError(t, f.svc.Refresh(ctx))
	require.NoError(t, f.svc.MarkRead(ctx, reply.ID))
	assert.Equal(t, 0, f.svc.Unread())

	// The store still says unread; the local flag must not regress.
	require.NoError(t, f.svc.Refresh(ctx))
	assert.Equal(t, 0, f.svc.Unread())
}

func TestNotificationService_MarkRead_RestoresOnFailedCommit(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	posts := memory.NewPostStore(clock)
	replies := memory.NewReplyStore(clock)

	post, err := posts.Create(ctx, entities.Post{AuthorID: "me", Text: "hi"})
	require.NoError(t, err)
	reply, err := replies.Create(ctx, entities.ReplyRecord{ParentPostID: post.ID, AuthorID: "user2", Text: "yo"})
	require.NoError(t, err)

	stub := &stubReplies{
		ReplyRepository: replies,
		updateErr:       pkgerrors.NewNetworkError("update reply", errors.New("connection reset")),
	}
	svc := NewNotificationService("me", posts, stub, domainconfig.DefaultDomainConfig(), zap.NewNop())

	require.NoError(t, svc.Refresh(ctx))
	require.Error(t, svc.MarkRead(ctx, reply.ID))

	assert.Equal(t, 1, svc.Unread(), "the optimistic flip is undone from store truth")
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)
	r1 := f.addReply(t, "user2", "one")
	r2 := f.addReply(t, "user3", "two")

	require.NoError(t, f.svc.Refresh(ctx))
	require.NoError(t, f.svc.MarkAllRead(ctx))

	assert.Equal(t, 0, f.svc.Unread())
	for _, id := range []string{r1.ID, r2.ID} {
		stored, err := f.replies.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.IsRead)
	}
}

func TestNotificationService_MarkRead_UnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)

	assert.NoError(t, f.svc.MarkRead(ctx, "missing"))
	assert.Equal(t, 0, f.svc.Unread())
}

func TestNotificationService_AnonymousReplyHidesAuthor(t *testing.T) {
	ctx := context.Background()
	f := newInboxFixture(t, nil)
	_, err := f.replies.Create(ctx, entities.ReplyRecord{
		ParentPostID: f.post.ID, AuthorID: "user2", Text: "secret", IsAnonymous: true,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Refresh(ctx))

	got := f.svc.Notifications()
	require.Len(t, got, 1)
	assert.Empty(t, got[0].AuthorID)
	assert.True(t, got[0].IsAnonymous)
}
