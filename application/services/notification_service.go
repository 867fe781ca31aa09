package services

import (
	"context"
	"sort"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"campuspulse-backend/application/ports"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/pkg/utils"
)

// Notification is a reply to one of the user's posts, surfaced as an
// inbox entry. ReplyID doubles as the notification id; the same reply
// can never appear twice. ParentPostText gives the display context for
// which post was replied to.
type Notification struct {
	ReplyID        string
	PostID         string
	AuthorID       string
	Preview        string
	ParentPostText string
	IsAnonymous    bool
	IsRead         bool
	CreatedAt      string
}

const previewLength = 120

// NotificationService maintains one user's notification inbox:
// replies to their posts, deduplicated by reply id, with read state
// that can be flipped optimistically and survives refreshes.
type NotificationService struct {
	userID  string
	posts   ports.PostRepository
	replies ports.ReplyRepository
	cfg     *domainconfig.DomainConfig
	logger  *zap.Logger

	mu        sync.RWMutex
	entries   map[string]entities.ReplyRecord
	postTexts map[string]string
	order     []string
}

// NewNotificationService creates an empty inbox for one user.
func NewNotificationService(
	userID string,
	posts ports.PostRepository,
	replies ports.ReplyRepository,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		userID:    userID,
		posts:     posts,
		replies:   replies,
		cfg:       cfg,
		logger:    logger,
		entries:   make(map[string]entities.ReplyRecord),
		postTexts: make(map[string]string),
	}
}

// Refresh pulls replies to every post the user authored and merges
// them into the inbox, tagging each with its parent post's text. A
// reply already present keeps its local read flag when that flag is
// ahead of the store: marking read locally can never be undone by a
// refresh that raced the commit. Self-replies never notify.
func (s *NotificationService) Refresh(ctx context.Context) error {
	myPosts, err := DrainPages(ctx, s.cfg.StorePageSize, 0, s.posts.List,
		ports.ListOptions{}.Eq(ports.FieldAuthorID, s.userID))
	if err != nil {
		return err
	}

	texts := make(map[string]string, len(myPosts))
	var fetched []entities.ReplyRecord
	for _, p := range myPosts {
		texts[p.ID] = p.Text
		replies, err := DrainPages(ctx, s.cfg.ReplyPageSize, 0, s.replies.List,
			ports.ListOptions{}.Eq(ports.FieldParentPostID, p.ID))
		if err != nil {
			return err
		}
		for _, r := range replies {
			if r.AuthorID == s.userID {
				continue
			}
			fetched = append(fetched, r)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]entities.ReplyRecord, len(fetched))
	for _, r := range fetched {
		if local, ok := s.entries[r.ID]; ok && local.IsRead && !r.IsRead {
			r.IsRead = true
		}
		next[r.ID] = r
	}

	order := make([]string, 0, len(next))
	for id := range next {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := next[order[i]], next[order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	s.entries = next
	s.postTexts = texts
	s.order = order
	return nil
}

// Notifications returns the inbox, newest first.
func (s *NotificationService) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0, len(s.order))
	for _, id := range s.order {
		r := s.entries[id]
		out = append(out, toNotification(r, s.postTexts[r.ParentPostID]))
	}
	return out
}

// Unread counts unread entries. Never negative.
func (s *NotificationService) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.entries {
		if !r.IsRead {
			n++
		}
	}
	return n
}

// MarkRead flips one entry to read locally, then commits. On failure
// the entry is restored from store truth so the counter cannot drift.
func (s *NotificationService) MarkRead(ctx context.Context, replyID string) error {
	s.mu.Lock()
	entry, ok := s.entries[replyID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if entry.IsRead {
		s.mu.Unlock()
		return nil
	}
	entry.IsRead = true
	s.entries[replyID] = entry
	s.mu.Unlock()

	if err := s.replies.UpdateReadState(ctx, replyID, true); err != nil {
		s.logger.Warn("Mark-read commit failed, restoring from store",
			zap.String("reply_id", replyID),
			zap.Error(err),
		)
		s.restore(context.WithoutCancel(ctx), replyID)
		return err
	}
	return nil
}

// MarkAllRead flips every unread entry locally, then commits each.
// Entries whose commit fails are restored individually; the rest stay
// read.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	var pending []string
	for id, r := range s.entries {
		if !r.IsRead {
			r.IsRead = true
			s.entries[id] = r
			pending = append(pending, id)
		}
	}
	s.mu.Unlock()

	var firstErr error
	for _, id := range pending {
		if err := s.replies.UpdateReadState(ctx, id, true); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("Mark-read commit failed, restoring from store",
				zap.String("reply_id", id),
				zap.Error(err),
			)
			s.restore(context.WithoutCancel(ctx), id)
		}
	}
	return firstErr
}

// restore refetches one reply and replaces the local entry with store
// truth. A failed refetch leaves the optimistic flag in place until
// the next scheduled refresh corrects it.
func (s *NotificationService) restore(ctx context.Context, replyID string) {
	record, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		s.logger.Error("Notification refetch failed", zap.String("reply_id", replyID), zap.Error(err))
		return
	}

	s.mu.Lock()
	if _, ok := s.entries[replyID]; ok {
		s.entries[replyID] = record
	}
	s.mu.Unlock()
}

func toNotification(r entities.ReplyRecord, parentPostText string) Notification {
	preview := r.Text
	if utf8.RuneCountInString(preview) > previewLength {
		// Truncate on a rune boundary, never mid-character.
		runes := []rune(preview)
		preview = string(runes[:previewLength])
	}
	authorID := r.AuthorID
	if r.IsAnonymous {
		authorID = ""
	}
	return Notification{
		ReplyID:        r.ID,
		PostID:         r.ParentPostID,
		AuthorID:       authorID,
		Preview:        preview,
		ParentPostText: parentPostText,
		IsAnonymous:    r.IsAnonymous,
		IsRead:         r.IsRead,
		CreatedAt:      utils.FormatTimestamp(r.CreatedAt),
	}
}
