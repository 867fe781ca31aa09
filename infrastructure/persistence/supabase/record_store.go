// Package supabase implements the repositories against Supabase
// tables via PostgREST.
package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"campuspulse-backend/application/ports"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/utils"
)

const (
	tablePosts     = "posts"
	tableVotes     = "votes"
	tableReactions = "reactions"
	tableReplies   = "replies"
)

// NewClient builds the shared Supabase client.
func NewClient(url, apiKey string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return client, nil
}

type postRow struct {
	ID          string `json:"id,omitempty"`
	AuthorID    string `json:"authorId"`
	IsAnonymous bool   `json:"isAnonymous"`
	Category    string `json:"category,omitempty"`
	Text        string `json:"text"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

type voteRow struct {
	ID     string `json:"id,omitempty"`
	PostID string `json:"postId"`
	UserID string `json:"userId"`
	Value  int    `json:"value"`
}

type reactionRow struct {
	ID           string `json:"id,omitempty"`
	PostID       string `json:"postId"`
	UserID       string `json:"userId"`
	ReactionType string `json:"reactionType"`
}

type replyRow struct {
	ID           string `json:"id,omitempty"`
	ParentPostID string `json:"parentPostId"`
	AuthorID     string `json:"authorId"`
	Text         string `json:"text"`
	IsAnonymous  bool   `json:"isAnonymous"`
	IsRead       bool   `json:"isRead"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

func applyList(fb *postgrest.FilterBuilder, opts ports.ListOptions) *postgrest.FilterBuilder {
	for _, eq := range opts.Equals {
		fb = fb.Eq(eq.Field, fmt.Sprintf("%v", eq.Value))
	}
	if opts.OrderBy != nil {
		fb = fb.Order(opts.OrderBy.Field, &postgrest.OrderOpts{Ascending: !opts.OrderBy.Desc})
	}
	if opts.Limit > 0 {
		fb = fb.Range(opts.Offset, opts.Offset+opts.Limit-1, "")
	}
	return fb
}

func parseCreatedAt(raw string) time.Time {
	t, err := utils.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// PostStore is the Supabase post repository.
type PostStore struct {
	client *supabase.Client
}

// NewPostStore creates a post repository.
func NewPostStore(client *supabase.Client) *PostStore {
	return &PostStore{client: client}
}

// List returns posts matching the options.
func (s *PostStore) List(_ context.Context, opts ports.ListOptions) ([]entities.Post, error) {
	var rows []postRow
	fb := applyList(s.client.From(tablePosts).Select("*", "", false), opts)
	if _, err := fb.ExecuteTo(&rows); err != nil {
		return nil, pkgerrors.NewNetworkError("posts.list", err)
	}

	out := make([]entities.Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// GetByID returns one post.
func (s *PostStore) GetByID(_ context.Context, id string) (entities.Post, error) {
	var rows []postRow
	if _, err := s.client.From(tablePosts).Select("*", "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return entities.Post{}, pkgerrors.NewNetworkError("posts.get", err)
	}
	if len(rows) == 0 {
		return entities.Post{}, pkgerrors.NewNotFoundError("post")
	}
	return rows[0].toEntity(), nil
}

// Create inserts a post and returns the stored row.
func (s *PostStore) Create(_ context.Context, draft entities.Post) (entities.Post, error) {
	row := postRow{
		AuthorID:    draft.AuthorID,
		IsAnonymous: draft.IsAnonymous,
		Category:    draft.Category.String(),
		Text:        draft.Text,
	}
	var created []postRow
	if _, err := s.client.From(tablePosts).Insert(row, false, "", "representation", "").ExecuteTo(&created); err != nil {
		return entities.Post{}, pkgerrors.NewNetworkError("posts.create", err)
	}
	if len(created) == 0 {
		return entities.Post{}, pkgerrors.NewStoreError("posts.create", fmt.Errorf("insert returned no rows"))
	}
	return created[0].toEntity(), nil
}

func (r postRow) toEntity() entities.Post {
	return entities.Post{
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		IsAnonymous: r.IsAnonymous,
		Category:    valueobjects.Category(r.Category),
		Text:        r.Text,
		CreatedAt:   parseCreatedAt(r.CreatedAt),
	}
}

// VoteStore is the Supabase vote repository.
type VoteStore struct {
	client *supabase.Client
}

// NewVoteStore creates a vote repository.
func NewVoteStore(client *supabase.Client) *VoteStore {
	return &VoteStore{client: client}
}

// List returns vote records matching the options.
func (s *VoteStore) List(_ context.Context, opts ports.ListOptions) ([]entities.VoteRecord, error) {
	var rows []voteRow
	fb := applyList(s.client.From(tableVotes).Select("*", "", false), opts)
	if _, err := fb.ExecuteTo(&rows); err != nil {
		return nil, pkgerrors.NewNetworkError("votes.list", err)
	}

	out := make([]entities.VoteRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, entities.VoteRecord{ID: r.ID, SubjectID: r.PostID, UserID: r.UserID, Value: r.Value})
	}
	return out, nil
}

// Create inserts a vote record.
func (s *VoteStore) Create(_ context.Context, record entities.VoteRecord) (entities.VoteRecord, error) {
	row := voteRow{PostID: record.SubjectID, UserID: record.UserID, Value: record.Value}
	var created []voteRow
	if _, err := s.client.From(tableVotes).Insert(row, false, "", "representation", "").ExecuteTo(&created); err != nil {
		return entities.VoteRecord{}, pkgerrors.NewNetworkError("votes.create", err)
	}
	if len(created) == 0 {
		return entities.VoteRecord{}, pkgerrors.NewStoreError("votes.create", fmt.Errorf("insert returned no rows"))
	}
	c := created[0]
	return entities.VoteRecord{ID: c.ID, SubjectID: c.PostID, UserID: c.UserID, Value: c.Value}, nil
}

// UpdateValue rewrites a vote record's value.
func (s *VoteStore) UpdateValue(_ context.Context, id string, value int) (entities.VoteRecord, error) {
	var updated []voteRow
	patch := map[string]interface{}{"value": value}
	if _, err := s.client.From(tableVotes).Update(patch, "representation", "").Eq("id", id).ExecuteTo(&updated); err != nil {
		return entities.VoteRecord{}, pkgerrors.NewNetworkError("votes.update", err)
	}
	if len(updated) == 0 {
		return entities.VoteRecord{}, pkgerrors.NewNotFoundError("vote")
	}
	u := updated[0]
	return entities.VoteRecord{ID: u.ID, SubjectID: u.PostID, UserID: u.UserID, Value: u.Value}, nil
}

// Delete removes a vote record.
func (s *VoteStore) Delete(_ context.Context, id string) error {
	var deleted []voteRow
	if _, err := s.client.From(tableVotes).Delete("representation", "").Eq("id", id).ExecuteTo(&deleted); err != nil {
		return pkgerrors.NewNetworkError("votes.delete", err)
	}
	return nil
}

// ReactionStore is the Supabase reaction repository.
type ReactionStore struct {
	client *supabase.Client
}

// NewReactionStore creates a reaction repository.
func NewReactionStore(client *supabase.Client) *ReactionStore {
	return &ReactionStore{client: client}
}

// List returns reaction records matching the options.
func (s *ReactionStore) List(_ context.Context, opts ports.ListOptions) ([]entities.ReactionRecord, error) {
	var rows []reactionRow
	fb := applyList(s.client.From(tableReactions).Select("*", "", false), opts)
	if _, err := fb.ExecuteTo(&rows); err != nil {
		return nil, pkgerrors.NewNetworkError("reactions.list", err)
	}

	out := make([]entities.ReactionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, entities.ReactionRecord{ID: r.ID, PostID: r.PostID, UserID: r.UserID, ReactionType: r.ReactionType})
	}
	return out, nil
}

// Create inserts a reaction record.
func (s *ReactionStore) Create(_ context.Context, record entities.ReactionRecord) (entities.ReactionRecord, error) {
	row := reactionRow{PostID: record.PostID, UserID: record.UserID, ReactionType: record.ReactionType}
	var created []reactionRow
	if _, err := s.client.From(tableReactions).Insert(row, false, "", "representation", "").ExecuteTo(&created); err != nil {
		return entities.ReactionRecord{}, pkgerrors.NewNetworkError("reactions.create", err)
	}
	if len(created) == 0 {
		return entities.ReactionRecord{}, pkgerrors.NewStoreError("reactions.create", fmt.Errorf("insert returned no rows"))
	}
	c := created[0]
	return entities.ReactionRecord{ID: c.ID, PostID: c.PostID, UserID: c.UserID, ReactionType: c.ReactionType}, nil
}

// Delete removes a reaction record.
func (s *ReactionStore) Delete(_ context.Context, id string) error {
	var deleted []reactionRow
	if _, err := s.client.From(tableReactions).Delete("representation", "").Eq("id", id).ExecuteTo(&deleted); err != nil {
		return pkgerrors.NewNetworkError("reactions.delete", err)
	}
	return nil
}

// ReplyStore is the Supabase reply repository.
type ReplyStore struct {
	client *supabase.Client
}

// NewReplyStore creates a reply repository.
func NewReplyStore(client *supabase.Client) *ReplyStore {
	return &ReplyStore{client: client}
}

// List returns replies matching the options.
func (s *ReplyStore) List(_ context.Context, opts ports.ListOptions) ([]entities.ReplyRecord, error) {
	var rows []replyRow
	fb := applyList(s.client.From(tableReplies).Select("*", "", false), opts)
	if _, err := fb.ExecuteTo(&rows); err != nil {
		return nil, pkgerrors.NewNetworkError("replies.list", err)
	}

	out := make([]entities.ReplyRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toEntity())
	}
	return out, nil
}

// GetByID returns one reply.
func (s *ReplyStore) GetByID(_ context.Context, id string) (entities.ReplyRecord, error) {
	var rows []replyRow
	if _, err := s.client.From(tableReplies).Select("*", "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return entities.ReplyRecord{}, pkgerrors.NewNetworkError("replies.get", err)
	}
	if len(rows) == 0 {
		return entities.ReplyRecord{}, pkgerrors.NewNotFoundError("reply")
	}
	return rows[0].toEntity(), nil
}

// Create inserts a reply and returns the stored row.
func (s *ReplyStore) Create(_ context.Context, draft entities.ReplyRecord) (entities.ReplyRecord, error) {
	row := replyRow{
		ParentPostID: draft.ParentPostID,
		AuthorID:     draft.AuthorID,
		Text:         draft.Text,
		IsAnonymous:  draft.IsAnonymous,
		IsRead:       false,
	}
	var created []replyRow
	if _, err := s.client.From(tableReplies).Insert(row, false, "", "representation", "").ExecuteTo(&created); err != nil {
		return entities.ReplyRecord{}, pkgerrors.NewNetworkError("replies.create", err)
	}
	if len(created) == 0 {
		return entities.ReplyRecord{}, pkgerrors.NewStoreError("replies.create", fmt.Errorf("insert returned no rows"))
	}
	return created[0].toEntity(), nil
}

// UpdateReadState flips a reply's read flag.
func (s *ReplyStore) UpdateReadState(_ context.Context, id string, isRead bool) error {
	var updated []replyRow
	patch := map[string]interface{}{"isRead": isRead}
	if _, err := s.client.From(tableReplies).Update(patch, "representation", "").Eq("id", id).ExecuteTo(&updated); err != nil {
		return pkgerrors.NewNetworkError("replies.update", err)
	}
	if len(updated) == 0 {
		return pkgerrors.NewNotFoundError("reply")
	}
	return nil
}

func (r replyRow) toEntity() entities.ReplyRecord {
	return entities.ReplyRecord{
		ID:           r.ID,
		ParentPostID: r.ParentPostID,
		AuthorID:     r.AuthorID,
		Text:         r.Text,
		IsAnonymous:  r.IsAnonymous,
		IsRead:       r.IsRead,
		CreatedAt:    parseCreatedAt(r.CreatedAt),
	}
}
