package ports

import (
	"context"

	"campuspulse-backend/domain/core/entities"
)

// Store field names shared by every backend. The memory, Supabase and
// DynamoDB stores all filter and order on these.
const (
	FieldPostID       = "postId"
	FieldUserID       = "userId"
	FieldAuthorID     = "authorId"
	FieldParentPostID = "parentPostId"
	FieldReactionType = "reactionType"
	FieldCategory     = "category"
	FieldCreatedAt    = "createdAt"
	FieldIsRead       = "isRead"
)

// FieldMatch is one equality constraint on a listing.
type FieldMatch struct {
	Field string
	Value interface{}
}

// Order names the field a listing is sorted by.
type Order struct {
	Field string
	Desc  bool
}

// ListOptions narrows and pages a listing. Zero Limit means the
// backend's default page size applies.
type ListOptions struct {
	Equals  []FieldMatch
	OrderBy *Order
	Limit   int
	Offset  int
}

// Eq appends an equality constraint and returns the options for
// chaining.
func (o ListOptions) Eq(field string, value interface{}) ListOptions {
	o.Equals = append(o.Equals, FieldMatch{Field: field, Value: value})
	return o
}

// PostRepository persists posts.
type PostRepository interface {
	List(ctx context.Context, opts ListOptions) ([]entities.Post, error)
	GetByID(ctx context.Context, id string) (entities.Post, error)
	Create(ctx context.Context, draft entities.Post) (entities.Post, error)
}

// VoteRepository persists vote records. A record's SubjectID may point
// at a post or a reply; both live in the same collection.
type VoteRepository interface {
	List(ctx context.Context, opts ListOptions) ([]entities.VoteRecord, error)
	Create(ctx context.Context, record entities.VoteRecord) (entities.VoteRecord, error)
	UpdateValue(ctx context.Context, id string, value int) (entities.VoteRecord, error)
	Delete(ctx context.Context, id string) error
}

// ReactionRepository persists reaction records.
type ReactionRepository interface {
	List(ctx context.Context, opts ListOptions) ([]entities.ReactionRecord, error)
	Create(ctx context.Context, record entities.ReactionRecord) (entities.ReactionRecord, error)
	Delete(ctx context.Context, id string) error
}

// ReplyRepository persists replies. Read state is the only mutable
// part of a reply.
type ReplyRepository interface {
	List(ctx context.Context, opts ListOptions) ([]entities.ReplyRecord, error)
	GetByID(ctx context.Context, id string) (entities.ReplyRecord, error)
	Create(ctx context.Context, draft entities.ReplyRecord) (entities.ReplyRecord, error)
	UpdateReadState(ctx context.Context, id string, isRead bool) error
}
