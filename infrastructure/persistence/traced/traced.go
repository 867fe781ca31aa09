// Package traced decorates the repositories with OpenTelemetry spans
// and store-operation metrics.
package traced

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"campuspulse-backend/application/ports"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/pkg/observability"
)

func observe(ctx context.Context, metrics *observability.Metrics, collection, operation string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "store."+collection+"."+operation,
		attribute.String("store.collection", collection),
		attribute.String("store.operation", operation),
	)
	start := time.Now()
	err := fn(ctx)
	if metrics != nil {
		metrics.ObserveStoreOp(collection, operation, start, err)
	}
	observability.EndSpan(span, err)
	return err
}

// PostRepository adds tracing around a post repository.
type PostRepository struct {
	inner   ports.PostRepository
	metrics *observability.Metrics
}

// NewPostRepository wraps a post repository.
func NewPostRepository(inner ports.PostRepository, metrics *observability.Metrics) *PostRepository {
	return &PostRepository{inner: inner, metrics: metrics}
}

func (r *PostRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.Post, error) {
	var out []entities.Post
	err := observe(ctx, r.metrics, "posts", "list", func(ctx context.Context) error {
		var err error
		out, err = r.inner.List(ctx, opts)
		return err
	})
	return out, err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (entities.Post, error) {
	var out entities.Post
	err := observe(ctx, r.metrics, "posts", "get", func(ctx context.Context) error {
		var err error
		out, err = r.inner.GetByID(ctx, id)
		return err
	})
	return out, err
}

func (r *PostRepository) Create(ctx context.Context, draft entities.Post) (entities.Post, error) {
	var out entities.Post
	err := observe(ctx, r.metrics, "posts", "create", func(ctx context.Context) error {
		var err error
		out, err = r.inner.Create(ctx, draft)
		return err
	})
	return out, err
}

// VoteRepository adds tracing around a vote repository.
type VoteRepository struct {
	inner   ports.VoteRepository
	metrics *observability.Metrics
}

// NewVoteRepository wraps a vote repository.
func NewVoteRepository(inner ports.VoteRepository, metrics *observability.Metrics) *VoteRepository {
	return &VoteRepository{inner: inner, metrics: metrics}
}

func (r *VoteRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.VoteRecord, error) {
	var out []entities.VoteRecord
	err := observe(ctx, r.metrics, "votes", "list", func(ctx context.Context) error {
		var err error
		out, err = r.inner.List(ctx, opts)
		return err
	})
	return out, err
}

func (r *VoteRepository) Create(ctx context.Context, record entities.VoteRecord) (entities.VoteRecord, error) {
	var out entities.VoteRecord
	err := observe(ctx, r.metrics, "votes", "create", func(ctx context.Context) error {
		var err error
		out, err = r.inner.Create(ctx, record)
		return err
	})
	return out, err
}

func (r *VoteRepository) UpdateValue(ctx context.Context, id string, value int) (entities.VoteRecord, error) {
	var out entities.VoteRecord
	err := observe(ctx, r.metrics, "votes", "update", func(ctx context.Context) error {
		var err error
		out, err = r.inner.UpdateValue(ctx, id, value)
		return err
	})
	return out, err
}

func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	return observe(ctx, r.metrics, "votes", "delete", func(ctx context.Context) error {
		return r.inner.Delete(ctx, id)
	})
}

// ReactionRepository adds tracing around a reaction repository.
type ReactionRepository struct {
	inner   ports.ReactionRepository
	metrics *observability.Metrics
}

// NewReactionRepository wraps a reaction repository.
func NewReactionRepository(inner ports.ReactionRepository, metrics *observability.Metrics) *ReactionRepository {
	return &ReactionRepository{inner: inner, metrics: metrics}
}

func (r *ReactionRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.ReactionRecord, error) {
	var out []entities.ReactionRecord
	err := observe(ctx, r.metrics, "reactions", "list", func(ctx context.Context) error {
		var err error
		out, err = r.inner.List(ctx, opts)
		return err
	})
	return out, err
}

func (r *ReactionRepository) Create(ctx context.Context, record entities.ReactionRecord) (entities.ReactionRecord, error) {
	var out entities.ReactionRecord
	err := observe(ctx, r.metrics, "reactions", "create", func(ctx context.Context) error {
		var err error
		out, err = r.inner.Create(ctx, record)
		return err
	})
	return out, err
}

func (r *ReactionRepository) Delete(ctx context.Context, id string) error {
	return observe(ctx, r.metrics, "reactions", "delete", func(ctx context.Context) error {
		return r.inner.Delete(ctx, id)
	})
}

// ReplyRepository adds tracing around a reply repository.
type ReplyRepository struct {
	inner   ports.ReplyRepository
	metrics *observability.Metrics
}

// NewReplyRepository wraps a reply repository.
func NewReplyRepository(inner ports.ReplyRepository, metrics *observability.Metrics) *ReplyRepository {
	return &ReplyRepository{inner: inner, metrics: metrics}
}

func (r *ReplyRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.ReplyRecord, error) {
	var out []entities.ReplyRecord
	err := observe(ctx, r.metrics, "replies", "list", func(ctx context.Context) error {
		var err error
		out, err = r.inner.List(ctx, opts)
		return err
	})
	return out, err
}

func (r *ReplyRepository) GetByID(ctx context.Context, id string) (entities.ReplyRecord, error) {
	var out entities.ReplyRecord
	err := observe(ctx, r.metrics, "replies", "get", func(ctx context.Context) error {
		var err error
		out, err = r.inner.GetByID(ctx, id)
		return err
	})
	return out, err
}

func (r *ReplyRepository) Create(ctx context.Context, draft entities.ReplyRecord) (entities.ReplyRecord, error) {
	var out entities.ReplyRecord
	err := observe(ctx, r.metrics, "replies", "create", func(ctx context.Context) error {
		var err error
		out, err = r.inner.Create(ctx, draft)
		return err
	})
	return out, err
}

func (r *ReplyRepository) UpdateReadState(ctx context.Context, id string, isRead bool) error {
	return observe(ctx, r.metrics, "replies", "update_read", func(ctx context.Context) error {
		return r.inner.UpdateReadState(ctx, id, isRead)
	})
}
