// Package breaker wraps the repositories in circuit breakers so a
// misbehaving store backend sheds load fast instead of stacking up
// slow failures across every session's refresh.
package breaker

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"campuspulse-backend/application/ports"
	"campuspulse-backend/domain/core/entities"
	pkgerrors "campuspulse-backend/pkg/errors"
)

func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, name string, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return zero, pkgerrors.NewUnavailableError(name)
		}
		return zero, err
	}
	return result.(T), nil
}

// PostRepository decorates a post repository with a circuit breaker.
type PostRepository struct {
	inner ports.PostRepository
	cb    *gobreaker.CircuitBreaker
}

// NewPostRepository wraps a post repository.
func NewPostRepository(inner ports.PostRepository, logger *zap.Logger) *PostRepository {
	return &PostRepository{inner: inner, cb: newBreaker("posts", logger)}
}

func (r *PostRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.Post, error) {
	return execute(r.cb, "posts", func() ([]entities.Post, error) { return r.inner.List(ctx, opts) })
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (entities.Post, error) {
	return execute(r.cb, "posts", func() (entities.Post, error) { return r.inner.GetByID(ctx, id) })
}

func (r *PostRepository) Create(ctx context.Context, draft entities.Post) (entities.Post, error) {
	return execute(r.cb, "posts", func() (entities.Post, error) { return r.inner.Create(ctx, draft) })
}

// VoteRepository decorates a vote repository with a circuit breaker.
type VoteRepository struct {
	inner ports.VoteRepository
	cb    *gobreaker.CircuitBreaker
}

// NewVoteRepository wraps a vote repository.
func NewVoteRepository(inner ports.VoteRepository, logger *zap.Logger) *VoteRepository {
	return &VoteRepository{inner: inner, cb: newBreaker("votes", logger)}
}

func (r *VoteRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.VoteRecord, error) {
	return execute(r.cb, "votes", func() ([]entities.VoteRecord, error) { return r.inner.List(ctx, opts) })
}

func (r *VoteRepository) Create(ctx context.Context, record entities.VoteRecord) (entities.VoteRecord, error) {
	return execute(r.cb, "votes", func() (entities.VoteRecord, error) { return r.inner.Create(ctx, record) })
}

func (r *VoteRepository) UpdateValue(ctx context.Context, id string, value int) (entities.VoteRecord, error) {
	return execute(r.cb, "votes", func() (entities.VoteRecord, error) { return r.inner.UpdateValue(ctx, id, value) })
}

func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	_, err := execute(r.cb, "votes", func() (struct{}, error) { return struct{}{}, r.inner.Delete(ctx, id) })
	return err
}

// ReactionRepository decorates a reaction repository with a circuit
// breaker.
type ReactionRepository struct {
	inner ports.ReactionRepository
	cb    *gobreaker.CircuitBreaker
}

// NewReactionRepository wraps a reaction repository.
func NewReactionRepository(inner ports.ReactionRepository, logger *zap.Logger) *ReactionRepository {
	return &ReactionRepository{inner: inner, cb: newBreaker("reactions", logger)}
}

func (r *ReactionRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.ReactionRecord, error) {
	return execute(r.cb, "reactions", func() ([]entities.ReactionRecord, error) { return r.inner.List(ctx, opts) })
}

func (r *ReactionRepository) Create(ctx context.Context, record entities.ReactionRecord) (entities.ReactionRecord, error) {
	return execute(r.cb, "reactions", func() (entities.ReactionRecord, error) { return r.inner.Create(ctx, record) })
}

func (r *ReactionRepository) Delete(ctx context.Context, id string) error {
	_, err := execute(r.cb, "reactions", func() (struct{}, error) { return struct{}{}, r.inner.Delete(ctx, id) })
	return err
}

// ReplyRepository decorates a reply repository with a circuit breaker.
type ReplyRepository struct {
	inner ports.ReplyRepository
	cb    *gobreaker.CircuitBreaker
}

// NewReplyRepository wraps a reply repository.
func NewReplyRepository(inner ports.ReplyRepository, logger *zap.Logger) *ReplyRepository {
	return &ReplyRepository{inner: inner, cb: newBreaker("replies", logger)}
}

func (r *ReplyRepository) List(ctx context.Context, opts ports.ListOptions) ([]entities.ReplyRecord, error) {
	return execute(r.cb, "replies", func() ([]entities.ReplyRecord, error) { return r.inner.List(ctx, opts) })
}

func (r *ReplyRepository) GetByID(ctx context.Context, id string) (entities.ReplyRecord, error) {
	return execute(r.cb, "replies", func() (entities.ReplyRecord, error) { return r.inner.GetByID(ctx, id) })
}

func (r *ReplyRepository) Create(ctx context.Context, draft entities.ReplyRecord) (entities.ReplyRecord, error) {
	return execute(r.cb, "replies", func() (entities.ReplyRecord, error) { return r.inner.Create(ctx, draft) })
}

func (r *ReplyRepository) UpdateReadState(ctx context.Context, id string, isRead bool) error {
	_, err := execute(r.cb, "replies", func() (struct{}, error) { return struct{}{}, r.inner.UpdateReadState(ctx, id, isRead) })
	return err
}
