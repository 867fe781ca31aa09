// Package memory provides in-memory repositories for development and
// tests. Listings honor the same field filters and ordering the remote
// backends do, so the application layer behaves identically against
// either.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"campuspulse-backend/application/ports"
	"campuspulse-backend/domain/core/entities"
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/utils"
)

const defaultPageSize = 100

func matches(equals []ports.FieldMatch, get func(field string) (interface{}, bool)) bool {
	for _, eq := range equals {
		value, ok := get(eq.Field)
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", value) != fmt.Sprintf("%v", eq.Value) {
			return false
		}
	}
	return true
}

func window(n int, opts ports.ListOptions) (start, end int) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	start = opts.Offset
	if start > n {
		start = n
	}
	end = start + limit
	if end > n {
		end = n
	}
	return start, end
}

// PostStore is the in-memory post repository.
type PostStore struct {
	mu      sync.RWMutex
	clock   utils.Clock
	records map[string]entities.Post
}

// NewPostStore creates an empty post store.
func NewPostStore(clock utils.Clock) *PostStore {
	return &PostStore{clock: clock, records: make(map[string]entities.Post)}
}

// List returns posts matching the options.
func (s *PostStore) List(_ context.Context, opts ports.ListOptions) ([]entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.Post
	for _, p := range s.records {
		post := p
		if matches(opts.Equals, func(field string) (interface{}, bool) {
			switch field {
			case ports.FieldAuthorID:
				return post.AuthorID, true
			case ports.FieldCategory:
				return post.EffectiveCategory().String(), true
			default:
				return nil, false
			}
		}) {
			out = append(out, post)
		}
	}

	sortByCreatedAt(out, opts.OrderBy,
		func(p entities.Post) (string, int64) { return p.ID, p.CreatedAt.UnixNano() })

	start, end := window(len(out), opts)
	return out[start:end], nil
}

// GetByID returns one post.
func (s *PostStore) GetByID(_ context.Context, id string) (entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.records[id]
	if !ok {
		return entities.Post{}, pkgerrors.NewNotFoundError("post")
	}
	return p, nil
}

// Create stores a new post, assigning id and timestamp.
func (s *PostStore) Create(_ context.Context, draft entities.Post) (entities.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = uuid.New().String()
	draft.CreatedAt = s.clock.Now()
	s.records[draft.ID] = draft
	return draft, nil
}

// VoteStore is the in-memory vote repository.
type VoteStore struct {
	mu      sync.RWMutex
	records map[string]entities.VoteRecord
}

// NewVoteStore creates an empty vote store.
func NewVoteStore() *VoteStore {
	return &VoteStore{records: make(map[string]entities.VoteRecord)}
}

// List returns vote records matching the options.
func (s *VoteStore) List(_ context.Context, opts ports.ListOptions) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.VoteRecord
	for _, v := range s.records {
		vote := v
		if matches(opts.Equals, func(field string) (interface{}, bool) {
			switch field {
			case ports.FieldPostID:
				return vote.SubjectID, true
			case ports.FieldUserID:
				return vote.UserID, true
			default:
				return nil, false
			}
		}) {
			out = append(out, vote)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	start, end := window(len(out), opts)
	return out[start:end], nil
}

// Create stores a new vote record.
func (s *VoteStore) Create(_ context.Context, record entities.VoteRecord) (entities.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.New().String()
	s.records[record.ID] = record
	return record, nil
}

// UpdateValue rewrites the value of an existing record.
func (s *VoteStore) UpdateValue(_ context.Context, id string, value int) (entities.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return entities.VoteRecord{}, pkgerrors.NewNotFoundError("vote")
	}
	record.Value = value
	s.records[id] = record
	return record, nil
}

// Delete removes a vote record. Deleting a missing record is a no-op;
// the desired end state is already true.
func (s *VoteStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// ReactionStore is the in-memory reaction repository.
type ReactionStore struct {
	mu      sync.RWMutex
	records map[string]entities.ReactionRecord
}

// NewReactionStore creates an empty reaction store.
func NewReactionStore() *ReactionStore {
	return &ReactionStore{records: make(map[string]entities.ReactionRecord)}
}

// List returns reaction records matching the options.
func (s *ReactionStore) List(_ context.Context, opts ports.ListOptions) ([]entities.ReactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.ReactionRecord
	for _, r := range s.records {
		reaction := r
		if matches(opts.Equals, func(field string) (interface{}, bool) {
			switch field {
			case ports.FieldPostID:
				return reaction.PostID, true
			case ports.FieldUserID:
				return reaction.UserID, true
			case ports.FieldReactionType:
				return reaction.ReactionType, true
			default:
				return nil, false
			}
		}) {
			out = append(out, reaction)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	start, end := window(len(out), opts)
	return out[start:end], nil
}

// Create stores a new reaction record.
func (s *ReactionStore) Create(_ context.Context, record entities.ReactionRecord) (entities.ReactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.New().String()
	s.records[record.ID] = record
	return record, nil
}

// Delete removes a reaction record.
func (s *ReactionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// ReplyStore is the in-memory reply repository.
type ReplyStore struct {
	mu      sync.RWMutex
	clock   utils.Clock
	records map[string]entities.ReplyRecord
}

// NewReplyStore creates an empty reply store.
func NewReplyStore(clock utils.Clock) *ReplyStore {
	return &ReplyStore{clock: clock, records: make(map[string]entities.ReplyRecord)}
}

// List returns replies matching the options.
func (s *ReplyStore) List(_ context.Context, opts ports.ListOptions) ([]entities.ReplyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.ReplyRecord
	for _, r := range s.records {
		reply := r
		if matches(opts.Equals, func(field string) (interface{}, bool) {
			switch field {
			case ports.FieldParentPostID:
				return reply.ParentPostID, true
			case ports.FieldAuthorID:
				return reply.AuthorID, true
			case ports.FieldIsRead:
				return reply.IsRead, true
			default:
				return nil, false
			}
		}) {
			out = append(out, reply)
		}
	}

	sortByCreatedAt(out, opts.OrderBy,
		func(r entities.ReplyRecord) (string, int64) { return r.ID, r.CreatedAt.UnixNano() })

	start, end := window(len(out), opts)
	return out[start:end], nil
}

// GetByID returns one reply.
func (s *ReplyStore) GetByID(_ context.Context, id string) (entities.ReplyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return entities.ReplyRecord{}, pkgerrors.NewNotFoundError("reply")
	}
	return r, nil
}

// Create stores a new reply, assigning id and timestamp.
func (s *ReplyStore) Create(_ context.Context, draft entities.ReplyRecord) (entities.ReplyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = uuid.New().String()
	draft.CreatedAt = s.clock.Now()
	s.records[draft.ID] = draft
	return draft, nil
}

// UpdateReadState flips a reply's read flag.
func (s *ReplyStore) UpdateReadState(_ context.Context, id string, isRead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return pkgerrors.NewNotFoundError("reply")
	}
	record.IsRead = isRead
	s.records[id] = record
	return nil
}

// sortByCreatedAt orders records by creation time per the options,
// defaulting to id order when no ordering is requested. Ties break on
// id so pagination is stable.
func sortByCreatedAt[T any](records []T, order *ports.Order, key func(T) (id string, createdAt int64)) {
	if order == nil || order.Field != ports.FieldCreatedAt {
		sort.Slice(records, func(i, j int) bool {
			idI, _ := key(records[i])
			idJ, _ := key(records[j])
			return idI < idJ
		})
		return
	}
	sort.Slice(records, func(i, j int) bool {
		idI, tI := key(records[i])
		idJ, tJ := key(records[j])
		if tI != tJ {
			if order.Desc {
				return tI > tJ
			}
			return tI < tJ
		}
		return idI < idJ
	})
}
