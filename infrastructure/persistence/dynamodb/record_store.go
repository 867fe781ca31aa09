// Package dynamodb implements the repositories on a single DynamoDB
// table. Each collection lives under its own partition; listings query
// the partition with a filter expression and apply ordering and
// offset/limit windows in memory, since DynamoDB has no native offset.
package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campuspulse-backend/application/ports"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/utils"
)

const (
	partitionPosts     = "POST"
	partitionVotes     = "VOTE"
	partitionReactions = "REACTION"
	partitionReplies   = "REPLY"
)

// NewClient builds a DynamoDB client from the ambient AWS config.
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

type store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
	clock     utils.Clock
}

// queryPartition drains every item in a partition that passes the
// equality filters.
func (s *store) queryPartition(ctx context.Context, partition string, equals []ports.FieldMatch) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(partition))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	if len(equals) > 0 {
		var filter expression.ConditionBuilder
		for i, eq := range equals {
			cond := expression.Name(eq.Field).Equal(expression.Value(eq.Value))
			if i == 0 {
				filter = cond
			} else {
				filter = filter.And(cond)
			}
		}
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.NewStoreError("query.build", err)
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewNetworkError("query", err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

func (s *store) putItem(ctx context.Context, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewStoreError("marshal", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewNetworkError("put", err)
	}
	return nil
}

func (s *store) getItem(ctx context.Context, partition, id string, dest interface{}) error {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partition},
			"SK": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return pkgerrors.NewNetworkError("get", err)
	}
	if out.Item == nil {
		return pkgerrors.NewNotFoundError("record")
	}
	if err := attributevalue.UnmarshalMap(out.Item, dest); err != nil {
		return pkgerrors.NewStoreError("unmarshal", err)
	}
	return nil
}

func (s *store) deleteItem(ctx context.Context, partition, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partition},
			"SK": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return pkgerrors.NewNetworkError("delete", err)
	}
	return nil
}

func applyWindow[T any](records []T, opts ports.ListOptions) []T {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	start := opts.Offset
	if start > len(records) {
		start = len(records)
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

type postItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	AuthorID    string `dynamodbav:"authorId"`
	IsAnonymous bool   `dynamodbav:"isAnonymous"`
	Category    string `dynamodbav:"category,omitempty"`
	Text        string `dynamodbav:"text"`
	CreatedAt   string `dynamodbav:"createdAt"`
}

func (i postItem) toEntity() entities.Post {
	createdAt, _ := utils.ParseTimestamp(i.CreatedAt)
	return entities.Post{
		ID:          i.SK,
		AuthorID:    i.AuthorID,
		IsAnonymous: i.IsAnonymous,
		Category:    valueobjects.Category(i.Category),
		Text:        i.Text,
		CreatedAt:   createdAt,
	}
}

// PostStore is the DynamoDB post repository.
type PostStore struct {
	store
}

// NewPostStore creates a post repository.
func NewPostStore(client *dynamodb.Client, tableName string, clock utils.Clock, logger *zap.Logger) *PostStore {
	return &PostStore{store{client: client, tableName: tableName, clock: clock, logger: logger}}
}

// List returns posts matching the options.
func (s *PostStore) List(ctx context.Context, opts ports.ListOptions) ([]entities.Post, error) {
	items, err := s.queryPartition(ctx, partitionPosts, opts.Equals)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Post, 0, len(items))
	for _, item := range items {
		var p postItem
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			s.logger.Warn("Skipping unreadable post item", zap.Error(err))
			continue
		}
		out = append(out, p.toEntity())
	}

	if opts.OrderBy != nil && opts.OrderBy.Field == ports.FieldCreatedAt {
		desc := opts.OrderBy.Desc
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				if desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}

	return applyWindow(out, opts), nil
}

// GetByID returns one post.
func (s *PostStore) GetByID(ctx context.Context, id string) (entities.Post, error) {
	var item postItem
	if err := s.getItem(ctx, partitionPosts, id, &item); err != nil {
		if pkgerrors.IsNotFound(err) {
			return entities.Post{}, pkgerrors.NewNotFoundError("post")
		}
		return entities.Post{}, err
	}
	return item.toEntity(), nil
}

// Create stores a new post.
func (s *PostStore) Create(ctx context.Context, draft entities.Post) (entities.Post, error) {
	draft.ID = uuid.New().String()
	draft.CreatedAt = s.clock.Now()

	item := postItem{
		PK:          partitionPosts,
		SK:          draft.ID,
		AuthorID:    draft.AuthorID,
		IsAnonymous: draft.IsAnonymous,
		Category:    draft.Category.String(),
		Text:        draft.Text,
		CreatedAt:   utils.FormatTimestamp(draft.CreatedAt),
	}
	if err := s.putItem(ctx, item); err != nil {
		return entities.Post{}, err
	}
	return draft, nil
}

type voteItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	PostID string `dynamodbav:"postId"`
	UserID string `dynamodbav:"userId"`
	Value  int    `dynamodbav:"value"`
}

// VoteStore is the DynamoDB vote repository.
type VoteStore struct {
	store
}

// NewVoteStore creates a vote repository.
func NewVoteStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *VoteStore {
	return &VoteStore{store{client: client, tableName: tableName, logger: logger}}
}

// List returns vote records matching the options.
func (s *VoteStore) List(ctx context.Context, opts ports.ListOptions) ([]entities.VoteRecord, error) {
	items, err := s.queryPartition(ctx, partitionVotes, opts.Equals)
	if err != nil {
		return nil, err
	}

	out := make([]entities.VoteRecord, 0, len(items))
	for _, item := range items {
		var v voteItem
		if err := attributevalue.UnmarshalMap(item, &v); err != nil {
			s.logger.Warn("Skipping unreadable vote item", zap.Error(err))
			continue
		}
		out = append(out, entities.VoteRecord{ID: v.SK, SubjectID: v.PostID, UserID: v.UserID, Value: v.Value})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return applyWindow(out, opts), nil
}

// Create stores a new vote record.
func (s *VoteStore) Create(ctx context.Context, record entities.VoteRecord) (entities.VoteRecord, error) {
	record.ID = uuid.New().String()
	item := voteItem{
		PK:     partitionVotes,
		SK:     record.ID,
		PostID: record.SubjectID,
		UserID: record.UserID,
		Value:  record.Value,
	}
	if err := s.putItem(ctx, item); err != nil {
		return entities.VoteRecord{}, err
	}
	return record, nil
}

// UpdateValue rewrites a vote record's value.
func (s *VoteStore) UpdateValue(ctx context.Context, id string, value int) (entities.VoteRecord, error) {
	var item voteItem
	if err := s.getItem(ctx, partitionVotes, id, &item); err != nil {
		if pkgerrors.IsNotFound(err) {
			return entities.VoteRecord{}, pkgerrors.NewNotFoundError("vote")
		}
		return entities.VoteRecord{}, err
	}
	item.Value = value
	if err := s.putItem(ctx, item); err != nil {
		return entities.VoteRecord{}, err
	}
	return entities.VoteRecord{ID: item.SK, SubjectID: item.PostID, UserID: item.UserID, Value: item.Value}, nil
}

// Delete removes a vote record.
func (s *VoteStore) Delete(ctx context.Context, id string) error {
	return s.deleteItem(ctx, partitionVotes, id)
}

type reactionItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	PostID       string `dynamodbav:"postId"`
	UserID       string `dynamodbav:"userId"`
	ReactionType string `dynamodbav:"reactionType"`
}

// ReactionStore is the DynamoDB reaction repository.
type ReactionStore struct {
	store
}

// NewReactionStore creates a reaction repository.
func NewReactionStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *ReactionStore {
	return &ReactionStore{store{client: client, tableName: tableName, logger: logger}}
}

// List returns reaction records matching the options.
func (s *ReactionStore) List(ctx context.Context, opts ports.ListOptions) ([]entities.ReactionRecord, error) {
	items, err := s.queryPartition(ctx, partitionReactions, opts.Equals)
	if err != nil {
		return nil, err
	}

	out := make([]entities.ReactionRecord, 0, len(items))
	for _, item := range items {
		var r reactionItem
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			s.logger.Warn("Skipping unreadable reaction item", zap.Error(err))
			continue
		}
		out = append(out, entities.ReactionRecord{ID: r.SK, PostID: r.PostID, UserID: r.UserID, ReactionType: r.ReactionType})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return applyWindow(out, opts), nil
}

// Create stores a new reaction record.
func (s *ReactionStore) Create(ctx context.Context, record entities.ReactionRecord) (entities.ReactionRecord, error) {
	record.ID = uuid.New().String()
	item := reactionItem{
		PK:           partitionReactions,
		SK:           record.ID,
		PostID:       record.PostID,
		UserID:       record.UserID,
		ReactionType: record.ReactionType,
	}
	if err := s.putItem(ctx, item); err != nil {
		return entities.ReactionRecord{}, err
	}
	return record, nil
}

// Delete removes a reaction record.
func (s *ReactionStore) Delete(ctx context.Context, id string) error {
	return s.deleteItem(ctx, partitionReactions, id)
}

type replyItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	ParentPostID string `dynamodbav:"parentPostId"`
	AuthorID     string `dynamodbav:"authorId"`
	Text         string `dynamodbav:"text"`
	IsAnonymous  bool   `dynamodbav:"isAnonymous"`
	IsRead       bool   `dynamodbav:"isRead"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

func (i replyItem) toEntity() entities.ReplyRecord {
	createdAt, _ := utils.ParseTimestamp(i.CreatedAt)
	return entities.ReplyRecord{
		ID:           i.SK,
		ParentPostID: i.ParentPostID,
		AuthorID:     i.AuthorID,
		Text:         i.Text,
		IsAnonymous:  i.IsAnonymous,
		IsRead:       i.IsRead,
		CreatedAt:    createdAt,
	}
}

// ReplyStore is the DynamoDB reply repository.
type ReplyStore struct {
	store
}

// NewReplyStore creates a reply repository.
func NewReplyStore(client *dynamodb.Client, tableName string, clock utils.Clock, logger *zap.Logger) *ReplyStore {
	return &ReplyStore{store{client: client, tableName: tableName, clock: clock, logger: logger}}
}

// List returns replies matching the options.
func (s *ReplyStore) List(ctx context.Context, opts ports.ListOptions) ([]entities.ReplyRecord, error) {
	items, err := s.queryPartition(ctx, partitionReplies, opts.Equals)
	if err != nil {
		return nil, err
	}

	out := make([]entities.ReplyRecord, 0, len(items))
	for _, item := range items {
		var r replyItem
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			s.logger.Warn("Skipping unreadable reply item", zap.Error(err))
			continue
		}
		out = append(out, r.toEntity())
	}

	if opts.OrderBy != nil && opts.OrderBy.Field == ports.FieldCreatedAt {
		desc := opts.OrderBy.Desc
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				if desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}

	return applyWindow(out, opts), nil
}

// GetByID returns one reply.
func (s *ReplyStore) GetByID(ctx context.Context, id string) (entities.ReplyRecord, error) {
	var item replyItem
	if err := s.getItem(ctx, partitionReplies, id, &item); err != nil {
		if pkgerrors.IsNotFound(err) {
			return entities.ReplyRecord{}, pkgerrors.NewNotFoundError("reply")
		}
		return entities.ReplyRecord{}, err
	}
	return item.toEntity(), nil
}

// Create stores a new reply.
func (s *ReplyStore) Create(ctx context.Context, draft entities.ReplyRecord) (entities.ReplyRecord, error) {
	draft.ID = uuid.New().String()
	draft.CreatedAt = s.clock.Now()
	draft.IsRead = false

	item := replyItem{
		PK:           partitionReplies,
		SK:           draft.ID,
		ParentPostID: draft.ParentPostID,
		AuthorID:     draft.AuthorID,
		Text:         draft.Text,
		IsAnonymous:  draft.IsAnonymous,
		IsRead:       false,
		CreatedAt:    utils.FormatTimestamp(draft.CreatedAt),
	}
	if err := s.putItem(ctx, item); err != nil {
		return entities.ReplyRecord{}, err
	}
	return draft, nil
}

// UpdateReadState flips a reply's read flag.
func (s *ReplyStore) UpdateReadState(ctx context.Context, id string, isRead bool) error {
	var item replyItem
	if err := s.getItem(ctx, partitionReplies, id, &item); err != nil {
		return err
	}
	item.IsRead = isRead
	return s.putItem(ctx, item)
}
