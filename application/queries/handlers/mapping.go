package handlers

import (
	"campuspulse-backend/application/queries"
	"campuspulse-backend/application/services"
	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/pkg/utils"
)

func toVoteSummaryDTO(v aggregates.VoteSummary) queries.VoteSummaryDTO {
	dto := queries.VoteSummaryDTO{
		Upvotes:   v.Upvotes,
		Downvotes: v.Downvotes,
	}
	if v.UserVoted != nil {
		dto.UserVoted = v.UserVoted.String()
	}
	return dto
}

func toReactionDTOs(reactions map[string]aggregates.ReactionSummary) map[string]queries.ReactionSummaryDTO {
	out := make(map[string]queries.ReactionSummaryDTO, len(reactions))
	for reactionType, summary := range reactions {
		out[reactionType] = queries.ReactionSummaryDTO{
			Count:       summary.Count,
			UserReacted: summary.UserReacted,
		}
	}
	return out
}

func toFeedItemResult(item services.FeedItem) queries.FeedItemResult {
	authorID := item.Post.AuthorID
	if item.Post.IsAnonymous {
		authorID = ""
	}
	return queries.FeedItemResult{
		ID:          item.Post.ID,
		AuthorID:    authorID,
		IsAnonymous: item.Post.IsAnonymous,
		Category:    item.Post.EffectiveCategory().String(),
		Text:        item.Post.Text,
		CreatedAt:   utils.FormatTimestamp(item.Post.CreatedAt),
		Votes:       toVoteSummaryDTO(item.Engagement.Votes),
		Reactions:   toReactionDTOs(item.Engagement.Reactions),
		ReplyCount:  item.Engagement.ReplyCount,
	}
}

func toReplyResult(item services.ReplyItem) queries.ReplyResult {
	authorID := item.Reply.AuthorID
	if item.Reply.IsAnonymous {
		authorID = ""
	}
	return queries.ReplyResult{
		ID:          item.Reply.ID,
		AuthorID:    authorID,
		IsAnonymous: item.Reply.IsAnonymous,
		Text:        item.Reply.Text,
		CreatedAt:   utils.FormatTimestamp(item.Reply.CreatedAt),
		Votes:       toVoteSummaryDTO(item.Votes),
	}
}
