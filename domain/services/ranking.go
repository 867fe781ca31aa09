package services

import (
	"sort"
	"time"

	"campuspulse-backend/domain/core/aggregates"
	"campuspulse-backend/domain/core/entities"
	"campuspulse-backend/domain/core/valueobjects"
)

// SortMode selects the feed ordering.
type SortMode string

const (
	SortRecent        SortMode = "recent"
	SortUpvotes       SortMode = "upvotes"
	SortTrending      SortMode = "trending"
	SortControversial SortMode = "controversial"
)

// IsValid reports whether the sort mode is recognized.
func (m SortMode) IsValid() bool {
	switch m {
	case SortRecent, SortUpvotes, SortTrending, SortControversial:
		return true
	}
	return false
}

// DateRange restricts the feed to a creation window.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

// Cutoff returns the earliest createdAt the range admits, relative to
// now. Today is local midnight; week is now minus seven days; month is
// now minus one calendar month.
func (r DateRange) Cutoff(now time.Time) (time.Time, bool) {
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

// ReplyPresence filters posts by whether they have replies.
type ReplyPresence string

const (
	RepliesAll     ReplyPresence = "all"
	RepliesWith    ReplyPresence = "with"
	RepliesWithout ReplyPresence = "without"
)

// FeedFilters are the composable predicates applied before sorting.
// Zero values mean "no filtering" for each field.
type FeedFilters struct {
	Category   valueobjects.Category
	DateRange  DateRange
	MinUpvotes int
	HasReplies ReplyPresence
}

func (f FeedFilters) admits(post entities.Post, e aggregates.PostEngagement, now time.Time) bool {
	if f.Category != "" && f.Category != valueobjects.CategoryAll {
		if post.EffectiveCategory() != f.Category {
			return false
		}
	}
	if cutoff, ok := f.DateRange.Cutoff(now); ok {
		if post.CreatedAt.Before(cutoff) {
			return false
		}
	}
	if f.MinUpvotes > 0 && e.Votes.Upvotes < f.MinUpvotes {
		return false
	}
	switch f.HasReplies {
	case RepliesWith:
		if e.ReplyCount == 0 {
			return false
		}
	case RepliesWithout:
		if e.ReplyCount != 0 {
			return false
		}
	}
	return true
}

// Rank filters and orders posts from their aggregated engagement. It
// is a pure function over already-resident data: no hidden counters,
// no store access. Every mode is a total order with an explicit
// createdAt-descending tie-break (then id, so equal timestamps still
// order the same way across re-renders regardless of input order).
func Rank(
	posts []entities.Post,
	state aggregates.EngagementState,
	mode SortMode,
	filters FeedFilters,
	now time.Time,
) []entities.Post {
	engagementFor := func(id string) aggregates.PostEngagement {
		if e, ok := state[id]; ok {
			return e
		}
		return aggregates.ZeroEngagement()
	}

	filtered := make([]entities.Post, 0, len(posts))
	for _, p := range posts {
		if filters.admits(p, engagementFor(p.ID), now) {
			filtered = append(filtered, p)
		}
	}

	newerFirst := func(a, b entities.Post) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	var score ScoreFunc
	switch mode {
	case SortUpvotes:
		score = UpvoteScore
	case SortTrending:
		score = TrendingScore
	case SortControversial:
		score = ControversialScore
	default: // recent
		sort.Slice(filtered, func(i, j int) bool {
			return newerFirst(filtered[i], filtered[j])
		})
		return filtered
	}

	sort.Slice(filtered, func(i, j int) bool {
		si := score(engagementFor(filtered[i].ID))
		sj := score(engagementFor(filtered[j].ID))
		if si != sj {
			return si > sj
		}
		return newerFirst(filtered[i], filtered[j])
	})
	return filtered
}

// RankReplies orders a post's replies for the detail view.
type ReplySort string

const (
	ReplySortNewest ReplySort = "newest"
	ReplySortOldest ReplySort = "oldest"
	ReplySortVotes  ReplySort = "votes"
)

// RankReplies sorts replies by the requested mode, using the replies'
// own vote summaries for the votes mode.
func RankReplies(replies []entities.ReplyRecord, votes map[string]aggregates.VoteSummary, mode ReplySort) []entities.ReplyRecord {
	out := make([]entities.ReplyRecord, len(replies))
	copy(out, replies)

	switch mode {
	case ReplySortOldest:
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
	case ReplySortVotes:
		sort.Slice(out, func(i, j int) bool {
			vi := votes[out[i].ID].Net()
			vj := votes[out[j].ID].Net()
			if vi != vj {
				return vi > vj
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default: // newest
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
	}
	return out
}
