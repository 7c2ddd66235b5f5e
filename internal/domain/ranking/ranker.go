// Package ranking selects the posts that go into a prompt: client scope, date window,
// comment-count ordering and truncation.
package ranking

import (
	"cmp"
	"slices"
	"time"

	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/corpus"
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// DefaultMaxPosts bounds the ranked selection.
const DefaultMaxPosts = 30

// Ranker applies a structured query to a corpus index.
type Ranker struct {
	cal      calendar.Calendar
	maxPosts int
}

// NewRanker creates a Ranker. maxPosts <= 0 falls back to DefaultMaxPosts.
func NewRanker(cal calendar.Calendar, maxPosts int) *Ranker {
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}
	return &Ranker{cal: cal, maxPosts: maxPosts}
}

// Select produces the ranked posts and, when asked for, the client's responsible person.
// now is the evaluation instant for every date window.
func (r *Ranker) Select(q entities.Query, idx *corpus.Index, now time.Time) entities.Selection {
	base := idx.Posts()
	if q.HasClient() {
		base = idx.PostsForClient(q.ClientName)
	}

	filtered := r.FilterByDate(base, q.DateRange, now)
	ranked := SortByComments(filtered)
	if len(ranked) > r.maxPosts {
		ranked = ranked[:r.maxPosts]
	}

	sel := entities.Selection{Posts: make([]entities.RankedPost, 0, len(ranked))}
	for _, p := range ranked {
		sel.Posts = append(sel.Posts, entities.RankedPost{
			Post:     p,
			Comments: idx.CommentsForPost(p.ID),
		})
	}

	if q.WantsResponsiblePerson && q.HasClient() {
		sel.Responsible = LatestAuthor(idx.PostsForClient(q.ClientName))
	}
	return sel
}

// FilterByDate keeps the posts registered inside the window. Undated posts are always kept.
// The input slice is not modified.
func (r *Ranker) FilterByDate(posts []entities.Post, dr entities.DateRange, now time.Time) []entities.Post {
	if dr == entities.DateNone {
		return slices.Clone(posts)
	}
	out := make([]entities.Post, 0, len(posts))
	for _, p := range posts {
		if !p.Dated() || r.cal.Contains(dr, p.RegisteredAt, now) {
			out = append(out, p)
		}
	}
	return out
}

// SortByComments returns a copy ordered by comment count, highest first.
// Posts with equal counts keep their input order.
func SortByComments(posts []entities.Post) []entities.Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b entities.Post) int {
		return cmp.Compare(b.CommentCount, a.CommentCount)
	})
	return out
}

// LatestAuthor returns the author of the most recently registered post, or nil for no posts.
// Undated posts rank as oldest; among equal timestamps the earliest in input order wins.
func LatestAuthor(posts []entities.Post) *entities.ResponsiblePerson {
	if len(posts) == 0 {
		return nil
	}
	ordered := slices.Clone(posts)
	slices.SortStableFunc(ordered, func(a, b entities.Post) int {
		return b.RegisteredAt.Compare(a.RegisteredAt)
	})
	latest := ordered[0]
	return &entities.ResponsiblePerson{
		Name:         latest.Author,
		LastActivity: latest.RegDateRaw,
	}
}
