package ranking

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/corpus"
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

var now = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) // Wednesday

func post(id, client, author string, comments int, ts time.Time) entities.Post {
	raw := ""
	if !ts.IsZero() {
		raw = ts.Format(calendar.ISO)
	}
	return entities.Post{
		ID: id, ClientName: client, Author: author, Subject: "제목 " + id,
		CommentCount: comments, RegisteredAt: ts, RegDateRaw: raw,
	}
}

func ids(posts []entities.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func selectedIDs(sel entities.Selection) []string {
	out := make([]string, len(sel.Posts))
	for i, rp := range sel.Posts {
		out[i] = rp.Post.ID
	}
	return out
}

func newRanker() *Ranker {
	return NewRanker(calendar.New(time.UTC), 0)
}

func TestSortByComments_Stable(t *testing.T) {
	posts := []entities.Post{
		post("a", "", "", 1, time.Time{}),
		post("b", "", "", 3, time.Time{}),
		post("c", "", "", 1, time.Time{}),
		post("d", "", "", 3, time.Time{}),
		post("e", "", "", 0, time.Time{}),
	}
	sorted := SortByComments(posts)

	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(sorted))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(posts), "input is not modified")
}

func TestSortByComments_ExtremeCounts(t *testing.T) {
	posts := []entities.Post{
		post("lo", "", "", math.MinInt+1, time.Time{}),
		post("hi", "", "", math.MaxInt, time.Time{}),
		post("mid", "", "", 0, time.Time{}),
	}
	assert.Equal(t, []string{"hi", "mid", "lo"}, ids(SortByComments(posts)))
}

func TestFilterByDate_NoRangeKeepsEverything(t *testing.T) {
	posts := []entities.Post{
		post("1", "", "", 0, now.AddDate(-1, 0, 0)),
		post("2", "", "", 0, time.Time{}),
		post("3", "", "", 0, now),
	}
	got := newRanker().FilterByDate(posts, entities.DateNone, now)
	assert.Equal(t, ids(posts), ids(got))
}

func TestFilterByDate_KeepsUndated(t *testing.T) {
	posts := []entities.Post{
		post("old", "", "", 0, now.AddDate(0, 0, -30)),
		post("undated", "", "", 0, time.Time{}),
		post("today", "", "", 0, now.Add(-time.Hour)),
	}
	got := newRanker().FilterByDate(posts, entities.DateToday, now)
	assert.Equal(t, []string{"undated", "today"}, ids(got))
}

func TestFilterByDate_Idempotent(t *testing.T) {
	r := newRanker()
	var posts []entities.Post
	for i := 0; i < 40; i++ {
		posts = append(posts, post(fmt.Sprint(i), "", "", i%4, now.Add(-time.Duration(i)*13*time.Hour)))
	}
	for _, dr := range []entities.DateRange{
		entities.DateToday, entities.DateYesterday, entities.DateThisWeek, entities.DateLastWeek,
		entities.DateThisMonth, entities.DateLastMonth, entities.DateRecent,
	} {
		once := r.FilterByDate(posts, dr, now)
		twice := r.FilterByDate(once, dr, now)
		assert.Equal(t, ids(once), ids(twice), string(dr))
		assert.Equal(t, ids(once), ids(r.FilterByDate(posts, dr, now)), string(dr))
	}
}

func TestSelect_TruncatesTo30(t *testing.T) {
	var posts []entities.Post
	for i := 0; i < 45; i++ {
		posts = append(posts, post(fmt.Sprint(i), "한빛상사", "김민수", i%5, time.Time{}))
	}
	idx := corpus.Build(posts, nil, nil)

	sel := newRanker().Select(entities.Query{}, idx, now)
	require.Len(t, sel.Posts, DefaultMaxPosts)
	assert.Equal(t, 4, sel.Posts[0].Post.CommentCount)
	assert.Equal(t, "4", sel.Posts[0].Post.ID)
	assert.Equal(t, "9", sel.Posts[1].Post.ID, "ties keep source order")
}

func TestSelect_CustomLimit(t *testing.T) {
	posts := []entities.Post{post("1", "", "", 0, time.Time{}), post("2", "", "", 0, time.Time{})}
	sel := NewRanker(calendar.New(time.UTC), 1).Select(entities.Query{}, corpus.Build(posts, nil, nil), now)
	assert.Len(t, sel.Posts, 1)
}

func TestSelect_ClientScopeAndComments(t *testing.T) {
	posts := []entities.Post{
		post("1", "한빛상사", "김민수", 1, now.Add(-2*time.Hour)),
		post("2", "대한물산", "이영희", 9, now.Add(-time.Hour)),
		post("3", "한빛상사", "박지훈", 5, now.AddDate(0, 0, -20)),
	}
	comments := []entities.Comment{
		{ID: "c1", PostID: "3", Author: "최과장", Body: "처리했습니다"},
		{ID: "c2", PostID: "2", Author: "x", Body: "y"},
	}
	idx := corpus.Build(posts, comments, nil)

	sel := newRanker().Select(entities.Query{ClientName: "한빛상사"}, idx, now)
	assert.Equal(t, []string{"3", "1"}, selectedIDs(sel))
	require.Len(t, sel.Posts[0].Comments, 1)
	assert.Equal(t, "최과장", sel.Posts[0].Comments[0].Author)
	assert.Empty(t, sel.Posts[1].Comments)
	assert.Nil(t, sel.Responsible, "not requested")
}

func TestSelect_ScenarioTodayAcrossCorpus(t *testing.T) {
	posts := []entities.Post{
		post("1", "한빛상사", "김민수", 1, now.Add(-2*time.Hour)),
		post("2", "대한물산", "이영희", 3, now.AddDate(0, 0, -1)),
		post("3", "대한물산", "박선미", 2, now.Add(-30*time.Minute)),
	}
	idx := corpus.Build(posts, nil, nil)
	q := entities.Query{DateRange: entities.DateToday, IsProblemQuery: true}

	sel := newRanker().Select(q, idx, now)
	assert.Equal(t, []string{"3", "1"}, selectedIDs(sel))
}

func TestSelect_EmptyBase(t *testing.T) {
	sel := newRanker().Select(entities.Query{ClientName: "없는회사", WantsResponsiblePerson: true}, corpus.Build(nil, nil, nil), now)
	assert.Empty(t, sel.Posts)
	assert.NotNil(t, sel.Posts)
	assert.Nil(t, sel.Responsible)
}

func TestSelect_ResponsibleIgnoresDateFilterAndTruncation(t *testing.T) {
	posts := []entities.Post{
		post("1", "한빛상사", "김민수", 10, now.AddDate(0, -2, 0)),
		post("2", "한빛상사", "박지훈", 0, now.AddDate(0, 0, -40)),
		post("3", "한빛상사", "이영희", 3, now.AddDate(0, -3, 0)),
	}
	idx := corpus.Build(posts, nil, nil)
	q := entities.Query{ClientName: "한빛상사", DateRange: entities.DateToday, WantsResponsiblePerson: true}

	sel := NewRanker(calendar.New(time.UTC), 1).Select(q, idx, now)
	assert.Empty(t, sel.Posts)
	require.NotNil(t, sel.Responsible)
	assert.Equal(t, "박지훈", sel.Responsible.Name)
	assert.Equal(t, posts[1].RegDateRaw, sel.Responsible.LastActivity)
}

func TestSelect_ResponsibleNeedsClient(t *testing.T) {
	posts := []entities.Post{post("1", "한빛상사", "김민수", 0, now)}
	sel := newRanker().Select(entities.Query{WantsResponsiblePerson: true}, corpus.Build(posts, nil, nil), now)
	assert.Nil(t, sel.Responsible)
}

func TestLatestAuthor(t *testing.T) {
	assert.Nil(t, LatestAuthor(nil))

	tie := now.Add(-time.Hour)
	posts := []entities.Post{
		post("1", "", "undated", 0, time.Time{}),
		post("2", "", "first-of-tie", 0, tie),
		post("3", "", "older", 0, tie.Add(-time.Hour)),
		post("4", "", "second-of-tie", 0, tie),
	}
	got := LatestAuthor(posts)
	require.NotNil(t, got)
	assert.Equal(t, "first-of-tie", got.Name)

	onlyUndated := LatestAuthor([]entities.Post{post("1", "", "someone", 0, time.Time{})})
	require.NotNil(t, onlyUndated)
	assert.Equal(t, "someone", onlyUndated.Name)
	assert.Equal(t, "", onlyUndated.LastActivity)
}
