package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// mockReader implements ports.ExportReader for testing
type mockReader struct {
	posts    []entities.Post
	comments []entities.Comment
	err      error
}

func (m *mockReader) ReadPosts(ctx context.Context, path string) ([]entities.Post, error) {
	return m.posts, m.err
}

func (m *mockReader) ReadComments(ctx context.Context, path string) ([]entities.Comment, error) {
	return m.comments, nil
}

// mockWriter implements ports.CorpusWriter for testing
type mockWriter struct {
	posts    []entities.Post
	comments []entities.Comment
	index    *entities.PrecomputedIndex
	err      error
}

func (m *mockWriter) WriteCorpus(ctx context.Context, posts []entities.Post, comments []entities.Comment, index *entities.PrecomputedIndex) error {
	m.posts, m.comments, m.index = posts, comments, index
	return m.err
}

func TestConvert_NormalisesAndWrites(t *testing.T) {
	reader := &mockReader{
		posts: []entities.Post{
			{ID: "1", ClientName: "한빛상사", Author: "김민수", Subject: "", Body: strings.Repeat("가", 600), RegDateRaw: "2026/03/04 09:05:07"},
			{ID: "2", ClientName: "대한물산", Author: "이영희", Subject: "정산", Body: "짧은 글", RegDateRaw: "미정"},
			{ID: "3", ClientName: "", Author: "익명", Subject: "기타"},
		},
		comments: []entities.Comment{
			{ID: "c1", PostID: "1", Author: "최과장", Body: strings.Repeat("나", 350), RegDateRaw: "2026-03-04 11:00:00"},
		},
	}
	primary, secondary := &mockWriter{}, &mockWriter{}
	uc := NewConvertUseCase(reader, calendar.New(time.UTC), primary, secondary)

	res, err := uc.Convert(context.Background(), "posts.csv", "comments.csv")
	require.NoError(t, err)
	assert.Equal(t, &ConvertResult{Posts: 3, Comments: 1, Clients: 2}, res)

	require.Len(t, primary.posts, 3)
	p := primary.posts[0]
	assert.Equal(t, "[제목 없음]", p.Subject)
	assert.Equal(t, 500, len([]rune(p.Body)))
	assert.Equal(t, "2026-03-04T09:05:07", p.RegDateRaw)
	assert.True(t, time.Date(2026, 3, 4, 9, 5, 7, 0, time.UTC).Equal(p.RegisteredAt))

	assert.Equal(t, "정산", primary.posts[1].Subject)
	assert.Equal(t, "미정", primary.posts[1].RegDateRaw, "unparseable dates are kept verbatim")
	assert.True(t, primary.posts[1].RegisteredAt.IsZero())

	c := primary.comments[0]
	assert.Equal(t, 300, len([]rune(c.Body)))
	assert.Equal(t, "2026-03-04T11:00:00", c.RegDateRaw)

	assert.Equal(t, []string{"대한물산", "한빛상사"}, primary.index.ClientNames)
	assert.Same(t, primary.index, secondary.index, "every writer gets the same corpus")
}

func TestConvert_Errors(t *testing.T) {
	uc := NewConvertUseCase(&mockReader{err: errors.New("no such file")}, calendar.New(nil), &mockWriter{})
	_, err := uc.Convert(context.Background(), "missing.csv", "comments.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading posts export")

	uc = NewConvertUseCase(&mockReader{}, calendar.New(nil), &mockWriter{err: errors.New("disk full")})
	_, err = uc.Convert(context.Background(), "posts.csv", "comments.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing corpus: disk full")
}

func TestBuildPrecomputedIndex(t *testing.T) {
	posts := []entities.Post{
		{ID: "1", ClientName: "한빛상사"},
		{ID: "2", ClientName: "대한물산"},
		{ID: "3", ClientName: ""},
		{ID: "4", ClientName: "한빛상사"},
	}
	comments := []entities.Comment{
		{ID: "c1", PostID: "4"},
		{ID: "c2", PostID: "4"},
		{ID: "c3", PostID: "9"},
	}
	idx := BuildPrecomputedIndex(posts, comments)

	assert.Equal(t, []string{"대한물산", "한빛상사"}, idx.ClientNames)
	require.Len(t, idx.Clients["한빛상사"], 2)
	assert.Equal(t, "4", idx.Clients["한빛상사"][1].ID)
	assert.Len(t, idx.Clients[""], 1, "unnamed posts are grouped")
	assert.Len(t, idx.CommentsByPost["4"], 2)
	assert.Len(t, idx.CommentsByPost["9"], 1)
}

func TestConvert_OffsetDatesUseCalendarZone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	cal := calendar.New(seoul)

	reader := &mockReader{
		posts: []entities.Post{
			{ID: "1", ClientName: "한빛상사", Subject: "야간 장애", RegDateRaw: "2026-03-04T20:00:00Z"},
			{ID: "2", ClientName: "한빛상사", Subject: "오전 문의", RegDateRaw: "2026-03-04T09:00:00+00:00"},
		},
		comments: []entities.Comment{{ID: "c1", PostID: "1", RegDateRaw: "2026-03-04T23:30:00Z"}},
	}
	w := &mockWriter{}
	_, err = NewConvertUseCase(reader, cal, w).Convert(context.Background(), "posts.csv", "comments.csv")
	require.NoError(t, err)

	p := w.posts[0]
	assert.Equal(t, "2026-03-05T05:00:00", p.RegDateRaw, "rewritten as Seoul wall time")
	assert.True(t, time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC).Equal(p.RegisteredAt))

	reread, ok := cal.Parse(p.RegDateRaw)
	require.True(t, ok)
	assert.True(t, p.RegisteredAt.Equal(reread), "re-reading the stored text keeps the instant")

	now := time.Date(2026, 3, 5, 12, 0, 0, 0, seoul)
	assert.True(t, cal.Contains(entities.DateToday, reread, now))

	assert.Equal(t, "2026-03-04T18:00:00", w.posts[1].RegDateRaw)
	assert.Equal(t, "2026-03-05T08:30:00", w.comments[0].RegDateRaw)
}
