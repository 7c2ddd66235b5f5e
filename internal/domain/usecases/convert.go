// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
	"github.com/0xcro3dile/boardchat/internal/domain/textutil"
)

const (
	maxPostBodyChars    = 500
	maxCommentBodyChars = 300
	untitledSubject     = "[제목 없음]"
)

// ConvertUseCase turns the board's CSV exports into corpus documents.
type ConvertUseCase struct {
	reader  ports.ExportReader
	writers []ports.CorpusWriter
	cal     calendar.Calendar
}

// NewConvertUseCase creates a ConvertUseCase. Every writer receives the same converted corpus.
func NewConvertUseCase(reader ports.ExportReader, cal calendar.Calendar, writers ...ports.CorpusWriter) *ConvertUseCase {
	return &ConvertUseCase{
		reader:  reader,
		writers: writers,
		cal:     cal,
	}
}

// ConvertResult summarises a conversion.
type ConvertResult struct {
	Posts    int
	Comments int
	Clients  int
}

// Convert reads both exports, normalises them, and hands the result to every writer.
func (uc *ConvertUseCase) Convert(ctx context.Context, postsPath, commentsPath string) (*ConvertResult, error) {
	log := zerolog.Ctx(ctx)

	// 1. Read exports
	posts, err := uc.reader.ReadPosts(ctx, postsPath)
	if err != nil {
		return nil, fmt.Errorf("reading posts export: %w", err)
	}
	comments, err := uc.reader.ReadComments(ctx, commentsPath)
	if err != nil {
		return nil, fmt.Errorf("reading comments export: %w", err)
	}
	log.Info().Int("posts", len(posts)).Int("comments", len(comments)).Msg("exports read")

	// 2. Normalise records
	for i := range posts {
		posts[i] = uc.normalisePost(posts[i])
	}
	for i := range comments {
		comments[i] = uc.normaliseComment(comments[i])
	}

	// 3. Group
	index := BuildPrecomputedIndex(posts, comments)

	// 4. Persist via ports
	for _, w := range uc.writers {
		if err := w.WriteCorpus(ctx, posts, comments, index); err != nil {
			return nil, fmt.Errorf("writing corpus: %w", err)
		}
	}

	return &ConvertResult{
		Posts:    len(posts),
		Comments: len(comments),
		Clients:  len(index.ClientNames),
	}, nil
}

// BuildPrecomputedIndex groups posts by client and comments by post id.
// Client names are sorted; empty names are grouped but not listed.
func BuildPrecomputedIndex(posts []entities.Post, comments []entities.Comment) *entities.PrecomputedIndex {
	index := &entities.PrecomputedIndex{
		Clients:        make(map[string][]entities.Post),
		CommentsByPost: make(map[string][]entities.Comment),
	}
	for _, p := range posts {
		if _, ok := index.Clients[p.ClientName]; !ok && p.ClientName != "" {
			index.ClientNames = append(index.ClientNames, p.ClientName)
		}
		index.Clients[p.ClientName] = append(index.Clients[p.ClientName], p)
	}
	for _, c := range comments {
		index.CommentsByPost[c.PostID] = append(index.CommentsByPost[c.PostID], c)
	}
	sort.Strings(index.ClientNames)
	return index
}

func (uc *ConvertUseCase) normalisePost(p entities.Post) entities.Post {
	if p.Subject == "" {
		p.Subject = untitledSubject
	}
	p.Body = textutil.Truncate(p.Body, maxPostBodyChars)
	p.RegisteredAt, p.RegDateRaw = uc.normaliseDate(p.RegDateRaw)
	return p
}

func (uc *ConvertUseCase) normaliseComment(c entities.Comment) entities.Comment {
	c.Body = textutil.Truncate(c.Body, maxCommentBodyChars)
	_, c.RegDateRaw = uc.normaliseDate(c.RegDateRaw)
	return c
}

// normaliseDate rewrites a parseable date to ISO form in the calendar's zone; anything else
// is kept verbatim. The ISO form carries no offset, so it is re-read in that same zone.
func (uc *ConvertUseCase) normaliseDate(raw string) (time.Time, string) {
	t, ok := uc.cal.Parse(raw)
	if !ok {
		return time.Time{}, raw
	}
	t = t.In(uc.cal.Location())
	return t, t.Format(calendar.ISO)
}
