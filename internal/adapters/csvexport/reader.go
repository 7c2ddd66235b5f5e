// Package csvexport reads the board's CSV exports of posts and comments.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// Reader implements ports.ExportReader for header-first CSV files.
type Reader struct {
	policy *bluemonday.Policy
}

// NewReader creates a Reader that strips all markup from text columns.
func NewReader() *Reader {
	return &Reader{policy: bluemonday.StrictPolicy()}
}

// ReadPosts reads a posts export (id,name,writer,subject,content,reg_date,comm_cnt,hit_cnt).
func (r *Reader) ReadPosts(ctx context.Context, path string) ([]entities.Post, error) {
	var posts []entities.Post
	err := readRows(ctx, path, func(row record) {
		posts = append(posts, entities.Post{
			ID:           row.get("id"),
			ClientName:   row.get("name"),
			Author:       row.get("writer"),
			Subject:      r.CleanText(row.get("subject")),
			Body:         r.CleanText(row.get("content")),
			RegDateRaw:   strings.TrimSpace(row.get("reg_date")),
			CommentCount: atoi(row.get("comm_cnt")),
			HitCount:     atoi(row.get("hit_cnt")),
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ReadComments reads a comments export (id,post_id,writer,content,reg_date).
func (r *Reader) ReadComments(ctx context.Context, path string) ([]entities.Comment, error) {
	var comments []entities.Comment
	err := readRows(ctx, path, func(row record) {
		comments = append(comments, entities.Comment{
			ID:         row.get("id"),
			PostID:     row.get("post_id"),
			Author:     row.get("writer"),
			Body:       r.CleanText(row.get("content")),
			RegDateRaw: strings.TrimSpace(row.get("reg_date")),
		})
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CleanText strips tags, decodes entities and collapses whitespace (including &nbsp;).
func (r *Reader) CleanText(s string) string {
	if s == "" {
		return ""
	}
	// The sanitizer re-escapes text, so entities are decoded after it runs.
	text := html.UnescapeString(r.policy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

type record struct {
	header map[string]int
	fields []string
}

func (rec record) get(col string) string {
	i, ok := rec.header[col]
	if !ok || i >= len(rec.fields) {
		return ""
	}
	return rec.fields[i]
}

func readRows(ctx context.Context, path string, fn func(record)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading header of %s: %w", path, err)
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[name] = i
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s line %d: %w", path, line, err)
		}
		fn(record{header: header, fields: fields})
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
