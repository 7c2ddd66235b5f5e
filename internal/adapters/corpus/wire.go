// Package corpus provides corpus source adapters: JSON files, HTTP and SQLite.
// All of them speak the same logical schema as the board's exported JSON documents.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

const (
	PostsFile    = "posts.json"
	CommentsFile = "comments.json"
	IndexFile    = "indexed.json"
)

// flexString decodes a JSON string or number. null decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*f = flexString(n.String())
	}
	return nil
}

// flexInt decodes a JSON number or numeric string. Anything unreadable decodes to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*f = flexInt(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			n = 0
		}
		*f = flexInt(n)
	default:
		*f = 0
	}
	return nil
}

type postDoc struct {
	ID      flexString `json:"id"`
	Name    string     `json:"name"`
	Writer  string     `json:"writer"`
	Subject string     `json:"subject"`
	Content string     `json:"content"`
	RegDate flexString `json:"reg_date"`
	CommCnt flexInt    `json:"comm_cnt"`
	HitCnt  flexInt    `json:"hit_cnt"`
}

type commentDoc struct {
	ID      flexString `json:"id"`
	PostID  flexString `json:"post_id"`
	Writer  string     `json:"writer"`
	Content string     `json:"content"`
	RegDate flexString `json:"reg_date"`
}

type indexDoc struct {
	ClientNames    []string                     `json:"client_names"`
	Clients        map[string][]json.RawMessage `json:"clients"`
	CommentsByPost map[string][]json.RawMessage `json:"comments_by_post"`
}

type indexOut struct {
	ClientNames    []string                `json:"client_names"`
	Clients        map[string][]postDoc    `json:"clients"`
	CommentsByPost map[string][]commentDoc `json:"comments_by_post"`
}

// Codec converts between corpus documents and entities. Registration dates are parsed
// in the codec's calendar.
type Codec struct {
	cal calendar.Calendar
}

// NewCodec creates a Codec.
func NewCodec(cal calendar.Calendar) Codec {
	return Codec{cal: cal}
}

// DecodePosts decodes a post collection. Elements that cannot be decoded are skipped.
func (c Codec) DecodePosts(data []byte) ([]entities.Post, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}
	return c.postsFromRaw(raws), nil
}

// DecodeComments decodes a comment collection. Elements that cannot be decoded are skipped.
func (c Codec) DecodeComments(data []byte) ([]entities.Comment, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}
	return commentsFromRaw(raws), nil
}

// DecodeIndex decodes a precomputed index document.
func (c Codec) DecodeIndex(data []byte) (*entities.PrecomputedIndex, error) {
	var doc indexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	index := &entities.PrecomputedIndex{
		ClientNames:    doc.ClientNames,
		Clients:        make(map[string][]entities.Post, len(doc.Clients)),
		CommentsByPost: make(map[string][]entities.Comment, len(doc.CommentsByPost)),
	}
	for name, raws := range doc.Clients {
		index.Clients[name] = c.postsFromRaw(raws)
	}
	for postID, raws := range doc.CommentsByPost {
		index.CommentsByPost[postID] = commentsFromRaw(raws)
	}
	return index, nil
}

func (c Codec) postsFromRaw(raws []json.RawMessage) []entities.Post {
	posts := make([]entities.Post, 0, len(raws))
	for _, raw := range raws {
		var d postDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		posts = append(posts, c.postFromDoc(d))
	}
	return posts
}

func commentsFromRaw(raws []json.RawMessage) []entities.Comment {
	comments := make([]entities.Comment, 0, len(raws))
	for _, raw := range raws {
		var d commentDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		comments = append(comments, commentFromDoc(d))
	}
	return comments
}

func (c Codec) postFromDoc(d postDoc) entities.Post {
	p := entities.Post{
		ID:           string(d.ID),
		ClientName:   d.Name,
		Author:       d.Writer,
		Subject:      d.Subject,
		Body:         d.Content,
		RegDateRaw:   string(d.RegDate),
		CommentCount: int(d.CommCnt),
		HitCount:     int(d.HitCnt),
	}
	if t, ok := c.cal.Parse(p.RegDateRaw); ok {
		p.RegisteredAt = t
	}
	return p
}

func commentFromDoc(d commentDoc) entities.Comment {
	return entities.Comment{
		ID:         string(d.ID),
		PostID:     string(d.PostID),
		Author:     d.Writer,
		Body:       d.Content,
		RegDateRaw: string(d.RegDate),
	}
}

func postToDoc(p entities.Post) postDoc {
	return postDoc{
		ID:      flexString(p.ID),
		Name:    p.ClientName,
		Writer:  p.Author,
		Subject: p.Subject,
		Content: p.Body,
		RegDate: flexString(p.RegDateRaw),
		CommCnt: flexInt(p.CommentCount),
		HitCnt:  flexInt(p.HitCount),
	}
}

func commentToDoc(c entities.Comment) commentDoc {
	return commentDoc{
		ID:      flexString(c.ID),
		PostID:  flexString(c.PostID),
		Writer:  c.Author,
		Content: c.Body,
		RegDate: flexString(c.RegDateRaw),
	}
}

// EncodePosts renders a post collection as indented JSON.
func EncodePosts(posts []entities.Post) ([]byte, error) {
	docs := make([]postDoc, len(posts))
	for i, p := range posts {
		docs[i] = postToDoc(p)
	}
	return encode(docs)
}

// EncodeComments renders a comment collection as indented JSON.
func EncodeComments(comments []entities.Comment) ([]byte, error) {
	docs := make([]commentDoc, len(comments))
	for i, c := range comments {
		docs[i] = commentToDoc(c)
	}
	return encode(docs)
}

// EncodeIndex renders a precomputed index as indented JSON.
func EncodeIndex(index *entities.PrecomputedIndex) ([]byte, error) {
	if index == nil {
		index = &entities.PrecomputedIndex{}
	}
	out := indexOut{
		ClientNames:    index.ClientNames,
		Clients:        make(map[string][]postDoc, len(index.Clients)),
		CommentsByPost: make(map[string][]commentDoc, len(index.CommentsByPost)),
	}
	if out.ClientNames == nil {
		out.ClientNames = []string{}
	}
	for name, posts := range index.Clients {
		docs := make([]postDoc, len(posts))
		for i, p := range posts {
			docs[i] = postToDoc(p)
		}
		out.Clients[name] = docs
	}
	for postID, comments := range index.CommentsByPost {
		docs := make([]commentDoc, len(comments))
		for i, c := range comments {
			docs[i] = commentToDoc(c)
		}
		out.CommentsByPost[postID] = docs
	}
	return encode(out)
}

// encode keeps non-ASCII text and markup characters readable in the output files.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
