// Package entities contains core business entities.
// These are plain domain objects with no knowledge of storage, transport or the model provider.
package entities

import "time"

// Post is a board post tied to a client account.
// Immutable once loaded for a request.
type Post struct {
	ID           string
	ClientName   string
	Author       string
	Subject      string
	Body         string
	RegisteredAt time.Time // zero when the source had no parseable date
	RegDateRaw   string    // registration date as it appeared in the source, used for rendering
	CommentCount int
	HitCount     int
}

// Dated reports whether the post carries a usable registration timestamp.
func (p Post) Dated() bool {
	return !p.RegisteredAt.IsZero()
}

// Comment belongs to exactly one post.
type Comment struct {
	ID         string
	PostID     string
	Author     string
	Body       string
	RegDateRaw string
}

// PrecomputedIndex is the optional grouped view shipped next to the post and comment documents.
type PrecomputedIndex struct {
	ClientNames    []string
	Clients        map[string][]Post
	CommentsByPost map[string][]Comment
}

// DateRange is the relative window a question refers to.
type DateRange string

const (
	DateNone      DateRange = ""
	DateToday     DateRange = "today"
	DateYesterday DateRange = "yesterday"
	DateThisWeek  DateRange = "this_week"
	DateLastWeek  DateRange = "last_week"
	DateThisMonth DateRange = "this_month"
	DateLastMonth DateRange = "last_month"
	DateRecent    DateRange = "recent"
)

// Query is the structured reading of a free-text message. Derived per request, never persisted.
type Query struct {
	ClientName             string // empty when no known client matched
	DateRange              DateRange
	IsProblemQuery         bool
	WantsResponsiblePerson bool
}

// HasClient reports whether a client name was resolved.
func (q Query) HasClient() bool {
	return q.ClientName != ""
}

// RankedPost is a retained post enriched with its comments.
type RankedPost struct {
	Post     Post
	Comments []Comment
}

// ResponsiblePerson is the author of a client's most recently registered post.
type ResponsiblePerson struct {
	Name         string
	LastActivity string
}

// Selection is the output of the filter and ranker: at most N ranked posts plus derived facts.
type Selection struct {
	Posts       []RankedPost
	Responsible *ResponsiblePerson
}

// ChatMessage represents a conversation turn.
type ChatMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// Prompt is the payload handed to the answering collaborator.
type Prompt struct {
	Instructions []string // ordered instruction fragments, joined into the system message
	History      []ChatMessage
	UserMessage  string
}

// ChatRequest represents an inbound question with optional client-held history.
type ChatRequest struct {
	Message string
	History []ChatMessage
}

// ChatResponse is the generated answer plus what was used to produce it.
type ChatResponse struct {
	Answer    string
	Query     Query
	Selection Selection
}
