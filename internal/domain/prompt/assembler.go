// Package prompt renders a selection into the instruction set sent to the model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/textutil"
)

const (
	// DefaultMaxContextChars bounds the rendered board context, counted in characters.
	DefaultMaxContextChars = 3000

	// MaxHistoryTurns is how many prior turns are forwarded with a question.
	MaxHistoryTurns = 10

	recordSeparator = "\n---\n"
)

// Assembler builds prompts.
type Assembler struct {
	maxChars int
}

// NewAssembler creates an Assembler. maxChars <= 0 falls back to DefaultMaxContextChars.
func NewAssembler(maxChars int) *Assembler {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &Assembler{maxChars: maxChars}
}

// Assemble renders the selection and attaches the conditional instructions in fixed order:
// base, problem, responsible person, board context.
func (a *Assembler) Assemble(req entities.ChatRequest, q entities.Query, sel entities.Selection) entities.Prompt {
	instructions := []string{baseInstructions}
	if q.IsProblemQuery {
		instructions = append(instructions, problemInstructions)
	}
	if sel.Responsible != nil {
		instructions = append(instructions,
			fmt.Sprintf(responsibleInstructions, sel.Responsible.Name, sel.Responsible.LastActivity))
	}
	if block := a.RenderContext(sel.Posts); block != "" {
		instructions = append(instructions, fmt.Sprintf(contextInstructions, block))
	}

	return entities.Prompt{
		Instructions: instructions,
		History:      recentHistory(req.History),
		UserMessage:  req.Message,
	}
}

// RenderContext renders each post with the record template, joins them and cuts the result
// to the character budget. The cut may land inside a record.
func (a *Assembler) RenderContext(posts []entities.RankedPost) string {
	if len(posts) == 0 {
		return ""
	}
	records := make([]string, len(posts))
	for i, rp := range posts {
		records[i] = RenderPost(rp)
	}
	return textutil.Truncate(strings.Join(records, recordSeparator), a.maxChars)
}

// RenderPost renders one post and, if it has any, its comments.
func RenderPost(rp entities.RankedPost) string {
	p := rp.Post
	var sb strings.Builder
	fmt.Fprintf(&sb, "[고객사: %s] 작성자: %s | 제목: %s\n", p.ClientName, p.Author, p.Subject)
	fmt.Fprintf(&sb, "내용: %s\n", p.Body)
	fmt.Fprintf(&sb, "등록일: %s | 댓글 수: %d", p.RegDateRaw, p.CommentCount)
	if len(rp.Comments) > 0 {
		pairs := make([]string, len(rp.Comments))
		for i, c := range rp.Comments {
			pairs[i] = c.Author + ": " + c.Body
		}
		fmt.Fprintf(&sb, "\n댓글 (%d개): %s", len(rp.Comments), strings.Join(pairs, " / "))
	}
	return sb.String()
}

// SystemMessage joins instruction fragments into one system message.
func SystemMessage(p entities.Prompt) string {
	return strings.Join(p.Instructions, "\n\n")
}

func recentHistory(history []entities.ChatMessage) []entities.ChatMessage {
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	out := make([]entities.ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Content == "" || (m.Role != "user" && m.Role != "assistant") {
			continue
		}
		out = append(out, m)
	}
	return out
}
