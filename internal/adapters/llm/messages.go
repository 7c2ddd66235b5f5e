// Package llm provides answering-collaborator adapters for OpenAI and Ollama.
package llm

import (
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/prompt"
)

// chatMessage is the role/content pair both providers accept.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessages lays a prompt out as system message, prior turns, then the question.
func buildMessages(p entities.Prompt) []chatMessage {
	msgs := make([]chatMessage, 0, len(p.History)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: prompt.SystemMessage(p)})
	for _, m := range p.History {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: p.UserMessage})
	return msgs
}
