package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
)

const ollamaProvider = "ollama"

// OllamaLLMAdapter implements ports.LLMService using the Ollama chat API.
type OllamaLLMAdapter struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaLLMAdapter creates a new Ollama LLM adapter.
func NewOllamaLLMAdapter(baseURL, model string) *OllamaLLMAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaLLMAdapter{
		baseURL: baseURL,
		model:   model,
		// Calls are never retried or cut short by the pipeline; this transport timeout
		// only stops a hung connection. Local models can be slow on first load.
		client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// ollamaChatRequest is the Ollama chat API request.
type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaChatResponse is the Ollama chat API response.
type ollamaChatResponse struct {
	Message *chatMessage `json:"message"`
	Done    bool         `json:"done"`
	Error   string       `json:"error,omitempty"`
}

// Generate sends the prompt as one non-streaming chat call.
func (a *OllamaLLMAdapter) Generate(ctx context.Context, p entities.Prompt, params ports.GenerationParams) (string, error) {
	reqBody := ollamaChatRequest{
		Model:    a.model,
		Messages: buildMessages(p),
		Stream:   false,
		Options: ollamaOptions{
			Temperature: params.Temperature,
			NumPredict:  params.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var chatResp ollamaChatResponse
	decodeErr := json.Unmarshal(body, &chatResp)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && chatResp.Error != "" {
			msg = chatResp.Error
		}
		return "", &ports.CollaboratorError{Provider: ollamaProvider, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &ports.CollaboratorError{Provider: ollamaProvider, Message: "malformed response: " + decodeErr.Error()}
	}
	if chatResp.Error != "" {
		return "", &ports.CollaboratorError{Provider: ollamaProvider, Message: chatResp.Error}
	}

	if chatResp.Message == nil {
		return "", nil
	}
	return chatResp.Message.Content, nil
}
