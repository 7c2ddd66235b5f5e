package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
)

const openAIProvider = "openai"

// OpenAIAdapter implements ports.LLMService using the chat completions API.
type OpenAIAdapter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(baseURL, apiKey, model string) *OpenAIAdapter {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4"
	}
	return &OpenAIAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		// Transport safety net only; the request itself carries no deadline and is not retried.
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type openAIChatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate sends the prompt as a single chat completion.
func (a *OpenAIAdapter) Generate(ctx context.Context, p entities.Prompt, params ports.GenerationParams) (string, error) {
	reqBody := openAIChatRequest{
		Model:       a.model,
		Messages:    buildMessages(p),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var completion openAIChatResponse
	decodeErr := json.Unmarshal(body, &completion)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("OpenAI API 오류 (%d)", resp.StatusCode)
		if decodeErr == nil && completion.Error != nil && completion.Error.Message != "" {
			msg = completion.Error.Message
		}
		return "", &ports.CollaboratorError{Provider: openAIProvider, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &ports.CollaboratorError{Provider: openAIProvider, Message: "malformed response: " + decodeErr.Error()}
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}
	msg := completion.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", nil
	}
	return *msg.Content, nil
}
