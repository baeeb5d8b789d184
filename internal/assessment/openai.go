package assessment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/sashabaranov/go-openai"
)

// Prompt is one chat completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

type LanguageModel interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel talks to the OpenAI API, or to any compatible server when
// cfg.BaseURL is set.
func NewOpenAIModel(cfg internal.OpenAIConfig) *OpenAIModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAIModel{client: openai.NewClientWithConfig(clientCfg), model: model}
}

func (m *OpenAIModel) Complete(ctx context.Context, p Prompt) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// extractJSON strips a markdown code fence around the payload, if any.
func extractJSON(content string) string {
	if _, after, ok := strings.Cut(content, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(content, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(content)
}
