package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Models() []string {
	return []string{openai.GPT4oMini, openai.GPT4o}
}

func (p *OpenAIProvider) Generate(ctx context.Context, pr Prompt) (*Completion, error) {
	start := time.Now()
	model := pr.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	var msgs []openai.ChatCompletionMessage
	if pr.Instruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: pr.Instruction})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: pr.Text})

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: float32(pr.Temperature),
		MaxTokens:   pr.MaxOutputTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if statusOf(err) == http.StatusTooManyRequests {
			return nil, apperr.RateLimited(err)
		}
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai generate: no choices returned")
	}

	return &Completion{
		Provider: p.Name(),
		Model:    resp.Model,
		Text:     resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Latency: time.Since(start),
	}, nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
