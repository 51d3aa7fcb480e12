package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

const (
	anthropicModel     = "claude-sonnet-4-20250514"
	anthropicMaxTokens = 8192
)

type AnthropicProvider struct {
	client anthropic.Client
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Models() []string {
	return []string{anthropicModel, "claude-3-5-haiku-latest"}
}

func (p *AnthropicProvider) Generate(ctx context.Context, pr Prompt) (*Completion, error) {
	start := time.Now()
	model := pr.Model
	if model == "" {
		model = anthropicModel
	}
	maxTokens := int64(pr.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(pr.Text))},
	}
	if pr.Instruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: pr.Instruction}}
	}
	if pr.Temperature > 0 {
		params.Temperature = anthropic.Float(pr.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return nil, apperr.RateLimited(err)
		}
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &Completion{
		Provider: p.Name(),
		Model:    string(msg.Model),
		Text:     sb.String(),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		Latency: time.Since(start),
	}, nil
}
