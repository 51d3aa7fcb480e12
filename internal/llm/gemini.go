package llm

import (
	"context"
	"time"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/gemini"
)

// GeminiProvider reuses the transcription engine's client, so text prompts
// and media transcription share one key and quota.
type GeminiProvider struct {
	client *gemini.Client
	model  string
}

func NewGeminiProvider(client *gemini.Client, model string) *GeminiProvider {
	return &GeminiProvider{client: client, model: model}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Models() []string {
	return []string{p.model, "gemini-2.5-flash", "gemini-2.5-pro"}
}

func (p *GeminiProvider) Generate(ctx context.Context, pr Prompt) (*Completion, error) {
	start := time.Now()
	model := pr.Model
	if model == "" {
		model = p.model
	}

	req := gemini.GenerateRequest{
		Contents: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: pr.Text}}}},
	}
	if pr.Instruction != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: pr.Instruction}}}
	}
	if pr.Temperature > 0 || pr.MaxOutputTokens > 0 {
		gc := &gemini.GenerationConfig{MaxOutputTokens: pr.MaxOutputTokens}
		if pr.Temperature > 0 {
			t := pr.Temperature
			gc.Temperature = &t
		}
		req.GenerationConfig = gc
	}

	resp, err := p.client.GenerateContent(ctx, model, req)
	if err != nil {
		if gemini.IsRateLimited(err) {
			return nil, apperr.RateLimited(err)
		}
		return nil, err
	}

	return &Completion{
		Provider: p.Name(),
		Model:    model,
		Text:     resp.Text(),
		Usage: Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
		Latency: time.Since(start),
	}, nil
}
