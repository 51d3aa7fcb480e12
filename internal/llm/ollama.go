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

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

const ollamaModel = "llama3"

// OllamaProvider talks to a local Ollama daemon through /api/generate.
type OllamaProvider struct {
	baseURL string
	client  *http.Client
}

func NewOllamaProvider(baseURL string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Models() []string { return []string{ollamaModel, "mistral"} }

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (p *OllamaProvider) Generate(ctx context.Context, pr Prompt) (*Completion, error) {
	start := time.Now()
	model := pr.Model
	if model == "" {
		model = ollamaModel
	}

	body := ollamaGenerateRequest{Model: model, Prompt: pr.Text, System: pr.Instruction}
	if pr.Temperature > 0 || pr.MaxOutputTokens > 0 {
		body.Options = map[string]any{}
		if pr.Temperature > 0 {
			body.Options["temperature"] = pr.Temperature
		}
		if pr.MaxOutputTokens > 0 {
			body.Options["num_predict"] = pr.MaxOutputTokens
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("ollama generate: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, apperr.RateLimited(err)
		}
		return nil, err
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ollama decode: %w", err)
	}

	return &Completion{
		Provider: p.Name(),
		Model:    model,
		Text:     out.Response,
		Usage:    Usage{InputTokens: out.PromptEvalCount, OutputTokens: out.EvalCount},
		Latency:  time.Since(start),
	}, nil
}
