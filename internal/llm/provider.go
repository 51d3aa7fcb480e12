// Package llm routes single-prompt text generation across the configured
// providers. The raw-text flow and translation both go through it.
package llm

import (
	"context"
	"time"
)

// Provider is one text generation backend. Quota rejections are reported as
// apperr.KindEngineRateLimited so the gateway can back off.
type Provider interface {
	Generate(ctx context.Context, p Prompt) (*Completion, error)
	Name() string
	Models() []string
}

// Gateway picks a provider for each prompt, retrying rate limits and
// falling back once when the preferred provider fails.
type Gateway interface {
	Generate(ctx context.Context, p Prompt) (*Completion, error)
	ListModels() []ModelInfo
}

// Prompt is a single instruction/input pair. An empty Model selects the
// provider's default.
type Prompt struct {
	Provider        string
	Model           string
	Instruction     string
	Text            string
	Temperature     float64
	MaxOutputTokens int
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

type Completion struct {
	Provider string
	Model    string
	Text     string
	Usage    Usage
	Latency  time.Duration
}

// CostUSD is an estimate from the static price table; unknown models cost 0.
func (c *Completion) CostUSD() float64 {
	return estimateCost(c.Model, c.Usage)
}

type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
