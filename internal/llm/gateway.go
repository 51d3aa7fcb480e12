package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nikhilbhutani/mediainsight/internal/config"
	"github.com/nikhilbhutani/mediainsight/internal/gemini"
	"github.com/nikhilbhutani/mediainsight/internal/retry"
)

type gateway struct {
	providers map[string]Provider
	preferred string
	model     string
	fallback  string
	retrier   *retry.Retrier
}

// NewGateway registers every provider that has credentials. Gemini is always
// present when the engine client is.
func NewGateway(cfg config.LLMConfig, gem *gemini.Client, geminiModel string, retrier *retry.Retrier) Gateway {
	var ps []Provider
	if gem != nil {
		ps = append(ps, NewGeminiProvider(gem, geminiModel))
	}
	if cfg.OpenAIKey != "" {
		ps = append(ps, NewOpenAIProvider(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		ps = append(ps, NewAnthropicProvider(cfg.AnthropicKey))
	}
	if cfg.OllamaURL != "" {
		ps = append(ps, NewOllamaProvider(cfg.OllamaURL))
	}
	return newGateway(cfg, retrier, ps...)
}

func newGateway(cfg config.LLMConfig, retrier *retry.Retrier, providers ...Provider) *gateway {
	g := &gateway{
		providers: make(map[string]Provider, len(providers)),
		preferred: cfg.DefaultProvider,
		model:     cfg.DefaultModel,
		fallback:  cfg.FallbackProvider,
		retrier:   retrier,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Generate(ctx context.Context, p Prompt) (*Completion, error) {
	name := p.Provider
	if name == "" {
		name = g.preferred
		if p.Model == "" {
			p.Model = g.model
		}
	}

	out, err := g.generate(ctx, name, p)
	if err == nil || g.fallback == "" || g.fallback == name {
		return out, err
	}

	slog.Warn("text provider failed, trying fallback", "provider", name, "fallback", g.fallback, "error", err)
	// Model names are provider specific.
	p.Model = ""
	return g.generate(ctx, g.fallback, p)
}

func (g *gateway) generate(ctx context.Context, name string, p Prompt) (*Completion, error) {
	prov, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("text provider %q not configured", name)
	}

	var out *Completion
	err := g.retrier.Do(ctx, name+" generate", func(ctx context.Context) error {
		var err error
		out, err = prov.Generate(ctx, p)
		return err
	})
	return out, err
}

// ListModels is ordered by provider name for stable output.
func (g *gateway) ListModels() []ModelInfo {
	names := make([]string, 0, len(g.providers))
	for n := range g.providers {
		names = append(names, n)
	}
	sort.Strings(names)

	var out []ModelInfo
	for _, n := range names {
		for _, m := range g.providers[n].Models() {
			out = append(out, ModelInfo{Provider: n, Model: m})
		}
	}
	return out
}
