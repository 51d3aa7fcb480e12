package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

// Completer turns one prompt into trimmed text. Failures are reported as
// engine errors.
type Completer struct {
	gw Gateway
}

func NewCompleter(gw Gateway) *Completer {
	return &Completer{gw: gw}
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.gw.Generate(ctx, Prompt{Text: prompt})
	if err != nil {
		return "", apperr.Engine(err)
	}

	slog.Debug("text generated",
		"provider", out.Provider,
		"model", out.Model,
		"tokens", out.Usage.Total(),
		"cost_usd", out.CostUSD(),
		"latency_ms", out.Latency.Milliseconds(),
	)

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", apperr.Engine(errors.New("text generation returned an empty response"))
	}
	return text, nil
}
