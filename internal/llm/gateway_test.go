package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/config"
	"github.com/nikhilbhutani/mediainsight/internal/gemini"
	"github.com/nikhilbhutani/mediainsight/internal/retry"
)

type fakeProvider struct {
	name   string
	calls  int
	models []string
	last   Prompt
	reply  func(call int) (*Completion, error)
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Models() []string { return f.models }

func (f *fakeProvider) Generate(_ context.Context, p Prompt) (*Completion, error) {
	f.calls++
	f.last = p
	return f.reply(f.calls)
}

func noSleep(context.Context, time.Duration) error { return nil }

func testRetrier() *retry.Retrier {
	return retry.New(retry.DefaultPolicy(), retry.WithSleep(noSleep))
}

func TestGatewayUsesPreferredProviderAndModel(t *testing.T) {
	p := &fakeProvider{name: "gemini", reply: func(int) (*Completion, error) {
		return &Completion{Provider: "gemini", Text: "hola"}, nil
	}}
	g := newGateway(config.LLMConfig{DefaultProvider: "gemini", DefaultModel: "gemini-2.5-pro"}, testRetrier(), p)

	out, err := g.Generate(context.Background(), Prompt{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hola", out.Text)
	assert.Equal(t, "gemini-2.5-pro", p.last.Model)
	assert.Equal(t, "hi", p.last.Text)
}

func TestGatewayRetriesRateLimitedProvider(t *testing.T) {
	p := &fakeProvider{name: "gemini", reply: func(call int) (*Completion, error) {
		if call == 1 {
			return nil, apperr.RateLimited(errors.New("429"))
		}
		return &Completion{Text: "ok"}, nil
	}}
	g := newGateway(config.LLMConfig{DefaultProvider: "gemini"}, testRetrier(), p)

	out, err := g.Generate(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Equal(t, 2, p.calls)
}

func TestGatewayFallsBackWithoutModel(t *testing.T) {
	primary := &fakeProvider{name: "gemini", reply: func(int) (*Completion, error) {
		return nil, errors.New("invalid key")
	}}
	fallback := &fakeProvider{name: "openai", reply: func(int) (*Completion, error) {
		return &Completion{Provider: "openai", Text: "from fallback"}, nil
	}}
	g := newGateway(config.LLMConfig{DefaultProvider: "gemini", DefaultModel: "gemini-2.5-pro", FallbackProvider: "openai"},
		testRetrier(), primary, fallback)

	out, err := g.Generate(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", out.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Empty(t, fallback.last.Model)
}

func TestGatewayUnknownProvider(t *testing.T) {
	g := newGateway(config.LLMConfig{DefaultProvider: "missing"}, testRetrier())
	_, err := g.Generate(context.Background(), Prompt{})
	assert.ErrorContains(t, err, `"missing" not configured`)
}

func TestListModelsSortedByProvider(t *testing.T) {
	g := newGateway(config.LLMConfig{}, testRetrier(),
		&fakeProvider{name: "openai", models: []string{"gpt-4o-mini"}},
		&fakeProvider{name: "ollama", models: []string{"llama3"}},
	)
	assert.Equal(t, []ModelInfo{
		{Provider: "ollama", Model: "llama3"},
		{Provider: "openai", Model: "gpt-4o-mini"},
	}, g.ListModels())
}

func TestCompleterTrimsAndRejectsEmpty(t *testing.T) {
	replies := []string{"  Bonjour le monde \n", "   "}
	p := &fakeProvider{name: "gemini", reply: func(call int) (*Completion, error) {
		return &Completion{Text: replies[call-1]}, nil
	}}
	c := NewCompleter(newGateway(config.LLMConfig{DefaultProvider: "gemini"}, testRetrier(), p))

	got, err := c.Complete(context.Background(), "translate")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", got)

	_, err = c.Complete(context.Background(), "translate")
	assert.Equal(t, apperr.KindEngine, apperr.KindOf(err))
}

func TestCompleterKeepsRateLimitKind(t *testing.T) {
	p := &fakeProvider{name: "gemini", reply: func(int) (*Completion, error) {
		return nil, apperr.RateLimited(errors.New("429"))
	}}
	c := NewCompleter(newGateway(config.LLMConfig{DefaultProvider: "gemini"}, testRetrier(), p))

	_, err := c.Complete(context.Background(), "x")
	assert.Equal(t, apperr.KindEngineRateLimited, apperr.KindOf(err))
	assert.Equal(t, 3, p.calls)
}

func TestGeminiProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-flash-latest:generateContent", r.URL.Path)
		var body gemini.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotNil(t, body.SystemInstruction)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Blog Post\nhello"}]}}],
			"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(gemini.NewClient("k", srv.URL, 5*time.Second, afero.NewMemMapFs()), "gemini-flash-latest")
	out, err := p.Generate(context.Background(), Prompt{Instruction: "be brief", Text: "write"})
	require.NoError(t, err)
	assert.Equal(t, "Blog Post\nhello", out.Text)
	assert.Equal(t, 15, out.Usage.Total())
	assert.Greater(t, out.CostUSD(), 0.0)
}

func TestGeminiProviderRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(gemini.NewClient("k", srv.URL, 5*time.Second, afero.NewMemMapFs()), "gemini-flash-latest")
	_, err := p.Generate(context.Background(), Prompt{})
	assert.Equal(t, apperr.KindEngineRateLimited, apperr.KindOf(err))
}

func TestOllamaProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var body ollamaGenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3", body.Model)
		assert.Equal(t, "sum up", body.Prompt)
		assert.False(t, body.Stream)
		_, _ = w.Write([]byte(`{"model":"llama3","response":"short","prompt_eval_count":4,"eval_count":2}`))
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL+"/").Generate(context.Background(), Prompt{Text: "sum up"})
	require.NoError(t, err)
	assert.Equal(t, "short", out.Text)
	assert.Equal(t, Usage{InputTokens: 4, OutputTokens: 2}, out.Usage)
}

func TestOllamaProviderRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL).Generate(context.Background(), Prompt{})
	assert.Equal(t, apperr.KindEngineRateLimited, apperr.KindOf(err))
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.00015+0.0006, estimateCost("gpt-4o-mini", Usage{InputTokens: 1000, OutputTokens: 1000}), 1e-9)
	assert.Zero(t, estimateCost("unknown", Usage{InputTokens: 1000}))
}
