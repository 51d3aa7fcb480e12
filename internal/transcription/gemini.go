package transcription

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/gemini"
)

type GeminiEngine struct {
	client *gemini.Client
	model  string
}

func NewGeminiEngine(client *gemini.Client, model string) *GeminiEngine {
	return &GeminiEngine{client: client, model: model}
}

func (e *GeminiEngine) Upload(ctx context.Context, path, mimeType string) (*RemoteFile, error) {
	f, err := e.client.UploadFile(ctx, path, mimeType)
	if err != nil {
		return nil, classify(err)
	}
	return toRemoteFile(f), nil
}

func (e *GeminiEngine) GetFile(ctx context.Context, name string) (*RemoteFile, error) {
	f, err := e.client.GetFile(ctx, name)
	if err != nil {
		return nil, classify(err)
	}
	return toRemoteFile(f), nil
}

func (e *GeminiEngine) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var parts []gemini.Part
	if req.File != nil {
		parts = append(parts, gemini.Part{FileData: &gemini.FileData{MimeType: req.File.MimeType, FileURI: req.File.URI}})
	}
	parts = append(parts, gemini.Part{Text: req.Prompt})

	resp, err := e.client.GenerateContent(ctx, e.model, gemini.GenerateRequest{
		Contents: []gemini.Content{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", classify(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", apperr.Engine(errors.New("engine returned an empty response"))
	}
	return text, nil
}

func (e *GeminiEngine) DeleteFile(ctx context.Context, name string) error {
	if err := e.client.DeleteFile(ctx, name); err != nil {
		return classify(err)
	}
	return nil
}

// ListModels returns the models that accept generateContent calls.
func (e *GeminiEngine) ListModels(ctx context.Context) ([]string, error) {
	models, err := e.client.ListModels(ctx)
	if err != nil {
		return nil, classify(err)
	}
	var names []string
	for _, m := range models {
		if slices.Contains(m.SupportedGenerationMethods, "generateContent") {
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return names, nil
}

func classify(err error) error {
	if gemini.IsRateLimited(err) {
		return apperr.RateLimited(err)
	}
	return apperr.Engine(err)
}

func toRemoteFile(f *gemini.File) *RemoteFile {
	state := StateProcessing
	switch f.State {
	case gemini.FileStateActive:
		state = StateReady
	case gemini.FileStateFailed:
		state = StateFailed
	}
	return &RemoteFile{Name: f.Name, URI: f.URI, MimeType: f.MimeType, State: state}
}
