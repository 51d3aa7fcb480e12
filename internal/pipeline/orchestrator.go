// Package pipeline turns a job input into a structured result: it prepares
// a local artifact, has the engine transcribe it, splits the reply into
// sections, and records the outcome in history.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/history"
	"github.com/nikhilbhutani/mediainsight/internal/models"
	"github.com/nikhilbhutani/mediainsight/internal/parser"
	"github.com/nikhilbhutani/mediainsight/internal/workspace"
	"github.com/nikhilbhutani/mediainsight/pkg/textextract"
	"github.com/nikhilbhutani/mediainsight/pkg/tokenizer"
)

type Transcoder interface {
	Transcode(ctx context.Context, inputPath, ext string) (models.Artifact, error)
}

type Acquirer interface {
	Acquire(ctx context.Context, url, destDir string) (models.Artifact, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, art models.Artifact, prompt string) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type LinkCache interface {
	GetLink(ctx context.Context, url string) (*models.StructuredResult, bool, error)
	PutLink(ctx context.Context, url string, res models.StructuredResult) error
}

// Outcome is a structured result plus the id of its history record. HistoryID
// is empty when the record could not be stored.
type Outcome struct {
	models.StructuredResult
	HistoryID string `json:"history_id"`
}

type Orchestrator struct {
	workspaces  *workspace.Manager
	transcoder  Transcoder
	acquirer    Acquirer
	transcriber Transcriber
	completer   Completer
	history     history.Store
	cache       LinkCache
	minUpload   int64
}

type Option func(*Orchestrator)

// WithMinUploadBytes rejects uploaded media no larger than n bytes, the same
// viability threshold the relay chain applies to downloads.
func WithMinUploadBytes(n int64) Option {
	return func(o *Orchestrator) { o.minUpload = n }
}

// WithLinkCache enables result caching for links.
func WithLinkCache(c LinkCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

func NewOrchestrator(
	workspaces *workspace.Manager,
	transcoder Transcoder,
	acquirer Acquirer,
	transcriber Transcriber,
	completer Completer,
	store history.Store,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		workspaces:  workspaces,
		transcoder:  transcoder,
		acquirer:    acquirer,
		transcriber: transcriber,
		completer:   completer,
		history:     store,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Process(ctx context.Context, in models.JobInput) (*Outcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		res    models.StructuredResult
		source string
		name   string
		err    error
	)
	switch in.Kind {
	case models.InputMedia:
		name = in.Filename
		ext := strings.ToLower(filepath.Ext(in.Filename))
		if textextract.Supported(ext) {
			source = models.SourceDocument
			res, err = o.processDocument(ctx, in, ext)
		} else {
			source = models.SourceMedia
			res, err = o.processMedia(ctx, in, ext)
		}
	case models.InputLink:
		source, name = models.SourceLink, strings.TrimSpace(in.URL)
		res, err = o.processLink(ctx, name)
	case models.InputText:
		source, name = models.SourceText, "Text input"
		res, err = o.processText(ctx, in.Text)
	}
	if err != nil {
		return nil, err
	}

	return &Outcome{StructuredResult: res, HistoryID: o.record(ctx, in.UserID, name, source, res)}, nil
}

func (o *Orchestrator) processMedia(ctx context.Context, in models.JobInput, ext string) (models.StructuredResult, error) {
	ws, err := o.workspaces.Open()
	if err != nil {
		return models.StructuredResult{}, err
	}
	defer ws.Cleanup()

	path, n, err := ws.Save("input"+ext, in.Data)
	if err != nil {
		return models.StructuredResult{}, err
	}
	if n == 0 {
		return models.StructuredResult{}, apperr.Input("The uploaded file is empty.")
	}
	if n <= o.minUpload {
		return models.StructuredResult{}, apperr.Input(fmt.Sprintf(
			"The uploaded file is too small to be media (%s).", humanize.Bytes(uint64(n))))
	}
	slog.Info("upload stored", "file", in.Filename, "size", humanize.Bytes(uint64(n)), "job", ws.ID)

	art, err := o.transcoder.Transcode(ctx, path, ext)
	if err != nil {
		return models.StructuredResult{}, fmt.Errorf("prepare media: %w", err)
	}
	return o.transcribe(ctx, art)
}

func (o *Orchestrator) processLink(ctx context.Context, url string) (models.StructuredResult, error) {
	if o.cache != nil {
		cached, ok, err := o.cache.GetLink(ctx, url)
		switch {
		case err != nil:
			slog.Warn("link cache lookup failed", "url", url, "error", err)
		case ok:
			slog.Info("link served from cache", "url", url)
			return *cached, nil
		}
	}

	ws, err := o.workspaces.Open()
	if err != nil {
		return models.StructuredResult{}, err
	}
	defer ws.Cleanup()

	acquired, err := o.acquirer.Acquire(ctx, url, ws.Dir())
	if err != nil {
		return models.StructuredResult{}, err
	}
	art, err := o.transcoder.Transcode(ctx, acquired.Path, filepath.Ext(acquired.Path))
	if err != nil {
		return models.StructuredResult{}, fmt.Errorf("prepare media: %w", err)
	}

	res, err := o.transcribe(ctx, art)
	if err != nil {
		return models.StructuredResult{}, err
	}

	if o.cache != nil {
		if err := o.cache.PutLink(ctx, url, res); err != nil {
			slog.Warn("link cache store failed", "url", url, "error", err)
		}
	}
	return res, nil
}

func (o *Orchestrator) processDocument(ctx context.Context, in models.JobInput, ext string) (models.StructuredResult, error) {
	doc, err := textextract.Extract(in.Data, ext)
	if err != nil {
		return models.StructuredResult{}, apperr.Input(fmt.Sprintf("Could not read %s: %v", in.Filename, err))
	}
	slog.Info("document text extracted", "file", in.Filename, "format", doc.Format, "pages", doc.Pages)
	return o.processText(ctx, doc.Content)
}

// processText keeps the input verbatim as the transcript; only the blog post
// and summary are generated.
func (o *Orchestrator) processText(ctx context.Context, text string) (models.StructuredResult, error) {
	prompt, cut := tokenizer.Truncate(text, maxTextTokens)
	if cut {
		slog.Warn("text input truncated for generation", "tokens", tokenizer.CountTokens(text), "limit", maxTextTokens)
	}
	reply, err := o.completer.Complete(ctx, TextPrompt(prompt))
	if err != nil {
		return models.StructuredResult{}, err
	}
	parsed := parser.Parse(reply)
	return models.StructuredResult{
		Transcript: text,
		BlogPost:   parsed.BlogPost,
		Summary:    parsed.Summary,
	}, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, art models.Artifact) (models.StructuredResult, error) {
	raw, err := o.transcriber.Transcribe(ctx, art, MediaPrompt)
	if err != nil {
		return models.StructuredResult{}, err
	}
	return parser.Parse(raw), nil
}

func (o *Orchestrator) record(ctx context.Context, userID, name, source string, res models.StructuredResult) string {
	rec := &models.HistoryRecord{
		UserID:     userID,
		Filename:   name,
		Source:     source,
		Transcript: res.Transcript,
		BlogPost:   res.BlogPost,
		Summary:    res.Summary,
	}
	if err := o.history.Append(ctx, rec); err != nil {
		slog.Error("failed to save history", "user_id", userID, "error", err)
		return ""
	}
	return rec.ID
}
